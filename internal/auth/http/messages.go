package authhttp

const (
	titleLogin   = "ورود به سیستم"
	titleProfile = "پروفایل کاربری"

	msgInvalidInput       = "اطلاعات وارد شده معتبر نیست."
	msgBackendUnavailable = "ارتباط با سرور برقرار نشد. لطفا دوباره تلاش کنید."
	msgTooManyAttempts    = "تعداد تلاش‌ها بیش از حد مجاز است. لطفا کمی بعد دوباره تلاش کنید."
	msgWelcome            = "خوش آمدید"
	msgProfileUpdated     = "پروفایل با موفقیت به‌روزرسانی شد."
	msgPasswordChanged    = "رمز عبور با موفقیت تغییر کرد."
)

var loginMessages = map[string]string{
	"Username.required": "نام کاربری الزامی است.",
	"Username.max":      "نام کاربری بیش از حد طولانی است.",
	"Password.required": "رمز عبور الزامی است.",
}

var profileMessages = map[string]string{
	"Email.email":     "ایمیل معتبر نیست.",
	"FullName.max":    "نام بیش از حد طولانی است.",
	"PhoneNumber.max": "شماره تلفن بیش از حد طولانی است.",
}

var passwordMessages = map[string]string{
	"OldPassword.required":     "رمز عبور فعلی الزامی است.",
	"NewPassword.required":     "رمز عبور جدید الزامی است.",
	"NewPassword.min":          "رمز عبور جدید باید حداقل ۸ کاراکتر باشد.",
	"ConfirmPassword.required": "تکرار رمز عبور الزامی است.",
	"ConfirmPassword.eqfield":  "تکرار رمز عبور با رمز جدید یکسان نیست.",
}
