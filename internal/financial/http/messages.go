package financialhttp

const (
	titleDashboard     = "داشبورد"
	titleUsers         = "مدیریت کاربران"
	titleAccounts      = "حساب‌ها"
	titleOverdue       = "حساب‌های معوقه"
	titleDiscrepancies = "مغایرت‌ها"
	titleFollowUps     = "پیگیری‌ها"
	titleChecks        = "چک‌ها"
	titleDebts         = "بدهی‌های در جریان"
	titleInventory     = "آمار انبار"
	titleTasks         = "لیست کارها"

	msgLoadFailed = "خطا در بارگیری اطلاعات. لطفا دوباره تلاش کنید."
)
