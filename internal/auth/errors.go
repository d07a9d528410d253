package auth

// DefaultLoginFailureMessage is shown when the backend rejects a login without
// a usable message.
const DefaultLoginFailureMessage = "خطا در ورود به سیستم. لطفا دوباره تلاش کنید."

// AuthenticationError reports rejected credentials.
type AuthenticationError struct {
	Message string
	Status  int
}

func (e *AuthenticationError) Error() string {
	return e.Message
}
