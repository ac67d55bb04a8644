package apperror

import "net/http"

// Kind is the closed set of session failure kinds. Every operation that can
// fail reports one of these; provider-specific errors are translated at the
// identity adapter boundary and never leak past it.
type Kind string

const (
	KindNoUserLoggedIn       Kind = "no_user_logged_in"
	KindInvalidUserData      Kind = "invalid_user_data"
	KindNetworkError         Kind = "network_error"
	KindSessionExpired       Kind = "session_expired"
	KindConfirmationRequired Kind = "confirmation_required"
	KindConfirmationFailed   Kind = "confirmation_failed"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindUserNotFound         Kind = "user_not_found"
	KindUserAlreadyExists    Kind = "user_already_exists"
	KindSignUpFailed         Kind = "sign_up_failed"
	KindSignInFailed         Kind = "sign_in_failed"
	KindUnknown              Kind = "unknown"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindInvalidUserData, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindAuthenticationFailed, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindAuthenticationFailed, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindUserNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, KindUserAlreadyExists, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindUnknown, "Internal Server Error", err)
}

// Session taxonomy constructors

func NoUserLoggedIn() *AppError {
	return New(http.StatusUnauthorized, KindNoUserLoggedIn, "No user is logged in", nil)
}

func NetworkError(err error) *AppError {
	return New(http.StatusBadGateway, KindNetworkError, "Service unreachable", err)
}

func SessionExpired() *AppError {
	return New(http.StatusUnauthorized, KindSessionExpired, "Session has expired", nil)
}

func ConfirmationRequired(message string) *AppError {
	return New(http.StatusForbidden, KindConfirmationRequired, message, nil)
}

func ConfirmationFailed(message string) *AppError {
	return New(http.StatusBadRequest, KindConfirmationFailed, message, nil)
}

func SignUpFailed(message string, err error) *AppError {
	return New(http.StatusBadRequest, KindSignUpFailed, message, err)
}

func SignInFailed(message string, err error) *AppError {
	return New(http.StatusUnauthorized, KindSignInFailed, message, err)
}

// KindOf extracts the failure kind from any error, defaulting to unknown.
func KindOf(err error) Kind {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return KindUnknown
}
