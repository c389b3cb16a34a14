package handlers

const (
	SessionCookieName      = "session_id"
	ChildSessionCookieName = "child_session"
	PinGateCookieName      = "pin_verified"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
)
