package apperr

import (
	"errors"
	"net/http"
)

// Error is a failure kind with a fixed HTTP status. Handlers branch on the
// sentinel values below with errors.Is; the message is what the client sees.
type Error struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Sentinel failure kinds. Services return these (optionally wrapped); the
// response normalizer maps them to their status.
var (
	ErrValidationFailed   = &Error{Status: http.StatusBadRequest, Message: "Validation failed"}
	ErrTokenRequired      = &Error{Status: http.StatusUnauthorized, Message: "Authorization token required"}
	ErrInvalidAuthFormat  = &Error{Status: http.StatusUnauthorized, Message: "Invalid authorization format. Use 'Bearer <token>'"}
	ErrInvalidTokenFormat = &Error{Status: http.StatusUnauthorized, Message: "Invalid token format"}
	ErrTokenExpired       = &Error{Status: http.StatusUnauthorized, Message: "Token has expired. Please login again."}
	ErrInvalidToken       = &Error{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	ErrMalformedToken     = &Error{Status: http.StatusUnauthorized, Message: "Malformed token"}
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidRefresh     = &Error{Status: http.StatusUnauthorized, Message: "Invalid refresh token"}
	ErrUserInvalid        = &Error{Status: http.StatusUnauthorized, Message: "User not found or invalid"}
	ErrForbidden          = &Error{Status: http.StatusForbidden, Message: "Forbidden - Admin access required"}
	ErrAdminRevoked       = &Error{Status: http.StatusForbidden, Message: "Admin privileges revoked"}
	ErrOwnershipRequired  = &Error{Status: http.StatusForbidden, Message: "Access denied. Admin access or resource ownership required"}
	ErrUserNotFound       = &Error{Status: http.StatusNotFound, Message: "User not found"}
	ErrCategoryNotFound   = &Error{Status: http.StatusNotFound, Message: "Category not found"}
	ErrEmailExists        = &Error{Status: http.StatusConflict, Message: "User with this email already exists"}
	ErrEmailTaken         = &Error{Status: http.StatusConflict, Message: "Email already taken by another user"}
	ErrInternal           = &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
)

// Validation builds a 400 error carrying every violated rule.
func Validation(details ...string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: ErrValidationFailed.Message,
		Details: details,
	}
}

// Status returns the HTTP status for err, or 500 when err is not an *Error.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// As extracts the *Error from err, synthesizing a generic internal error for
// anything unanticipated so stack detail never leaks to the client.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal
}
