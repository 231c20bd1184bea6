// ABOUTME: Authentication error type shared by the token refresher and handlers
// ABOUTME: Distinguishes "re-authenticate" failures from transient upstream errors
package auth

import "errors"

// AuthError means the user's credentials cannot authorize calls and cannot be
// repaired without re-authentication. Handlers map it to HTTP 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication required: " + e.Reason
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
