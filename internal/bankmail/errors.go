package bankmail

import "errors"

// AuthError indicates the login sequence did not reach the signed-in
// state, usually because the stored credential is wrong or stale.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "login failed: " + e.Message
}

// IsAuthError reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
