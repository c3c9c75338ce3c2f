package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Generic service errors.
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("identity provider unavailable")
	ErrInvalidInput = errors.New("invalid input")

	// Credential and account errors reported by the identity provider.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("email already registered")

	// One-time code errors.
	ErrInvalidOTP = errors.New("invalid one-time code")
	ErrOTPExpired = errors.New("one-time code expired")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Profile store errors.
	ErrUsernameTaken = errors.New("username already taken")

	// Client-side errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrProviderPanic    = errors.New("identity provider call panicked")
)

// knownErrors is the set of sentinels that survive a round trip through a
// transport which only carries the error message.
var knownErrors = []error{
	ErrNotFound,
	ErrInternal,
	ErrUnavailable,
	ErrInvalidInput,
	ErrInvalidCredentials,
	ErrEmailNotConfirmed,
	ErrEmailTaken,
	ErrInvalidOTP,
	ErrOTPExpired,
	ErrInvalidToken,
	ErrTokenExpired,
	ErrUsernameTaken,
	ErrNotAuthenticated,
}

// ErrorFromMessage returns the sentinel whose text equals msg, or nil.
func ErrorFromMessage(msg string) error {
	for _, e := range knownErrors {
		if e.Error() == msg {
			return e
		}
	}
	return nil
}
