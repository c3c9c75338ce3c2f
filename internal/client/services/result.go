package services

import "github.com/dmitrijs2005/campushub/internal/models"

// Op names a facade operation.
type Op string

const (
	OpSignUp        Op = "sign_up"
	OpSignIn        Op = "sign_in"
	OpSignOut       Op = "sign_out"
	OpVerifyOTP     Op = "verify_otp"
	OpUpdateProfile Op = "update_profile"
)

// Outcome is what an operation changed about the auth state. The
// presentation layer decides where to go from it.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSignedIn
	OutcomeSignedOut
	// OutcomeVerified means a one-time code was accepted. The provider
	// has signed the user in, but the sign-up flow is not finished.
	OutcomeVerified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSignedIn:
		return "signed_in"
	case OutcomeSignedOut:
		return "signed_out"
	case OutcomeVerified:
		return "verified"
	default:
		return "none"
	}
}

// Result is returned by every facade operation instead of panicking or
// navigating.
type Result struct {
	Op      Op
	Outcome Outcome
	Session *models.Session
	Err     error
}

func (r Result) OK() bool { return r.Err == nil }

// Observer is told about every finished operation, successful or not.
type Observer interface {
	Observe(Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) Observe(r Result) { f(r) }
