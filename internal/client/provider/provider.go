// Package provider is the client side of the identity provider: it issues
// auth calls to a Backend, keeps the current session, persists it, and
// notifies subscribers about auth state changes.
//
// The Client type implements Provider on top of any Backend. Two backends
// exist: *identity.Authority in-process (local mode) and remote.Backend over
// gRPC.
package provider

import (
	"context"

	"github.com/dmitrijs2005/campushub/internal/models"
)

// OTPType selects the kind of one-time code being verified.
type OTPType string

const OTPTypeEmail OTPType = "email"

// EventType names an auth state change.
type EventType string

const (
	// EventInitialSession is delivered once to every new subscriber with
	// the session known at that moment (possibly nil).
	EventInitialSession EventType = "INITIAL_SESSION"
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
)

// AuthEvent is one notification. Session is nil when nobody is signed in.
type AuthEvent struct {
	Type    EventType
	Session *models.Session
}

// Listener receives auth events on a goroutine owned by the subscription.
// Events for one subscription are delivered in order.
type Listener func(AuthEvent)

// Subscription is released with Unsubscribe. Calling it more than once is a
// no-op.
type Subscription interface {
	Unsubscribe()
}

// Provider is the narrow identity provider surface the session manager
// consumes.
type Provider interface {
	SignUp(ctx context.Context, email, password string) error
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	VerifyOTP(ctx context.Context, email, code string, otpType OTPType) (*models.Session, error)
	OnAuthStateChange(listener Listener) Subscription
	GetSession(ctx context.Context) (*models.Session, error)
}

// Backend is the stateless authority the Client talks to.
type Backend interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	VerifyOTP(ctx context.Context, email, code, otpType string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
}

// SessionStore persists the current session between runs.
type SessionStore interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
