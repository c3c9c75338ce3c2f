// Package services contains the application services of the CampusHub
// client. This file defines the auth operations facade: sign-up, sign-in,
// sign-out, one-time code verification and profile updates.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campushub/internal/client/provider"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/go-playground/validator/v10"
)

// AuthService is the facade the presentation layer calls.
//
// Contract:
//   - Operations never panic; collaborator panics come back as
//     common.ErrProviderPanic in Result.Err.
//   - Provider errors are wrapped, never replaced.
//   - SignOut always reports OutcomeSignedOut.
//   - Registered observers see every Result after the operation ends.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) Result
	SignIn(ctx context.Context, email, password string) Result
	SignOut(ctx context.Context) Result
	VerifyOTP(ctx context.Context, email, code string) Result
	UpdateProfile(ctx context.Context, fields ProfileFields) Result
	Profile(ctx context.Context) (*models.Profile, error)
}

// UserSource reports who is signed in. *session.Tracker implements it.
type UserSource interface {
	User() *models.User
}

// ProfileFields are the editable profile columns. Nil leaves a column as
// it is.
type ProfileFields struct {
	Username  *string `validate:"omitnil,min=2,max=32"`
	FullName  *string `validate:"omitnil,min=1,max=100"`
	AvatarURL *string `validate:"omitnil,url"`
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type otpInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,numeric"`
}

type authService struct {
	provider  provider.Provider
	profiles  profiles.Repository
	users     UserSource
	logger    logging.Logger
	validate  *validator.Validate
	now       func() time.Time
	observers []Observer
}

type Option func(*authService)

// WithObserver registers o. Observers run in registration order on the
// caller's goroutine.
func WithObserver(o Observer) Option {
	return func(s *authService) { s.observers = append(s.observers, o) }
}

func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

// NewAuthService constructs an AuthService bound to the given provider,
// profile store and current-user source.
func NewAuthService(p provider.Provider, repo profiles.Repository, users UserSource, logger logging.Logger, opts ...Option) AuthService {
	s := &authService{
		provider: p,
		profiles: repo,
		users:    users,
		logger:   logger.With("module", "auth"),
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) SignUp(ctx context.Context, email, password string) Result {
	return s.run(ctx, OpSignUp, OutcomeNone, func() Result {
		if err := s.check(credentials{Email: email, Password: password}); err != nil {
			return Result{Err: err}
		}
		if err := s.provider.SignUp(ctx, email, password); err != nil {
			return Result{Err: fmt.Errorf("sign up error: %w", err)}
		}
		return Result{}
	})
}

func (s *authService) SignIn(ctx context.Context, email, password string) Result {
	return s.run(ctx, OpSignIn, OutcomeNone, func() Result {
		if err := s.check(credentials{Email: email, Password: password}); err != nil {
			return Result{Err: err}
		}
		sess, err := s.provider.SignInWithPassword(ctx, email, password)
		if err != nil {
			return Result{Err: fmt.Errorf("sign in error: %w", err)}
		}
		return Result{Outcome: OutcomeSignedIn, Session: sess}
	})
}

// SignOut reports OutcomeSignedOut even when the provider fails.
func (s *authService) SignOut(ctx context.Context) Result {
	return s.run(ctx, OpSignOut, OutcomeSignedOut, func() Result {
		if err := s.provider.SignOut(ctx); err != nil {
			return Result{Outcome: OutcomeSignedOut, Err: fmt.Errorf("sign out error: %w", err)}
		}
		return Result{Outcome: OutcomeSignedOut}
	})
}

// VerifyOTP checks an email confirmation code. Only email codes exist.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) Result {
	return s.run(ctx, OpVerifyOTP, OutcomeNone, func() Result {
		if err := s.check(otpInput{Email: email, Code: code}); err != nil {
			return Result{Err: err}
		}
		sess, err := s.provider.VerifyOTP(ctx, email, code, provider.OTPTypeEmail)
		if err != nil {
			return Result{Err: fmt.Errorf("verify otp error: %w", err)}
		}
		return Result{Outcome: OutcomeVerified, Session: sess}
	})
}

// UpdateProfile upserts fields into the profile of the signed-in user.
// A failed write is not retried or rolled back.
func (s *authService) UpdateProfile(ctx context.Context, fields ProfileFields) Result {
	return s.run(ctx, OpUpdateProfile, OutcomeNone, func() Result {
		u := s.users.User()
		if u == nil {
			return Result{Err: common.ErrNotAuthenticated}
		}
		if err := s.check(fields); err != nil {
			return Result{Err: err}
		}

		upd := models.ProfileUpdate{
			ID:        u.ID,
			Username:  fields.Username,
			FullName:  fields.FullName,
			AvatarURL: fields.AvatarURL,
			UpdatedAt: s.now().UTC(),
		}
		if err := s.profiles.Upsert(ctx, upd); err != nil {
			return Result{Err: fmt.Errorf("update profile error: %w", err)}
		}
		return Result{}
	})
}

// Profile returns the stored profile of the signed-in user.
func (s *authService) Profile(ctx context.Context) (*models.Profile, error) {
	u := s.users.User()
	if u == nil {
		return nil, common.ErrNotAuthenticated
	}
	return s.profiles.Get(ctx, u.ID)
}

// run executes fn, turning a panic into ErrProviderPanic with the given
// fallback outcome, logs the result and hands it to the observers.
func (s *authService) run(ctx context.Context, op Op, fallback Outcome, fn func() Result) Result {
	res := func() (res Result) {
		defer func() {
			if p := recover(); p != nil {
				res = Result{Outcome: fallback, Err: fmt.Errorf("%w: %v", common.ErrProviderPanic, p)}
			}
		}()
		return fn()
	}()
	res.Op = op

	if res.Err != nil {
		s.logger.Warn(ctx, "auth operation failed", "op", op, "error", res.Err)
	} else {
		s.logger.Info(ctx, "auth operation done", "op", op, "outcome", res.Outcome.String())
	}

	for _, o := range s.observers {
		s.notify(ctx, o, res)
	}
	return res
}

// notify hands res to o. A panicking observer is logged and skipped.
func (s *authService) notify(ctx context.Context, o Observer, res Result) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "auth observer panicked", "op", res.Op, "panic", p)
		}
	}()
	o.Observe(res)
}

// check validates v and reports failures as common.ErrInvalidInput.
func (s *authService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(msgs, ", "))
}
