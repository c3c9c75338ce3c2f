package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/campushub/internal/client/onboarding"
	"github.com/dmitrijs2005/campushub/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. A successful sign-in moves
// the user to the authenticated screen.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.auth.SignIn(ctx, email, string(password))
	if !res.OK() {
		a.say("Login unsuccessful:", describe(res.Err))
		return res.Err
	}

	a.awaitUser(ctx, res.Session.User.ID)
	a.say("Signed in as", res.Session.User.Email)
	return nil
}

// Logout signs out. Local state is cleared even when the provider call
// fails, so the user always ends up signed out.
func (a *App) Logout(ctx context.Context) error {
	res := a.auth.SignOut(ctx)
	a.awaitUser(ctx, "")
	if !res.OK() {
		a.say("Signed out locally, but the provider reported:", describe(res.Err))
		return res.Err
	}
	a.say("Signed out")
	return nil
}

// Status prints the session, the current screen and any unfinished sign-up.
func (a *App) Status(ctx context.Context) error {
	st := a.tracker.State()
	switch {
	case st.Loading:
		a.say("Session: loading")
	case st.Session == nil:
		a.say("Session: signed out")
	default:
		a.say(fmt.Sprintf("Session: %s (expires %s)", st.User.Email, st.Session.ExpiresAt.Local().Format(time.DateTime)))
	}
	a.say("Screen:", a.history.Current())

	if email := onboarding.Get(a.wizard.SignUpData().Email); email != "" {
		a.say(fmt.Sprintf("Sign-up in progress for %s at step %d", email, a.wizard.CurrentStep()))
	}
	return nil
}

// describe turns provider errors into something a user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "wrong email or password"
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return "email not confirmed yet, run 'verify'"
	case errors.Is(err, common.ErrEmailTaken):
		return "this email is already registered, try 'login'"
	case errors.Is(err, common.ErrInvalidOTP):
		return "the code is not correct"
	case errors.Is(err, common.ErrOTPExpired):
		return "the code has expired, run 'signup' again for a new one"
	case errors.Is(err, common.ErrUsernameTaken):
		return "this username is taken"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "log in first"
	case errors.Is(err, common.ErrUnavailable):
		return "the server is unavailable, try again later"
	default:
		return err.Error()
	}
}
