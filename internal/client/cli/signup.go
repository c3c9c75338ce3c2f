package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/campushub/internal/client/onboarding"
	"github.com/dmitrijs2005/campushub/internal/client/services"
	"github.com/dmitrijs2005/campushub/internal/common"
)

// Wizard steps.
const (
	stepSchool = onboarding.FirstStep + iota
	stepCredentials
	stepVerify
	stepProfile
)

var errPasswordMismatch = errors.New("passwords do not match")

// SignUp runs the onboarding wizard from the first step. Answers given in
// an earlier, unfinished run are offered as defaults. A user who is
// already signed in with a draft pending goes straight to the profile.
func (a *App) SignUp(ctx context.Context) error {
	a.wizard.Mount()

	if a.isLoggedIn() {
		if onboarding.Get(a.wizard.SignUpData().Email) == "" {
			a.say("Already signed in. Log out to create another account.")
			return nil
		}
		a.wizard.SetCurrentStep(stepProfile)
	}
	return a.runWizard(ctx)
}

// Verify resumes the wizard at the code confirmation step.
func (a *App) Verify(ctx context.Context) error {
	if a.isLoggedIn() {
		a.say("Already signed in.")
		return nil
	}
	a.wizard.SetCurrentStep(stepVerify)
	return a.runWizard(ctx)
}

func (a *App) runWizard(ctx context.Context) error {
	for {
		var err error
		switch a.wizard.CurrentStep() {
		case stepSchool:
			err = a.schoolStep()
		case stepCredentials:
			err = a.credentialsStep(ctx)
		case stepVerify:
			err = a.verifyStep(ctx)
		case stepProfile:
			if err = a.profileStep(ctx); err == nil {
				a.wizard.Discard()
				a.history.Replace(a.config.AuthPath)
				a.say("Welcome aboard!")
				return nil
			}
		default:
			a.wizard.Mount()
		}
		if err != nil {
			a.say("Sign-up stopped:", describe(err))
			return err
		}
	}
}

func (a *App) schoolStep() error {
	school, err := a.ask("Which school do you attend?", a.wizard.SignUpData().School)
	if err != nil {
		return err
	}
	if school == "" {
		return fmt.Errorf("%w: school is required", common.ErrInvalidInput)
	}

	a.wizard.UpdateSignUpData(onboarding.Patch{School: onboarding.Set(school)})
	a.wizard.SetCurrentStep(stepCredentials)
	return nil
}

func (a *App) credentialsStep(ctx context.Context) error {
	email, err := a.ask("Enter your school email", a.wizard.SignUpData().Email)
	if err != nil {
		return err
	}
	a.wizard.UpdateSignUpData(onboarding.Patch{Email: onboarding.Set(email)})

	password, err := getPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	a.wizard.UpdateSignUpData(onboarding.Patch{Password: onboarding.Set(string(password))})
	draft := a.wizard.SignUpData()
	res := a.auth.SignUp(ctx, onboarding.Get(draft.Email), onboarding.Get(draft.Password))

	// The password is only needed for this one call.
	a.wizard.UpdateSignUpData(onboarding.Patch{Password: onboarding.Clear()})
	if !res.OK() {
		return res.Err
	}

	a.say("We sent a 6-digit code to", email)
	a.wizard.SetCurrentStep(stepVerify)
	return nil
}

func (a *App) verifyStep(ctx context.Context) error {
	email := onboarding.Get(a.wizard.SignUpData().Email)
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter your school email", a.out); err != nil {
			return err
		}
		a.wizard.UpdateSignUpData(onboarding.Patch{Email: onboarding.Set(email)})
	}

	code, err := getSimpleText(a.reader, "Enter the code from your email", a.out)
	if err != nil {
		return err
	}

	res := a.auth.VerifyOTP(ctx, email, code)
	if !res.OK() {
		return res.Err
	}

	a.awaitUser(ctx, res.Session.User.ID)
	a.say("Email confirmed")
	a.wizard.SetCurrentStep(stepProfile)
	return nil
}

func (a *App) profileStep(ctx context.Context) error {
	draft := a.wizard.SignUpData()

	username, err := a.ask("Pick a username", draft.Username)
	if err != nil {
		return err
	}
	fullName, err := a.ask("Your full name", draft.FullName)
	if err != nil {
		return err
	}

	a.wizard.UpdateSignUpData(onboarding.Patch{
		Username: optional(username),
		FullName: optional(fullName),
	})
	draft = a.wizard.SignUpData()

	res := a.auth.UpdateProfile(ctx, services.ProfileFields{
		Username:  draft.Username,
		FullName:  draft.FullName,
		AvatarURL: draft.AvatarURL,
	})
	return res.Err
}

// ask prompts for a value and falls back to current on empty input.
func (a *App) ask(prompt string, current *string) (string, error) {
	if current != nil {
		prompt = fmt.Sprintf("%s [%s]", prompt, *current)
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return onboarding.Get(current), nil
	}
	return v, nil
}

// optional leaves the draft untouched for empty input.
func optional(v string) onboarding.Field {
	if v == "" {
		return onboarding.Field{}
	}
	return onboarding.Set(v)
}
