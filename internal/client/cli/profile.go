package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/campushub/internal/client/onboarding"
	"github.com/dmitrijs2005/campushub/internal/client/services"
	"github.com/dmitrijs2005/campushub/internal/common"
)

// Profile prints the profile of the signed-in user.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.auth.Profile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.say("No profile yet. Run 'profile edit' to create one.")
			return nil
		}
		a.say("Could not load profile:", describe(err))
		return err
	}

	a.say("Username:  ", orDash(p.Username))
	a.say("Full name: ", orDash(p.FullName))
	a.say("Avatar:    ", orDash(p.AvatarURL))
	return nil
}

// EditProfile prompts for new values. Empty answers keep the stored ones.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say("Log in first")
		return common.ErrNotAuthenticated
	}

	username, err := getSimpleText(a.reader, "New username (empty to keep)", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "New full name (empty to keep)", a.out)
	if err != nil {
		return err
	}

	fields := services.ProfileFields{
		Username: optional(username).Value(),
		FullName: optional(fullName).Value(),
	}
	if fields.Username == nil && fields.FullName == nil {
		a.say("Nothing to change")
		return nil
	}
	return a.updateProfile(ctx, fields)
}

// Avatar uploads the image at path and stores its URL in the profile.
func (a *App) Avatar(ctx context.Context, path string) error {
	u := a.tracker.User()
	if u == nil {
		a.say("Log in first")
		return common.ErrNotAuthenticated
	}
	if a.avatars == nil {
		a.say("Avatar uploads are not configured")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		a.say("Could not read file:", err)
		return err
	}

	url, err := a.avatars.Upload(ctx, u.ID, data)
	if err != nil {
		a.say("Upload failed:", describe(err))
		return err
	}
	return a.updateProfile(ctx, services.ProfileFields{AvatarURL: &url})
}

func (a *App) updateProfile(ctx context.Context, fields services.ProfileFields) error {
	res := a.auth.UpdateProfile(ctx, fields)
	if !res.OK() {
		a.say("Profile not saved:", describe(res.Err))
		return res.Err
	}
	a.say("Profile saved")
	return nil
}

func orDash(s *string) string {
	if v := onboarding.Get(s); v != "" {
		return v
	}
	return "-"
}
