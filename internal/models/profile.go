package models

import "time"

// Profile is a row of the backend-owned profile store.
type Profile struct {
	ID        string
	Username  *string
	FullName  *string
	AvatarURL *string
	UpdatedAt time.Time
}

// ProfileUpdate is an upsert keyed by ID. Nil fields are left untouched on
// an existing row and stored as NULL on a new one.
type ProfileUpdate struct {
	ID        string
	Username  *string
	FullName  *string
	AvatarURL *string
	UpdatedAt time.Time
}

// Apply merges u over p and returns the result. p may be nil.
func (u ProfileUpdate) Apply(p *Profile) Profile {
	out := Profile{ID: u.ID, UpdatedAt: u.UpdatedAt}
	if p != nil {
		out.Username, out.FullName, out.AvatarURL = p.Username, p.FullName, p.AvatarURL
	}
	if u.Username != nil {
		out.Username = u.Username
	}
	if u.FullName != nil {
		out.FullName = u.FullName
	}
	if u.AvatarURL != nil {
		out.AvatarURL = u.AvatarURL
	}
	return out
}
