package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
}

func TestProfileUpdate_Apply(t *testing.T) {
	now := time.Now().UTC()
	existing := &Profile{ID: "u1", Username: strp("old"), FullName: strp("Old Name")}

	got := ProfileUpdate{ID: "u1", Username: strp("new"), UpdatedAt: now}.Apply(existing)
	assert.Equal(t, "new", *got.Username)
	assert.Equal(t, "Old Name", *got.FullName)
	assert.Nil(t, got.AvatarURL)
	assert.Equal(t, now, got.UpdatedAt)

	fresh := ProfileUpdate{ID: "u2", AvatarURL: strp("https://cdn/a.png")}.Apply(nil)
	assert.Equal(t, "u2", fresh.ID)
	assert.Nil(t, fresh.Username)
	assert.Equal(t, "https://cdn/a.png", *fresh.AvatarURL)
}
