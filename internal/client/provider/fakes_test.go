package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	SignUpErr  error
	SignInResp *models.Session
	SignInErr  error
	VerifyResp *models.Session
	VerifyErr  error
	SignOutErr error
	User       *models.User
	GetUserErr error

	LastEmail, LastPassword, LastCode, LastOTPType string
	LastSignOutToken                               string
	GetUserCalls                                   int
}

func (f *fakeBackend) SignUp(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastPassword = email, password
	return f.SignUpErr
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastPassword = email, password
	return f.SignInResp, f.SignInErr
}

func (f *fakeBackend) VerifyOTP(_ context.Context, email, code, otpType string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastCode, f.LastOTPType = email, code, otpType
	return f.VerifyResp, f.VerifyErr
}

func (f *fakeBackend) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastSignOutToken = token
	return f.SignOutErr
}

func (f *fakeBackend) GetUser(_ context.Context, _ string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetUserCalls++
	return f.User, f.GetUserErr
}

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

var testNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func testSession(token string) *models.Session {
	return &models.Session{
		AccessToken: token,
		TokenType:   models.TokenTypeBearer,
		ExpiresAt:   testNow.Add(time.Hour),
		User:        models.User{ID: "u-1", Email: "ana@campus.edu"},
	}
}

// recorder collects events delivered to a listener.
type recorder struct {
	ch chan AuthEvent
}

func newRecorder() *recorder { return &recorder{ch: make(chan AuthEvent, 16)} }

func (r *recorder) listen(ev AuthEvent) { r.ch <- ev }

func (r *recorder) next(t *testing.T) AuthEvent {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no auth event delivered")
		return AuthEvent{}
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.ch:
		require.FailNow(t, "unexpected auth event", "%v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
