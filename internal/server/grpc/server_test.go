package grpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
)

// fakeIdentity records calls and returns canned results.
type fakeIdentity struct {
	mu sync.Mutex

	SignUpErr  error
	Session    *models.Session
	SessionErr error
	SignOutErr error
	User       *models.User
	UserErr    error

	LastEmail, LastPassword, LastCode, LastType, LastToken string
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastPassword = email, password
	return f.SignUpErr
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastPassword = email, password
	return f.Session, f.SessionErr
}

func (f *fakeIdentity) VerifyOTP(_ context.Context, email, code, otpType string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastCode, f.LastType = email, code, otpType
	return f.Session, f.SessionErr
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastToken = token
	return f.SignOutErr
}

func (f *fakeIdentity) GetUser(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastToken = token
	return f.User, f.UserErr
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeIdentity{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeIdentity{})

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
