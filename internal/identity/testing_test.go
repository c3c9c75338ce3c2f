package identity

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeSender records the last code sent per email.
type fakeSender struct {
	mu    sync.Mutex
	codes map[string]string
	calls int
	err   error
}

func (f *fakeSender) Send(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.calls++
	f.codes[email] = code
	return f.err
}

func (f *fakeSender) Code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestAuthority(t *testing.T) (*Authority, *fakeSender, *fakeClock) {
	t.Helper()
	sender := &fakeSender{}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	a := NewAuthority(setupDB(t), Config{
		SecretKey:  []byte("test-secret"),
		SessionTTL: time.Hour,
		OTPTTL:     10 * time.Minute,
	}, logging.Nop(), WithSender(sender), WithClock(clock.Now))
	return a, sender, clock
}
