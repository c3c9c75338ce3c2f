// Package session tracks the authenticated session of the running client.
//
// A Tracker learns about the session from two concurrent sources: the
// provider's auth state subscription and an initial GetSession fetch.
// Whichever lands last wins. The loading flag drops to false on the first
// write and never goes back.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/campushub/internal/client/provider"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
)

// State is a consistent snapshot of the tracker. User is non-nil exactly
// when Session is non-nil.
type State struct {
	Session *models.Session
	User    *models.User
	Loading bool
}

type Tracker struct {
	provider provider.Provider
	logger   logging.Logger

	mu      sync.RWMutex
	session *models.Session
	loading bool

	loaded     chan struct{}
	loadedOnce sync.Once
	changed    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	sub       provider.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewTracker(p provider.Provider, logger logging.Logger) *Tracker {
	return &Tracker{
		provider: p,
		logger:   logger.With("module", "session"),
		loading:  true,
		loaded:   make(chan struct{}),
		changed:  make(chan struct{}),
	}
}

// Start subscribes to auth changes and fetches the current session in the
// background. Calls after the first are no-ops.
func (t *Tracker) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)

		// The provider may call the listener before OnAuthStateChange
		// returns, so t.mu must not be held here.
		sub := t.provider.OnAuthStateChange(func(ev provider.AuthEvent) {
			t.logger.Debug(ctx, "auth state changed", "event", ev.Type)
			t.set(ev.Session)
		})

		t.mu.Lock()
		t.cancel = cancel
		t.sub = sub
		t.mu.Unlock()

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			s, err := t.provider.GetSession(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.logger.Warn(ctx, "initial session fetch failed", "error", err)
				s = nil
			}
			t.set(s)
		}()
	})
}

// Close releases the subscription and waits for the initial fetch. Safe
// to call more than once, and before Start.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		sub, cancel := t.sub, t.cancel
		t.mu.Unlock()

		if sub != nil {
			sub.Unsubscribe()
		}
		if cancel != nil {
			cancel()
		}
		t.wg.Wait()
	})
}

func (t *Tracker) set(s *models.Session) {
	t.mu.Lock()
	t.session = s
	t.loading = false
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()

	t.loadedOnce.Do(func() { close(t.loaded) })
}

// Loaded is closed once the first session value has arrived.
func (t *Tracker) Loaded() <-chan struct{} {
	return t.loaded
}

// Wait blocks until the tracker has loaded or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	select {
	case <-t.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await blocks until cond holds for the current state or ctx is done. It
// returns the state cond was last checked against.
func (t *Tracker) Await(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		t.mu.RLock()
		st, ch := t.snapshot(), t.changed
		t.mu.RUnlock()

		if cond(st) {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() State {
	st := State{Loading: t.loading}
	if t.session != nil {
		s := *t.session
		u := s.User
		st.Session = &s
		st.User = &u
	}
	return st
}

func (t *Tracker) Session() *models.Session {
	return t.State().Session
}

// User returns the signed-in user or nil.
func (t *Tracker) User() *models.User {
	return t.State().User
}

func (t *Tracker) Loading() bool {
	return t.State().Loading
}
