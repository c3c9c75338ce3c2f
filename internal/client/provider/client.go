package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
)

// Client implements Provider over a Backend. It is safe for concurrent use.
type Client struct {
	backend Backend
	store   SessionStore
	logger  logging.Logger
	now     func() time.Time
	hub     *hub

	// loadMu serializes the one-time restore of the persisted session.
	loadMu sync.Mutex
	// pubMu keeps state changes and their events in the same order.
	pubMu sync.Mutex

	mu      sync.Mutex
	session *models.Session
	loaded  bool
}

var _ Provider = (*Client)(nil)

type ClientOption func(*Client)

// WithSessionStore makes the client restore and persist its session.
func WithSessionStore(s SessionStore) ClientOption {
	return func(c *Client) { c.store = s }
}

func WithClientClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func NewClient(backend Backend, logger logging.Logger, opts ...ClientOption) *Client {
	l := logger.With("module", "provider")
	c := &Client{
		backend: backend,
		logger:  l,
		now:     time.Now,
		hub:     newHub(l),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.backend.SignUp(ctx, email, password)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setSession(ctx, s, EventSignedIn)
	return cloneSession(s), nil
}

// VerifyOTP confirms a one-time code. On success the user is signed in.
func (c *Client) VerifyOTP(ctx context.Context, email, code string, otpType OTPType) (*models.Session, error) {
	s, err := c.backend.VerifyOTP(ctx, email, code, string(otpType))
	if err != nil {
		return nil, err
	}
	c.setSession(ctx, s, EventSignedIn)
	return cloneSession(s), nil
}

// SignOut revokes the current session on the backend. Local state is
// cleared and SIGNED_OUT is published even when revocation fails; the
// backend error is still returned.
func (c *Client) SignOut(ctx context.Context) error {
	c.ensureLoaded(ctx)

	var err error
	if cur := c.current(); cur != nil {
		err = c.backend.SignOut(ctx, cur.AccessToken)
		if err != nil {
			c.logger.Warn(ctx, "session revocation failed", "error", err)
		}
	}
	c.setSession(ctx, nil, EventSignedOut)
	return err
}

// GetSession returns the current session or nil. The first call restores
// the persisted session and validates it against the backend. An expired
// session is dropped and SIGNED_OUT is published.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.ensureLoaded(ctx)

	cur := c.current()
	if cur != nil && cur.Expired(c.now()) {
		c.logger.Info(ctx, "session expired", "user_id", cur.User.ID)
		c.setSession(ctx, nil, EventSignedOut)
		return nil, nil
	}
	return cloneSession(cur), nil
}

// OnAuthStateChange registers listener. The listener first receives
// INITIAL_SESSION, then every later change, in order.
func (c *Client) OnAuthStateChange(listener Listener) Subscription {
	return c.hub.add(listener, func() AuthEvent {
		c.ensureLoaded(context.Background())
		return AuthEvent{Type: EventInitialSession, Session: cloneSession(c.current())}
	})
}

func (c *Client) current() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(ctx context.Context, s *models.Session, event EventType) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	c.session = cloneSession(s)
	c.loaded = true
	c.mu.Unlock()

	c.persist(ctx, s)
	c.hub.publish(AuthEvent{Type: event, Session: cloneSession(s)})
}

func (c *Client) persist(ctx context.Context, s *models.Session) {
	if c.store == nil {
		return
	}
	var err error
	if s == nil {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Save(ctx, s)
	}
	if err != nil {
		c.logger.Error(ctx, "failed to persist session", "error", err)
	}
}

func (c *Client) ensureLoaded(ctx context.Context) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	done := c.loaded
	c.mu.Unlock()
	if done {
		return
	}

	s := c.restore(ctx)

	c.mu.Lock()
	if !c.loaded {
		c.session = s
		c.loaded = true
	}
	c.mu.Unlock()
}

// restore reads the persisted session. Only a session the backend rejects
// is discarded; any other failure to check it keeps the cached copy.
func (c *Client) restore(ctx context.Context) *models.Session {
	if c.store == nil {
		return nil
	}

	s, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to load persisted session", "error", err)
		return nil
	}
	if s == nil {
		return nil
	}
	if s.Expired(c.now()) {
		c.discard(ctx)
		return nil
	}

	u, err := c.backend.GetUser(ctx, s.AccessToken)
	switch {
	case err == nil:
		s.User = *u
		return s
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrNotAuthenticated):
		c.logger.Info(ctx, "persisted session rejected", "error", err)
		c.discard(ctx)
		return nil
	default:
		c.logger.Warn(ctx, "persisted session not checked, using cached session", "user_id", s.User.ID, "error", err)
		return s
	}
}

func (c *Client) discard(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error(ctx, "failed to clear persisted session", "error", err)
	}
}

func cloneSession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
