package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/campushub/internal/client/avatars"
	"github.com/dmitrijs2005/campushub/internal/client/config"
	"github.com/dmitrijs2005/campushub/internal/client/navigation"
	"github.com/dmitrijs2005/campushub/internal/client/onboarding"
	"github.com/dmitrijs2005/campushub/internal/client/provider"
	"github.com/dmitrijs2005/campushub/internal/client/provider/remote"
	"github.com/dmitrijs2005/campushub/internal/client/repositories"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/campushub/internal/client/services"
	"github.com/dmitrijs2005/campushub/internal/client/session"
	"github.com/dmitrijs2005/campushub/internal/filex"
	"github.com/dmitrijs2005/campushub/internal/identity"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/redis/go-redis/v9"
)

type avatarUploader interface {
	Upload(ctx context.Context, userID string, data []byte) (string, error)
}

// App is the terminal front end. It owns the session tracker, the
// onboarding wizard and the screen history for its whole lifetime.
type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	tracker *session.Tracker
	wizard  *onboarding.Wizard
	history *navigation.History
	auth    services.AuthService
	avatars avatarUploader

	closers []func() error
}

// NewApp opens local storage and the identity provider chosen by c and
// assembles the App on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	fail := func(err error) (*App, error) {
		return nil, errors.Join(err, closeAll(closers))
	}

	repos, err := repositories.InitDatabase(ctx, filex.SQLiteDSN(dir, "client.db"))
	if err != nil {
		return nil, err
	}
	closers = append(closers, repos.Close)

	backend, closeBackend, err := openBackend(ctx, c, dir, logger, os.Stdout)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeBackend)

	repo, closeProfiles, err := openProfiles(ctx, c, repos)
	if err != nil {
		return fail(err)
	}
	if closeProfiles != nil {
		closers = append(closers, closeProfiles)
	}

	var uploader avatarUploader
	if c.S3.Bucket != "" && c.S3.AccessKey != "" {
		s3cfg := avatars.Config(c.S3)
		presigner, err := avatars.NewPresigner(ctx, s3cfg)
		if err != nil {
			return fail(err)
		}
		uploader = avatars.NewUploader(presigner, &http.Client{Timeout: c.RequestTimeout}, s3cfg)
	}

	client := provider.NewClient(backend, logger,
		provider.WithSessionStore(provider.NewKVSessionStore(repos.Metadata)))

	a := newApp(c, logger, client, repo, uploader, os.Stdin, os.Stdout)
	a.closers = closers
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, p provider.Provider, repo profiles.Repository,
	uploader avatarUploader, in io.Reader, out io.Writer) *App {

	tracker := session.NewTracker(p, logger)
	history := navigation.NewHistory(c.EntryPath)
	router := navigation.NewRouter(history, c.EntryPath, c.AuthPath)

	return &App{
		config:  c,
		logger:  logger.With("module", "cli"),
		reader:  bufio.NewReader(in),
		out:     out,
		tracker: tracker,
		wizard:  onboarding.NewWizard(),
		history: history,
		auth:    services.NewAuthService(p, repo, tracker, logger, services.WithObserver(router)),
		avatars: uploader,
	}
}

// openBackend returns the identity backend for c.Mode. Local mode runs the
// authority in-process and prints one-time codes to out.
func openBackend(ctx context.Context, c *config.Config, dir string, logger logging.Logger, out io.Writer) (provider.Backend, func() error, error) {
	switch c.Mode {
	case config.ModeRemote:
		b, err := remote.Dial(c.ServerAddr, c.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		db, err := identity.Open(ctx, filex.SQLiteDSN(dir, "identity.db"))
		if err != nil {
			return nil, nil, err
		}
		auth := identity.NewAuthority(db, identity.Config{
			SecretKey:  []byte(c.SecretKey),
			SessionTTL: c.SessionTTL,
			OTPTTL:     c.OTPTTL,
		}, logger, identity.WithSender(&terminalSender{out: out}))
		return auth, db.Close, nil
	}
}

// openProfiles returns the profile store named by c.ProfileStore. The
// closer is nil when the store lives in the client database.
func openProfiles(ctx context.Context, c *config.Config, repos *repositories.Repositories) (profiles.Repository, func() error, error) {
	switch c.ProfileStore {
	case profiles.KindPostgres:
		db, err := profiles.OpenPostgres(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return profiles.NewPostgresRepository(db), db.Close, nil

	case profiles.KindRedis:
		rc := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("redis ping error: %w", err), rc.Close())
		}
		return profiles.NewRedisRepository(rc, c.RedisPrefix), rc.Close, nil

	default:
		return repos.Profiles, nil, nil
	}
}

// terminalSender shows one-time codes on the terminal, standing in for the
// mail relay when the authority runs in-process.
type terminalSender struct {
	out io.Writer
}

func (s *terminalSender) Send(_ context.Context, email, code string) error {
	_, err := fmt.Fprintf(s.out, "[mail to %s] Your CampusHub code is %s\n", email, code)
	return err
}

// Run starts session tracking, waits for the first session value and
// serves the REPL until the user exits. It closes the App on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	a.tracker.Start(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	err := a.tracker.Wait(waitCtx)
	cancel()
	if err != nil {
		a.logger.Warn(ctx, "session still loading", "error", err)
	}

	a.say("Welcome to CampusHub (type 'help' for commands)")
	if u := a.tracker.User(); u != nil {
		a.history.Replace(a.config.AuthPath)
		a.say("Signed in as", u.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Close stops session tracking and releases storage and connections in
// reverse order of acquisition.
func (a *App) Close() error {
	a.tracker.Close()
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.tracker.User() != nil
}

func (a *App) getStatus() string {
	st := a.tracker.State()
	who := "guest"
	switch {
	case st.Loading:
		who = "loading"
	case st.User != nil:
		who = st.User.Email
	}
	return fmt.Sprintf("(%s %s)", who, a.history.Current())
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// awaitUser waits until the tracker reports userID as signed in, or
// signed out when userID is empty. Auth events reach the tracker
// asynchronously, so commands that change the session call this before
// reading it back.
func (a *App) awaitUser(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	_, err := a.tracker.Await(ctx, func(st session.State) bool {
		if userID == "" {
			return st.User == nil
		}
		return st.User != nil && st.User.ID == userID
	})
	if err != nil {
		a.logger.Warn(ctx, "session change not observed", "user_id", userID, "error", err)
	}
}
