package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/campushub/internal/client/config"
	"github.com/dmitrijs2005/campushub/internal/client/onboarding"
	"github.com/dmitrijs2005/campushub/internal/client/provider"
	"github.com/dmitrijs2005/campushub/internal/client/repositories"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/identity"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeBox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *codeBox) Send(_ context.Context, email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = code
	return nil
}

func (c *codeBox) get(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

// script feeds canned answers to the input seams. Answers are functions so
// a test can reply with a one-time code that only exists mid-flow.
type script struct {
	answers   []func() string
	passwords []string
	prompts   []string
}

func (s *script) text(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next(), nil
}

func (s *script) password(prompt string, _ io.Writer) ([]byte, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.passwords) == 0 {
		return nil, io.EOF
	}
	next := s.passwords[0]
	s.passwords = s.passwords[1:]
	return []byte(next), nil
}

func (s *script) say(answers ...any) {
	for _, a := range answers {
		switch v := a.(type) {
		case string:
			s.answers = append(s.answers, func() string { return v })
		case func() string:
			s.answers = append(s.answers, v)
		}
	}
}

type fakeUploader struct {
	LastUserID string
	LastData   []byte
	URL        string
	Err        error
}

func (f *fakeUploader) Upload(_ context.Context, userID string, data []byte) (string, error) {
	f.LastUserID, f.LastData = userID, data
	return f.URL, f.Err
}

type testEnv struct {
	app       *App
	authority *identity.Authority
	repos     *repositories.Repositories
	box       *codeBox
	script    *script
	out       *bytes.Buffer
}

func newTestEnv(t *testing.T, in string) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := identity.Open(ctx, ":memory:")
	require.NoError(t, err)

	box := &codeBox{codes: map[string]string{}}
	authority := identity.NewAuthority(db, identity.Config{
		SecretKey:  []byte("test-secret"),
		SessionTTL: time.Hour,
		OTPTTL:     10 * time.Minute,
	}, logging.Nop(), identity.WithSender(box))

	repos, err := repositories.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	client := provider.NewClient(authority, logging.Nop(),
		provider.WithSessionStore(provider.NewKVSessionStore(repos.Metadata)))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RequestTimeout = 2 * time.Second

	out := &bytes.Buffer{}
	app := newApp(cfg, logging.Nop(), client, repos.Profiles, nil, strings.NewReader(in), out)
	app.closers = []func() error{db.Close, repos.Close}
	t.Cleanup(func() { _ = app.Close() })

	s := &script{}
	origText, origPassword := getSimpleText, getPassword
	getSimpleText, getPassword = s.text, s.password
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPassword })

	return &testEnv{app: app, authority: authority, repos: repos, box: box, script: s, out: out}
}

func (e *testEnv) start(t *testing.T) {
	t.Helper()
	e.app.tracker.Start(context.Background())
	require.NoError(t, e.app.tracker.Wait(context.Background()))
}

// register creates a confirmed account straight on the authority.
func (e *testEnv) register(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.authority.SignUp(ctx, email, password))
	_, err := e.authority.VerifyOTP(ctx, email, e.box.get(email), identity.OTPTypeEmail)
	require.NoError(t, err)
}

func (e *testEnv) user(t *testing.T) *models.User {
	t.Helper()
	u := e.app.tracker.User()
	require.NotNil(t, u)
	return u
}

func otherCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestSignUpWizard_FullFlow(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	e.script.say("MIT", "ada@mit.edu", func() string { return e.box.get("ada@mit.edu") }, "ada", "Ada Lovelace")
	e.script.passwords = []string{"pw123456", "pw123456"}

	require.NoError(t, e.app.SignUp(ctx))

	u := e.user(t)
	assert.Equal(t, "ada@mit.edu", u.Email)
	assert.Equal(t, "/home", e.app.history.Current())
	assert.Equal(t, onboarding.Draft{}, e.app.wizard.SignUpData())
	assert.Equal(t, onboarding.FirstStep, e.app.wizard.CurrentStep())

	p, err := e.repos.Profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", *p.Username)
	assert.Equal(t, "Ada Lovelace", *p.FullName)
	assert.Nil(t, p.AvatarURL)

	assert.Contains(t, e.out.String(), "We sent a 6-digit code to ada@mit.edu")
	assert.Contains(t, e.out.String(), "Welcome aboard!")
}

func TestSignUpWizard_WrongCodeThenVerify(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	e.script.say("MIT", "ada@mit.edu", func() string { return otherCode(e.box.get("ada@mit.edu")) })
	e.script.passwords = []string{"pw123456", "pw123456"}

	err := e.app.SignUp(ctx)
	assert.ErrorIs(t, err, common.ErrInvalidOTP)
	assert.False(t, e.app.isLoggedIn())
	assert.Equal(t, stepVerify, e.app.wizard.CurrentStep())
	assert.Contains(t, e.out.String(), "the code is not correct")

	draft := e.app.wizard.SignUpData()
	assert.Equal(t, "ada@mit.edu", onboarding.Get(draft.Email))
	assert.Equal(t, "MIT", onboarding.Get(draft.School))
	assert.Nil(t, draft.Password)

	e.script.say(func() string { return e.box.get("ada@mit.edu") }, "", "")
	require.NoError(t, e.app.Verify(ctx))

	u := e.user(t)
	p, err := e.repos.Profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Username)
	assert.Equal(t, "/home", e.app.history.Current())
}

func TestSignUpWizard_MountKeepsDraft(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	e.script.say("MIT", "ada@mit.edu")
	e.script.passwords = []string{"pw123456", "different"}

	assert.ErrorIs(t, e.app.SignUp(ctx), errPasswordMismatch)
	assert.Equal(t, stepCredentials, e.app.wizard.CurrentStep())
	assert.Empty(t, e.box.get("ada@mit.edu"))

	e.script.prompts = nil
	e.script.say("", "")
	e.script.passwords = []string{"pw123456", "pw123456"}

	err := e.app.SignUp(ctx)
	assert.Error(t, err, "script runs out at the code prompt")
	assert.Equal(t, stepVerify, e.app.wizard.CurrentStep())
	assert.NotEmpty(t, e.box.get("ada@mit.edu"))
	assert.Contains(t, e.script.prompts, "Which school do you attend? [MIT]")
	assert.Contains(t, e.script.prompts, "Enter your school email [ada@mit.edu]")
}

func TestSignUpWizard_SchoolRequired(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)

	e.script.say("")
	assert.ErrorIs(t, e.app.SignUp(context.Background()), common.ErrInvalidInput)
	assert.Equal(t, stepSchool, e.app.wizard.CurrentStep())
}

func TestSignUpWizard_TakenEmail(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	e.register(t, "ada@mit.edu", "pw123456")

	e.script.say("MIT", "ada@mit.edu")
	e.script.passwords = []string{"other123", "other123"}

	assert.ErrorIs(t, e.app.SignUp(context.Background()), common.ErrEmailTaken)
	assert.Equal(t, stepCredentials, e.app.wizard.CurrentStep())
	assert.Contains(t, e.out.String(), "already registered")
}

func TestSignUp_AlreadySignedIn(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	e.register(t, "ada@mit.edu", "pw123456")

	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"pw123456"}
	require.NoError(t, e.app.Login(context.Background()))

	require.NoError(t, e.app.SignUp(context.Background()))
	assert.Contains(t, e.out.String(), "Already signed in")
	require.NoError(t, e.app.Verify(context.Background()))
}

func TestLoginLogout(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	e.register(t, "ada@mit.edu", "pw123456")

	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"wrong"}
	assert.ErrorIs(t, e.app.Login(ctx), common.ErrInvalidCredentials)
	assert.False(t, e.app.isLoggedIn())
	assert.Equal(t, "/", e.app.history.Current())
	assert.Contains(t, e.out.String(), "wrong email or password")

	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"pw123456"}
	require.NoError(t, e.app.Login(ctx))
	assert.Equal(t, "ada@mit.edu", e.user(t).Email)
	assert.Equal(t, "/home", e.app.history.Current())
	assert.Equal(t, "(ada@mit.edu /home)", e.app.getStatus())

	require.NoError(t, e.app.Status(ctx))
	assert.Contains(t, e.out.String(), "Session: ada@mit.edu")
	assert.Contains(t, e.out.String(), "Screen: /home")

	require.NoError(t, e.app.Logout(ctx))
	assert.False(t, e.app.isLoggedIn())
	assert.Equal(t, "/", e.app.history.Current())
	assert.Equal(t, "(guest /)", e.app.getStatus())
	assert.Equal(t, []string{"/home", "/"}, e.app.history.Visits())
}

func TestLogin_UnconfirmedAccount(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	require.NoError(t, e.authority.SignUp(context.Background(), "ada@mit.edu", "pw123456"))

	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"pw123456"}
	assert.ErrorIs(t, e.app.Login(context.Background()), common.ErrEmailNotConfirmed)
	assert.Contains(t, e.out.String(), "run 'verify'")
}

func TestProfileCommands(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.app.Profile(ctx), common.ErrNotAuthenticated)
	assert.ErrorIs(t, e.app.EditProfile(ctx), common.ErrNotAuthenticated)
	assert.ErrorIs(t, e.app.Avatar(ctx, "me.png"), common.ErrNotAuthenticated)

	e.register(t, "ada@mit.edu", "pw123456")
	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"pw123456"}
	require.NoError(t, e.app.Login(ctx))

	require.NoError(t, e.app.Profile(ctx))
	assert.Contains(t, e.out.String(), "No profile yet")

	e.script.say("", "")
	require.NoError(t, e.app.EditProfile(ctx))
	assert.Contains(t, e.out.String(), "Nothing to change")

	e.script.say("g", "")
	assert.ErrorIs(t, e.app.EditProfile(ctx), common.ErrInvalidInput)

	e.script.say("grace", "Grace Hopper")
	require.NoError(t, e.app.EditProfile(ctx))

	e.out.Reset()
	require.NoError(t, e.app.Profile(ctx))
	assert.Contains(t, e.out.String(), "grace")
	assert.Contains(t, e.out.String(), "Grace Hopper")
}

func TestAvatar(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	e.register(t, "ada@mit.edu", "pw123456")
	e.script.say("ada@mit.edu")
	e.script.passwords = []string{"pw123456"}
	require.NoError(t, e.app.Login(ctx))

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	require.NoError(t, e.app.Avatar(ctx, path))
	assert.Contains(t, e.out.String(), "not configured")

	up := &fakeUploader{URL: "https://cdn.example.com/avatars/me.png"}
	e.app.avatars = up

	assert.Error(t, e.app.Avatar(ctx, filepath.Join(t.TempDir(), "missing.png")))

	require.NoError(t, e.app.Avatar(ctx, path))
	u := e.user(t)
	assert.Equal(t, u.ID, up.LastUserID)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), up.LastData)

	p, err := e.repos.Profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, up.URL, *p.AvatarURL)

	up.Err = errors.New("bucket gone")
	assert.Error(t, e.app.Avatar(ctx, path))
	assert.Contains(t, e.out.String(), "Upload failed: bucket gone")
}

func TestRun_RestoresSessionAndExits(t *testing.T) {
	out := captureOutput(t)
	e := newTestEnv(t, "status\nexit\n")
	ctx := context.Background()
	e.register(t, "ada@mit.edu", "pw123456")

	sess, err := e.authority.SignIn(ctx, "ada@mit.edu", "pw123456")
	require.NoError(t, err)
	require.NoError(t, provider.NewKVSessionStore(e.repos.Metadata).Save(ctx, sess))

	require.NoError(t, e.app.Run(ctx))

	assert.Contains(t, e.out.String(), "Welcome to CampusHub")
	assert.Contains(t, e.out.String(), "Signed in as ada@mit.edu")
	assert.Contains(t, e.out.String(), "Screen: /home")
	assert.Contains(t, out.String(), "campushub (ada@mit.edu /home)> ")
	assert.Contains(t, out.String(), "Bye!")
	assert.NoError(t, e.app.Close())
}

func TestOpenProfiles(t *testing.T) {
	ctx := context.Background()
	repos, err := repositories.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	defer repos.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	repo, closer, err := openProfiles(ctx, cfg, repos)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Same(t, repos.Profiles, repo)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg.ProfileStore = profiles.KindRedis
	cfg.RedisAddr = mr.Addr()
	repo, closer, err = openProfiles(ctx, cfg, repos)
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.IsType(t, &profiles.RedisRepository{}, repo)
	assert.NoError(t, closer())

	mr.Close()
	_, _, err = openProfiles(ctx, cfg, repos)
	assert.Error(t, err)
}

func TestOpenBackend_Local(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	backend, closer, err := openBackend(context.Background(), cfg, t.TempDir(), logging.Nop(), &out)
	require.NoError(t, err)
	defer closer()

	require.NoError(t, backend.SignUp(context.Background(), "ada@mit.edu", "pw123456"))
	assert.Contains(t, out.String(), "[mail to ada@mit.edu] Your CampusHub code is ")
}
