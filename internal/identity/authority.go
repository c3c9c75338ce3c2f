package identity

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/cryptox"
	"github.com/dmitrijs2005/campushub/internal/dbx"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/google/uuid"
)

// OTPTypeEmail is the only one-time code type the authority issues.
const OTPTypeEmail = "email"

// Config holds the authority's secrets and lifetimes.
type Config struct {
	SecretKey  []byte
	SessionTTL time.Duration
	OTPTTL     time.Duration
}

// Authority owns accounts and sessions. It is safe for concurrent use.
type Authority struct {
	db     *sql.DB
	cfg    Config
	sender OTPSender
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Authority)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(a *Authority) { a.newID = f }
}

// WithSender sets where one-time codes go. Defaults to a LogSender.
func WithSender(s OTPSender) Option {
	return func(a *Authority) { a.sender = s }
}

func NewAuthority(db *sql.DB, cfg Config, logger logging.Logger, opts ...Option) *Authority {
	a := &Authority{
		db:     db,
		cfg:    cfg,
		logger: logger.With("module", "identity"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sender == nil {
		a.sender = NewLogSender(logger)
	}
	return a
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: malformed email", common.ErrInvalidInput)
	}
	return email, nil
}

// SignUp registers email with password as an unconfirmed account and sends
// a one-time code. Signing up again before confirmation replaces the
// password and re-issues the code.
func (a *Authority) SignUp(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrInvalidInput)
	}

	code, err := common.RandomDigits(common.OTPLength)
	if err != nil {
		return fmt.Errorf("otp generation error: %w", err)
	}
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	salt, verifier := cryptox.HashPassword(pw)

	now := a.now().UTC()
	expiresAt := now.Add(a.cfg.OTPTTL)

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := NewSQLiteAccountRepository(tx)

		existing, err := accounts.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrNotFound):
			return accounts.Create(ctx, &Account{
				ID:           a.newID(),
				Email:        email,
				Salt:         salt,
				Verifier:     verifier,
				OTPCode:      code,
				OTPExpiresAt: expiresAt,
				CreatedAt:    now,
			})
		case err != nil:
			return err
		case existing.Confirmed():
			return common.ErrEmailTaken
		}

		if err := accounts.UpdateCredentials(ctx, existing.ID, salt, verifier); err != nil {
			return err
		}
		return accounts.SetOTP(ctx, existing.ID, code, expiresAt)
	})
	if err != nil {
		return err
	}

	if err := a.sender.Send(ctx, email, code); err != nil {
		return fmt.Errorf("otp delivery error: %w", err)
	}
	a.logger.Info(ctx, "account pending verification", "email", email)
	return nil
}

// VerifyOTP confirms the account behind email with code and signs it in.
// After common.MaxOTPAttempts wrong codes the outstanding code is voided and
// only a fresh SignUp issues a new one.
func (a *Authority) VerifyOTP(ctx context.Context, email, code, otpType string) (*models.Session, error) {
	if otpType != OTPTypeEmail {
		return nil, fmt.Errorf("%w: unsupported otp type %q", common.ErrInvalidInput, otpType)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	now := a.now().UTC()

	// A wrong code is counted in the same transaction, which must commit, so
	// the rejection is carried out of it in rejected rather than as an error.
	var rejected error
	acct, err := dbx.WithTxResult(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) (*Account, error) {
		accounts := NewSQLiteAccountRepository(tx)

		acct, err := accounts.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrInvalidOTP
			}
			return nil, err
		}
		if acct.OTPCode == "" {
			return nil, common.ErrInvalidOTP
		}
		if subtle.ConstantTimeCompare([]byte(acct.OTPCode), []byte(code)) != 1 {
			n, err := accounts.RecordOTPFailure(ctx, acct.ID, common.MaxOTPAttempts)
			if err != nil {
				return nil, err
			}
			if n >= common.MaxOTPAttempts {
				a.logger.Warn(ctx, "one-time code voided after repeated failures", "user_id", acct.ID, "attempts", n)
			}
			rejected = common.ErrInvalidOTP
			return nil, nil
		}
		if !now.Before(acct.OTPExpiresAt) {
			return nil, common.ErrOTPExpired
		}
		if err := accounts.Confirm(ctx, acct.ID, now); err != nil {
			return nil, err
		}
		return acct, nil
	})
	if err != nil {
		return nil, err
	}
	if rejected != nil {
		return nil, rejected
	}

	a.logger.Info(ctx, "account verified", "user_id", acct.ID)
	return a.issueSession(models.User{ID: acct.ID, Email: acct.Email}, now)
}

// SignIn checks email and password and issues a session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (a *Authority) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	acct, err := NewSQLiteAccountRepository(a.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)
	if !cryptox.VerifyPassword(pw, acct.Salt, acct.Verifier) {
		return nil, common.ErrInvalidCredentials
	}
	if !acct.Confirmed() {
		return nil, common.ErrEmailNotConfirmed
	}

	a.logger.Info(ctx, "signed in", "user_id", acct.ID)
	return a.issueSession(models.User{ID: acct.ID, Email: acct.Email}, a.now().UTC())
}

// SignOut revokes accessToken. Tokens that already expired need no
// revocation and succeed.
func (a *Authority) SignOut(ctx context.Context, accessToken string) error {
	now := a.now().UTC()
	claims, err := ParseToken(accessToken, a.cfg.SecretKey, now)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil
		}
		return err
	}

	revocations := NewSQLiteRevocationRepository(a.db)
	if err := revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if n, err := revocations.PurgeExpired(ctx, now); err != nil {
		a.logger.Warn(ctx, "revocation purge failed", "error", err)
	} else if n > 0 {
		a.logger.Debug(ctx, "purged expired revocations", "count", n)
	}

	a.logger.Info(ctx, "signed out", "user_id", claims.Subject)
	return nil
}

// GetUser validates accessToken and returns its user.
func (a *Authority) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := ParseToken(accessToken, a.cfg.SecretKey, a.now().UTC())
	if err != nil {
		return nil, err
	}

	revoked, err := NewSQLiteRevocationRepository(a.db).IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}

	acct, err := NewSQLiteAccountRepository(a.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return &models.User{ID: acct.ID, Email: acct.Email}, nil
}

func (a *Authority) issueSession(user models.User, now time.Time) (*models.Session, error) {
	token, expiresAt, err := GenerateToken(user, a.newID(), a.cfg.SecretKey, now, a.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	return &models.Session{
		AccessToken: token,
		TokenType:   models.TokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
