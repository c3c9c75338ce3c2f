package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/dbx"
)

// Account is a stored identity. OTPCode is empty once the account is
// confirmed.
type Account struct {
	ID           string
	Email        string
	Salt         []byte
	Verifier     []byte
	ConfirmedAt  *time.Time
	OTPCode      string
	OTPExpiresAt time.Time
	OTPAttempts  int
	CreatedAt    time.Time
}

func (a *Account) Confirmed() bool {
	return a.ConfirmedAt != nil
}

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdateCredentials(ctx context.Context, id string, salt, verifier []byte) error
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	RecordOTPFailure(ctx context.Context, id string, limit int) (int, error)
	Confirm(ctx context.Context, id string, at time.Time) error
}

type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type SQLiteAccountRepository struct {
	db dbx.DBTX
}

func NewSQLiteAccountRepository(db dbx.DBTX) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

func (r *SQLiteAccountRepository) Create(ctx context.Context, a *Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, salt, verifier, otp_code, otp_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Salt, a.Verifier, a.OTPCode, a.OTPExpiresAt.UnixMilli(), a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const accountColumns = `id, email, salt, verifier, confirmed_at, otp_code, otp_expires_at, otp_attempts, created_at`

func (r *SQLiteAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

func (r *SQLiteAccountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *SQLiteAccountRepository) scanOne(row *sql.Row) (*Account, error) {
	var (
		a                   Account
		confirmedAt         sql.NullInt64
		otpExpires, created int64
	)
	err := row.Scan(&a.ID, &a.Email, &a.Salt, &a.Verifier, &confirmedAt, &a.OTPCode, &otpExpires, &a.OTPAttempts, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if confirmedAt.Valid {
		t := time.UnixMilli(confirmedAt.Int64).UTC()
		a.ConfirmedAt = &t
	}
	a.OTPExpiresAt = time.UnixMilli(otpExpires).UTC()
	a.CreatedAt = time.UnixMilli(created).UTC()
	return &a, nil
}

func (r *SQLiteAccountRepository) UpdateCredentials(ctx context.Context, id string, salt, verifier []byte) error {
	return r.execOne(ctx, `UPDATE accounts SET salt = ?, verifier = ? WHERE id = ?`, salt, verifier, id)
}

func (r *SQLiteAccountRepository) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.execOne(ctx, `
		UPDATE accounts SET otp_code = ?, otp_expires_at = ?, otp_attempts = 0 WHERE id = ?
	`, code, expiresAt.UnixMilli(), id)
}

// RecordOTPFailure counts a wrong code against id and returns the new
// count. Once the count reaches limit the outstanding code is voided.
func (r *SQLiteAccountRepository) RecordOTPFailure(ctx context.Context, id string, limit int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET otp_attempts = otp_attempts + 1,
		    otp_code = CASE WHEN otp_attempts + 1 >= ? THEN '' ELSE otp_code END
		WHERE id = ?
		RETURNING otp_attempts
	`, limit, id).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteAccountRepository) Confirm(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `
		UPDATE accounts
		SET confirmed_at = COALESCE(confirmed_at, ?), otp_code = '', otp_expires_at = 0, otp_attempts = 0
		WHERE id = ?
	`, at.UnixMilli(), id)
}

func (r *SQLiteAccountRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type SQLiteRevocationRepository struct {
	db dbx.DBTX
}

func NewSQLiteRevocationRepository(db dbx.DBTX) *SQLiteRevocationRepository {
	return &SQLiteRevocationRepository{db: db}
}

func (r *SQLiteRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
		ON CONFLICT(token_id) DO NOTHING
	`, tokenID, expiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?`, tokenID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired drops revocations for tokens that would be rejected as
// expired anyway.
func (r *SQLiteRevocationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
