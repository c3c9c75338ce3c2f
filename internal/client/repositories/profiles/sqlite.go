package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/dbx"
	"github.com/dmitrijs2005/campushub/internal/models"
)

// SQLiteRepository stores profiles in the client database. Tables come
// from the client migrations.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u models.ProfileUpdate) error {
	query := `
		INSERT INTO profiles (id, username, full_name, avatar_url, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username   = COALESCE(excluded.username, profiles.username),
			full_name  = COALESCE(excluded.full_name, profiles.full_name),
			avatar_url = COALESCE(excluded.avatar_url, profiles.avatar_url),
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.FullName, u.AvatarURL, u.UpdatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: profiles.username") {
			return common.ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, username, full_name, avatar_url, updated_at FROM profiles WHERE id = ?`

	var (
		p                             models.Profile
		username, fullName, avatarURL sql.NullString
		updatedAt                     int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &username, &fullName, &avatarURL, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Username = nullString(username)
	p.FullName = nullString(fullName)
	p.AvatarURL = nullString(avatarURL)
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &p, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
