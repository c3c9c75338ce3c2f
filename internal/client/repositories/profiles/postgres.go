package profiles

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/dbx"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed postgres_migrations/*.sql
var postgresMigrations embed.FS

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects through the pgx stdlib driver and applies the
// profile schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	sub, err := fs.Sub(postgresMigrations, "postgres_migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations init error: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, u models.ProfileUpdate) error {
	query :=
		`INSERT INTO profiles (id, username, full_name, avatar_url, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   username = COALESCE(EXCLUDED.username, profiles.username),
		   full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
		   avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
		   updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.FullName, u.AvatarURL, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, username, full_name, avatar_url, updated_at FROM profiles
		 WHERE id = $1
		 `

	var (
		p                             models.Profile
		username, fullName, avatarURL sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &username, &fullName, &avatarURL, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Username = nullString(username)
	p.FullName = nullString(fullName)
	p.AvatarURL = nullString(avatarURL)
	return &p, nil
}
