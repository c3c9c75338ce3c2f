// Package repositories opens the client's local sqlite database and hands
// out the repositories that live in it.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/campushub/internal/client/migrations"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/profiles"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Profiles *profiles.SQLiteRepository
}

// InitDatabase opens dsn, migrates it and builds the repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open client db error: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Profiles: profiles.NewSQLiteRepository(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
