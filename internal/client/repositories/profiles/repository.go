// Package profiles is the backend-owned profile store, keyed by the
// identity user id. Three implementations share the same upsert
// semantics: nil fields of a ProfileUpdate leave stored values untouched,
// and a username may belong to one profile only.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/campushub/internal/models"
)

type Repository interface {
	Upsert(ctx context.Context, u models.ProfileUpdate) error
	// Get returns common.ErrNotFound when no profile exists for id.
	Get(ctx context.Context, id string) (*models.Profile, error)
}

// Kinds accepted by the client configuration.
const (
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindRedis    = "redis"
)
