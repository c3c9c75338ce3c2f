package profiles

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/client/migrations"
	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func ptr(s string) *string { return &s }

var (
	t0 = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

// runUpsertContract exercises the behaviour every Repository shares.
func runUpsertContract(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, common.ErrNotFound)

	id := "11111111-1111-1111-1111-111111111111"
	require.NoError(t, repo.Upsert(ctx, models.ProfileUpdate{ID: id, Username: ptr("ana"), UpdatedAt: t0}))
	require.NoError(t, repo.Upsert(ctx, models.ProfileUpdate{ID: id, FullName: ptr("Ana Lima"), UpdatedAt: t1}))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	want := &models.Profile{ID: id, Username: ptr("ana"), FullName: ptr("Ana Lima"), UpdatedAt: t1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	other := "22222222-2222-2222-2222-222222222222"
	err = repo.Upsert(ctx, models.ProfileUpdate{ID: other, Username: ptr("ana"), UpdatedAt: t1})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	// renaming frees the old name
	require.NoError(t, repo.Upsert(ctx, models.ProfileUpdate{ID: id, Username: ptr("ana.l"), UpdatedAt: t1}))
	require.NoError(t, repo.Upsert(ctx, models.ProfileUpdate{ID: other, Username: ptr("ana"), UpdatedAt: t1}))
}

func TestSQLiteRepository_Contract(t *testing.T) {
	runUpsertContract(t, NewSQLiteRepository(setupDB(t)))
}

func TestSQLiteRepository_AvatarOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Upsert(ctx, models.ProfileUpdate{ID: "u-1", AvatarURL: ptr("https://cdn/a.png"), UpdatedAt: t0}))

	got, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, got.Username)
	assert.Nil(t, got.FullName)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "https://cdn/a.png", *got.AvatarURL)
	assert.True(t, got.UpdatedAt.Equal(t0))
}

func TestSQLiteRepository_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := repo.Upsert(context.Background(), models.ProfileUpdate{ID: "u-1", UpdatedAt: t0})
	assert.ErrorContains(t, err, "db error")

	_, err = repo.Get(context.Background(), "u-1")
	assert.ErrorContains(t, err, "db error")
}
