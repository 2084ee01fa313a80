package state

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:staterepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE client_state (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_GetMissingKey(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	v, err := repo.Get(context.Background(), "absent")

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteRepository_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "session_token", []byte("tok-1")))

	v, err := repo.Get(ctx, "session_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-1"), v)

	// Upsert semantics.
	require.NoError(t, repo.Set(ctx, "session_token", []byte("tok-2")))
	v, err = repo.Get(ctx, "session_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-2"), v)
}

func TestSQLiteRepository_SetMany(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.SetMany(ctx, map[string][]byte{
		"session_token": []byte("tok"),
		"current_user":  []byte(`{"email":"sb@rice.edu"}`),
	}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []byte("tok"), all["session_token"])
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "etag:sb@rice.edu", []byte(`"v7"`)))
	require.NoError(t, repo.Delete(ctx, "etag:sb@rice.edu"))

	v, err := repo.Get(ctx, "etag:sb@rice.edu")
	require.NoError(t, err)
	assert.Nil(t, v)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, "etag:sb@rice.edu"))
}

func TestSQLiteRepository_ListAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "session_token", []byte("tok")))
	require.NoError(t, repo.Set(ctx, "etag:sb@rice.edu", []byte(`"v7"`)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"session_token":    []byte("tok"),
		"etag:sb@rice.edu": []byte(`"v7"`),
	}, all)

	require.NoError(t, repo.Clear(ctx))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
