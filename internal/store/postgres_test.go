package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketrun/rocketrun-server/internal/account"
)

func getTestDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}
	return url
}

func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := getTestDatabaseURL(t)
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)

	// Clean up tables for test isolation
	_, err = s.pool.Exec(ctx, "DELETE FROM runs")
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, "DELETE FROM accounts")
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestPostgresStore_CreateAndFindByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	acc := account.New("rocket-pilot")
	err := s.CreateAccount(ctx, acc)
	require.NoError(t, err)

	found, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, acc.ID, found.ID)
	assert.Equal(t, "rocket-pilot", found.Nickname)
}

func TestPostgresStore_FindByNickname(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	acc := account.New("ace")
	require.NoError(t, s.CreateAccount(ctx, acc))

	found, err := s.FindByNickname(ctx, "ace")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, acc.ID, found.ID)
}

func TestPostgresStore_FindByNickname_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	found, err := s.FindByNickname(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPostgresStore_DuplicateNickname(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, account.New("dupe")))
	err := s.CreateAccount(ctx, account.New("dupe"))
	assert.Error(t, err)
}

func TestPostgresStore_UpdateLastSeen(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	acc := account.New("seen")
	require.NoError(t, s.CreateAccount(ctx, acc))

	err := s.UpdateLastSeen(ctx, acc.ID)
	require.NoError(t, err)

	found, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, found.LastSeenAt.After(acc.CreatedAt) || found.LastSeenAt.Equal(acc.CreatedAt))
}

func TestPostgresStore_RecordRunAndBestScore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	acc := account.New("scorer")
	require.NoError(t, s.CreateAccount(ctx, acc))

	require.NoError(t, s.RecordRun(ctx, account.NewRun(acc.ID, 3, "base", 12*time.Second)))
	require.NoError(t, s.RecordRun(ctx, account.NewRun(acc.ID, 7, "fast", 40*time.Second)))
	require.NoError(t, s.RecordRun(ctx, account.NewRun(acc.ID, 5, "fast", 25*time.Second)))

	best, err := s.BestScore(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, best)
}

func TestPostgresStore_BestScore_NoRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	acc := account.New("fresh")
	require.NoError(t, s.CreateAccount(ctx, acc))

	best, err := s.BestScore(ctx, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, best)
}

func TestPostgresStore_TopRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := account.New("alpha")
	b := account.New("beta")
	require.NoError(t, s.CreateAccount(ctx, a))
	require.NoError(t, s.CreateAccount(ctx, b))

	require.NoError(t, s.RecordRun(ctx, account.NewRun(a.ID, 2, "base", 10*time.Second)))
	require.NoError(t, s.RecordRun(ctx, account.NewRun(b.ID, 9, "fast", 50*time.Second)))
	require.NoError(t, s.RecordRun(ctx, account.NewRun(a.ID, 4, "fast", 22*time.Second)))

	runs, err := s.TopRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, 9, runs[0].Score)
	assert.Equal(t, "beta", runs[0].Nickname)
	assert.Equal(t, 4, runs[1].Score)
	assert.Equal(t, "alpha", runs[1].Nickname)
	assert.Equal(t, 50*time.Second, runs[0].Duration)
}
