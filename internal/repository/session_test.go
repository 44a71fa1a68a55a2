package repository

import (
	"context"
	"testing"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepo(t *testing.T) (SessionRepository, *storage.Collection[models.Session]) {
	t.Helper()
	col := storage.NewCollection[models.Session](storage.NewMemoryBackend(), "sessions.json")
	return NewSessionRepository(col), col
}

func TestSessionRepositoryGetByToken(t *testing.T) {
	repo, _ := newSessionRepo(t)
	ctx := context.Background()

	session := models.Session{
		Token:     "abc123",
		UserID:    7,
		CreatedAt: time.Now().Unix(),
		Expires:   time.Now().Add(24 * time.Hour).Unix(),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByToken(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.UserID)

	missing, err := repo.GetByToken(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepositoryExpiredSessionsPrunedOnRead(t *testing.T) {
	repo, col := newSessionRepo(t)
	ctx := context.Background()

	expired := models.Session{
		Token:     "stale",
		UserID:    1,
		CreatedAt: time.Now().Add(-48 * time.Hour).Unix(),
		Expires:   time.Now().Add(-24 * time.Hour).Unix(),
	}
	live := models.Session{
		Token:     "fresh",
		UserID:    2,
		CreatedAt: time.Now().Unix(),
		Expires:   time.Now().Add(24 * time.Hour).Unix(),
	}
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, live))

	// The expired session never resolves.
	got, err := repo.GetByToken(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)

	// And the read removed it from the collection.
	remaining := col.Load()
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Token)
}

func TestSessionRepositoryDeleteIdempotent(t *testing.T) {
	repo, col := newSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.Session{
		Token:   "gone-soon",
		UserID:  3,
		Expires: time.Now().Add(time.Hour).Unix(),
	}))

	require.NoError(t, repo.Delete(ctx, "gone-soon"))
	require.NoError(t, repo.Delete(ctx, "gone-soon")) // absent token is fine
	assert.Empty(t, col.Load())
}

func TestSessionRepositoryMultipleSessionsPerUser(t *testing.T) {
	repo, col := newSessionRepo(t)
	ctx := context.Background()

	for _, token := range []string{"desktop", "phone"} {
		require.NoError(t, repo.Create(ctx, models.Session{
			Token:   token,
			UserID:  5,
			Expires: time.Now().Add(time.Hour).Unix(),
		}))
	}
	assert.Len(t, col.Load(), 2)
}
