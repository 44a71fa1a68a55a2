package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"matrixart/internal/config"
	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv wires services over memory-backed repositories the same way
// the server wires them over the data directory.
type testEnv struct {
	backend  *storage.MemoryBackend
	users    repository.UserRepository
	sessions repository.SessionRepository
	posts    repository.PostRepository
	counters repository.CounterRepository
	auth     *AuthService
	user     *UserService
	post     *PostService
	upload   *UploadService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := storage.NewMemoryBackend()
	users := repository.NewUserRepository(storage.NewCollection[models.User](backend, "users.json"))
	sessions := repository.NewSessionRepository(storage.NewCollection[models.Session](backend, "sessions.json"))
	posts := repository.NewPostRepository(storage.NewCollection[models.Post](backend, "posts.json"))
	counters := repository.NewCounterRepository(storage.NewDocument[models.Counters](backend, "counters.json"))

	cfg := &config.Config{
		UploadsDir:      t.TempDir(),
		MaxUploadSizeMB: 50,
	}
	upload := NewUploadService(cfg)
	require.NoError(t, upload.EnsureDir())

	return &testEnv{
		backend:  backend,
		users:    users,
		sessions: sessions,
		posts:    posts,
		counters: counters,
		auth:     NewAuthService(users, sessions, counters, 24*time.Hour),
		user:     NewUserService(users),
		post:     NewPostService(posts, users, counters, upload, 30*24*time.Hour),
		upload:   upload,
	}
}

// storeUpload persists a dummy blob and returns its stored name.
func (e *testEnv) storeUpload(t *testing.T, filename string) string {
	t.Helper()
	stored, err := e.upload.Store(context.Background(), filename, []byte("blob"))
	require.NoError(t, err)
	return stored.StoredName
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }
