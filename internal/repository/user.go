// Package repository implements the data access layer over the
// flat-file collections.
package repository

import (
	"context"
	"strings"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/storage"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByUsername matches case-insensitively and returns (nil, nil)
	// when no user exists under any casing.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	col     *storage.Collection[models.User]
	log     *observability.RepoLogger
	metrics *observability.CollectionMetrics
}

// NewUserRepository returns a UserRepository over the given collection.
func NewUserRepository(col *storage.Collection[models.User]) UserRepository {
	return &userRepository{
		col:     col,
		log:     observability.NewRepoLogger(col.Name()),
		metrics: observability.NewCollectionMetrics(col.Name()),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackOp("get")()
	_, span := observability.TraceCollectionOp(ctx, "get", r.col.Name())
	defer span.End()

	for _, user := range r.col.Load() {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.metrics.TrackOp("get")()
	_, span := observability.TraceCollectionOp(ctx, "get", r.col.Name())
	defer span.End()

	for _, user := range r.col.Load() {
		if strings.EqualFold(user.Username, username) {
			return &user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackOp("create")()
	_, span := observability.TraceCollectionOp(ctx, "create", r.col.Name())
	defer span.End()

	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	err := r.col.Update(func(users []models.User) ([]models.User, error) {
		return append(users, *user), nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}

	r.log.LogWrite(ctx, "create", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackOp("update")()
	_, span := observability.TraceCollectionOp(ctx, "update", r.col.Name())
	defer span.End()

	found := false
	err := r.col.Update(func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = *user
				found = true
				break
			}
		}
		if !found {
			return nil, models.NewNotFoundError("User", user.ID)
		}
		return users, nil
	})
	if err != nil {
		if _, ok := err.(*models.AppError); ok {
			return err
		}
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}

	r.log.LogWrite(ctx, "update", map[string]interface{}{"user_id": user.ID})
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	defer r.metrics.TrackOp("list")()
	_, span := observability.TraceCollectionOp(ctx, "list", r.col.Name())
	defer span.End()

	return r.col.Load(), nil
}
