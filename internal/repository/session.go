package repository

import (
	"context"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/storage"
)

// SessionRepository defines persistence operations for sessions.
// Expired sessions are garbage-collected opportunistically: any read of
// the collection drops them, there is no background sweeper.
type SessionRepository interface {
	// GetByToken returns the live session for the token, or (nil, nil)
	// when the token is unknown or expired.
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Create(ctx context.Context, session models.Session) error
	// Delete removes the session if present; deleting an absent token
	// is not an error.
	Delete(ctx context.Context, token string) error
	PruneExpired(ctx context.Context) error
}

type sessionRepository struct {
	col     *storage.Collection[models.Session]
	log     *observability.RepoLogger
	metrics *observability.CollectionMetrics
	now     func() time.Time
}

// NewSessionRepository returns a SessionRepository over the given collection.
func NewSessionRepository(col *storage.Collection[models.Session]) SessionRepository {
	return &sessionRepository{
		col:     col,
		log:     observability.NewRepoLogger(col.Name()),
		metrics: observability.NewCollectionMetrics(col.Name()),
		now:     time.Now,
	}
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	defer r.metrics.TrackOp("get")()
	_, span := observability.TraceCollectionOp(ctx, "get", r.col.Name())
	defer span.End()

	var found *models.Session
	err := r.col.Update(func(sessions []models.Session) ([]models.Session, error) {
		live := sessions[:0]
		for _, s := range sessions {
			if s.Expired(r.now()) {
				continue
			}
			if s.Token == token {
				matched := s
				found = &matched
			}
			live = append(live, s)
		}
		return live, nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return found, nil
}

func (r *sessionRepository) Create(ctx context.Context, session models.Session) error {
	defer r.metrics.TrackOp("create")()
	_, span := observability.TraceCollectionOp(ctx, "create", r.col.Name())
	defer span.End()

	err := r.col.Update(func(sessions []models.Session) ([]models.Session, error) {
		return append(sessions, session), nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}

	r.log.LogWrite(ctx, "create", map[string]interface{}{"user_id": session.UserID})
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	defer r.metrics.TrackOp("delete")()
	_, span := observability.TraceCollectionOp(ctx, "delete", r.col.Name())
	defer span.End()

	err := r.col.Update(func(sessions []models.Session) ([]models.Session, error) {
		kept := sessions[:0]
		for _, s := range sessions {
			if s.Token != token {
				kept = append(kept, s)
			}
		}
		return kept, nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) PruneExpired(ctx context.Context) error {
	defer r.metrics.TrackOp("prune")()
	_, span := observability.TraceCollectionOp(ctx, "prune", r.col.Name())
	defer span.End()

	err := r.col.Update(func(sessions []models.Session) ([]models.Session, error) {
		live := sessions[:0]
		for _, s := range sessions {
			if !s.Expired(r.now()) {
				live = append(live, s)
			}
		}
		return live, nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "prune")
		return models.NewInternalError(err)
	}
	return nil
}
