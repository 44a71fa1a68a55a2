package repository

import (
	"context"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/storage"
)

// CounterRepository allocates sequential IDs from the counters document.
// Values stored on disk are next-value semantics: the document holds the
// ID the next allocation will return.
type CounterRepository interface {
	NextUserID(ctx context.Context) (uint, error)
	NextPostID(ctx context.Context) (uint, error)
}

// defaultCounters seeds a missing counters document.
var defaultCounters = models.Counters{UserID: 1, PostID: 1}

type counterRepository struct {
	doc     *storage.Document[models.Counters]
	log     *observability.RepoLogger
	metrics *observability.CollectionMetrics
}

// NewCounterRepository returns a CounterRepository over the given document.
func NewCounterRepository(doc *storage.Document[models.Counters]) CounterRepository {
	return &counterRepository{
		doc:     doc,
		log:     observability.NewRepoLogger(doc.Name()),
		metrics: observability.NewCollectionMetrics(doc.Name()),
	}
}

func (r *counterRepository) NextUserID(ctx context.Context) (uint, error) {
	return r.next(ctx, func(c *models.Counters) *uint { return &c.UserID })
}

func (r *counterRepository) NextPostID(ctx context.Context) (uint, error) {
	return r.next(ctx, func(c *models.Counters) *uint { return &c.PostID })
}

// next reads, hands out, and advances one counter field inside the
// document's critical section.
func (r *counterRepository) next(ctx context.Context, field func(*models.Counters) *uint) (uint, error) {
	defer r.metrics.TrackOp("update")()
	_, span := observability.TraceCollectionOp(ctx, "update", r.doc.Name())
	defer span.End()

	var allocated uint
	err := r.doc.Update(defaultCounters, func(current models.Counters) (models.Counters, error) {
		slot := field(&current)
		allocated = *slot
		*slot = allocated + 1
		return current, nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return 0, models.NewInternalError(err)
	}
	return allocated, nil
}
