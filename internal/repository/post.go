package repository

import (
	"context"
	"sort"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/storage"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// List returns all posts, newest first. Ties keep insertion order.
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// IncrementViews bumps the view counter by one inside the
	// collection's critical section and returns the updated post.
	IncrementViews(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// GetByUserID returns the user's posts, newest first.
	GetByUserID(ctx context.Context, userID uint) ([]models.Post, error)
}

type postRepository struct {
	col     *storage.Collection[models.Post]
	log     *observability.RepoLogger
	metrics *observability.CollectionMetrics
}

// NewPostRepository returns a PostRepository over the given collection.
func NewPostRepository(col *storage.Collection[models.Post]) PostRepository {
	return &postRepository{
		col:     col,
		log:     observability.NewRepoLogger(col.Name()),
		metrics: observability.NewCollectionMetrics(col.Name()),
	}
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	defer r.metrics.TrackOp("list")()
	_, span := observability.TraceCollectionOp(ctx, "list", r.col.Name())
	defer span.End()

	posts := r.col.Load()
	sortNewestFirst(posts)
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer r.metrics.TrackOp("get")()
	_, span := observability.TraceCollectionOp(ctx, "get", r.col.Name())
	defer span.End()

	for _, post := range r.col.Load() {
		if post.ID == id {
			return &post, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) (*models.Post, error) {
	defer r.metrics.TrackOp("update")()
	_, span := observability.TraceCollectionOp(ctx, "update", r.col.Name())
	defer span.End()

	var updated *models.Post
	err := r.col.Update(func(posts []models.Post) ([]models.Post, error) {
		for i := range posts {
			if posts[i].ID == id {
				posts[i].Views++
				bumped := posts[i]
				updated = &bumped
				return posts, nil
			}
		}
		return nil, models.NewNotFoundError("Post", id)
	})
	if err != nil {
		if _, ok := err.(*models.AppError); ok {
			return nil, err
		}
		r.log.LogError(ctx, err, "update")
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackOp("create")()
	_, span := observability.TraceCollectionOp(ctx, "create", r.col.Name())
	defer span.End()

	if post.CreatedAt == 0 {
		post.CreatedAt = time.Now().Unix()
	}

	err := r.col.Update(func(posts []models.Post) ([]models.Post, error) {
		return append(posts, *post), nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}

	r.log.LogWrite(ctx, "create", map[string]interface{}{
		"post_id":   post.ID,
		"anonymous": post.Anonymous,
	})
	return nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	defer r.metrics.TrackOp("list")()
	_, span := observability.TraceCollectionOp(ctx, "list", r.col.Name())
	defer span.End()

	var posts []models.Post
	for _, post := range r.col.Load() {
		if post.UserID != nil && *post.UserID == userID {
			posts = append(posts, post)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

// sortNewestFirst orders posts by creation time descending, keeping
// insertion order for equal timestamps.
func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})
}
