package service

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/repository"
	"matrixart/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLen     = 200
	maxDescLen      = 2000
)

// PostService implements the post/media catalog operations.
type PostService struct {
	postRepo       repository.PostRepository
	userRepo       repository.UserRepository
	counterRepo    repository.CounterRepository
	uploads        *UploadService
	anonCookieLife time.Duration
	now            func() time.Time
}

// NewPostService creates a PostService. The anon cookie lifetime governs
// how long a chosen anonymous username is remembered client-side.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	counterRepo repository.CounterRepository,
	uploads *UploadService,
	anonCookieLife time.Duration,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		userRepo:       userRepo,
		counterRepo:    counterRepo,
		uploads:        uploads,
		anonCookieLife: anonCookieLife,
		now:            time.Now,
	}
}

// CreatePostInput carries the fields for a new post. Authorship decides
// between a user reference and free-text anonymous credits.
type CreatePostInput struct {
	Title       string
	Description string
	FilePath    string
	FileType    models.FileType
	Authorship  models.Authorship
}

// List returns one feed page, newest first, each identified post
// enriched with its author's public view.
func (s *PostService) List(ctx context.Context, page, pageSize int) (*models.PostPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	total := len(posts)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items, err := s.enrich(ctx, posts[start:end])
	if err != nil {
		return nil, err
	}

	return &models.PostPage{
		Items: items,
		PageInfo: models.PageInfo{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get fetches a single post and bumps its view counter as a side effect.
func (s *PostService) Get(ctx context.Context, id uint) (*models.PostWithAuthor, error) {
	post, err := s.postRepo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	observability.PostViewsTotal.Inc()

	items, err := s.enrich(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create validates and persists a new post. Anonymous posts with a
// chosen username additionally return a long-lived cookie intent so the
// name sticks for future anonymous posts.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.PostWithAuthor, []models.CookieIntent, error) {
	span, ctx := observability.NewSpan(ctx, "posts.create")
	defer span.End()

	if in.Title == "" {
		return nil, nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(in.Description) > maxDescLen {
		return nil, nil, models.NewValidationError("Description too long (max 2000 characters)")
	}
	if in.FilePath == "" {
		return nil, nil, models.NewValidationError("File path is required")
	}
	if !s.uploads.Exists(in.FilePath) {
		return nil, nil, models.NewValidationError("Referenced file does not exist")
	}

	fileType := in.FileType
	if fileType == "" {
		// Derive from the stored file's extension when the client omits it.
		ext := strings.TrimPrefix(filepath.Ext(in.FilePath), ".")
		fileType = CategoryForMime(MimeForExtension(ext))
	}

	post := models.Post{
		Title:       validation.SanitizeText(in.Title),
		Description: validation.SanitizeText(in.Description),
		FilePath:    in.FilePath,
		FileType:    fileType,
		CreatedAt:   s.now().Unix(),
	}

	var intents []models.CookieIntent
	switch a := in.Authorship.(type) {
	case models.Identified:
		userID := a.UserID
		post.UserID = &userID
	case models.Anonymous:
		post.Anonymous = true
		post.AuthorName = validation.SanitizeText(a.DisplayName)
		post.AuthorInstagram = validation.SanitizeText(a.Instagram)
		post.AuthorTelegram = validation.SanitizeText(a.Telegram)
		post.AnonUsername = validation.SanitizeText(a.AnonUsername)
		if post.AnonUsername != "" {
			intents = append(intents, models.CookieIntent{
				Name:    models.AnonCookieName,
				Value:   post.AnonUsername,
				Expires: s.now().Add(s.anonCookieLife),
			})
		}
	default:
		return nil, nil, models.NewValidationError("Post authorship is required")
	}

	id, err := s.counterRepo.NextPostID(ctx)
	if err != nil {
		return nil, nil, err
	}
	post.ID = id

	if err := s.postRepo.Create(ctx, &post); err != nil {
		span.SetError(err)
		return nil, nil, err
	}
	span.AddAttributes(
		attribute.Int("post.id", int(post.ID)),
		attribute.Bool("post.anonymous", post.Anonymous),
	)

	items, err := s.enrich(ctx, []models.Post{post})
	if err != nil {
		return nil, nil, err
	}
	return &items[0], intents, nil
}

// ListByUser returns all posts of a user, newest first. The reference
// resolves as a username first, so accounts with all-digit names work;
// an unmatched numeric reference falls back to a user ID lookup.
func (s *PostService) ListByUser(ctx context.Context, usernameOrID string) ([]models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, usernameOrID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		id, perr := strconv.ParseUint(usernameOrID, 10, 32)
		if perr != nil {
			return nil, models.NewNotFoundError("User", usernameOrID)
		}
		user, err = s.userRepo.GetByID(ctx, uint(id))
		if err != nil {
			return nil, err
		}
	}
	return s.postRepo.GetByUserID(ctx, user.ID)
}

// enrich attaches the public author view to every identified,
// non-anonymous post. Users are loaded once per call.
func (s *PostService) enrich(ctx context.Context, posts []models.Post) ([]models.PostWithAuthor, error) {
	items := make([]models.PostWithAuthor, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, post := range posts {
		item := models.PostWithAuthor{Post: post}
		if !post.Anonymous && post.UserID != nil {
			if user, ok := byID[*post.UserID]; ok {
				view := user.PublicView()
				item.Author = &view
			}
		}
		items = append(items, item)
	}
	return items, nil
}
