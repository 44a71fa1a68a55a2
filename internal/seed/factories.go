// Package seed provides helpers to create demo data for the application.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/service"
	"matrixart/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the known password for every seeded account.
const DemoPassword = "PASSWORD123DEMO"

// Factory builds domain entities and persists them through the
// repositories, so seeded data obeys the same rules as live data.
type Factory struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	counters repository.CounterRepository
	uploads  *service.UploadService
	opts     Options
	rng      *rand.Rand
}

// Options control seeding behavior.
type Options struct {
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
	// SkipBcrypt stores the demo password unhashed for fast dev seeding.
	SkipBcrypt bool
}

// NewFactory creates a Factory bound to the given repositories.
func NewFactory(
	users repository.UserRepository,
	posts repository.PostRepository,
	counters repository.CounterRepository,
	uploads *service.UploadService,
	opts Options,
) *Factory {
	seedVal := time.Now().UnixNano()
	gofakeit.Seed(seedVal)
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		users:    users,
		posts:    posts,
		counters: counters,
		uploads:  uploads,
		opts:     opts,
		rng:      rand.New(rand.NewSource(seedVal)),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:        fakeUsername(),
		DisplayName:     gofakeit.Name(),
		InstagramHandle: "@" + strings.ToLower(gofakeit.Username()),
		CreatedAt:       f.pastTimestamp(),
		IsActive:        true,
	}

	if f.opts.SkipBcrypt {
		user.PasswordHash = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	id, err := f.counters.NextUserID(ctx)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post. A nil author makes
// the post anonymous with generated credits.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	stored, err := f.storePlaceholderFile(ctx)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		FilePath:    stored.StoredName,
		FileType:    stored.Category,
		Views:       uint(f.rng.Intn(500)),
		CreatedAt:   f.pastTimestamp(),
	}

	if author != nil {
		userID := author.ID
		post.UserID = &userID
	} else {
		post.Anonymous = true
		post.AuthorName = gofakeit.Name()
		post.AuthorInstagram = "@" + strings.ToLower(gofakeit.Username())
		post.AnonUsername = fakeUsername()
	}

	for _, override := range overrides {
		override(post)
	}

	id, err := f.counters.NextPostID(ctx)
	if err != nil {
		return nil, err
	}
	post.ID = id

	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// storePlaceholderFile writes a tiny blob with a random allowed
// extension so seeded posts reference real files.
func (f *Factory) storePlaceholderFile(ctx context.Context) (*service.StoredFile, error) {
	extensions := []string{"png", "jpg", "gif", "mp4", "webm", "mp3", "ogg"}
	ext := extensions[f.rng.Intn(len(extensions))]
	name := fmt.Sprintf("seed-%s.%s", gofakeit.UUID(), ext)
	content := []byte(gofakeit.LoremIpsumSentence(12))
	return f.uploads.Store(ctx, name, content)
}

// pastTimestamp returns a unix timestamp spread over the configured window.
func (f *Factory) pastTimestamp() int64 {
	daysBack := f.rng.Intn(f.opts.MaxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute).
		Unix()
}

// fakeUsername generates a username that passes validation.
func fakeUsername() string {
	name := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	cleaned := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			cleaned = append(cleaned, c)
		}
	}
	out := string(cleaned)
	if len(out) > 20 {
		out = out[:20]
	}
	if err := validation.ValidateUsername(out); err != nil {
		// Extremely unlikely; fall back to a fully synthetic name.
		out = fmt.Sprintf("user_%d", gofakeit.Number(10000, 99999))
	}
	return out
}
