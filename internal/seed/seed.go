package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/service"
	"matrixart/internal/storage"
)

// Seeder populates the flat-file store with demo users and posts.
type Seeder struct {
	backend storage.Backend
	factory *Factory
}

// NewSeeder wires a Seeder over the given backend and uploads area.
func NewSeeder(backend storage.Backend, uploads *service.UploadService, opts Options) *Seeder {
	users := repository.NewUserRepository(storage.NewCollection[models.User](backend, "users.json"))
	posts := repository.NewPostRepository(storage.NewCollection[models.Post](backend, "posts.json"))
	counters := repository.NewCounterRepository(storage.NewDocument[models.Counters](backend, "counters.json"))

	return &Seeder{
		backend: backend,
		factory: NewFactory(users, posts, counters, uploads, opts),
	}
}

// ClearAll resets every collection to its empty state.
func (s *Seeder) ClearAll() error {
	empty, _ := json.Marshal([]struct{}{})
	for _, name := range []string{"users.json", "posts.json", "sessions.json"} {
		if err := s.backend.Write(name, empty); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	counters, err := json.Marshal(models.Counters{UserID: 1, PostID: 1})
	if err != nil {
		return err
	}
	if err := s.backend.Write("counters.json", counters); err != nil {
		return fmt.Errorf("failed to clear counters: %w", err)
	}
	log.Println("Cleared all collections")
	return nil
}

// Run creates numUsers accounts and numPosts posts. Roughly a quarter
// of the posts are anonymous, the rest are spread over the users.
func (s *Seeder) Run(ctx context.Context, numUsers, numPosts int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed user %d: %w", i+1, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	anonymous := 0
	for i := 0; i < numPosts; i++ {
		var author *models.User
		if len(users) > 0 && s.factory.rng.Intn(4) != 0 {
			author = users[s.factory.rng.Intn(len(users))]
		} else {
			anonymous++
		}
		if _, err := s.factory.CreatePost(ctx, author); err != nil {
			return fmt.Errorf("failed to seed post %d: %w", i+1, err)
		}
	}
	log.Printf("Seeded %d posts (%d anonymous)", numPosts, anonymous)

	return nil
}
