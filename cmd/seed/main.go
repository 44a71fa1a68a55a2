// Command main populates the flat-file store with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"matrixart/internal/config"
	"matrixart/internal/seed"
	"matrixart/internal/service"
	"matrixart/internal/storage"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clear all collections before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store the demo password unhashed (fast dev seeding)")
	flag.Parse()

	log.Println("Matrix Art Platform seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	backend := storage.NewFileBackend(cfg.DataDir)
	if err := backend.EnsureDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	uploads := service.NewUploadService(cfg)
	if err := uploads.EnsureDir(); err != nil {
		log.Fatalf("Failed to create uploads directory: %v", err)
	}

	seeder := seed.NewSeeder(backend, uploads, seed.Options{SkipBcrypt: *skipBcrypt})

	if *shouldClean {
		if err := seeder.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := seeder.Run(context.Background(), *numUsers, *numPosts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done. All seeded accounts use the password %q.", seed.DemoPassword)
}
