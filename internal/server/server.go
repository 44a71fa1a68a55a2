// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"matrixart/internal/cache"
	"matrixart/internal/config"
	"matrixart/internal/middleware"
	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/service"
	"matrixart/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	postRepo    repository.PostRepository
	counterRepo repository.CounterRepository

	authService   *service.AuthService
	userService   *service.UserService
	postService   *service.PostService
	uploadService *service.UploadService
}

// NewServer creates a new server instance with all dependencies. The data
// directory and its collections are created on first write.
func NewServer(cfg *config.Config) (*Server, error) {
	backend := storage.NewFileBackend(cfg.DataDir)
	if err := backend.EnsureDir(); err != nil {
		return nil, fmt.Errorf("data directory setup failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, backend, cache.GetClient())
}

// NewServerWithDeps creates a Server using an already-initialized storage
// backend and Redis client. Use this in tests.
func NewServerWithDeps(cfg *config.Config, backend storage.Backend, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(storage.NewCollection[models.User](backend, "users.json"))
	sessionRepo := repository.NewSessionRepository(storage.NewCollection[models.Session](backend, "sessions.json"))
	postRepo := repository.NewPostRepository(storage.NewCollection[models.Post](backend, "posts.json"))
	counterRepo := repository.NewCounterRepository(storage.NewDocument[models.Counters](backend, "counters.json"))

	uploadService := service.NewUploadService(cfg)
	if err := uploadService.EnsureDir(); err != nil {
		return nil, fmt.Errorf("uploads directory setup failed: %w", err)
	}

	prom := middleware.InitMetrics("matrixart-api")

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		postRepo:       postRepo,
		counterRepo:    counterRepo,
		uploadService:  uploadService,
	}
	server.authService = service.NewAuthService(userRepo, sessionRepo, counterRepo, cfg.SessionLifetime())
	server.userService = service.NewUserService(userRepo)
	server.postService = service.NewPostService(postRepo, userRepo, counterRepo, uploadService, cfg.AnonCookieLifetime())

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry request spans
	app.Use(middleware.TracingMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// Resolve the caller on every request; handlers decide what to require.
	app.Use(middleware.ResolveIdentity(s.authService))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// API status
	app.Get("/", s.Status)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Matrix Art Platform Metrics",
	}))

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Post("/check-username", s.CheckUsername)

	// Post routes
	posts := app.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/upload", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "upload"), s.UploadFile)
	posts.Get("/:id", s.GetPost)

	// Uploaded media is served verbatim
	app.Static("/uploads", s.config.UploadsDir)

	// User routes
	user := app.Group("/user")
	user.Get("/profile", middleware.AuthRequired, s.GetMyProfile)
	user.Put("/profile", middleware.AuthRequired, s.UpdateMyProfile)
	user.Get("/:username", s.GetUserProfile)
	user.Get("/:username/posts", s.GetUserPosts)
}

// Status reports the API surface; mirrors what a bare GET / returns.
func (s *Server) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "online",
		"message": "Matrix Art Platform API v1.0",
		"endpoints": fiber.Map{
			"auth":  "/auth/*",
			"posts": "/posts/*",
			"user":  "/user/*",
		},
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Storage must answer;
// Redis is optional and only degrades rate limiting when absent.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storageStatus := "healthy"
	if _, err := s.userRepo.List(ctx); err != nil {
		storageStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storageStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Matrix Art Platform API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"storage": storageStatus,
			"redis":   redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.BuildApp()
	s.app = app

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// BuildApp assembles the Fiber app with all middleware and routes.
func (s *Server) BuildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Matrix Art Platform API",
		BodyLimit: int(s.config.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
