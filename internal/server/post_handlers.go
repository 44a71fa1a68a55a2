package server

import (
	"io"

	"matrixart/internal/middleware"
	"matrixart/internal/models"
	"matrixart/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	FilePath        string `json:"file_path"`
	FileType        string `json:"file_type"`
	Anonymous       bool   `json:"anonymous"`
	AuthorName      string `json:"author_name"`
	AuthorInstagram string `json:"author_instagram"`
	AuthorTelegram  string `json:"author_telegram"`
	AnonUsername    string `json:"anon_username"`
}

// GetPosts returns one page of the feed, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	page, err := s.postService.List(c.UserContext(), p.Page, p.PageSize)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      page.Items,
		"pagination": page.PageInfo,
	})
}

// GetPost returns a single post and bumps its view counter.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// CreatePost creates a post referencing a previously uploaded file. A
// logged-in caller owns the post unless the body requests anonymity;
// everyone else posts anonymously with free-text credits.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		FileType:    models.FileType(req.FileType),
	}

	identity := middleware.CallerIdentity(c)
	if identity != nil && identity.Authenticated() && !req.Anonymous {
		in.Authorship = models.Identified{UserID: identity.User.ID}
	} else {
		anonUsername := req.AnonUsername
		if anonUsername == "" && identity != nil {
			anonUsername = identity.AnonUsername
		}
		in.Authorship = models.Anonymous{
			DisplayName:  req.AuthorName,
			Instagram:    req.AuthorInstagram,
			Telegram:     req.AuthorTelegram,
			AnonUsername: anonUsername,
		}
	}

	post, intents, err := s.postService.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	s.applyCookieIntents(c, intents...)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UploadFile accepts a multipart file upload and stores it under a
// generated name. The post referencing it is created separately.
func (s *Server) UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	if fileHeader.Size > s.config.MaxUploadSizeBytes() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File too large"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unreadable upload"))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	stored, err := s.uploadService.Store(c.UserContext(), fileHeader.Filename, content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}
