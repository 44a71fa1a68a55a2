package service

import (
	"context"

	"matrixart/internal/models"
	"matrixart/internal/repository"
	"matrixart/internal/validation"
)

// UserService implements profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is a partial profile update: nil fields are left
// untouched.
type UpdateProfileInput struct {
	UserID          uint
	DisplayName     *string
	InstagramHandle *string
	TelegramHandle  *string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the public view for a user ID.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := user.PublicView()
	return &view, nil
}

// GetByUsername returns the public view for a username (case-insensitive).
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	view := user.PublicView()
	return &view, nil
}

// UpdateProfile applies the provided fields and returns the updated
// public view. Fails if the user no longer exists.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxFieldLen = 100

	if in.DisplayName != nil {
		if len(*in.DisplayName) > maxFieldLen {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = validation.SanitizeText(*in.DisplayName)
	}
	if in.InstagramHandle != nil {
		if len(*in.InstagramHandle) > maxFieldLen {
			return nil, models.NewValidationError("Instagram handle too long (max 100 characters)")
		}
		user.InstagramHandle = validation.SanitizeText(*in.InstagramHandle)
	}
	if in.TelegramHandle != nil {
		if len(*in.TelegramHandle) > maxFieldLen {
			return nil, models.NewValidationError("Telegram handle too long (max 100 characters)")
		}
		user.TelegramHandle = validation.SanitizeText(*in.TelegramHandle)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	view := user.PublicView()
	return &view, nil
}
