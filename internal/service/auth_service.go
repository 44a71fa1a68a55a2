// Package service implements the application's core operations on top of
// the repository layer. Services return plain results or AppError values
// and hand cookie changes back to the HTTP layer as intents.
package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"time"

	"matrixart/internal/models"
	"matrixart/internal/observability"
	"matrixart/internal/repository"
	"matrixart/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordLength   = 15
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// AuthService implements registration, login, logout, and caller resolution.
type AuthService struct {
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	counterRepo     repository.CounterRepository
	sessionLifetime time.Duration
	now             func() time.Time
}

// NewAuthService creates an AuthService with the given session lifetime.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	counterRepo repository.CounterRepository,
	sessionLifetime time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		counterRepo:     counterRepo,
		sessionLifetime: sessionLifetime,
		now:             time.Now,
	}
}

// RegisterInput carries the fields a new account is created from. The
// password is generated server-side, never chosen by the user.
type RegisterInput struct {
	Username        string
	DisplayName     string
	InstagramHandle string
	TelegramHandle  string
}

// RegisterResult returns the allocated ID and the generated password.
// The plaintext password is surfaced exactly once and never persisted.
type RegisterResult struct {
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	GeneratedPassword string `json:"generated_password"`
}

// LoginResult is the successful outcome of a login.
type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt int64               `json:"expires_at"`
	User      models.PublicUser   `json:"user"`
	Cookie    models.CookieIntent `json:"-"`
}

// CheckUsername reports whether the candidate is available. An invalid
// candidate is a validation error, not merely unavailable.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return false, models.NewValidationError(err.Error())
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// Register creates a new account with a generated password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	span, ctx := observability.NewSpan(ctx, "auth.register")
	defer span.End()

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	password := generatePassword(in.Username, s.now())
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	id, err := s.counterRepo.NextUserID(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:              id,
		Username:        in.Username,
		PasswordHash:    string(hashed),
		DisplayName:     validation.SanitizeText(in.DisplayName),
		InstagramHandle: validation.SanitizeText(in.InstagramHandle),
		TelegramHandle:  validation.SanitizeText(in.TelegramHandle),
		CreatedAt:       s.now().Unix(),
		IsActive:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("user.id", int(user.ID)))

	return &RegisterResult{
		UserID:            user.ID,
		Username:          user.Username,
		GeneratedPassword: password,
	}, nil
}

// Login verifies credentials and issues a new session. Expired sessions
// are evicted opportunistically on every successful login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	span, ctx := observability.NewSpan(ctx, "auth.login")
	defer span.End()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Account is inactive")
	}

	if err := s.sessionRepo.PruneExpired(ctx); err != nil {
		return nil, err
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	expires := now.Add(s.sessionLifetime)
	session := models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now.Unix(),
		Expires:   expires.Unix(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("user.id", int(user.ID)))

	observability.SessionsIssuedTotal.Inc()

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.Expires,
		User:      user.PublicView(),
		Cookie: models.CookieIntent{
			Name:    models.SessionCookieName,
			Value:   token,
			Expires: expires,
		},
	}, nil
}

// Logout removes the session if present. Logging out an unknown token
// succeeds; the returned intents clear both auth cookies either way.
func (s *AuthService) Logout(ctx context.Context, token string) ([]models.CookieIntent, error) {
	if token != "" {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			return nil, err
		}
	}
	return []models.CookieIntent{
		models.ClearCookieIntent(models.SessionCookieName),
		models.ClearCookieIntent(models.AnonCookieName),
	}, nil
}

// ResolveCaller maps request credentials to an identity. A live session
// wins; otherwise the anon-username cookie yields a synthetic identity;
// otherwise the caller is nil.
func (s *AuthService) ResolveCaller(ctx context.Context, rc models.RequestContext) (*models.Identity, error) {
	if rc.SessionToken != "" {
		session, err := s.sessionRepo.GetByToken(ctx, rc.SessionToken)
		if err != nil {
			return nil, err
		}
		if session != nil {
			user, err := s.userRepo.GetByID(ctx, session.UserID)
			if err == nil {
				return &models.Identity{User: user}, nil
			}
			// A session pointing at a vanished user resolves to nobody.
			if appErr, ok := err.(*models.AppError); !ok || appErr.Code != "NOT_FOUND" {
				return nil, err
			}
		}
	}

	if rc.AnonUsername != "" {
		return &models.Identity{AnonUsername: rc.AnonUsername}, nil
	}

	return nil, nil
}

// generatePassword derives a pseudo-random password from the username,
// the wall clock, and a random nonce, drawn from a fixed alphabet.
func generatePassword(username string, now time.Time) string {
	var nonce [4]byte
	_, _ = rand.Read(nonce[:])

	seed := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s%d%d",
		username, now.Unix(), binary.BigEndian.Uint32(nonce[:]))))

	out := make([]byte, passwordLength)
	for i := range out {
		idx := (seed + uint32(i)*7) % uint32(len(passwordAlphabet))
		out[i] = passwordAlphabet[idx]
	}
	return string(out)
}

// generateSessionToken produces a 256-bit cryptographically random token
// encoded as hex.
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand failure: %w", err)
	}
	return hex.EncodeToString(b), nil
}
