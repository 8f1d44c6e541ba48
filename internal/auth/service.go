package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexocrm/nexo/internal/cache"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrValidation         = errors.New("validation failed")
)

const minPasswordLen = 8

// Service owns the session lifecycle: registration, login, logout, and
// password changes. Sessions live in the cache; an access token is valid only
// while its session record exists.
type Service struct {
	store      store.Store
	cache      cache.Cache
	secret     []byte
	accessTTL  time.Duration
	sessionTTL time.Duration
}

func NewService(s store.Store, c cache.Cache, secret []byte, accessTTL, sessionTTL time.Duration) *Service {
	return &Service{store: s, cache: c, secret: secret, accessTTL: accessTTL, sessionTTL: sessionTTL}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

// Register creates a user account. The email is normalized to lower case so
// logins are case-insensitive.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login exchanges credentials for an access token backed by a cache session.
// Unknown emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.New()
	if err := s.cache.SetSession(ctx, sessionID, user.ID, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := GenerateToken(user.ID, sessionID, s.secret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.accessTTL),
	}, nil
}

// Logout revokes the session. A cache failure is logged but not surfaced: the
// client discards its token either way, and the session expires on its own
// TTL.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) {
	if err := s.cache.DeleteSession(ctx, sessionID); err != nil {
		slog.Warn("session revocation failed, session will expire by TTL",
			"session_id", sessionID, "error", err)
	}
}

// ForgotPassword requests a password reset. It never reveals whether the
// email is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("forgot password lookup failed", "error", err)
		}
		return
	}
	// Reset delivery goes through the mail pipeline; here we only record the
	// request.
	slog.Info("password reset requested", "user_id", user.ID)
}

// ChangePassword sets a new password for an authenticated user.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, userID, string(hash))
}
