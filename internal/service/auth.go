package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/mailer"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// AuthService handles signup, login and session tokens.
type AuthService struct {
	users     repository.UserRepository
	hasher    *crypto.Hasher
	mailer    mailer.Mailer
	logger    *slog.Logger
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService. A zero expiry issues tokens that
// stay valid until they are logged out.
func NewAuthService(users repository.UserRepository, hasher *crypto.Hasher, m mailer.Mailer, logger *slog.Logger, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		mailer:    m,
		logger:    logger,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Signup creates a new user account, opens a session for it and sends the
// welcome email.
func (s *AuthService) Signup(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Age:          req.Age,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}

	return model.AuthResponse{User: model.NewUserResponse(*user), Token: token}, nil
}

// Login checks the credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: model.NewUserResponse(*user), Token: token}, nil
}

// Logout revokes the token the session was opened with.
func (s *AuthService) Logout(ctx context.Context, session model.Session) error {
	return userErr(s.users.RemoveToken(ctx, session.User.ID, session.Token))
}

// LogoutAll revokes every token of the session's user.
func (s *AuthService) LogoutAll(ctx context.Context, session model.Session) error {
	return userErr(s.users.ClearTokens(ctx, session.User.ID))
}

// Authenticate verifies a bearer token. The signature must be valid and the
// token must still be in its user's active token list.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Session, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return model.Session{}, ErrUnauthorized
	}

	user, err := s.users.GetByToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Session{}, ErrUnauthorized
		}
		return model.Session{}, fmt.Errorf("loading session user: %w", err)
	}

	return model.Session{User: *user, Token: token}, nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (string, error) {
	token, err := crypto.GenerateToken(userID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", err
	}
	if err := s.users.AddToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
