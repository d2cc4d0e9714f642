package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/mailer"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// UserService manages the authenticated user's own account.
type UserService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	hasher *crypto.Hasher
	mailer mailer.Mailer
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, hasher *crypto.Hasher, m mailer.Mailer, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		tasks:  tasks,
		hasher: hasher,
		mailer: m,
		logger: logger,
	}
}

// Profile returns the session user's public profile.
func (s *UserService) Profile(session model.Session) model.UserResponse {
	return model.NewUserResponse(session.User)
}

// UpdateProfile applies a partial update to the session user. A new password
// is hashed before it is stored.
func (s *UserService) UpdateProfile(ctx context.Context, session model.Session, req model.UpdateUserRequest) (model.UserResponse, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validateStruct(req); err != nil {
		return model.UserResponse{}, err
	}

	user := session.User
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, userErr(err)
	}

	return model.NewUserResponse(user), nil
}

// DeleteAccount removes the session user's tasks, then the user with its
// tokens and avatar, and sends the cancellation email. The two deletes are
// separate writes: a failure after the first leaves the user without tasks.
func (s *UserService) DeleteAccount(ctx context.Context, session model.Session) (model.UserResponse, error) {
	user := session.User

	n, err := s.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("deleting tasks of user %s: %w", user.ID, err)
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return model.UserResponse{}, userErr(err)
	}
	s.logger.InfoContext(ctx, "account deleted", "user_id", user.ID, "tasks_deleted", n)

	if err := s.mailer.SendCancellation(ctx, user.Email, user.Name); err != nil {
		s.logger.WarnContext(ctx, "cancellation email failed", "user_id", user.ID, "error", err)
	}

	return model.NewUserResponse(user), nil
}

// SetAvatar validates the uploaded image and stores it as a 250x250 PNG.
func (s *UserService) SetAvatar(ctx context.Context, session model.Session, filename string, r io.Reader) error {
	data, err := normalizeAvatar(filename, r)
	if err != nil {
		return err
	}
	return userErr(s.users.SetAvatar(ctx, session.User.ID, data))
}

// DeleteAvatar removes the session user's avatar, if any.
func (s *UserService) DeleteAvatar(ctx context.Context, session model.Session) error {
	return userErr(s.users.SetAvatar(ctx, session.User.ID, nil))
}

// Avatar returns the stored PNG avatar of any user.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.users.GetAvatar(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrAvatarNotFound) {
		return nil, ErrAvatarNotFound
	}
	return data, err
}
