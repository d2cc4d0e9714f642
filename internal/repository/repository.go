// Package repository holds the credential and task stores. Three backends
// implement the same interfaces: MongoDB (the default), MySQL, and an
// in-memory store used by tests and local runs.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrTaskNotFound   = errors.New("task not found")
	ErrAvatarNotFound = errors.New("avatar not found")
)

// UserRepository persists users together with their session tokens and avatar.
type UserRepository interface {
	// Create inserts user and sets its ID and timestamps.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByToken returns the user with the given id only if token is in its
	// active token list.
	GetByToken(ctx context.Context, id, token string) (*model.User, error)
	// Update overwrites name, email, password hash and age, and bumps UpdatedAt.
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error

	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	// SetAvatar stores data as the user's avatar; nil data removes it.
	SetAvatar(ctx context.Context, id string, data []byte) error
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}

// TaskRepository persists tasks. Every lookup is scoped by owner: a task that
// belongs to someone else is reported as ErrTaskNotFound.
type TaskRepository interface {
	// Create inserts task and sets its ID and timestamps.
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Task, error)
	List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error)
	// Update overwrites description and completed, and bumps UpdatedAt.
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, id string) (*model.Task, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// now is the clock used for createdAt/updatedAt. Millisecond precision is what
// both MongoDB and DATETIME(3) columns keep.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
