package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

type memoryUser struct {
	user   model.User
	tokens []string
	avatar []byte
}

// MemoryStore is a process-local backend implementing both UserRepository and
// TaskRepository. Tasks are kept in insertion order, which is the tie-breaker
// for sorted listings.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
	tasks []model.Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memoryUser)}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return (*memoryUsers)(s) }

// Tasks returns the store as a TaskRepository.
func (s *MemoryStore) Tasks() TaskRepository { return (*memoryTasks)(s) }

type memoryUsers MemoryStore

func (r *memoryUsers) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return ErrDuplicateEmail
	}

	ts := now()
	user.ID = uuid.NewString()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	r.users[user.ID] = &memoryUser{user: *user}
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := u.user
	return &user, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.user.Email == email {
			user := u.user
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUsers) GetByToken(_ context.Context, id, token string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || !slices.Contains(u.tokens, token) {
		return nil, ErrUserNotFound
	}
	user := u.user
	return &user, nil
}

func (r *memoryUsers) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return ErrDuplicateEmail
	}

	user.CreatedAt = u.user.CreatedAt
	user.UpdatedAt = now()
	u.user = *user
	return nil
}

func (r *memoryUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUsers) AddToken(_ context.Context, id, token string) error {
	return r.withUser(id, func(u *memoryUser) {
		u.tokens = append(u.tokens, token)
	})
}

func (r *memoryUsers) RemoveToken(_ context.Context, id, token string) error {
	return r.withUser(id, func(u *memoryUser) {
		u.tokens = slices.DeleteFunc(u.tokens, func(t string) bool { return t == token })
	})
}

func (r *memoryUsers) ClearTokens(_ context.Context, id string) error {
	return r.withUser(id, func(u *memoryUser) {
		u.tokens = nil
	})
}

func (r *memoryUsers) SetAvatar(_ context.Context, id string, data []byte) error {
	return r.withUser(id, func(u *memoryUser) {
		u.avatar = slices.Clone(data)
	})
}

func (r *memoryUsers) GetAvatar(_ context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if len(u.avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return slices.Clone(u.avatar), nil
}

func (r *memoryUsers) withUser(id string, fn func(u *memoryUser)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(u)
	return nil
}

// emailTaken must be called with the lock held.
func (r *memoryUsers) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.user.Email == email {
			return true
		}
	}
	return false
}

type memoryTasks MemoryStore

func (r *memoryTasks) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := now()
	task.ID = uuid.NewString()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *memoryTasks) GetByID(_ context.Context, ownerID, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	task := r.tasks[i]
	return &task, nil
}

func (r *memoryTasks) List(_ context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	r.mu.RLock()
	var tasks []model.Task
	for _, t := range r.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		tasks = append(tasks, t)
	}
	r.mu.RUnlock()

	if q.SortField.Valid() {
		less := taskLess(q.SortField)
		sort.SliceStable(tasks, func(i, j int) bool {
			if q.SortDesc {
				return less(tasks[j], tasks[i])
			}
			return less(tasks[i], tasks[j])
		})
	}

	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Skip >= int64(len(tasks)) {
		return []model.Task{}, nil
	}
	tasks = tasks[q.Skip:]
	if q.Limit > 0 && q.Limit < int64(len(tasks)) {
		tasks = tasks[:q.Limit]
	}
	return tasks, nil
}

func (r *memoryTasks) Update(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(task.OwnerID, task.ID)
	if i < 0 {
		return ErrTaskNotFound
	}
	task.CreatedAt = r.tasks[i].CreatedAt
	task.UpdatedAt = now()
	r.tasks[i] = *task
	return nil
}

func (r *memoryTasks) Delete(_ context.Context, ownerID, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	task := r.tasks[i]
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return &task, nil
}

func (r *memoryTasks) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.tasks)
	r.tasks = slices.DeleteFunc(r.tasks, func(t model.Task) bool { return t.OwnerID == ownerID })
	return int64(before - len(r.tasks)), nil
}

// indexOf must be called with the lock held.
func (r *memoryTasks) indexOf(ownerID, id string) int {
	return slices.IndexFunc(r.tasks, func(t model.Task) bool {
		return t.ID == id && t.OwnerID == ownerID
	})
}

func taskLess(field model.SortField) func(a, b model.Task) bool {
	switch field {
	case model.SortByDescription:
		return func(a, b model.Task) bool { return strings.Compare(a.Description, b.Description) < 0 }
	case model.SortByCompleted:
		return func(a, b model.Task) bool { return !a.Completed && b.Completed }
	case model.SortByUpdatedAt:
		return func(a, b model.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return func(a, b model.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
