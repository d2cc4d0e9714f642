package service

import (
	"context"
	"errors"
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// TaskService handles task business logic. Every method is scoped to the
// owner id taken from the verified session.
type TaskService struct {
	repo repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create adds a task for ownerID. Completed defaults to false.
func (s *TaskService) Create(ctx context.Context, ownerID string, req model.CreateTaskRequest) (model.TaskResponse, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return model.TaskResponse{}, err
	}

	task := model.Task{
		OwnerID:     ownerID,
		Description: req.Description,
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return model.TaskResponse{}, err
	}
	return model.NewTaskResponse(task), nil
}

// List returns ownerID's tasks filtered, sorted and paged by q.
func (s *TaskService) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.TaskResponse, error) {
	tasks, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	return model.NewTaskResponses(tasks), nil
}

// Get returns one of ownerID's tasks.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (model.TaskResponse, error) {
	task, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return model.TaskResponse{}, taskErr(err)
	}
	return model.NewTaskResponse(*task), nil
}

// Update applies a partial update to one of ownerID's tasks. The patch is
// validated before the task is looked up.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		req.Description = &desc
	}
	if err := validateStruct(req); err != nil {
		return model.TaskResponse{}, err
	}

	task, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return model.TaskResponse{}, taskErr(err)
	}

	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return model.TaskResponse{}, taskErr(err)
	}
	return model.NewTaskResponse(*task), nil
}

// Delete removes one of ownerID's tasks and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (model.TaskResponse, error) {
	task, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return model.TaskResponse{}, taskErr(err)
	}
	return model.NewTaskResponse(*task), nil
}

func taskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}
