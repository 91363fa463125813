package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/repository"
)

// TaskService implements task CRUD with per-user ownership checks.
type TaskService interface {
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Task, error)
	Create(ctx context.Context, userID, title, detail string, deadline time.Time) (*models.Task, error)
	GetOwned(ctx context.Context, userID string, taskID int64) (*models.Task, error)
	Update(ctx context.Context, userID string, taskID int64, title, detail string, deadline time.Time) error
	Delete(ctx context.Context, userID string, rawIDs []string) error
	Restore(ctx context.Context, userID string, rawIDs []string) error
}

type taskService struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, logger *slog.Logger) TaskService {
	return &taskService{tasks: tasks, logger: logger}
}

// List returns the user's tasks filtered and ordered per opts.
func (s *taskService) List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Task, error) {
	return s.tasks.List(ctx, userID, opts)
}

// Create inserts a new task owned by the user.
func (s *taskService) Create(ctx context.Context, userID, title, detail string, deadline time.Time) (*models.Task, error) {
	task := &models.Task{
		UserID:   userID,
		Title:    title,
		Detail:   detail,
		Deadline: deadline,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", userID))
	return task, nil
}

// GetOwned loads a task and enforces ownership. A missing task is
// NotFound; someone else's task is Forbidden.
func (s *taskService) GetOwned(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.NewNotFoundError("task")
	}
	if task.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

// Update overwrites the editable fields of an owned task.
func (s *taskService) Update(ctx context.Context, userID string, taskID int64, title, detail string, deadline time.Time) error {
	if _, err := s.GetOwned(ctx, userID, taskID); err != nil {
		return err
	}
	return s.tasks.Update(ctx, taskID, title, detail, deadline)
}

// Delete soft-deletes the given tasks. The operation is all or nothing:
// every ID must parse, exist, and belong to the user.
func (s *taskService) Delete(ctx context.Context, userID string, rawIDs []string) error {
	return s.setDeleted(ctx, userID, rawIDs, true)
}

// Restore clears the deleted flag on the given tasks with the same
// all-or-nothing semantics as Delete.
func (s *taskService) Restore(ctx context.Context, userID string, rawIDs []string) error {
	return s.setDeleted(ctx, userID, rawIDs, false)
}

func (s *taskService) setDeleted(ctx context.Context, userID string, rawIDs []string, deleted bool) error {
	ids, err := parseIDs(rawIDs)
	if err != nil {
		return err
	}

	tasks, err := s.tasks.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(tasks) != len(ids) {
		return apperrors.NewNotFoundError("task")
	}
	for _, t := range tasks {
		if t.UserID != userID {
			return apperrors.ErrForbidden
		}
	}

	if err := s.tasks.SetDeleted(ctx, ids, deleted); err != nil {
		return err
	}
	s.logger.Info("tasks updated",
		slog.Int("count", len(ids)),
		slog.Bool("deleted", deleted),
		slog.String("user_id", userID))
	return nil
}

// parseIDs converts form values to numeric IDs, rejecting the whole batch
// on the first malformed value.
func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return nil, apperrors.ErrBadRequest.WithMessage("Invalid task ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
