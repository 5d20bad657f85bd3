package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rezkam/taskboard/internal/domain"
)

// Service provides business logic for task management.
// It validates input, applies business rules and orchestrates the Repository.
type Service struct {
	repo      Repository
	validator *Validator
	rules     Rules
	metrics   serviceMetrics
	archiver  Archiver
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver makes ExportTasks store every export through a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

// NewService creates a new task service. A nil validator uses the wall clock.
func NewService(repo Repository, validator *Validator, opts ...Option) *Service {
	if validator == nil {
		validator = NewValidator(nil)
	}
	s := &Service{
		repo:      repo,
		validator: validator,
		metrics:   newServiceMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator returns the validator the service applies.
func (s *Service) Validator() *Validator {
	return s.validator
}

// CreateTask validates a creation payload and inserts the task.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) (*domain.Task, error) {
	task, err := s.validator.ValidateCreate(in)
	if err != nil {
		s.metrics.recordRejection(ctx, "create")
		return nil, err
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.recordMutation(ctx, "create", 1)
	slog.InfoContext(ctx, "task created", "task_id", created.ID, "status", created.Status)
	return created, nil
}

// GetTask retrieves a single task by ID.
func (s *Service) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrTaskNotFound
	}
	return s.repo.FindTaskByID(ctx, id)
}

// UpdateTask applies a partial update. The task must exist, present fields
// must validate and a new title must not be used by another task.
func (s *Service) UpdateTask(ctx context.Context, id int64, in TaskInput) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrTaskNotFound
	}

	var updated *domain.Task
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		current, err := tx.FindTaskByID(ctx, id)
		if err != nil {
			return err
		}

		params, err := s.validator.ValidateUpdate(current.ID, in)
		if err != nil {
			return err
		}
		if params.Title != nil {
			if err := s.rules.CheckTitleAvailable(ctx, tx, *params.Title, current.ID); err != nil {
				return err
			}
		}
		if len(params.UpdateMask) == 0 {
			updated = current
			return nil
		}

		updated, err = tx.UpdateTask(ctx, params)
		return err
	})
	if err != nil {
		s.recordFailure(ctx, "update", err)
		return nil, err
	}

	s.metrics.recordMutation(ctx, "update", 1)
	return updated, nil
}

// DeleteTask removes a task unless it is in progress.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrTaskNotFound
	}

	err := s.repo.Atomic(ctx, func(tx Repository) error {
		current, err := tx.FindTaskByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.rules.CheckDeletion(current); err != nil {
			return err
		}
		return tx.DeleteTask(ctx, id)
	})
	if err != nil {
		s.recordFailure(ctx, "delete", err)
		return err
	}

	s.metrics.recordMutation(ctx, "delete", 1)
	slog.InfoContext(ctx, "task deleted", "task_id", id)
	return nil
}

// CompleteTask marks a task completed unless it already is.
func (s *Service) CompleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrTaskNotFound
	}

	var completed *domain.Task
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		current, err := tx.FindTaskByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.rules.CheckCompletion(current); err != nil {
			return err
		}
		status := domain.TaskStatusCompleted
		completed, err = tx.UpdateTask(ctx, domain.UpdateTaskParams{
			TaskID:     id,
			UpdateMask: []string{domain.FieldStatus},
			Status:     &status,
		})
		return err
	})
	if err != nil {
		s.recordFailure(ctx, "complete", err)
		return nil, err
	}

	s.metrics.recordMutation(ctx, "complete", 1)
	return completed, nil
}

// Statistics returns task counts, recomputed on every call.
func (s *Service) Statistics(ctx context.Context) (*domain.Statistics, error) {
	stats, err := s.repo.Statistics(ctx, domain.OverdueCutoff(s.validator.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats, nil
}

func (s *Service) recordFailure(ctx context.Context, op string, err error) {
	if _, ok := domain.AsValidationError(err); ok {
		s.metrics.recordRejection(ctx, op)
		return
	}
	if errors.Is(err, domain.ErrTaskNotFound) {
		return
	}
	slog.ErrorContext(ctx, "task operation failed", "operation", op, "error", err)
}
