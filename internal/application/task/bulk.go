package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rezkam/taskboard/internal/domain"
)

// BulkAction validates a bulk request and applies it to every selected task
// inside one transaction. The batch is rejected as a whole when any ID is
// unknown, and a delete batch is rejected when any task is in progress.
func (s *Service) BulkAction(ctx context.Context, in BulkInput) (*domain.BulkResult, error) {
	cmd, err := s.validator.ValidateBulk(in)
	if err != nil {
		s.metrics.recordRejection(ctx, "bulk")
		return nil, err
	}

	var result *domain.BulkResult
	err = s.repo.Atomic(ctx, func(tx Repository) error {
		tasks, err := tx.FindTasksByIDs(ctx, cmd.IDs)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		if len(tasks) != len(cmd.IDs) {
			verr := domain.NewValidationError()
			verr.Add("task_ids", MsgTaskIDsMissing)
			return verr
		}

		if cmd.Action == domain.BulkActionDelete {
			result, err = s.bulkDelete(ctx, tx, tasks, cmd.IDs)
			return err
		}
		status, _ := cmd.Action.TargetStatus()
		result, err = s.bulkSetStatus(ctx, tx, cmd.IDs, status)
		if result != nil {
			result.Action = cmd.Action
		}
		return err
	})
	if err != nil {
		s.recordFailure(ctx, "bulk", err)
		return nil, err
	}

	s.metrics.recordMutation(ctx, "bulk_"+string(cmd.Action), result.Count)
	slog.InfoContext(ctx, "bulk action applied",
		"action", cmd.Action,
		"requested", len(cmd.IDs),
		"affected", result.Count)
	return result, nil
}

func (s *Service) bulkDelete(ctx context.Context, tx Repository, tasks []domain.Task, ids []int64) (*domain.BulkResult, error) {
	for i := range tasks {
		if err := s.rules.CheckDeletion(&tasks[i]); err != nil {
			return nil, err
		}
	}
	n, err := tx.DeleteTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return &domain.BulkResult{
		Action:  domain.BulkActionDelete,
		Count:   n,
		Message: fmt.Sprintf("Successfully deleted %d task(s).", n),
	}, nil
}

func (s *Service) bulkSetStatus(ctx context.Context, tx Repository, ids []int64, status domain.TaskStatus) (*domain.BulkResult, error) {
	n, err := tx.UpdateTasksStatus(ctx, ids, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return &domain.BulkResult{
		Count:   n,
		Message: fmt.Sprintf("Successfully marked %d task(s) as %s.", n, strings.ToLower(status.Label())),
	}, nil
}
