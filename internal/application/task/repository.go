package task

import (
	"context"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// Repository defines storage operations for task management.
// Create and update operations return the task as persisted, with the
// timestamps assigned by the storage layer.
type Repository interface {
	// CreateTask inserts a task and assigns its ID and timestamps.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindTaskByID returns domain.ErrTaskNotFound if the task doesn't exist.
	// Inside Atomic the row is locked until the transaction ends where the
	// backend supports it.
	FindTaskByID(ctx context.Context, id int64) (*domain.Task, error)

	// FindTasksByIDs returns the tasks among ids that exist, in ID order.
	FindTasksByIDs(ctx context.Context, ids []int64) ([]domain.Task, error)

	// FindTasks applies filters, sorting and pagination.
	// TotalCount ignores Limit and Offset.
	FindTasks(ctx context.Context, params domain.ListTasksParams) (*domain.PagedResult, error)

	// UpdateTask writes the fields named in params.UpdateMask and refreshes updated_at.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, params domain.UpdateTaskParams) (*domain.Task, error)

	// DeleteTask returns domain.ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id int64) error

	// TitleExists reports whether a task other than excludeID has exactly this title.
	// An excludeID of 0 checks every task.
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)

	// UpdateTasksStatus sets status on every task in ids and returns the rows affected.
	UpdateTasksStatus(ctx context.Context, ids []int64, status domain.TaskStatus) (int, error)

	// DeleteTasks removes every task in ids and returns the rows affected.
	DeleteTasks(ctx context.Context, ids []int64) (int, error)

	// Statistics counts tasks per status and the open tasks due before overdueBefore.
	Statistics(ctx context.Context, overdueBefore time.Time) (*domain.Statistics, error)

	// Atomic executes fn within a transaction.
	// All operations inside fn succeed together or fail together.
	Atomic(ctx context.Context, fn func(tx Repository) error) error
}

// Archiver stores a copy of an export and returns where it was written.
type Archiver interface {
	Archive(ctx context.Context, export *domain.TaskExport) (string, error)
}
