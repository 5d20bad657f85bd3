package domain

// TaskStatus represents the current state of a task.
// Value object - immutable string enum.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every persisted status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// TaskPriority represents the priority level a client may attach to a task.
// It is validated on write but never stored.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Sort fields accepted by list queries.
const (
	SortByTitle     = "title"
	SortByStatus    = "status"
	SortByDueDate   = "due_date"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByPriority  = "priority"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Defaults applied when a list query does not name a sort.
const (
	DefaultOrderBy  = SortByCreatedAt
	DefaultOrderDir = SortDesc
)

// SortFields is the allow-list for sort_by.
var SortFields = []string{
	SortByTitle,
	SortByStatus,
	SortByDueDate,
	SortByCreatedAt,
	SortByUpdatedAt,
	SortByPriority,
}

// Search fields accepted by the search endpoint.
const (
	SearchFieldTitle       = "title"
	SearchFieldDescription = "description"
)

// BulkAction names an operation applied across many tasks.
type BulkAction string

const (
	BulkActionDelete         BulkAction = "delete"
	BulkActionMarkCompleted  BulkAction = "mark_completed"
	BulkActionMarkPending    BulkAction = "mark_pending"
	BulkActionMarkInProgress BulkAction = "mark_in_progress"
)

// BulkActions lists the accepted bulk actions.
var BulkActions = []BulkAction{
	BulkActionDelete,
	BulkActionMarkCompleted,
	BulkActionMarkPending,
	BulkActionMarkInProgress,
}

// TargetStatus returns the status a mark_* action sets.
// The second result is false for delete and unknown actions.
func (a BulkAction) TargetStatus() (TaskStatus, bool) {
	switch a {
	case BulkActionMarkCompleted:
		return TaskStatusCompleted, true
	case BulkActionMarkPending:
		return TaskStatusPending, true
	case BulkActionMarkInProgress:
		return TaskStatusInProgress, true
	default:
		return "", false
	}
}
