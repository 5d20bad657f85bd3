package domain

import "time"

// Task is the single persisted entity: a to-do item with a status and an
// optional calendar due date.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	// DueDate is midnight UTC of the due day when set.
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOverdue reports whether the task is open and its due date lies before now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || !t.Status.IsOpen() {
		return false
	}
	return t.DueDate.Before(now.UTC())
}

// IsCompleted reports whether the task is in the completed status.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Field names for UpdateTaskParams.UpdateMask.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldDueDate     = "due_date"
)

// UpdateTaskParams describes a partial update.
// Only fields listed in UpdateMask are written; a listed field whose value
// is nil is cleared.
type UpdateTaskParams struct {
	TaskID     int64
	UpdateMask []string

	Title       *string
	Description *string
	Status      *TaskStatus
	DueDate     *time.Time
}

// Has reports whether field is part of the update mask.
func (p UpdateTaskParams) Has(field string) bool {
	for _, f := range p.UpdateMask {
		if f == field {
			return true
		}
	}
	return false
}
