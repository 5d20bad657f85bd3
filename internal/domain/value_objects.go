package domain

import (
	"fmt"
	"slices"
	"strings"
)

// NewTaskStatus validates and creates a TaskStatus.
// Matching is exact: "Pending" is not a valid status.
func NewTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if slices.Contains(TaskStatuses, status) {
		return status, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidTaskStatus, s)
}

// IsOpen reports whether a task in this status still counts towards overdue work.
func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// Label returns the human readable form used in views and bulk messages.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Color maps a status to the badge colour the web UI renders.
func (s TaskStatus) Color() string {
	switch s {
	case TaskStatusPending:
		return "warning"
	case TaskStatusInProgress:
		return "info"
	case TaskStatusCompleted:
		return "success"
	default:
		return "secondary"
	}
}

// NewTaskPriority validates and creates a TaskPriority.
func NewTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)

	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return priority, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskPriority, s)
	}
}

// NewBulkAction validates and creates a BulkAction.
func NewBulkAction(s string) (BulkAction, error) {
	action := BulkAction(s)
	if slices.Contains(BulkActions, action) {
		return action, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidBulkAction, s)
}

// IsSortField reports whether field is in the sort allow-list.
func IsSortField(field string) bool {
	return slices.Contains(SortFields, field)
}

// NormalizeSort resolves sort_by and sort_order into a supported pair.
// Unknown fields fall back to created_at and unknown directions to desc.
func NormalizeSort(orderBy, orderDir string) (string, string) {
	if !IsSortField(orderBy) {
		orderBy = DefaultOrderBy
	}
	orderDir = strings.ToLower(orderDir)
	if orderDir != SortAsc && orderDir != SortDesc {
		orderDir = DefaultOrderDir
	}
	return orderBy, orderDir
}
