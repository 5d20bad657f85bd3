package domain

import (
	"math"
	"time"
)

// ListTasksParams contains parameters for listing tasks with filtering, sorting, and pagination.
//
// Common use cases:
//   - "Overdue work": OverdueBefore=OverdueCutoff(now)
//   - "Everything due in July": DueFrom=2024-07-01, DueTo=2024-07-31
//   - Paginated search: Search="docs", Limit=10, Offset=20 for page 3
type ListTasksParams struct {
	// Optional filters (nil = no filter applied)
	Status        *TaskStatus
	DueFrom       *time.Time // inclusive lower bound on due_date
	DueTo         *time.Time // inclusive upper bound on due_date
	OverdueBefore *time.Time // open tasks with due_date strictly before this date
	Search        *string    // case-insensitive substring
	SearchFields  []string   // columns Search applies to (empty = title and description)

	// Sorting (empty uses defaults: created_at field, desc direction)
	OrderBy  string
	OrderDir string

	// Pagination. Limit 0 returns every matching row.
	Limit  int
	Offset int
}

// PagedResult contains tasks matching the query parameters.
type PagedResult struct {
	Items      []Task
	TotalCount int
}

// TaskPage is a page of tasks with the numbers needed to render pagination.
type TaskPage struct {
	Items   []Task
	Total   int
	Page    int
	PerPage int
}

// LastPage is the number of the final page; at least 1.
func (p TaskPage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// From is the 1-based position of the first item on the page, or 0 when empty.
func (p TaskPage) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return PageOffset(p.Page, p.PerPage) + 1
}

// PageOffset returns how many rows precede a 1-based page. It saturates at
// math.MaxInt, so a page number too large to address still selects an
// empty page instead of wrapping around to the first one.
func PageOffset(page, perPage int) int {
	if page <= 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// To is the 1-based position of the last item on the page, or 0 when empty.
func (p TaskPage) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}

// HasMorePages reports whether a later page exists.
func (p TaskPage) HasMorePages() bool {
	return p.Page < p.LastPage()
}

// Statistics aggregates task counts. Total equals the sum of the three
// status counts and Overdue never exceeds Pending plus InProgress.
type Statistics struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Overdue    int
}

// BulkResult summarises a bulk operation.
type BulkResult struct {
	Action  BulkAction
	Count   int
	Message string
}

// TaskExport is an unpaginated filtered dump of tasks.
type TaskExport struct {
	Tasks      []Task
	ExportedAt time.Time
	// Location is where the dump was archived; empty when archiving is off.
	Location string
}
