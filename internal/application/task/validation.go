package task

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rezkam/taskboard/internal/domain"
)

// Length limits on task fields, counted in characters after trimming.
const (
	TitleMinLength       = 3
	TitleMaxLength       = 255
	DescriptionMaxLength = 2000
	SearchMaxLength      = 255
)

// Pagination bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Field-level messages.
const (
	MsgTitleRequired       = "Task title is required"
	MsgTitleMin            = "Task title must be at least 3 characters"
	MsgTitleMax            = "Task title cannot exceed 255 characters"
	MsgTitleTaken          = "A task with this title already exists."
	MsgDescriptionMax      = "Task description cannot exceed 2000 characters"
	MsgStatusRequired      = "Task status is required"
	MsgStatusInvalid       = "Invalid status. Allowed values: pending, in_progress, completed"
	MsgDueDatePast         = "Due date cannot be in the past"
	MsgDueDateInvalid      = "Invalid date format"
	MsgPriorityInvalid     = "Invalid priority. Allowed values: low, medium, high"
	MsgSearchMax           = "Search term cannot exceed 255 characters."
	MsgStatusFilterInvalid = "Invalid status filter selected."
	MsgStartDateInvalid    = "Please enter a valid start date."
	MsgEndDateInvalid      = "Please enter a valid end date."
	MsgEndBeforeStart      = "End date must be after or equal to start date."
	MsgOverdueInvalid      = "The overdue filter must be true or false."
	MsgPageInteger         = "Page must be a valid number."
	MsgPageMin             = "Page must be at least 1."
	MsgPerPageInteger      = "Items per page must be a valid number."
	MsgPerPageMin          = "Items per page must be at least 1."
	MsgPerPageMax          = "Items per page cannot exceed 100."
	MsgQueryRequired       = "The search query is required."
	MsgQueryMax            = "The search query cannot exceed 255 characters."
	MsgSearchFieldsInvalid = "Search fields must be title or description."
	MsgActionRequired      = "Please select an action to perform."
	MsgActionInvalid       = "Invalid action selected."
	MsgTaskIDsRequired     = "Please select at least one task."
	MsgTaskIDsMissing      = "One or more selected tasks do not exist."
	MsgAlreadyCompleted    = "Task is already completed"
	MsgDeleteInProgress    = "Cannot delete tasks that are in progress"
)

// ListQuery is a validated list request.
type ListQuery struct {
	Params  domain.ListTasksParams
	Page    int
	PerPage int
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Term    string
	Fields  []string
	Page    int
	PerPage int
}

// BulkCommand is a validated bulk request. IDs are de-duplicated in input order.
type BulkCommand struct {
	Action domain.BulkAction
	IDs    []int64
}

// Validator applies the input rule sets. It holds no state besides the clock
// used for "not in the past" checks and is safe for concurrent use.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a Validator. A nil clock uses time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Now returns the validator's current time in UTC.
func (v *Validator) Now() time.Time {
	return v.now().UTC()
}

// ValidateCreate checks a creation payload and returns the task to insert.
func (v *Validator) ValidateCreate(in TaskInput) (*domain.Task, error) {
	verr := domain.NewValidationError()
	task := &domain.Task{}

	if !in.Title.IsSet() {
		verr.Add(domain.FieldTitle, MsgTitleRequired)
	} else if v.checkTitle(verr, in.Title.String()) {
		task.Title = in.Title.String()
	}

	if in.Description.IsSet() && v.checkDescription(verr, in.Description.String()) {
		task.Description = in.Description.Value
	}

	if !in.Status.IsSet() {
		verr.Add(domain.FieldStatus, MsgStatusRequired)
	} else if status, err := domain.NewTaskStatus(in.Status.String()); err != nil {
		verr.Add(domain.FieldStatus, MsgStatusInvalid)
	} else {
		task.Status = status
	}

	if in.DueDate.IsSet() {
		due, err := domain.ParseDate(in.DueDate.String())
		switch {
		case err != nil:
			verr.Add(domain.FieldDueDate, MsgDueDateInvalid)
		case due.Before(domain.StartOfDay(v.Now())):
			verr.Add(domain.FieldDueDate, MsgDueDatePast)
		default:
			task.DueDate = &due
		}
	}

	v.checkPriority(verr, in.Priority)

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return task, nil
}

// ValidateUpdate checks a partial update. Only present fields are validated
// and written; due dates in the past are accepted.
func (v *Validator) ValidateUpdate(id int64, in TaskInput) (domain.UpdateTaskParams, error) {
	verr := domain.NewValidationError()
	params := domain.UpdateTaskParams{TaskID: id}

	if in.Title.Present {
		if !in.Title.IsSet() {
			verr.Add(domain.FieldTitle, MsgTitleRequired)
		} else if v.checkTitle(verr, in.Title.String()) {
			params.Title = in.Title.Value
			params.UpdateMask = append(params.UpdateMask, domain.FieldTitle)
		}
	}

	if in.Description.Present {
		if !in.Description.IsSet() || v.checkDescription(verr, in.Description.String()) {
			params.Description = in.Description.Value
			params.UpdateMask = append(params.UpdateMask, domain.FieldDescription)
		}
	}

	if in.Status.Present {
		if !in.Status.IsSet() {
			verr.Add(domain.FieldStatus, MsgStatusRequired)
		} else if status, err := domain.NewTaskStatus(in.Status.String()); err != nil {
			verr.Add(domain.FieldStatus, MsgStatusInvalid)
		} else {
			params.Status = &status
			params.UpdateMask = append(params.UpdateMask, domain.FieldStatus)
		}
	}

	if in.DueDate.Present {
		if !in.DueDate.IsSet() {
			params.UpdateMask = append(params.UpdateMask, domain.FieldDueDate)
		} else if due, err := domain.ParseDate(in.DueDate.String()); err != nil {
			verr.Add(domain.FieldDueDate, MsgDueDateInvalid)
		} else {
			params.DueDate = &due
			params.UpdateMask = append(params.UpdateMask, domain.FieldDueDate)
		}
	}

	v.checkPriority(verr, in.Priority)

	if err := verr.Err(); err != nil {
		return domain.UpdateTaskParams{}, err
	}
	return params, nil
}

// ValidateList checks list filters and pagination. Unknown sort fields and
// directions are not errors; they resolve to the default ordering.
func (v *Validator) ValidateList(in ListInput) (ListQuery, error) {
	verr := domain.NewValidationError()
	var q ListQuery

	if in.Search.IsSet() {
		if utf8.RuneCountInString(in.Search.String()) > SearchMaxLength {
			verr.Add("search", MsgSearchMax)
		} else {
			q.Params.Search = in.Search.Value
		}
	}

	if in.Status.IsSet() {
		if status, err := domain.NewTaskStatus(in.Status.String()); err != nil {
			verr.Add("status", MsgStatusFilterInvalid)
		} else {
			q.Params.Status = &status
		}
	}

	q.Params.DueFrom, q.Params.DueTo = v.checkDateRange(verr, in.StartDate, in.EndDate)

	if in.Overdue.IsSet() {
		overdue, ok := parseBool(in.Overdue.String())
		if !ok {
			verr.Add("overdue", MsgOverdueInvalid)
		} else if overdue {
			cutoff := domain.OverdueCutoff(v.Now())
			q.Params.OverdueBefore = &cutoff
		}
	}

	q.Params.OrderBy, q.Params.OrderDir = domain.NormalizeSort(in.SortBy.String(), in.SortOrder.String())

	q.Page, q.PerPage = v.checkPagination(verr, in.Page, in.PerPage)
	q.Params.Limit = q.PerPage
	q.Params.Offset = domain.PageOffset(q.Page, q.PerPage)

	if err := verr.Err(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

// ValidateSearch checks the search endpoint parameters.
func (v *Validator) ValidateSearch(in SearchInput) (SearchQuery, error) {
	verr := domain.NewValidationError()
	var q SearchQuery

	switch {
	case !in.Query.IsSet():
		verr.Add("query", MsgQueryRequired)
	case utf8.RuneCountInString(in.Query.String()) > SearchMaxLength:
		verr.Add("query", MsgQueryMax)
	default:
		q.Term = in.Query.String()
	}

	for _, f := range in.Fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if f != domain.SearchFieldTitle && f != domain.SearchFieldDescription {
			verr.Add("fields", MsgSearchFieldsInvalid)
			break
		}
		if !slices.Contains(q.Fields, f) {
			q.Fields = append(q.Fields, f)
		}
	}
	if len(q.Fields) == 0 {
		q.Fields = []string{domain.SearchFieldTitle, domain.SearchFieldDescription}
	}

	q.Page, q.PerPage = v.checkPagination(verr, in.Page, in.PerPage)

	if err := verr.Err(); err != nil {
		return SearchQuery{}, err
	}
	return q, nil
}

// ValidateExport checks export filters.
func (v *Validator) ValidateExport(in ExportInput) (domain.ListTasksParams, error) {
	verr := domain.NewValidationError()
	var params domain.ListTasksParams

	if in.Status.IsSet() {
		if status, err := domain.NewTaskStatus(in.Status.String()); err != nil {
			verr.Add("status", MsgStatusFilterInvalid)
		} else {
			params.Status = &status
		}
	}
	params.DueFrom, params.DueTo = v.checkDateRange(verr, in.StartDate, in.EndDate)
	params.OrderBy, params.OrderDir = domain.SortByCreatedAt, domain.SortAsc

	if err := verr.Err(); err != nil {
		return domain.ListTasksParams{}, err
	}
	return params, nil
}

// ValidateBulk checks the shape of a bulk request. Existence of the IDs is
// checked against storage by the bulk processor.
func (v *Validator) ValidateBulk(in BulkInput) (BulkCommand, error) {
	verr := domain.NewValidationError()
	var cmd BulkCommand

	if !in.Action.IsSet() {
		verr.Add("action", MsgActionRequired)
	} else if action, err := domain.NewBulkAction(in.Action.String()); err != nil {
		verr.Add("action", MsgActionInvalid)
	} else {
		cmd.Action = action
	}

	seen := make(map[int64]struct{}, len(in.TaskIDs))
	for _, id := range in.TaskIDs {
		if id <= 0 {
			verr.Add("task_ids", MsgTaskIDsMissing)
			break
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			cmd.IDs = append(cmd.IDs, id)
		}
	}
	if len(in.TaskIDs) == 0 {
		verr.Add("task_ids", MsgTaskIDsRequired)
	}

	if err := verr.Err(); err != nil {
		return BulkCommand{}, err
	}
	return cmd, nil
}

func (v *Validator) checkTitle(verr *domain.ValidationError, title string) bool {
	n := utf8.RuneCountInString(title)
	switch {
	case n < TitleMinLength:
		verr.Add(domain.FieldTitle, MsgTitleMin)
	case n > TitleMaxLength:
		verr.Add(domain.FieldTitle, MsgTitleMax)
	default:
		return true
	}
	return false
}

func (v *Validator) checkDescription(verr *domain.ValidationError, description string) bool {
	if utf8.RuneCountInString(description) > DescriptionMaxLength {
		verr.Add(domain.FieldDescription, MsgDescriptionMax)
		return false
	}
	return true
}

func (v *Validator) checkPriority(verr *domain.ValidationError, f Field) {
	if !f.IsSet() {
		return
	}
	if _, err := domain.NewTaskPriority(f.String()); err != nil {
		verr.Add("priority", MsgPriorityInvalid)
	}
}

func (v *Validator) checkDateRange(verr *domain.ValidationError, start, end Field) (*time.Time, *time.Time) {
	var from, to *time.Time
	if start.IsSet() {
		d, err := domain.ParseDate(start.String())
		if err != nil {
			verr.Add("start_date", MsgStartDateInvalid)
		} else {
			from = &d
		}
	}
	if end.IsSet() {
		d, err := domain.ParseDate(end.String())
		if err != nil {
			verr.Add("end_date", MsgEndDateInvalid)
		} else {
			to = &d
		}
	}
	if from != nil && to != nil && to.Before(*from) {
		verr.Add("end_date", MsgEndBeforeStart)
		to = nil
	}
	return from, to
}

func (v *Validator) checkPagination(verr *domain.ValidationError, page, perPage Field) (int, int) {
	p, size := 1, DefaultPageSize

	if page.IsSet() {
		n, err := strconv.Atoi(page.String())
		switch {
		case err != nil:
			verr.Add("page", MsgPageInteger)
		case n < 1:
			verr.Add("page", MsgPageMin)
		default:
			p = n
		}
	}

	if perPage.IsSet() {
		n, err := strconv.Atoi(perPage.String())
		switch {
		case err != nil:
			verr.Add("per_page", MsgPerPageInteger)
		case n < 1:
			verr.Add("per_page", MsgPerPageMin)
		case n > MaxPageSize:
			verr.Add("per_page", MsgPerPageMax)
		default:
			size = n
		}
	}

	return p, size
}

// parseBool accepts the boolean spellings HTML forms and query strings use.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	default:
		return false, false
	}
}

// ParseStatusSegment validates a status taken from a URL path.
func ParseStatusSegment(s string) (domain.TaskStatus, error) {
	status, err := domain.NewTaskStatus(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", MsgStatusInvalid, err)
	}
	return status, nil
}
