package task

import (
	"strings"
	"testing"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var fixedNow = time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidator(func() time.Time { return fixedNow })
}

func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected *domain.ValidationError, got %v", err)
	assert.Contains(t, verr.Fields[field], message)
}

func TestValidateCreate_Valid(t *testing.T) {
	v := testValidator()

	task, err := v.ValidateCreate(TaskInput{
		Title:       Value("  Write docs  "),
		Description: Value("   "),
		Status:      Value("pending"),
		DueDate:     Value("2024-07-09"),
		Priority:    Value("high"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Write docs", task.Title)
	assert.Nil(t, task.Description, "blank description normalises to absent")
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-07-09", domain.FormatDate(*task.DueDate))
}

func TestValidateCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   TaskInput
		field   string
		message string
	}{
		{"missing title", TaskInput{Status: Value("pending")}, "title", MsgTitleRequired},
		{"blank title", TaskInput{Title: Value("   "), Status: Value("pending")}, "title", MsgTitleRequired},
		{"short title", TaskInput{Title: Value("ab"), Status: Value("pending")}, "title", MsgTitleMin},
		{"short after trim", TaskInput{Title: Value("  ab  "), Status: Value("pending")}, "title", MsgTitleMin},
		{"long title", TaskInput{Title: Value(strings.Repeat("x", 256)), Status: Value("pending")}, "title", MsgTitleMax},
		{"long description", TaskInput{Title: Value("abc"), Description: Value(strings.Repeat("d", 2001)), Status: Value("pending")}, "description", MsgDescriptionMax},
		{"missing status", TaskInput{Title: Value("abc")}, "status", MsgStatusRequired},
		{"bad status", TaskInput{Title: Value("abc"), Status: Value("done")}, "status", MsgStatusInvalid},
		{"bad date", TaskInput{Title: Value("abc"), Status: Value("pending"), DueDate: Value("soon")}, "due_date", MsgDueDateInvalid},
		{"past date", TaskInput{Title: Value("abc"), Status: Value("pending"), DueDate: Value("2024-07-08")}, "due_date", MsgDueDatePast},
		{"bad priority", TaskInput{Title: Value("abc"), Status: Value("pending"), Priority: Value("urgent")}, "priority", MsgPriorityInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testValidator().ValidateCreate(tt.input)
			requireFieldError(t, err, tt.field, tt.message)
		})
	}
}

func TestValidateCreate_TitleLengthCountsCharacters(t *testing.T) {
	_, err := testValidator().ValidateCreate(TaskInput{
		Title:  Value(strings.Repeat("é", 255)),
		Status: Value("completed"),
	})
	assert.NoError(t, err)
}

func TestValidateCreate_CollectsEveryField(t *testing.T) {
	_, err := testValidator().ValidateCreate(TaskInput{})
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("title"))
	assert.True(t, verr.Has("status"))
	assert.False(t, verr.BusinessRule)
}

func TestValidateUpdate_Partial(t *testing.T) {
	v := testValidator()

	params, err := v.ValidateUpdate(7, TaskInput{Status: Value("in_progress")})
	require.NoError(t, err)
	assert.Equal(t, int64(7), params.TaskID)
	assert.Equal(t, []string{domain.FieldStatus}, params.UpdateMask)
	assert.Nil(t, params.Title)

	params, err = v.ValidateUpdate(7, TaskInput{})
	require.NoError(t, err)
	assert.Empty(t, params.UpdateMask)
}

func TestValidateUpdate_PastDueDateAccepted(t *testing.T) {
	params, err := testValidator().ValidateUpdate(1, TaskInput{DueDate: Value("2020-01-01")})
	require.NoError(t, err)
	require.NotNil(t, params.DueDate)
	assert.Equal(t, "2020-01-01", domain.FormatDate(*params.DueDate))
}

func TestValidateUpdate_NullClearsOptionalFields(t *testing.T) {
	params, err := testValidator().ValidateUpdate(1, TaskInput{Description: Null(), DueDate: Null()})
	require.NoError(t, err)
	assert.True(t, params.Has(domain.FieldDescription))
	assert.True(t, params.Has(domain.FieldDueDate))
	assert.Nil(t, params.Description)
	assert.Nil(t, params.DueDate)
}

func TestValidateUpdate_NullRequiredFields(t *testing.T) {
	_, err := testValidator().ValidateUpdate(1, TaskInput{Title: Null(), Status: Null()})
	requireFieldError(t, err, "title", MsgTitleRequired)
	requireFieldError(t, err, "status", MsgStatusRequired)
}

func TestValidateList_Defaults(t *testing.T) {
	q, err := testValidator().ValidateList(ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PerPage)
	assert.Equal(t, domain.SortByCreatedAt, q.Params.OrderBy)
	assert.Equal(t, domain.SortDesc, q.Params.OrderDir)
	assert.Equal(t, DefaultPageSize, q.Params.Limit)
	assert.Zero(t, q.Params.Offset)
	assert.Nil(t, q.Params.OverdueBefore)
}

func TestValidateList_Filters(t *testing.T) {
	q, err := testValidator().ValidateList(ListInput{
		Search:    Value("docs"),
		Status:    Value("pending"),
		StartDate: Value("2024-07-01"),
		EndDate:   Value("2024-07-31"),
		Overdue:   Value("1"),
		SortBy:    Value("title"),
		SortOrder: Value("asc"),
		Page:      Value("3"),
		PerPage:   Value("20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "docs", *q.Params.Search)
	assert.Equal(t, domain.TaskStatusPending, *q.Params.Status)
	assert.Equal(t, "2024-07-01", domain.FormatDate(*q.Params.DueFrom))
	assert.Equal(t, "2024-07-31", domain.FormatDate(*q.Params.DueTo))
	require.NotNil(t, q.Params.OverdueBefore)
	assert.Equal(t, "2024-07-10", domain.FormatDate(*q.Params.OverdueBefore))
	assert.Equal(t, "title", q.Params.OrderBy)
	assert.Equal(t, "asc", q.Params.OrderDir)
	assert.Equal(t, 40, q.Params.Offset)
	assert.Equal(t, 20, q.Params.Limit)
}

func TestValidateList_OverdueFalseIsNoop(t *testing.T) {
	q, err := testValidator().ValidateList(ListInput{Overdue: Value("0")})
	require.NoError(t, err)
	assert.Nil(t, q.Params.OverdueBefore)
}

func TestValidateList_InvalidSortFallsBack(t *testing.T) {
	q, err := testValidator().ValidateList(ListInput{SortBy: Value("password"), SortOrder: Value("up")})
	require.NoError(t, err)
	assert.Equal(t, "created_at", q.Params.OrderBy)
	assert.Equal(t, "desc", q.Params.OrderDir)
}

func TestValidateList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   ListInput
		field   string
		message string
	}{
		{"long search", ListInput{Search: Value(strings.Repeat("s", 256))}, "search", MsgSearchMax},
		{"bad status", ListInput{Status: Value("archived")}, "status", MsgStatusFilterInvalid},
		{"bad start", ListInput{StartDate: Value("x")}, "start_date", MsgStartDateInvalid},
		{"bad end", ListInput{EndDate: Value("y")}, "end_date", MsgEndDateInvalid},
		{"end before start", ListInput{StartDate: Value("2024-07-10"), EndDate: Value("2024-07-09")}, "end_date", MsgEndBeforeStart},
		{"end before start with overdue", ListInput{StartDate: Value("2024-07-10"), EndDate: Value("2024-07-09"), Overdue: Value("1")}, "end_date", MsgEndBeforeStart},
		{"bad overdue", ListInput{Overdue: Value("maybe")}, "overdue", MsgOverdueInvalid},
		{"page zero", ListInput{Page: Value("0")}, "page", MsgPageMin},
		{"page text", ListInput{Page: Value("two")}, "page", MsgPageInteger},
		{"per_page zero", ListInput{PerPage: Value("0")}, "per_page", MsgPerPageMin},
		{"per_page too large", ListInput{PerPage: Value("101")}, "per_page", MsgPerPageMax},
		{"per_page text", ListInput{PerPage: Value("ten")}, "per_page", MsgPerPageInteger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testValidator().ValidateList(tt.input)
			requireFieldError(t, err, tt.field, tt.message)
		})
	}
}

func TestValidateSearch(t *testing.T) {
	v := testValidator()

	q, err := v.ValidateSearch(SearchInput{Query: Value("docs")})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "description"}, q.Fields)
	assert.Equal(t, DefaultPageSize, q.PerPage)

	q, err = v.ValidateSearch(SearchInput{Query: Value("docs"), Fields: []string{"description", "description"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"description"}, q.Fields)

	_, err = v.ValidateSearch(SearchInput{})
	requireFieldError(t, err, "query", MsgQueryRequired)

	_, err = v.ValidateSearch(SearchInput{Query: Value("x"), Fields: []string{"status"}})
	requireFieldError(t, err, "fields", MsgSearchFieldsInvalid)
}

func TestValidateBulk(t *testing.T) {
	v := testValidator()

	cmd, err := v.ValidateBulk(BulkInput{Action: Value("mark_completed"), TaskIDs: []int64{3, 1, 3}})
	require.NoError(t, err)
	assert.Equal(t, domain.BulkActionMarkCompleted, cmd.Action)
	assert.Equal(t, []int64{3, 1}, cmd.IDs)

	_, err = v.ValidateBulk(BulkInput{TaskIDs: []int64{1}})
	requireFieldError(t, err, "action", MsgActionRequired)

	_, err = v.ValidateBulk(BulkInput{Action: Value("archive"), TaskIDs: []int64{1}})
	requireFieldError(t, err, "action", MsgActionInvalid)

	_, err = v.ValidateBulk(BulkInput{Action: Value("delete")})
	requireFieldError(t, err, "task_ids", MsgTaskIDsRequired)

	_, err = v.ValidateBulk(BulkInput{Action: Value("delete"), TaskIDs: []int64{-4}})
	requireFieldError(t, err, "task_ids", MsgTaskIDsMissing)
}

func TestValidateCreate_TitleProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		core := rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 ]{1,60}[A-Za-z0-9]`).Draw(rt, "title")
		pad := rapid.StringMatching(`[ \t]{0,4}`).Draw(rt, "pad")
		status := rapid.SampledFrom(domain.TaskStatuses).Draw(rt, "status")

		task, err := testValidator().ValidateCreate(TaskInput{
			Title:  Value(pad + core + pad),
			Status: Value(string(status)),
		})
		if err != nil {
			rt.Fatalf("valid payload rejected: %v", err)
		}
		if task.Title != core {
			rt.Fatalf("title %q not trimmed to %q", task.Title, core)
		}
	})
}

func TestValidateCreate_PastDueDateProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		daysAgo := rapid.IntRange(1, 3650).Draw(rt, "days_ago")
		due := domain.FormatDate(fixedNow.AddDate(0, 0, -daysAgo))
		v := testValidator()

		_, err := v.ValidateCreate(TaskInput{Title: Value("Task"), Status: Value("pending"), DueDate: Value(due)})
		verr, ok := domain.AsValidationError(err)
		if !ok || !verr.Has("due_date") {
			rt.Fatalf("past due date %s accepted on create", due)
		}

		if _, err := v.ValidateUpdate(1, TaskInput{Title: Value("Task"), Status: Value("pending"), DueDate: Value(due)}); err != nil {
			rt.Fatalf("past due date %s rejected on update: %v", due, err)
		}
	})
}
