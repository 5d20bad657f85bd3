package task

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestService_ListTasks_OverdueScenario(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "Write docs", Status: domain.TaskStatusPending, DueDate: date("2024-07-10")})
	repo.seed(domain.Task{Title: "Ship release", Status: domain.TaskStatusInProgress, DueDate: date("2024-07-08")})

	page, err := svc.ListTasks(context.Background(), ListInput{Overdue: Value("1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ship release"}, titles(page.Items))
	assert.Equal(t, 1, page.Total)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Overdue)
}

func TestService_ListTasks_SortAndPaginate(t *testing.T) {
	svc, repo := newTestService()
	for _, title := range []string{"delta", "alpha", "charlie", "bravo", "echo"} {
		repo.seed(domain.Task{Title: title, Status: domain.TaskStatusPending})
	}

	page, err := svc.ListTasks(context.Background(), ListInput{
		SortBy: Value("title"), SortOrder: Value("asc"), PerPage: Value("2"), Page: Value("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "delta"}, titles(page.Items))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.LastPage())
	assert.Equal(t, 3, page.From())
	assert.Equal(t, 4, page.To())
}

func TestService_ListTasks_InvalidSortDefaultsToNewestFirst(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "first", Status: domain.TaskStatusPending})
	repo.seed(domain.Task{Title: "second", Status: domain.TaskStatusPending})

	page, err := svc.ListTasks(context.Background(), ListInput{SortBy: Value("nope")})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, titles(page.Items))
	assert.Equal(t, "created_at", repo.lastParams.OrderBy)
}

func TestService_ListTasks_OutOfRangePage(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "only", Status: domain.TaskStatusPending})

	page, err := svc.ListTasks(context.Background(), ListInput{Page: Value("5")})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Page)
	assert.Equal(t, 1, page.LastPage())
}

func TestService_ListTasks_HugePageIsEmpty(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "only", Status: domain.TaskStatusPending})

	page, err := svc.ListTasks(context.Background(), ListInput{Page: Value("922337203685477582"), PerPage: Value("10")})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, math.MaxInt, repo.lastParams.Offset)
	assert.Zero(t, page.From())
	assert.Zero(t, page.To())

	found, err := svc.SearchTasks(context.Background(), SearchInput{Query: Value("only"), Page: Value("922337203685477582")})
	require.NoError(t, err)
	assert.Empty(t, found.Items)
	assert.Equal(t, 1, found.Total)
}

func TestService_ListTasks_EmptyStore(t *testing.T) {
	svc, _ := newTestService()

	page, err := svc.ListTasks(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestService_ListTasks_RejectsBadFilters(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListTasks(context.Background(), ListInput{PerPage: Value("500")})
	requireFieldError(t, err, "per_page", MsgPerPageMax)
}

func TestService_SearchTasks(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "Write DOCS", Status: domain.TaskStatusPending})
	repo.seed(domain.Task{Title: "Other", Description: ptr.To("update the docs"), Status: domain.TaskStatusPending})
	repo.seed(domain.Task{Title: "Unrelated", Status: domain.TaskStatusPending})

	page, err := svc.SearchTasks(context.Background(), SearchInput{Query: Value("docs")})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.SearchTasks(context.Background(), SearchInput{Query: Value("docs"), Fields: []string{"title"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Write DOCS"}, titles(page.Items))
}

func TestService_TasksByStatusAndOverdue(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "late", Status: domain.TaskStatusPending, DueDate: date("2024-07-01")})
	repo.seed(domain.Task{Title: "later", Status: domain.TaskStatusInProgress, DueDate: date("2024-07-05")})
	repo.seed(domain.Task{Title: "done", Status: domain.TaskStatusCompleted, DueDate: date("2024-07-01")})

	pending, err := svc.TasksByStatus(context.Background(), domain.TaskStatusPending)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, titles(pending))

	overdue, err := svc.OverdueTasks(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"late", "later"}, titles(overdue))
	assert.Zero(t, repo.lastParams.Limit, "overdue list is unpaginated")
}

func TestService_ExportTasks(t *testing.T) {
	svc, repo := newTestService()
	repo.seed(domain.Task{Title: "in range", Status: domain.TaskStatusPending, DueDate: date("2024-07-15")})
	repo.seed(domain.Task{Title: "out of range", Status: domain.TaskStatusPending, DueDate: date("2024-09-01")})

	export, err := svc.ExportTasks(context.Background(), ExportInput{StartDate: Value("2024-07-01"), EndDate: Value("2024-07-31")})
	require.NoError(t, err)
	assert.Equal(t, []string{"in range"}, titles(export.Tasks))
	assert.Equal(t, fixedNow, export.ExportedAt)

	_, err = svc.ExportTasks(context.Background(), ExportInput{Status: Value("bogus")})
	requireFieldError(t, err, "status", MsgStatusFilterInvalid)
}

type stubArchiver struct {
	archived []*domain.TaskExport
	err      error
}

func (a *stubArchiver) Archive(_ context.Context, export *domain.TaskExport) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.archived = append(a.archived, export)
	return "mem://exports/1.json", nil
}

func TestService_ExportTasks_Archives(t *testing.T) {
	repo := newMemRepo(fixedNow)
	archiver := &stubArchiver{}
	svc := NewService(repo, testValidator(), WithArchiver(archiver))
	repo.seed(domain.Task{Title: "only", Status: domain.TaskStatusPending})

	export, err := svc.ExportTasks(context.Background(), ExportInput{})
	require.NoError(t, err)
	assert.Equal(t, "mem://exports/1.json", export.Location)
	require.Len(t, archiver.archived, 1)
	assert.Equal(t, []string{"only"}, titles(archiver.archived[0].Tasks))
}

func TestService_ExportTasks_ArchiveFailure(t *testing.T) {
	repo := newMemRepo(fixedNow)
	sinkErr := errors.New("bucket unavailable")
	svc := NewService(repo, testValidator(), WithArchiver(&stubArchiver{err: sinkErr}))

	_, err := svc.ExportTasks(context.Background(), ExportInput{})
	assert.ErrorIs(t, err, sinkErr)
}
