// Package compliance holds a behavioural test suite every task.Repository
// implementation must pass.
package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/ptr"
)

// Now is the reference time the suite evaluates overdue against.
var Now = time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)

func day(s string) *time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func create(t *testing.T, repo task.Repository, title string, status domain.TaskStatus, due *time.Time, desc *string) domain.Task {
	t.Helper()
	created, err := repo.CreateTask(context.Background(), &domain.Task{
		Title:       title,
		Description: desc,
		Status:      status,
		DueDate:     due,
	})
	require.NoError(t, err)
	return *created
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

// RunRepositoryComplianceTest runs the suite. setup must return a Repository
// backed by an empty store; it is called once per subtest.
func RunRepositoryComplianceTest(t *testing.T, setup func(t *testing.T) task.Repository) {
	t.Run("CreateAndFind", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		created := create(t, repo, "Write docs", domain.TaskStatusPending, day("2024-07-10"), ptr.To("All of them"))
		assert.Positive(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.False(t, created.UpdatedAt.IsZero())

		fetched, err := repo.FindTaskByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write docs", fetched.Title)
		assert.Equal(t, "All of them", ptr.Deref(fetched.Description, ""))
		assert.Equal(t, domain.TaskStatusPending, fetched.Status)
		require.NotNil(t, fetched.DueDate)
		assert.Equal(t, "2024-07-10", domain.FormatDate(*fetched.DueDate))
		assert.Equal(t, time.UTC, fetched.CreatedAt.Location())
		assert.WithinDuration(t, created.CreatedAt, fetched.CreatedAt, time.Millisecond)
	})

	t.Run("CreateWithoutOptionalFields", func(t *testing.T) {
		repo := setup(t)
		created := create(t, repo, "Bare", domain.TaskStatusCompleted, nil, nil)

		fetched, err := repo.FindTaskByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Nil(t, fetched.Description)
		assert.Nil(t, fetched.DueDate)
	})

	t.Run("FindMissing", func(t *testing.T) {
		repo := setup(t)
		_, err := repo.FindTaskByID(context.Background(), 12345)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("UpdateMaskedFields", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		created := create(t, repo, "Write docs", domain.TaskStatusPending, day("2024-07-10"), ptr.To("old"))

		status := domain.TaskStatusInProgress
		updated, err := repo.UpdateTask(ctx, domain.UpdateTaskParams{
			TaskID:     created.ID,
			UpdateMask: []string{domain.FieldStatus, domain.FieldDescription, domain.FieldDueDate},
			Status:     &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "Write docs", updated.Title, "unmasked field untouched")
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
		assert.Nil(t, updated.Description)
		assert.Nil(t, updated.DueDate)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		updated, err = repo.UpdateTask(ctx, domain.UpdateTaskParams{
			TaskID:     created.ID,
			UpdateMask: []string{domain.FieldTitle, domain.FieldDueDate},
			Title:      ptr.To("Rewrite docs"),
			DueDate:    day("2020-01-01"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Rewrite docs", updated.Title)
		assert.Equal(t, "2020-01-01", domain.FormatDate(*updated.DueDate))

		_, err = repo.UpdateTask(ctx, domain.UpdateTaskParams{TaskID: 999999, UpdateMask: []string{domain.FieldTitle}, Title: ptr.To("nope")})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		created := create(t, repo, "Gone soon", domain.TaskStatusPending, nil, nil)

		require.NoError(t, repo.DeleteTask(ctx, created.ID))
		_, err := repo.FindTaskByID(ctx, created.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		assert.ErrorIs(t, repo.DeleteTask(ctx, created.ID), domain.ErrTaskNotFound)
	})

	t.Run("FindTasksFilters", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		create(t, repo, "Write docs", domain.TaskStatusPending, day("2024-07-10"), nil)
		create(t, repo, "Ship release", domain.TaskStatusInProgress, day("2024-07-08"), ptr.To("Tag and publish"))
		create(t, repo, "Archive logs", domain.TaskStatusCompleted, day("2024-07-01"), nil)
		create(t, repo, "Plan sprint", domain.TaskStatusPending, nil, ptr.To("Review the DOCS backlog"))
		create(t, repo, "Fix 100% CPU_bug", domain.TaskStatusPending, day("2024-07-09"), nil)

		find := func(p domain.ListTasksParams) []string {
			t.Helper()
			if p.OrderBy == "" {
				p.OrderBy, p.OrderDir = domain.SortByTitle, domain.SortAsc
			}
			res, err := repo.FindTasks(ctx, p)
			require.NoError(t, err)
			assert.Len(t, res.Items, res.TotalCount)
			return titles(res.Items)
		}

		status := domain.TaskStatusPending
		assert.Equal(t, []string{"Fix 100% CPU_bug", "Plan sprint", "Write docs"}, find(domain.ListTasksParams{Status: &status}))

		assert.Equal(t, []string{"Fix 100% CPU_bug", "Ship release", "Write docs"},
			find(domain.ListTasksParams{DueFrom: day("2024-07-08"), DueTo: day("2024-07-10")}), "range is inclusive")
		assert.Equal(t, []string{"Fix 100% CPU_bug", "Write docs"}, find(domain.ListTasksParams{DueFrom: day("2024-07-09")}))
		assert.Equal(t, []string{"Archive logs", "Ship release"}, find(domain.ListTasksParams{DueTo: day("2024-07-08")}))

		cutoff := domain.OverdueCutoff(Now)
		assert.Equal(t, []string{"Fix 100% CPU_bug", "Ship release"}, find(domain.ListTasksParams{OverdueBefore: &cutoff}))
		assert.Equal(t, []string{"Fix 100% CPU_bug"}, find(domain.ListTasksParams{OverdueBefore: &cutoff, Status: &status}),
			"overdue combines with other filters")

		assert.Equal(t, []string{"Plan sprint", "Write docs"}, find(domain.ListTasksParams{Search: ptr.To("docs")}),
			"search is case-insensitive over title and description")
		assert.Equal(t, []string{"Write docs"}, find(domain.ListTasksParams{Search: ptr.To("docs"), SearchFields: []string{"title"}}))
		assert.Equal(t, []string{"Fix 100% CPU_bug"}, find(domain.ListTasksParams{Search: ptr.To("100%")}))
		assert.Empty(t, find(domain.ListTasksParams{Search: ptr.To("0_%")}), "wildcards match literally")
	})

	t.Run("FindTasksSearchFoldsUnicodeCase", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		create(t, repo, "Ärger mit Übersetzung", domain.TaskStatusPending, nil, nil)
		create(t, repo, "Plain task", domain.TaskStatusPending, nil, ptr.To("ΣΟΦΙΑ review"))

		for term, want := range map[string]string{
			"ärger":      "Ärger mit Übersetzung",
			"ÜBERSETZUNG": "Ärger mit Übersetzung",
			"σοφια":      "Plain task",
		} {
			res, err := repo.FindTasks(ctx, domain.ListTasksParams{Search: ptr.To(term)})
			require.NoError(t, err)
			assert.Equal(t, []string{want}, titles(res.Items), "search %q", term)
		}
	})

	t.Run("FindTasksSortingAndPaging", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		create(t, repo, "delta", domain.TaskStatusPending, day("2024-07-20"), nil)
		create(t, repo, "alpha", domain.TaskStatusCompleted, nil, nil)
		create(t, repo, "charlie", domain.TaskStatusInProgress, day("2024-07-05"), nil)
		create(t, repo, "bravo", domain.TaskStatusPending, day("2024-07-12"), nil)

		res, err := repo.FindTasks(ctx, domain.ListTasksParams{OrderBy: "title", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, titles(res.Items))

		res, err = repo.FindTasks(ctx, domain.ListTasksParams{OrderBy: "due_date", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"charlie", "bravo", "delta", "alpha"}, titles(res.Items), "no due date sorts last")

		res, err = repo.FindTasks(ctx, domain.ListTasksParams{OrderBy: "due_date", OrderDir: "desc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"delta", "bravo", "charlie", "alpha"}, titles(res.Items))

		res, err = repo.FindTasks(ctx, domain.ListTasksParams{OrderBy: "bogus"})
		require.NoError(t, err)
		assert.Equal(t, []string{"bravo", "charlie", "alpha", "delta"}, titles(res.Items), "falls back to newest first")

		res, err = repo.FindTasks(ctx, domain.ListTasksParams{OrderBy: "title", OrderDir: "asc", Limit: 3, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"delta"}, titles(res.Items))
		assert.Equal(t, 4, res.TotalCount)

		res, err = repo.FindTasks(ctx, domain.ListTasksParams{Limit: 10, Offset: 40})
		require.NoError(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
		assert.Equal(t, 4, res.TotalCount)
	})

	t.Run("TitleExists", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		a := create(t, repo, "Write docs", domain.TaskStatusPending, nil, nil)

		exists, err := repo.TitleExists(ctx, "Write docs", 0)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.TitleExists(ctx, "Write docs", a.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.TitleExists(ctx, "write docs", 0)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("BulkOperations", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		a := create(t, repo, "A task", domain.TaskStatusPending, nil, nil)
		b := create(t, repo, "B task", domain.TaskStatusInProgress, nil, nil)
		c := create(t, repo, "C task", domain.TaskStatusPending, nil, nil)

		found, err := repo.FindTasksByIDs(ctx, []int64{c.ID, a.ID, 999999})
		require.NoError(t, err)
		assert.Equal(t, []string{"A task", "C task"}, titles(found))

		n, err := repo.UpdateTasksStatus(ctx, []int64{a.ID, b.ID}, domain.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		fetched, err := repo.FindTaskByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, fetched.Status)

		n, err = repo.DeleteTasks(ctx, []int64{a.ID, b.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		res, err := repo.FindTasks(ctx, domain.ListTasksParams{})
		require.NoError(t, err)
		assert.Equal(t, []string{"C task"}, titles(res.Items))

		n, err = repo.DeleteTasks(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("BulkOperationsAcceptLargeIDLists", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		a := create(t, repo, "A task", domain.TaskStatusPending, nil, nil)
		b := create(t, repo, "B task", domain.TaskStatusPending, nil, nil)

		// More IDs than SQLite allows bind variables in one statement.
		ids := make([]int64, 0, 40000)
		for id := int64(1_000_000); len(ids) < cap(ids)-2; id++ {
			ids = append(ids, id)
		}
		ids = append(ids, a.ID, b.ID)

		found, err := repo.FindTasksByIDs(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, []string{"A task", "B task"}, titles(found))

		n, err := repo.UpdateTasksStatus(ctx, ids, domain.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = repo.DeleteTasks(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Statistics", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		empty, err := repo.Statistics(ctx, domain.OverdueCutoff(Now))
		require.NoError(t, err)
		assert.Equal(t, domain.Statistics{}, *empty)

		create(t, repo, "Write docs", domain.TaskStatusPending, day("2024-07-10"), nil)
		create(t, repo, "Ship release", domain.TaskStatusInProgress, day("2024-07-08"), nil)
		create(t, repo, "Archive logs", domain.TaskStatusCompleted, day("2024-07-01"), nil)
		create(t, repo, "Due today", domain.TaskStatusPending, day("2024-07-09"), nil)
		create(t, repo, "No date", domain.TaskStatusPending, nil, nil)

		stats, err := repo.Statistics(ctx, domain.OverdueCutoff(Now))
		require.NoError(t, err)
		assert.Equal(t, domain.Statistics{Total: 5, Pending: 3, InProgress: 1, Completed: 1, Overdue: 2}, *stats)
	})

	t.Run("AtomicRollsBack", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		sentinel := errors.New("abort")

		err := repo.Atomic(ctx, func(tx task.Repository) error {
			_, err := tx.CreateTask(ctx, &domain.Task{Title: "Never stored", Status: domain.TaskStatusPending})
			require.NoError(t, err)
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		res, err := repo.FindTasks(ctx, domain.ListTasksParams{})
		require.NoError(t, err)
		assert.Zero(t, res.TotalCount)
	})

	t.Run("AtomicCommits", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		var id int64

		err := repo.Atomic(ctx, func(tx task.Repository) error {
			created, err := tx.CreateTask(ctx, &domain.Task{Title: "Stored", Status: domain.TaskStatusPending})
			if err != nil {
				return err
			}
			id = created.ID
			_, err = tx.FindTaskByID(ctx, id)
			return err
		})
		require.NoError(t, err)

		_, err = repo.FindTaskByID(ctx, id)
		assert.NoError(t, err)
	})
}
