package task

import (
	"context"
	"testing"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_BulkAction_CompleteThenDelete(t *testing.T) {
	svc, repo := newTestService()
	a := repo.seed(domain.Task{Title: "Write docs", Status: domain.TaskStatusPending})
	b := repo.seed(domain.Task{Title: "Ship release", Status: domain.TaskStatusInProgress})

	result, err := svc.BulkAction(context.Background(), BulkInput{
		Action: Value("mark_completed"), TaskIDs: []int64{a.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BulkActionMarkCompleted, result.Action)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Successfully marked 2 task(s) as completed.", result.Message)
	assert.Equal(t, domain.TaskStatusCompleted, repo.tasks[a.ID].Status)
	assert.Equal(t, domain.TaskStatusCompleted, repo.tasks[b.ID].Status)

	result, err = svc.BulkAction(context.Background(), BulkInput{
		Action: Value("delete"), TaskIDs: []int64{a.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Successfully deleted 2 task(s).", result.Message)
	assert.Empty(t, repo.tasks)
}

func TestService_BulkAction_MarkInProgressMessage(t *testing.T) {
	svc, repo := newTestService()
	a := repo.seed(domain.Task{Title: "A", Status: domain.TaskStatusCompleted})

	result, err := svc.BulkAction(context.Background(), BulkInput{
		Action: Value("mark_in_progress"), TaskIDs: []int64{a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Successfully marked 1 task(s) as in progress.", result.Message)
	assert.Equal(t, domain.TaskStatusInProgress, repo.tasks[a.ID].Status)
}

func TestService_BulkAction_DeleteRejectsInProgress(t *testing.T) {
	svc, repo := newTestService()
	a := repo.seed(domain.Task{Title: "A", Status: domain.TaskStatusPending})
	b := repo.seed(domain.Task{Title: "B", Status: domain.TaskStatusInProgress})

	_, err := svc.BulkAction(context.Background(), BulkInput{
		Action: Value("delete"), TaskIDs: []int64{a.ID, b.ID},
	})
	requireFieldError(t, err, "deletion", MsgDeleteInProgress)
	assert.Len(t, repo.tasks, 2, "no task is deleted when the batch is rejected")
}

func TestService_BulkAction_UnknownIDRejectsBatch(t *testing.T) {
	svc, repo := newTestService()
	a := repo.seed(domain.Task{Title: "A", Status: domain.TaskStatusPending})

	_, err := svc.BulkAction(context.Background(), BulkInput{
		Action: Value("mark_completed"), TaskIDs: []int64{a.ID, 999},
	})
	requireFieldError(t, err, "task_ids", MsgTaskIDsMissing)
	assert.Equal(t, domain.TaskStatusPending, repo.tasks[a.ID].Status)
}

func TestService_BulkAction_MarkCompletedSkipsCompletionRule(t *testing.T) {
	svc, repo := newTestService()
	a := repo.seed(domain.Task{Title: "A", Status: domain.TaskStatusCompleted})

	result, err := svc.BulkAction(context.Background(), BulkInput{
		Action: Value("mark_completed"), TaskIDs: []int64{a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, repo.atomicRuns)
}

func TestService_BulkAction_InvalidShape(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.BulkAction(context.Background(), BulkInput{Action: Value("explode"), TaskIDs: []int64{1}})
	requireFieldError(t, err, "action", MsgActionInvalid)
	assert.Zero(t, repo.atomicRuns, "shape errors never reach storage")
}
