package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-07-15T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "tomorrow", "2024-13-01", "2024-02-30", "15/07/2024"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestOverdueCutoff(t *testing.T) {
	midday := time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), OverdueCutoff(midday))

	midnight := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, OverdueCutoff(midnight))
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)
	yesterday := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		task   Task
		expect bool
	}{
		{"no due date", Task{Status: TaskStatusPending}, false},
		{"pending past", Task{Status: TaskStatusPending, DueDate: &yesterday}, true},
		{"in progress due today", Task{Status: TaskStatusInProgress, DueDate: &today}, true},
		{"completed past", Task{Status: TaskStatusCompleted, DueDate: &yesterday}, false},
		{"pending future", Task{Status: TaskStatusPending, DueDate: &tomorrow}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.task.IsOverdue(now))
		})
	}
}

func TestTaskPage_Metadata(t *testing.T) {
	items := make([]Task, 10)

	p := TaskPage{Items: items, Total: 25, Page: 2, PerPage: 10}
	assert.Equal(t, 3, p.LastPage())
	assert.Equal(t, 11, p.From())
	assert.Equal(t, 20, p.To())
	assert.True(t, p.HasMorePages())

	last := TaskPage{Items: items[:5], Total: 25, Page: 3, PerPage: 10}
	assert.Equal(t, 21, last.From())
	assert.Equal(t, 25, last.To())
	assert.False(t, last.HasMorePages())

	outOfRange := TaskPage{Items: nil, Total: 25, Page: 9, PerPage: 10}
	assert.Equal(t, 0, outOfRange.From())
	assert.Equal(t, 0, outOfRange.To())
	assert.Equal(t, 3, outOfRange.LastPage())

	empty := TaskPage{Total: 0, Page: 1, PerPage: 10}
	assert.Equal(t, 1, empty.LastPage())
	assert.False(t, empty.HasMorePages())
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, PageOffset(1, 10))
	assert.Equal(t, 0, PageOffset(0, 10))
	assert.Equal(t, 20, PageOffset(3, 10))
	assert.Equal(t, math.MaxInt, PageOffset(922337203685477582, 10))
	assert.Equal(t, math.MaxInt, PageOffset(math.MaxInt, 100))
}
