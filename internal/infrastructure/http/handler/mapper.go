package handler

import (
	"time"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
)

// TaskResource is the JSON representation of a task.
type TaskResource struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	StatusColor string  `json:"status_color"`
	DueDate     *string `json:"due_date"`
	IsOverdue   bool    `json:"is_overdue"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// StatisticsResource is the JSON representation of task statistics.
type StatisticsResource struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// CollectionResource wraps an unpaginated list.
type CollectionResource struct {
	Items []TaskResource `json:"items"`
	Count int            `json:"count"`
}

// MapTask converts a domain task; now decides is_overdue.
func MapTask(t *domain.Task, now time.Time) TaskResource {
	res := TaskResource{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		StatusColor: t.Status.Color(),
		IsOverdue:   t.IsOverdue(now),
		CreatedAt:   t.CreatedAt.UTC().Format(response.TimestampLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(response.TimestampLayout),
	}
	if t.DueDate != nil {
		d := domain.FormatDate(*t.DueDate)
		res.DueDate = &d
	}
	return res
}

// MapTasks converts a slice; the result is never nil.
func MapTasks(tasks []domain.Task, now time.Time) []TaskResource {
	out := make([]TaskResource, len(tasks))
	for i := range tasks {
		out[i] = MapTask(&tasks[i], now)
	}
	return out
}

// MapStatistics converts domain statistics.
func MapStatistics(s *domain.Statistics) StatisticsResource {
	return StatisticsResource{
		Total:      s.Total,
		Pending:    s.Pending,
		InProgress: s.InProgress,
		Completed:  s.Completed,
		Overdue:    s.Overdue,
	}
}

func mapCollection(tasks []domain.Task, now time.Time) CollectionResource {
	return CollectionResource{Items: MapTasks(tasks, now), Count: len(tasks)}
}
