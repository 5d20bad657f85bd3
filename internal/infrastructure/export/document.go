// Package export renders task exports and archives them to a filesystem
// directory or a Google Cloud Storage bucket.
package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/taskboard/internal/domain"
)

// Layouts used in export documents.
const (
	TimestampLayout  = time.DateTime
	ExportedAtLayout = "2006-01-02T15:04:05.000000Z"
)

// Row is one exported task.
type Row struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Document is the body of an export, served by the API and written by sinks.
type Document struct {
	Tasks      []Row  `json:"tasks"`
	TotalCount int    `json:"total_count"`
	ExportedAt string `json:"exported_at"`
}

// NewDocument flattens e into export rows.
func NewDocument(e *domain.TaskExport) Document {
	rows := make([]Row, len(e.Tasks))
	for i, t := range e.Tasks {
		row := Row{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			CreatedAt:   t.CreatedAt.UTC().Format(TimestampLayout),
			UpdatedAt:   t.UpdatedAt.UTC().Format(TimestampLayout),
		}
		if t.DueDate != nil {
			d := domain.FormatDate(*t.DueDate)
			row.DueDate = &d
		}
		rows[i] = row
	}
	return Document{
		Tasks:      rows,
		TotalCount: len(rows),
		ExportedAt: e.ExportedAt.UTC().Format(ExportedAtLayout),
	}
}

// objectName returns a unique, time-ordered archive name.
func objectName() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate export id: %w", err)
	}
	return fmt.Sprintf("tasks-%s.json", id), nil
}
