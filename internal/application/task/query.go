package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezkam/taskboard/internal/domain"
)

// ListTasks validates list parameters and returns the requested page.
// Pages past the end are empty, not errors.
func (s *Service) ListTasks(ctx context.Context, in ListInput) (*domain.TaskPage, error) {
	q, err := s.validator.ValidateList(in)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, q.Params, q.Page, q.PerPage)
}

// SearchTasks runs a substring search over the selected fields.
func (s *Service) SearchTasks(ctx context.Context, in SearchInput) (*domain.TaskPage, error) {
	q, err := s.validator.ValidateSearch(in)
	if err != nil {
		return nil, err
	}

	params := domain.ListTasksParams{
		Search:       &q.Term,
		SearchFields: q.Fields,
		OrderBy:      domain.DefaultOrderBy,
		OrderDir:     domain.DefaultOrderDir,
		Limit:        q.PerPage,
		Offset:       domain.PageOffset(q.Page, q.PerPage),
	}
	return s.page(ctx, params, q.Page, q.PerPage)
}

// TasksByStatus lists every task with exactly this status, newest first.
func (s *Service) TasksByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return s.all(ctx, domain.ListTasksParams{
		Status:   &status,
		OrderBy:  domain.DefaultOrderBy,
		OrderDir: domain.DefaultOrderDir,
	})
}

// OverdueTasks lists open tasks whose due date has passed, earliest due first.
func (s *Service) OverdueTasks(ctx context.Context) ([]domain.Task, error) {
	cutoff := domain.OverdueCutoff(s.validator.Now())
	return s.all(ctx, domain.ListTasksParams{
		OverdueBefore: &cutoff,
		OrderBy:       domain.SortByDueDate,
		OrderDir:      domain.SortAsc,
	})
}

// ExportTasks returns every task matching the export filters. With an
// Archiver configured the export is also archived, and a failed archive
// fails the export.
func (s *Service) ExportTasks(ctx context.Context, in ExportInput) (*domain.TaskExport, error) {
	params, err := s.validator.ValidateExport(in)
	if err != nil {
		return nil, err
	}
	tasks, err := s.all(ctx, params)
	if err != nil {
		return nil, err
	}

	export := &domain.TaskExport{Tasks: tasks, ExportedAt: s.validator.Now()}
	if s.archiver == nil {
		return export, nil
	}

	location, err := s.archiver.Archive(ctx, export)
	if err != nil {
		slog.ErrorContext(ctx, "export archive failed", "error", err)
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}
	export.Location = location
	slog.InfoContext(ctx, "export archived", "location", location, "tasks", len(tasks))
	return export, nil
}

func (s *Service) page(ctx context.Context, params domain.ListTasksParams, page, perPage int) (*domain.TaskPage, error) {
	result, err := s.repo.FindTasks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	items := result.Items
	if items == nil {
		items = []domain.Task{}
	}
	return &domain.TaskPage{
		Items:   items,
		Total:   result.TotalCount,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *Service) all(ctx context.Context, params domain.ListTasksParams) ([]domain.Task, error) {
	params.Limit, params.Offset = 0, 0
	result, err := s.repo.FindTasks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if result.Items == nil {
		return []domain.Task{}, nil
	}
	return result.Items, nil
}
