package task

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// memRepo is an in-memory Repository for service tests. Atomic snapshots the
// map and restores it when the callback fails.
type memRepo struct {
	tasks  map[int64]domain.Task
	nextID int64
	now    time.Time

	lastParams domain.ListTasksParams
	atomicRuns int
}

func newMemRepo(now time.Time) *memRepo {
	return &memRepo{tasks: map[int64]domain.Task{}, nextID: 1, now: now}
}

func (m *memRepo) seed(t domain.Task) domain.Task {
	t.ID = m.nextID
	m.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now.Add(time.Duration(t.ID) * time.Second)
	}
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = t
	return t
}

func (m *memRepo) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	created := m.seed(*task)
	return &created, nil
}

func (m *memRepo) FindTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memRepo) FindTasksByIDs(ctx context.Context, ids []int64) ([]domain.Task, error) {
	var out []domain.Task
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *memRepo) FindTasks(ctx context.Context, p domain.ListTasksParams) (*domain.PagedResult, error) {
	m.lastParams = p
	var out []domain.Task
	for _, t := range m.tasks {
		if p.Status != nil && t.Status != *p.Status {
			continue
		}
		if p.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*p.DueFrom)) {
			continue
		}
		if p.DueTo != nil && (t.DueDate == nil || t.DueDate.After(*p.DueTo)) {
			continue
		}
		if p.OverdueBefore != nil && (t.DueDate == nil || !t.Status.IsOpen() || !t.DueDate.Before(*p.OverdueBefore)) {
			continue
		}
		if p.Search != nil && !matches(t, *p.Search, p.SearchFields) {
			continue
		}
		out = append(out, t)
	}

	slices.SortFunc(out, func(a, b domain.Task) int {
		c := 0
		switch p.OrderBy {
		case domain.SortByTitle:
			c = strings.Compare(a.Title, b.Title)
		case domain.SortByStatus:
			c = strings.Compare(string(a.Status), string(b.Status))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if p.OrderDir == domain.SortDesc {
			c = -c
		}
		return c
	})

	total := len(out)
	if p.Limit > 0 {
		start := min(p.Offset, total)
		end := min(start+p.Limit, total)
		out = out[start:end]
	}
	return &domain.PagedResult{Items: out, TotalCount: total}, nil
}

func matches(t domain.Task, term string, fields []string) bool {
	if len(fields) == 0 {
		fields = []string{domain.SearchFieldTitle, domain.SearchFieldDescription}
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		switch f {
		case domain.SearchFieldTitle:
			if strings.Contains(strings.ToLower(t.Title), term) {
				return true
			}
		case domain.SearchFieldDescription:
			if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term) {
				return true
			}
		}
	}
	return false
}

func (m *memRepo) UpdateTask(ctx context.Context, p domain.UpdateTaskParams) (*domain.Task, error) {
	t, ok := m.tasks[p.TaskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if p.Has(domain.FieldTitle) {
		t.Title = *p.Title
	}
	if p.Has(domain.FieldDescription) {
		t.Description = p.Description
	}
	if p.Has(domain.FieldStatus) {
		t.Status = *p.Status
	}
	if p.Has(domain.FieldDueDate) {
		t.DueDate = p.DueDate
	}
	t.UpdatedAt = m.now
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *memRepo) DeleteTask(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memRepo) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	for id, t := range m.tasks {
		if id != excludeID && t.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) UpdateTasksStatus(ctx context.Context, ids []int64, status domain.TaskStatus) (int, error) {
	n := 0
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			t.Status = status
			m.tasks[id] = t
			n++
		}
	}
	return n, nil
}

func (m *memRepo) DeleteTasks(ctx context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := m.tasks[id]; ok {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Statistics(ctx context.Context, overdueBefore time.Time) (*domain.Statistics, error) {
	var s domain.Statistics
	for _, t := range m.tasks {
		s.Total++
		switch t.Status {
		case domain.TaskStatusPending:
			s.Pending++
		case domain.TaskStatusInProgress:
			s.InProgress++
		case domain.TaskStatusCompleted:
			s.Completed++
		}
		if t.DueDate != nil && t.Status.IsOpen() && t.DueDate.Before(overdueBefore) {
			s.Overdue++
		}
	}
	return &s, nil
}

func (m *memRepo) Atomic(ctx context.Context, fn func(tx Repository) error) error {
	m.atomicRuns++
	snapshot := make(map[int64]domain.Task, len(m.tasks))
	for k, v := range m.tasks {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.tasks = snapshot
		return err
	}
	return nil
}
