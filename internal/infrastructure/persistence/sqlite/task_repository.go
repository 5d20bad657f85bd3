package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlquery"
)

const (
	taskColumns = "id, title, description, status, due_date, created_at, updated_at"
	// timestampLayout is fixed width so text comparison orders chronologically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t                    domain.Task
		status               string
		description, dueDate sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &dueDate, &createdAt, &updatedAt); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		d, err := domain.ParseDate(dueDate.String)
		if err != nil {
			return domain.Task{}, fmt.Errorf("corrupt due_date %q: %w", dueDate.String, err)
		}
		t.DueDate = &d
	}
	var err error
	if t.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return domain.Task{}, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return domain.Task{}, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}
	return t, nil
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.FormatDate(*t)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// CreateTask inserts a task and returns it with its ID and timestamps.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ts := s.timestamp()
	row := s.q.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, status, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), dateArg(t.DueDate), ts, ts)

	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return &created, nil
}

// FindTaskByID retrieves a task by ID.
func (s *Store) FindTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindTasksByIDs returns the existing tasks among ids, ordered by ID.
func (s *Store) FindTasksByIDs(ctx context.Context, ids []int64) ([]domain.Task, error) {
	b := sqlquery.New(sqlquery.SQLite).WhereIDs("id", ids)
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks`+b.WhereClause()+` ORDER BY id`, b.Args()...)
}

// FindTasks returns a filtered, sorted page of tasks and the total match count.
func (s *Store) FindTasks(ctx context.Context, params domain.ListTasksParams) (*domain.PagedResult, error) {
	b := sqlquery.New(sqlquery.SQLite).ApplyFilters(params)
	where := b.WhereClause()

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, b.Args()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + sqlquery.OrderBy(params) + b.Limit(params.Limit, params.Offset)
	items, err := s.queryTasks(ctx, query, b.Args()...)
	if err != nil {
		return nil, err
	}
	return &domain.PagedResult{Items: items, TotalCount: total}, nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	items := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return items, nil
}

// UpdateTask writes the masked fields and refreshes updated_at.
func (s *Store) UpdateTask(ctx context.Context, params domain.UpdateTaskParams) (*domain.Task, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if params.Has(domain.FieldTitle) && params.Title != nil {
		set("title", *params.Title)
	}
	if params.Has(domain.FieldDescription) {
		set("description", params.Description)
	}
	if params.Has(domain.FieldStatus) && params.Status != nil {
		set("status", string(*params.Status))
	}
	if params.Has(domain.FieldDueDate) {
		set("due_date", dateArg(params.DueDate))
	}
	set("updated_at", s.timestamp())
	args = append(args, params.TaskID)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + taskColumns
	t, err := scanTask(s.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrTaskNotFound, params.TaskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrTaskNotFound, id)
	}
	return nil
}

// TitleExists reports whether another task already has exactly this title.
func (s *Store) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE title = ? AND id <> ?)`,
		title, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return exists, nil
}

// UpdateTasksStatus sets status on every task in ids.
func (s *Store) UpdateTasksStatus(ctx context.Context, ids []int64, status domain.TaskStatus) (int, error) {
	b := sqlquery.New(sqlquery.SQLite)
	setStatus := b.Arg(string(status))
	setUpdated := b.Arg(s.timestamp())
	b.WhereIDs("id", ids)

	res, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET status = `+setStatus+`, updated_at = `+setUpdated+b.WhereClause(), b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to update task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update task status: %w", err)
	}
	return int(n), nil
}

// DeleteTasks removes every task in ids.
func (s *Store) DeleteTasks(ctx context.Context, ids []int64) (int, error) {
	b := sqlquery.New(sqlquery.SQLite).WhereIDs("id", ids)
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks`+b.WhereClause(), b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return int(n), nil
}

// Statistics counts tasks per status and overdue open tasks in one scan.
func (s *Store) Statistics(ctx context.Context, overdueBefore time.Time) (*domain.Statistics, error) {
	var st domain.Statistics
	err := s.q.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status IN ('pending', 'in_progress') THEN 1 END)
		 FROM tasks`,
		domain.FormatDate(overdueBefore)).
		Scan(&st.Total, &st.Pending, &st.InProgress, &st.Completed, &st.Overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &st, nil
}
