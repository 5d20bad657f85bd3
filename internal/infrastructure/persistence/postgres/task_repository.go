package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlquery"
)

const taskColumns = "id, title, description, status, due_date, created_at, updated_at"

// scanTask reads one row selected with taskColumns.
func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		t       domain.Task
		status  string
		dueDate *time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &dueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	if dueDate != nil {
		d := domain.StartOfDay(*dueDate)
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.StartOfDay(*t)
}

// CreateTask inserts a task. ID and timestamps are assigned by the database.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, due_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), dateArg(t.DueDate))

	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return &created, nil
}

// FindTaskByID retrieves a task, locking the row when called inside Atomic.
func (s *Store) FindTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if s.inTx {
		query += ` FOR UPDATE`
	}

	t, err := scanTask(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindTasksByIDs returns the existing tasks among ids.
func (s *Store) FindTasksByIDs(ctx context.Context, ids []int64) ([]domain.Task, error) {
	b := sqlquery.New(sqlquery.Postgres).WhereIDs("id", ids)
	query := `SELECT ` + taskColumns + ` FROM tasks` + b.WhereClause() + ` ORDER BY id`
	if s.inTx {
		query += ` FOR UPDATE`
	}
	return s.queryTasks(ctx, query, b.Args()...)
}

// FindTasks returns a filtered, sorted page of tasks and the total match count.
func (s *Store) FindTasks(ctx context.Context, params domain.ListTasksParams) (*domain.PagedResult, error) {
	b := sqlquery.New(sqlquery.Postgres).ApplyFilters(params)
	where := b.WhereClause()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, b.Args()...).Scan(&total); err != nil {
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
	rows, err := s.db.Query(ctx, query, args...)
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
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
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
	sets = append(sets, "updated_at = now()")
	args = append(args, params.TaskID)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), taskColumns)

	t, err := scanTask(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrTaskNotFound, params.TaskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", domain.ErrTaskNotFound, id)
	}
	return nil
}

// TitleExists reports whether another task already has exactly this title.
func (s *Store) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE title = $1 AND id <> $2)`,
		title, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return exists, nil
}

// UpdateTasksStatus sets status on every task in ids.
func (s *Store) UpdateTasksStatus(ctx context.Context, ids []int64, status domain.TaskStatus) (int, error) {
	b := sqlquery.New(sqlquery.Postgres)
	setStatus := b.Arg(string(status))
	b.WhereIDs("id", ids)

	tag, err := s.db.Exec(ctx, `UPDATE tasks SET status = `+setStatus+`, updated_at = now()`+b.WhereClause(), b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to update task status: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteTasks removes every task in ids.
func (s *Store) DeleteTasks(ctx context.Context, ids []int64) (int, error) {
	b := sqlquery.New(sqlquery.Postgres).WhereIDs("id", ids)
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks`+b.WhereClause(), b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Statistics counts tasks per status and overdue open tasks in one scan.
func (s *Store) Statistics(ctx context.Context, overdueBefore time.Time) (*domain.Statistics, error) {
	var st domain.Statistics
	err := s.db.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE due_date < $1 AND status IN ('pending', 'in_progress'))
		 FROM tasks`,
		domain.StartOfDay(overdueBefore)).
		Scan(&st.Total, &st.Pending, &st.InProgress, &st.Completed, &st.Overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &st, nil
}
