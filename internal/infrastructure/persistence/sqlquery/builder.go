// Package sqlquery translates task list parameters into SQL predicates,
// ordering and pagination for the supported SQL dialects. Column names
// never come from input: sort fields are mapped through a fixed table and
// every value is bound as a parameter.
package sqlquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// Dialect selects placeholder syntax and value encoding.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Date encodes a calendar date for the dialect's due_date column.
func (d Dialect) Date(t time.Time) any {
	if d == SQLite {
		return domain.FormatDate(t)
	}
	return domain.StartOfDay(t)
}

// Builder accumulates WHERE conditions and their bound arguments.
type Builder struct {
	dialect Dialect
	conds   []string
	args    []any
}

// New returns an empty Builder for the dialect.
func New(d Dialect) *Builder {
	return &Builder{dialect: d}
}

// Arg binds v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// Where adds a condition. It must reference arguments only through Arg.
func (b *Builder) Where(cond string) *Builder {
	b.conds = append(b.conds, cond)
	return b
}

// WhereIDs restricts column to ids. An empty slice matches nothing. The
// whole list is bound as a single argument, an array on Postgres and a JSON
// array on SQLite, so its length is not limited by the number of bind
// variables a statement may have.
func (b *Builder) WhereIDs(column string, ids []int64) *Builder {
	if len(ids) == 0 {
		return b.Where("1 = 0")
	}
	if b.dialect == Postgres {
		return b.Where(fmt.Sprintf("%s = ANY(%s)", column, b.Arg(ids)))
	}
	return b.Where(fmt.Sprintf("%s IN (SELECT value FROM json_each(%s))", column, b.Arg(jsonIDs(ids))))
}

func jsonIDs(ids []int64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ApplyFilters adds the predicates of p: status, due date range, overdue
// and free-text search, all joined with AND.
func (b *Builder) ApplyFilters(p domain.ListTasksParams) *Builder {
	if p.Status != nil {
		b.Where("status = " + b.Arg(string(*p.Status)))
	}
	if p.DueFrom != nil {
		b.Where("due_date >= " + b.Arg(b.dialect.Date(*p.DueFrom)))
	}
	if p.DueTo != nil {
		b.Where("due_date <= " + b.Arg(b.dialect.Date(*p.DueTo)))
	}
	if p.OverdueBefore != nil {
		b.Where(fmt.Sprintf("due_date IS NOT NULL AND due_date < %s AND status IN (%s, %s)",
			b.Arg(b.dialect.Date(*p.OverdueBefore)),
			b.Arg(string(domain.TaskStatusPending)),
			b.Arg(string(domain.TaskStatusInProgress))))
	}
	if p.Search != nil && *p.Search != "" {
		b.applySearch(*p.Search, p.SearchFields)
	}
	return b
}

func (b *Builder) applySearch(term string, fields []string) {
	if len(fields) == 0 {
		fields = []string{domain.SearchFieldTitle, domain.SearchFieldDescription}
	}
	pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"

	var ors []string
	for _, f := range fields {
		var col string
		switch f {
		case domain.SearchFieldTitle:
			col = "title"
		case domain.SearchFieldDescription:
			col = "COALESCE(description, '')"
		default:
			continue
		}
		ors = append(ors, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, b.Arg(pattern)))
	}
	if len(ors) > 0 {
		b.Where("(" + strings.Join(ors, " OR ") + ")")
	}
}

// WhereClause renders " WHERE ..." or "" when no condition was added.
func (b *Builder) WhereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Limit renders " LIMIT n OFFSET m" with bound values, or "" for limit 0.
func (b *Builder) Limit(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %s OFFSET %s", b.Arg(limit), b.Arg(max(offset, 0)))
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// sortColumns maps accepted sort fields to SQL expressions. priority is not
// stored and orders by creation time.
var sortColumns = map[string]string{
	domain.SortByTitle:     "title",
	domain.SortByStatus:    "status",
	domain.SortByDueDate:   "due_date",
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByPriority:  "created_at",
}

// OrderBy renders " ORDER BY ..." for p. Unknown fields and directions
// fall back to created_at desc. Tasks without a due date sort last when
// ordering by due_date, and id breaks ties so paging is stable.
func OrderBy(p domain.ListTasksParams) string {
	field, dir := domain.NormalizeSort(p.OrderBy, p.OrderDir)
	col := sortColumns[field]
	sqlDir := "DESC"
	if dir == domain.SortAsc {
		sqlDir = "ASC"
	}
	if field == domain.SortByDueDate {
		return fmt.Sprintf(" ORDER BY (due_date IS NULL) ASC, due_date %s, id %s", sqlDir, sqlDir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, sqlDir, sqlDir)
}

// EscapeLike escapes LIKE wildcards so s matches literally under ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
