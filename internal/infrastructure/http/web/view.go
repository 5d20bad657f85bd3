package web

import (
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rezkam/taskboard/internal/domain"
)

const (
	displayDateLayout = "Jan 02, 2006"
	displayTimeLayout = "Jan 02, 2006 15:04"
	summaryLength     = 80
)

type flash struct {
	Success string
	Error   string
}

func flashFrom(r *http.Request) flash {
	q := r.URL.Query()
	return flash{Success: q.Get("success"), Error: q.Get("error")}
}

type taskView struct {
	ID          int64
	Title       string
	Description string
	Summary     string
	Status      string
	StatusLabel string
	StatusColor string
	DueDate     string
	IsOverdue   bool
	Completed   bool
	CreatedDate string
	CreatedAt   string
	UpdatedAt   string
}

func newTaskView(t *domain.Task, now time.Time) taskView {
	v := taskView{
		ID:          t.ID,
		Title:       t.Title,
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		StatusColor: t.Status.Color(),
		IsOverdue:   t.IsOverdue(now),
		Completed:   t.IsCompleted(),
		CreatedDate: t.CreatedAt.Format(displayDateLayout),
		CreatedAt:   t.CreatedAt.Format(displayTimeLayout),
		UpdatedAt:   t.UpdatedAt.Format(displayTimeLayout),
	}
	if t.Description != nil {
		v.Description = *t.Description
		v.Summary = truncate(*t.Description, summaryLength)
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.Format(displayDateLayout)
	}
	return v
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func statusOptions(selected string) []option {
	opts := make([]option, len(domain.TaskStatuses))
	for i, s := range domain.TaskStatuses {
		opts[i] = option{Value: string(s), Label: s.Label(), Selected: string(s) == selected}
	}
	return opts
}

func priorityOptions(selected string) []option {
	priorities := []struct {
		p     domain.TaskPriority
		label string
	}{
		{domain.TaskPriorityLow, "Low"},
		{domain.TaskPriorityMedium, "Medium"},
		{domain.TaskPriorityHigh, "High"},
	}
	opts := make([]option, len(priorities))
	for i, p := range priorities {
		opts[i] = option{Value: string(p.p), Label: p.label, Selected: string(p.p) == selected}
	}
	return opts
}

type filters struct {
	Search    string
	StartDate string
	EndDate   string
	Overdue   bool
}

type sortLink struct {
	Label  string
	URL    string
	Active bool
	Asc    bool
}

type pageLink struct {
	Number int
	URL    string
	Active bool
}

type pager struct {
	LastPage int
	Prev     string
	Next     string
	Pages    []pageLink
}

type indexPage struct {
	Title         string
	Flash         flash
	Stats         domain.Statistics
	OverdueURL    string
	Errors        map[string][]string
	Filters       filters
	StatusOptions []option
	Sorts         []sortLink
	Tasks         []taskView
	Total         int
	Pager         pager
}

type formValues struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

type formPage struct {
	Title           string
	Flash           flash
	ID              int64
	Action          string
	Form            formValues
	Errors          map[string][]string
	StatusOptions   []option
	PriorityOptions []option
}

type showPage struct {
	Title string
	Flash flash
	Task  taskView
}

// listURL returns /tasks with q's parameters, overridden by set. Flash
// parameters are never carried over.
func listURL(q url.Values, set map[string]string) string {
	out := url.Values{}
	for k, v := range q {
		if k == "success" || k == "error" {
			continue
		}
		out[k] = v
	}
	for k, v := range set {
		out.Set(k, v)
	}
	if len(out) == 0 {
		return "/tasks"
	}
	return "/tasks?" + out.Encode()
}

func sortLinks(q url.Values) []sortLink {
	current := q.Get("sort_by")
	if current == "" {
		current = domain.DefaultOrderBy
	}
	asc := q.Get("sort_order") == domain.SortAsc

	fields := []struct{ field, label string }{
		{domain.SortByTitle, "Title"},
		{domain.SortByStatus, "Status"},
		{domain.SortByDueDate, "Due Date"},
	}
	links := make([]sortLink, len(fields))
	for i, f := range fields {
		active := current == f.field
		order := domain.SortAsc
		if active && asc {
			order = domain.SortDesc
		}
		links[i] = sortLink{
			Label:  f.label,
			URL:    listURL(q, map[string]string{"sort_by": f.field, "sort_order": order}),
			Active: active,
			Asc:    asc,
		}
	}
	return links
}

func newPager(q url.Values, p *domain.TaskPage) pager {
	pg := pager{LastPage: p.LastPage()}
	at := func(n int) string { return listURL(q, map[string]string{"page": strconv.Itoa(n)}) }
	if p.Page > 1 {
		pg.Prev = at(p.Page - 1)
	}
	if p.HasMorePages() {
		pg.Next = at(p.Page + 1)
	}
	for n := 1; n <= pg.LastPage; n++ {
		pg.Pages = append(pg.Pages, pageLink{Number: n, URL: at(n), Active: n == p.Page})
	}
	return pg
}
