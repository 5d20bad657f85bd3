// Package web serves the server-rendered task manager UI.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/ptr"
)

// Flash messages shown after a redirect.
const (
	MsgCreated   = "Task created successfully!"
	MsgUpdated   = "Task updated successfully!"
	MsgDeleted   = "Task deleted successfully!"
	MsgCompleted = "Task marked as completed!"
	MsgBadForm   = "The submitted form could not be read."
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler renders HTML pages on top of task.Service.
type Handler struct {
	svc   *task.Service
	pages map[string]*template.Template
}

// NewHandler parses the embedded templates.
func NewHandler(svc *task.Service) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index", "form", "show"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{svc: svc, pages: pages}, nil
}

// Routes returns the UI router, meant to be mounted at the root.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(MethodOverride)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tasks", http.StatusFound)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.index)
		r.Post("/", h.store)
		r.Get("/create", h.create)
		r.Post("/bulk-action", h.bulk)
		r.Get("/{id}", h.show)
		r.Get("/{id}/edit", h.edit)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.destroy)
		r.Patch("/{id}/complete", h.complete)
	})
	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := indexPage{
		Title:      "All Tasks",
		Flash:      flashFrom(r),
		Stats:      *stats,
		OverdueURL: listURL(q, map[string]string{"overdue": "1"}),
		Filters: filters{
			Search:    q.Get("search"),
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
			Overdue:   checked(q.Get("overdue")),
		},
		StatusOptions: statusOptions(q.Get("status")),
		Sorts:         sortLinks(q),
	}

	status := http.StatusOK
	result, err := h.svc.ListTasks(r.Context(), listInput(q))
	if err != nil {
		verr, ok := domain.AsValidationError(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		page.Errors = verr.Fields
		status = http.StatusUnprocessableEntity
	} else {
		now := h.svc.Validator().Now()
		for i := range result.Items {
			page.Tasks = append(page.Tasks, newTaskView(&result.Items[i], now))
		}
		page.Total = result.Total
		page.Pager = newPager(q, result)
	}

	h.render(w, r, status, "index", page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, formValues{Status: string(domain.TaskStatusPending)}, nil)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/tasks/create", "error", MsgBadForm)
		return
	}
	in, values := formInput(r.PostForm)

	if _, err := h.svc.CreateTask(r.Context(), in); err != nil {
		if verr, ok := domain.AsValidationError(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, 0, values, verr.Fields)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/tasks", "success", MsgCreated)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "show", showPage{
		Title: t.Title,
		Flash: flashFrom(r),
		Task:  newTaskView(t, h.svc.Validator().Now()),
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	values := formValues{
		Title:       t.Title,
		Description: ptr.Deref(t.Description, ""),
		Status:      string(t.Status),
	}
	if t.DueDate != nil {
		values.DueDate = domain.FormatDate(*t.DueDate)
	}
	h.renderForm(w, r, http.StatusOK, t.ID, values, nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.notFound(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, fmt.Sprintf("/tasks/%d/edit", id), "error", MsgBadForm)
		return
	}
	in, values := formInput(r.PostForm)

	if _, err := h.svc.UpdateTask(r.Context(), id, in); err != nil {
		if verr, ok := domain.AsValidationError(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, id, values, verr.Fields)
			return
		}
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.notFound(w)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/tasks", "success", MsgUpdated)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.notFound(w)
		return
	}
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		h.redirectError(w, r, "/tasks", err)
		return
	}
	h.redirect(w, r, "/tasks", "success", MsgDeleted)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := backURL(r, fmt.Sprintf("/tasks/%d", id))
	if _, err := h.svc.CompleteTask(r.Context(), id); err != nil {
		h.redirectError(w, r, back, err)
		return
	}
	h.redirect(w, r, back, "success", MsgCompleted)
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/tasks", "error", MsgBadForm)
		return
	}

	in := task.BulkInput{Action: formField(r.PostForm, "action")}
	for _, key := range []string{"task_ids", "task_ids[]"} {
		for _, raw := range r.PostForm[key] {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				h.redirect(w, r, "/tasks", "error", "Task IDs must be integers.")
				return
			}
			in.TaskIDs = append(in.TaskIDs, id)
		}
	}

	result, err := h.svc.BulkAction(r.Context(), in)
	if err != nil {
		h.redirectError(w, r, "/tasks", err)
		return
	}
	h.redirect(w, r, "/tasks", "success", result.Message)
}

// load fetches the {id} task, answering 404 itself when there is none.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	id, ok := taskID(r)
	if !ok {
		h.notFound(w)
		return nil, false
	}
	t, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.notFound(w)
		} else {
			h.fail(w, r, err)
		}
		return nil, false
	}
	return t, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, values formValues, errs map[string][]string) {
	page := formPage{
		Title:           "Create Task",
		Flash:           flashFrom(r),
		ID:              id,
		Action:          "/tasks",
		Form:            values,
		Errors:          errs,
		StatusOptions:   statusOptions(values.Status),
		PriorityOptions: priorityOptions(values.Priority),
	}
	if id != 0 {
		page.Title = "Edit Task"
		page.Action = fmt.Sprintf("/tasks/%d", id)
	}
	h.render(w, r, status, "form", page)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.fail(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write page", "page", name, "error", err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter) {
	http.Error(w, "Task not found", http.StatusNotFound)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Web request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "An error occurred while processing your request", http.StatusInternalServerError)
}

// redirect sends a 303 to target with a flash parameter set.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/tasks"}
	}
	q := u.Query()
	q.Del("success")
	q.Del("error")
	q.Set(kind, msg)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// redirectError flashes the first rule or validation message of err.
func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, target string, err error) {
	verr, ok := domain.AsValidationError(err)
	switch {
	case ok:
		h.redirect(w, r, target, "error", firstMessage(verr))
	case errors.Is(err, domain.ErrTaskNotFound):
		h.notFound(w)
	default:
		h.fail(w, r, err)
	}
}

func firstMessage(verr *domain.ValidationError) string {
	for _, k := range slices.Sorted(maps.Keys(verr.Fields)) {
		if msg := verr.First(k); msg != "" {
			return msg
		}
	}
	return verr.Message
}

// backURL returns the same-host referer, or fallback.
func backURL(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	return ref.RequestURI()
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formField(v url.Values, key string) task.Field {
	if _, ok := v[key]; !ok {
		return task.Field{}
	}
	return task.Value(v.Get(key))
}

// formInput reads the task form. The second result echoes the submitted
// values for re-rendering.
func formInput(v url.Values) (task.TaskInput, formValues) {
	in := task.TaskInput{
		Title:       formField(v, "title"),
		Description: formField(v, "description"),
		Status:      formField(v, "status"),
		DueDate:     formField(v, "due_date"),
		Priority:    formField(v, "priority"),
	}
	return in, formValues{
		Title:       v.Get("title"),
		Description: v.Get("description"),
		Status:      v.Get("status"),
		Priority:    v.Get("priority"),
		DueDate:     v.Get("due_date"),
	}
}

func listInput(q url.Values) task.ListInput {
	return task.ListInput{
		Search:    formField(q, "search"),
		Status:    formField(q, "status"),
		StartDate: formField(q, "start_date"),
		EndDate:   formField(q, "end_date"),
		Overdue:   formField(q, "overdue"),
		SortBy:    formField(q, "sort_by"),
		SortOrder: formField(q, "sort_order"),
		Page:      formField(q, "page"),
		PerPage:   formField(q, "per_page"),
	}
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
