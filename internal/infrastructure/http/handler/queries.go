package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/infrastructure/export"
)

// ExportResource is the data of an export response. Archive is set when
// the export was also written to a sink.
type ExportResource struct {
	export.Document
	Archive *string `json:"archive,omitempty"`
}

// Statistics serves GET /tasks/statistics.
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.resp.Internal(w, r, err)
		return
	}
	h.resp.OK(w, "Task statistics retrieved successfully", MapStatistics(stats))
}

// ByStatus serves GET /tasks/status/{status}. An unknown status is a 400.
func (h *TaskHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "status")
	status, err := task.ParseStatusSegment(raw)
	if err != nil {
		h.resp.Error(w, http.StatusBadRequest, task.MsgStatusInvalid)
		return
	}

	tasks, err := h.svc.TasksByStatus(r.Context(), status)
	if err != nil {
		h.resp.Internal(w, r, err)
		return
	}
	h.resp.OK(w, fmt.Sprintf("Tasks with status '%s' retrieved successfully", status),
		mapCollection(tasks, h.svc.Validator().Now()))
}

// Overdue serves GET /tasks/overdue.
func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.OverdueTasks(r.Context())
	if err != nil {
		h.resp.Internal(w, r, err)
		return
	}
	h.resp.OK(w, "Overdue tasks retrieved successfully", mapCollection(tasks, h.svc.Validator().Now()))
}

// Search serves GET /tasks/search.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	in := searchInput(r.URL.Query())
	page, err := h.svc.SearchTasks(r.Context(), in)
	if err != nil {
		h.resp.FromError(w, r, err, "Invalid search parameters")
		return
	}
	h.resp.OK(w, fmt.Sprintf("Search results for '%s'", in.Query.String()), PagedResource{
		Items:      MapTasks(page.Items, h.svc.Validator().Now()),
		Pagination: newPagination(r, page),
	})
}

// Export serves GET /tasks/export: every matching task, unpaginated.
func (h *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.ExportTasks(r.Context(), exportInput(r.URL.Query()))
	if err != nil {
		h.resp.FromError(w, r, err, "Invalid export parameters")
		return
	}

	res := ExportResource{Document: export.NewDocument(e)}
	if e.Location != "" {
		res.Archive = &e.Location
	}
	h.resp.OK(w, "Tasks exported successfully", res)
}
