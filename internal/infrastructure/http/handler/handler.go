// Package handler implements the JSON task API on top of task.Service.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
)

// TaskHandler adapts HTTP requests to task.Service calls.
type TaskHandler struct {
	svc  *task.Service
	resp *response.Responder
}

// NewTaskHandler creates a new JSON API handler.
func NewTaskHandler(svc *task.Service, resp *response.Responder) *TaskHandler {
	return &TaskHandler{svc: svc, resp: resp}
}

// Routes returns the API router, meant to be mounted under /api.
// Static segments win over {id} in chi, so the named collection routes
// never reach the single-task handlers.
func (h *TaskHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/statistics", h.Statistics)
		r.Get("/statistics/overview", h.Statistics)
		r.Get("/overdue", h.Overdue)
		r.Get("/filter/overdue", h.Overdue)
		r.Get("/search", h.Search)
		r.Get("/search/query", h.Search)
		r.Get("/export", h.Export)
		r.Get("/export/data", h.Export)
		r.Post("/bulk-action", h.BulkAction)
		r.Get("/status/{status}", h.ByStatus)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/complete", h.Complete)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.resp.Error(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.resp.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}
