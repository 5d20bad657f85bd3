package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
)

// List serves GET /tasks: filtered, sorted, paginated tasks plus
// X-Total-Count and X-Statistics headers.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListTasks(r.Context(), listInput(r.URL.Query()))
	if err != nil {
		h.resp.FromError(w, r, err, "Invalid filter parameters")
		return
	}

	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.resp.Internal(w, r, err)
		return
	}
	statsJSON, err := json.Marshal(MapStatistics(stats))
	if err != nil {
		h.resp.Internal(w, r, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	w.Header().Set("X-Statistics", string(statsJSON))
	h.resp.OK(w, "Tasks retrieved successfully", PagedResource{
		Items:      MapTasks(page.Items, h.svc.Validator().Now()),
		Pagination: newPagination(r, page),
	})
}

// Create serves POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failed = "Task creation failed due to validation errors"

	body, ok := h.body(w, r)
	if !ok {
		return
	}
	in, err := taskInput(body)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}

	created, err := h.svc.CreateTask(r.Context(), in)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}
	h.resp.Created(w, "Task created successfully", MapTask(created, h.svc.Validator().Now()))
}

// Get serves GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.resp.NotFound(w)
		return
	}
	t, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		h.resp.FromError(w, r, err, MsgValidationFailed)
		return
	}
	h.resp.OK(w, "Task retrieved successfully", MapTask(t, h.svc.Validator().Now()))
}

// Update serves PUT and PATCH /tasks/{id}. Only fields present in the body change.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	const failed = "Task update failed due to validation errors"

	id, ok := taskID(r)
	if !ok {
		h.resp.NotFound(w)
		return
	}
	body, ok := h.body(w, r)
	if !ok {
		return
	}
	in, err := taskInput(body)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}

	updated, err := h.svc.UpdateTask(r.Context(), id, in)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}
	h.resp.OK(w, "Task updated successfully", MapTask(updated, h.svc.Validator().Now()))
}

// Delete serves DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.resp.NotFound(w)
		return
	}
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		h.resp.FromError(w, r, err, "Task deletion failed due to business rules")
		return
	}
	h.resp.OK(w, "Task deleted successfully", map[string]int64{"deleted_task_id": id})
}

// Complete serves PATCH /tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.resp.NotFound(w)
		return
	}
	completed, err := h.svc.CompleteTask(r.Context(), id)
	if err != nil {
		h.resp.FromError(w, r, err, "Cannot mark task as completed")
		return
	}
	h.resp.OK(w, "Task marked as completed successfully", MapTask(completed, h.svc.Validator().Now()))
}

// body decodes the request body, writing 400 when it is not a JSON object.
func (h *TaskHandler) body(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	body, err := decodeBody(r)
	if err != nil {
		if errors.Is(err, errMalformedBody) {
			h.resp.Error(w, http.StatusBadRequest, response.MsgInvalidJSON)
		} else {
			h.resp.Internal(w, r, err)
		}
		return nil, false
	}
	return body, true
}

