package handler

import (
	"net/http"
)

// BulkResultResource is the data of a bulk action response. Batches are
// all-or-nothing, so failed is always zero on success.
type BulkResultResource struct {
	Action  string `json:"action"`
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

// BulkAction serves POST /tasks/bulk-action.
func (h *TaskHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	const failed = "Bulk operation failed due to validation errors"

	body, ok := h.body(w, r)
	if !ok {
		return
	}
	in, err := bulkInput(body)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}

	result, err := h.svc.BulkAction(r.Context(), in)
	if err != nil {
		h.resp.FromError(w, r, err, failed)
		return
	}
	h.resp.OK(w, result.Message, BulkResultResource{
		Action:  string(result.Action),
		Count:   result.Count,
		Message: result.Message,
	})
}
