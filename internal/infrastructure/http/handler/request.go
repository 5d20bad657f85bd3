package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
)

// Messages for values of the wrong JSON type.
const (
	MsgMustBeString     = "The %s field must be a string."
	MsgTaskIDsArray     = "Task IDs must be an array."
	MsgTaskIDsIntegers  = "Task IDs must be integers."
	MsgValidationFailed = domain.MessageValidationFailed
)

var errMalformedBody = errors.New("request body must be a JSON object")

// decodeBody reads a JSON object body. An empty body is an empty object.
func decodeBody(r *http.Request) (map[string]json.RawMessage, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	body := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errMalformedBody
	}
	return body, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// stringField reads key as an optional string. Non-string values are
// recorded in verr.
func stringField(body map[string]json.RawMessage, key string, verr *domain.ValidationError) task.Field {
	raw, ok := body[key]
	if !ok {
		return task.Field{}
	}
	if isNull(raw) {
		return task.Null()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.Add(key, fmt.Sprintf(MsgMustBeString, key))
		return task.Field{}
	}
	return task.Value(s)
}

// taskInput extracts the create/update fields of body.
func taskInput(body map[string]json.RawMessage) (task.TaskInput, error) {
	verr := domain.NewValidationError()
	in := task.TaskInput{
		Title:       stringField(body, domain.FieldTitle, verr),
		Description: stringField(body, domain.FieldDescription, verr),
		Status:      stringField(body, domain.FieldStatus, verr),
		DueDate:     stringField(body, domain.FieldDueDate, verr),
		Priority:    stringField(body, "priority", verr),
	}
	return in, verr.Err()
}

// bulkInput extracts action and task_ids. IDs may be JSON numbers or
// numeric strings.
func bulkInput(body map[string]json.RawMessage) (task.BulkInput, error) {
	verr := domain.NewValidationError()
	in := task.BulkInput{Action: stringField(body, "action", verr)}

	raw, ok := body["task_ids"]
	if !ok || isNull(raw) {
		return in, verr.Err()
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		verr.Add("task_ids", MsgTaskIDsArray)
		return in, verr.Err()
	}
	for _, item := range items {
		id, ok := parseID(item)
		if !ok {
			verr.Add("task_ids", MsgTaskIDsIntegers)
			break
		}
		in.TaskIDs = append(in.TaskIDs, id)
	}
	return in, verr.Err()
}

func parseID(raw json.RawMessage) (int64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		id, err := n.Int64()
		return id, err == nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil
}

// queryField reads key from q; a key sent without a value is present but empty.
func queryField(q url.Values, key string) task.Field {
	if _, ok := q[key]; !ok {
		return task.Field{}
	}
	return task.Value(q.Get(key))
}

// listValues collects a multi-valued parameter sent as key=a,b, key=a&key=b
// or key[]=a&key[]=b.
func listValues(q url.Values, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range q[k] {
			for part := range strings.SplitSeq(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func listInput(q url.Values) task.ListInput {
	return task.ListInput{
		Search:    queryField(q, "search"),
		Status:    queryField(q, "status"),
		StartDate: queryField(q, "start_date"),
		EndDate:   queryField(q, "end_date"),
		Overdue:   queryField(q, "overdue"),
		SortBy:    queryField(q, "sort_by"),
		SortOrder: queryField(q, "sort_order"),
		Page:      queryField(q, "page"),
		PerPage:   queryField(q, "per_page"),
	}
}

func searchInput(q url.Values) task.SearchInput {
	return task.SearchInput{
		Query:   queryField(q, "query"),
		Fields:  listValues(q, "fields"),
		Page:    queryField(q, "page"),
		PerPage: queryField(q, "per_page"),
	}
}

func exportInput(q url.Values) task.ExportInput {
	return task.ExportInput{
		Status:    queryField(q, "status"),
		StartDate: queryField(q, "start_date"),
		EndDate:   queryField(q, "end_date"),
	}
}

// taskID parses the {id} URL parameter. Non-numeric IDs name no task.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
