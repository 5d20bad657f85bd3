// Package response writes the JSON envelope every API endpoint returns:
//
//	{status, status_code, message, data, validation_errors, timestamp}
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// TimestampLayout renders envelope timestamps in UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Messages shared by several endpoints.
const (
	MsgNotFound      = "Task not found"
	MsgInternalError = "An error occurred while processing your request"
	MsgInvalidJSON   = "Malformed JSON request body"
)

// encodeFailureJSON is written when the envelope itself cannot be marshaled.
const encodeFailureJSON = `{"status":false,"status_code":500,"message":"failed to encode response","data":null,"validation_errors":null}`

// Envelope is the outer shape of every JSON response.
type Envelope struct {
	Status           bool                `json:"status"`
	StatusCode       int                 `json:"status_code"`
	Message          string              `json:"message"`
	Data             any                 `json:"data"`
	ValidationErrors map[string][]string `json:"validation_errors"`
	Timestamp        string              `json:"timestamp"`
}

// Responder builds envelopes. Internal error text is only exposed when
// exposeErrors is set, i.e. outside production.
type Responder struct {
	exposeErrors bool
	now          func() time.Time
}

// NewResponder creates a Responder.
func NewResponder(exposeErrors bool) *Responder {
	return &Responder{exposeErrors: exposeErrors, now: time.Now}
}

// WithClock returns a copy of r that stamps envelopes using now.
func (r *Responder) WithClock(now func() time.Time) *Responder {
	c := *r
	c.now = now
	return &c
}

func (r *Responder) timestamp() string {
	return r.now().UTC().Format(TimestampLayout)
}

// Success writes a successful envelope with the given status code.
func (r *Responder) Success(w http.ResponseWriter, status int, message string, data any) {
	Write(w, status, Envelope{
		Status:     true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  r.timestamp(),
	})
}

// OK writes a 200 envelope.
func (r *Responder) OK(w http.ResponseWriter, message string, data any) {
	r.Success(w, http.StatusOK, message, data)
}

// Created writes a 201 envelope.
func (r *Responder) Created(w http.ResponseWriter, message string, data any) {
	r.Success(w, http.StatusCreated, message, data)
}

// Error writes a failed envelope without field errors.
func (r *Responder) Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{
		StatusCode: status,
		Message:    message,
		Timestamp:  r.timestamp(),
	})
}

// Validation writes a 422 envelope carrying the field error map.
func (r *Responder) Validation(w http.ResponseWriter, message string, verr *domain.ValidationError) {
	Write(w, http.StatusUnprocessableEntity, Envelope{
		StatusCode:       http.StatusUnprocessableEntity,
		Message:          message,
		ValidationErrors: verr.Fields,
		Timestamp:        r.timestamp(),
	})
}

// NotFound writes a 404 envelope.
func (r *Responder) NotFound(w http.ResponseWriter) {
	r.Error(w, http.StatusNotFound, MsgNotFound)
}

// Internal logs err and writes a 500 envelope.
func (r *Responder) Internal(w http.ResponseWriter, req *http.Request, err error) {
	slog.ErrorContext(req.Context(), "Internal server error",
		"method", req.Method,
		"path", req.URL.Path,
		"error", err)

	message := MsgInternalError
	if r.exposeErrors && err != nil {
		message = err.Error()
	}
	r.Error(w, http.StatusInternalServerError, message)
}

// FromError maps service errors to responses. validationMessage is the
// envelope message used for 422 responses.
func (r *Responder) FromError(w http.ResponseWriter, req *http.Request, err error, validationMessage string) {
	if verr, ok := domain.AsValidationError(err); ok {
		r.Validation(w, validationMessage, verr)
		return
	}
	if errors.Is(err, domain.ErrTaskNotFound) {
		r.NotFound(w)
		return
	}
	r.Internal(w, req, err)
}

// Write marshals env before touching w so an encoding failure can still
// produce a well-formed 500.
func Write(w http.ResponseWriter, status int, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
