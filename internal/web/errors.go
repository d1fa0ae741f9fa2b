package web

// errors.go turns service errors into JSON responses.
//
// The technical error is logged with the request id; the client receives the
// core.MapError message, action and code. The HTTP status is derived from
// the error's sentinel.

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/logging"
	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/schedule"
	"github.com/JonMunkholm/athletix/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// badRequest lists the sentinels caused by the caller's input.
var badRequest = []error{
	core.ErrInvalidInput,
	core.ErrForeignEvent,
	core.ErrNotRegistered,
	rows.ErrEmptyInput,
	rows.ErrColumnCount,
	rows.ErrMissingField,
	rows.ErrMissingColumn,
	mark.ErrMalformed,
	results.ErrMalformedMark,
	results.ErrMissingCompetitor,
	reconcile.ErrMalformedMark,
	schedule.ErrNoEvents,
	schedule.ErrDuplicateEvent,
	schedule.ErrInvalidStart,
	model.ErrInvalidPosition,
}

// conflict lists the sentinels of state clashes.
var conflict = []error{
	store.ErrConflict,
	model.ErrInvalidTransition,
	model.ErrSlotTaken,
	model.ErrAlreadyInTeam,
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	for _, target := range conflict {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes its user-facing form. A zero status is
// derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	ue := core.NewUserError(err)
	msg := ue.User

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", ue.Technical.Error(),
		"code", msg.Code,
	}
	if !core.IsUserFacing(err) {
		attrs = append(attrs, "unmapped", true)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondInvalid rejects a malformed request body or parameter.
func respondInvalid(w http.ResponseWriter, r *http.Request, detail string) {
	respondError(w, r, fmt.Errorf("%w: %s", core.ErrInvalidInput, detail), http.StatusBadRequest)
}
