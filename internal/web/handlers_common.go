package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/core"
)

// maxJSONBody caps JSON request bodies; files go through multipart instead.
const maxJSONBody = 1 << 20

// uuidParam reads a UUID path parameter, answering 400 when it is malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondInvalid(w, r, fmt.Sprintf("%s %q is not a valid id", name, raw))
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			respondInvalid(w, r, "request body is empty")
		} else {
			respondInvalid(w, r, "malformed JSON: "+err.Error())
		}
		return false
	}
	return true
}

// parseDay reads an ISO date (YYYY-MM-DD) as midnight UTC.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (s *Server) handleImportQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// webContext marks operations started over HTTP.
func webContext(r *http.Request) *http.Request {
	return r.WithContext(core.ContextWithSource(r.Context(), "web"))
}
