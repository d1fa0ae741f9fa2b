package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/athletix/internal/core"
)

func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}
	var req core.ScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompetitionID = competitionID

	sc, err := s.service.GenerateSchedule(webContext(r).Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleLatestSchedule(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}
	sc, err := s.service.LatestSchedule(r.Context(), competitionID)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "scheduleID")
	if !ok {
		return
	}
	sc, err := s.service.Schedule(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handlePublishSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "scheduleID")
	if !ok {
		return
	}
	sc, err := s.service.PublishSchedule(webContext(r).Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type actualStartRequest struct {
	// At is RFC 3339; empty means now.
	At string `json:"at"`
}

func (s *Server) handleRecordActualStart(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := uuidParam(w, r, "scheduleID")
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID")
	if !ok {
		return
	}

	var req actualStartRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	at := time.Now()
	if req.At != "" {
		var err error
		if at, err = time.Parse(time.RFC3339, req.At); err != nil {
			respondInvalid(w, r, "at must be an RFC 3339 timestamp")
			return
		}
	}

	sc, err := s.service.RecordActualStart(r.Context(), scheduleID, itemID, at)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}
