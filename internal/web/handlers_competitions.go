package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

type competitionRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Public    bool   `json:"public"`
}

func (s *Server) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, err := parseDay(req.StartDate)
	if err != nil || start.IsZero() {
		respondInvalid(w, r, "startDate must be YYYY-MM-DD")
		return
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		respondInvalid(w, r, "endDate must be YYYY-MM-DD")
		return
	}
	if end.IsZero() {
		end = start
	}

	c, err := s.service.CreateCompetition(r.Context(), model.Competition{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Public:    req.Public,
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}
	c, err := s.service.Competition(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type eventRequest struct {
	Discipline   string `json:"discipline"`
	Kind         string `json:"kind"`
	MarkKind     string `json:"markKind"`
	Round        string `json:"round"`
	Series       int    `json:"series"`
	Finalists    int    `json:"finalists"`
	WindMeasured bool   `json:"windMeasured"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev := model.Event{
		CompetitionID: competitionID,
		Discipline:    req.Discipline,
		Kind:          model.DisciplineKind(req.Kind),
		Series:        req.Series,
		Finalists:     req.Finalists,
		WindMeasured:  req.WindMeasured,
	}
	if strings.TrimSpace(req.Round) != "" {
		round, err := model.ParseRound(req.Round)
		if err != nil {
			respondInvalid(w, r, err.Error())
			return
		}
		ev.Round = round
	}
	kind, err := mark.ParseKind(req.MarkKind)
	if err != nil {
		respondInvalid(w, r, err.Error())
		return
	}
	ev.MarkKind = kind

	created, err := s.service.CreateEvent(r.Context(), ev)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}
	events, err := s.service.Events(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	regs, err := s.service.Registrations(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) handleGetAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "athleteID")
	if !ok {
		return
	}
	a, err := s.service.Athlete(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
