package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/results"
)

// maxBatch caps the submissions of one batch request.
const maxBatch = 500

type submitPayload struct {
	AthleteID      uuid.UUID `json:"athleteId"`
	TeamID         uuid.UUID `json:"teamId"`
	EventID        uuid.UUID `json:"eventId"`
	RegistrationID uuid.UUID `json:"registrationId"`
	Result         string    `json:"result"`
	Status         string    `json:"status"`
	Wind           *float64  `json:"wind"`
	ReactionTime   *float64  `json:"reactionTime"`
	Splits         []string  `json:"splits"`
	Date           string    `json:"date"`
	NationalRecord string    `json:"nationalRecord"`
	WorldRecord    string    `json:"worldRecord"`
}

// toRequest converts the payload. Record thresholds are read in the event's
// mark kind, so the event is looked up first.
func (s *Server) toRequest(ctx context.Context, p submitPayload) (core.SubmitRequest, error) {
	ev, err := s.service.Event(ctx, p.EventID)
	if err != nil {
		return core.SubmitRequest{}, err
	}

	sub := results.Submission{
		AthleteID:      p.AthleteID,
		TeamID:         p.TeamID,
		EventID:        p.EventID,
		RegistrationID: p.RegistrationID,
		Raw:            p.Result,
		Wind:           p.Wind,
		ReactionTime:   p.ReactionTime,
	}
	if p.Status != "" {
		st, ok := results.ParseStatus(p.Status)
		if !ok {
			return core.SubmitRequest{}, fmt.Errorf("%w: unknown status %q", core.ErrInvalidInput, p.Status)
		}
		sub.Status = st
	}
	for _, raw := range p.Splits {
		m, err := mark.Parse(raw, mark.Time)
		if err != nil {
			return core.SubmitRequest{}, fmt.Errorf("split %q: %w", raw, err)
		}
		sub.Splits = append(sub.Splits, m)
	}
	if sub.Date, err = parseDay(p.Date); err != nil {
		return core.SubmitRequest{}, fmt.Errorf("%w: date must be YYYY-MM-DD", core.ErrInvalidInput)
	}

	req := core.SubmitRequest{Submission: sub}
	thresholds := []struct {
		raw string
		dst *mark.Mark
	}{
		{p.NationalRecord, &req.Thresholds.National},
		{p.WorldRecord, &req.Thresholds.World},
	}
	for _, t := range thresholds {
		if strings.TrimSpace(t.raw) == "" {
			continue
		}
		if *t.dst, err = mark.Parse(t.raw, ev.MarkKind); err != nil {
			return core.SubmitRequest{}, fmt.Errorf("record threshold %q: %w", t.raw, err)
		}
	}
	return req, nil
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var p submitPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	r = webContext(r)
	req, err := s.toRequest(r.Context(), p)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	res, err := s.service.SubmitResult(r.Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSubmitResults accepts a JSON array. Items that fail conversion or
// classification are reported in place; the batch itself succeeds.
func (s *Server) handleSubmitResults(w http.ResponseWriter, r *http.Request) {
	var payloads []submitPayload
	if !decodeJSON(w, r, &payloads) {
		return
	}
	if len(payloads) > maxBatch {
		respondInvalid(w, r, fmt.Sprintf("at most %d results per batch", maxBatch))
		return
	}
	r = webContext(r)

	out := make([]core.SubmitOutcome, len(payloads))
	reqs := make([]core.SubmitRequest, 0, len(payloads))
	index := make([]int, 0, len(payloads))
	for i, p := range payloads {
		out[i].Index = i
		req, err := s.toRequest(r.Context(), p)
		if err != nil {
			msg := core.MapError(err)
			out[i].Error = &msg
			continue
		}
		reqs = append(reqs, req)
		index = append(index, i)
	}

	submitted, err := s.service.SubmitResults(r.Context(), reqs)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	for j, o := range submitted {
		o.Index = index[j]
		out[index[j]] = o
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEventResults(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	if _, err := s.service.Event(r.Context(), id); err != nil {
		respondError(w, r, err, 0)
		return
	}
	res, err := s.service.EventResults(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if res == nil {
		res = []model.Result{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRankEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	res, err := s.service.RankEvent(webContext(r).Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if res == nil {
		res = []model.Result{}
	}
	writeJSON(w, http.StatusOK, res)
}

// relayTeamResponse carries the members, which RelayTeam keeps unexported.
type relayTeamResponse struct {
	model.RelayTeam
	Members []model.RelayTeamMember `json:"members"`
}

func toRelayResponse(t model.RelayTeam) relayTeamResponse {
	return relayTeamResponse{RelayTeam: t, Members: t.Members()}
}

type relayTeamRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateRelayTeam(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var req relayTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := s.service.CreateRelayTeam(r.Context(), eventID, req.Name)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, toRelayResponse(t))
}

func (s *Server) handleGetRelayTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "teamID")
	if !ok {
		return
	}
	t, err := s.service.RelayTeam(r.Context(), id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, toRelayResponse(t))
}

type relayMemberRequest struct {
	AthleteID uuid.UUID `json:"athleteId"`
	Position  int       `json:"position"`
	Reserve   bool      `json:"reserve"`
}

func (s *Server) handleAssignRelayMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := uuidParam(w, r, "teamID")
	if !ok {
		return
	}
	var req relayMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := s.service.AssignRelayMember(r.Context(), teamID, req.Position, req.AthleteID, req.Reserve)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, toRelayResponse(t))
}

func (s *Server) handleReleaseRelayMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := uuidParam(w, r, "teamID")
	if !ok {
		return
	}
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		respondInvalid(w, r, "position must be a number")
		return
	}
	t, err := s.service.ReleaseRelayMember(r.Context(), teamID, position)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, toRelayResponse(t))
}
