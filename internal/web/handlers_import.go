package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/rows"
)

// multipartOverhead is the allowance for form fields and part headers on top
// of the file itself.
const multipartOverhead = 64 << 10

func (s *Server) handleImportStartlist(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.service.ImportStartlist)
}

func (s *Server) handleImportResults(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.service.ImportResults)
}

type importFunc func(ctx context.Context, req core.ImportRequest) (*core.ImportResult, error)

// handleImport reads a multipart upload ("file" plus optional "format",
// "strict", "updateExisting" and "createMissingAthletes" fields) and runs it
// through run. Row failures are part of a 200 response; only whole-import
// failures answer with an error status.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	competitionID, ok := uuidParam(w, r, "competitionID")
	if !ok {
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondInvalid(w, r, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	req := core.ImportRequest{
		CompetitionID: competitionID,
		FileName:      header.Filename,
		Data:          data,
		Format:        s.defaults.Format,
		Mode:          s.defaults.Mode,
		Policy:        s.defaults.Policy,
	}
	if v := r.FormValue("format"); v != "" {
		if req.Format, err = rows.ParseFormat(v); err != nil {
			respondInvalid(w, r, err.Error())
			return
		}
	}
	flags := []struct {
		name string
		set  func(bool)
	}{
		{"strict", func(b bool) {
			req.Mode = rows.BestEffort
			if b {
				req.Mode = rows.Strict
			}
		}},
		{"updateExisting", func(b bool) { req.Policy.UpdateExisting = b }},
		{"createMissingAthletes", func(b bool) { req.Policy.CreateMissingAthletes = b }},
	}
	for _, f := range flags {
		v := r.FormValue(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondInvalid(w, r, fmt.Sprintf("%s must be true or false", f.name))
			return
		}
		f.set(b)
	}

	r = webContext(r)
	result, err := run(r.Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
