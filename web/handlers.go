/* handlers.go
 * Contains the HTTP handlers: workbook import (upload or url), record queries, import history and profiles
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"tournament-importer/api/api"
	"tournament-importer/api/external"
	"tournament-importer/api/shared"
	"tournament-importer/api/store"
	"tournament-importer/api/workbook"

	"github.com/go-chi/chi/v5"
)

// HealthHandler answers liveness probes
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProfilesHandler lists the registered organizations. ?q= narrows them with a loose name match
func (s *Server) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles := s.api.Profiles()
	if q := r.URL.Query().Get("q"); q != "" {
		matches := make(map[string]bool)
		for _, org := range s.api.FindProfiles(q) {
			matches[org] = true
		}
		filtered := make([]api.ProfileInfo, 0, len(profiles))
		for _, p := range profiles {
			if matches[p.Organization] {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}
	writeJSON(w, http.StatusOK, profiles)
}

// ImportHandler imports the workbook sent as the request body
// Preconditions: The body is an xlsx file no larger than external.MaxWorkbookSize. ?sheetFilter= and ?source= are
// optional
// Postconditions: Answers 201 with the ImportResult, 200 when it was served from the cache, or an error response
func (s *Server) ImportHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, external.MaxWorkbookSize)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, external.ErrTooLarge, nil)
			return
		}
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty request body"), nil)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	result, err := s.api.ImportWorkbook(r.Context(), source, data, r.URL.Query().Get("sheetFilter"))
	s.writeImport(w, result, err)
}

// ImportURLHandler downloads and imports the workbook named by the JSON body {url, sheetFilter}
func (s *Server) ImportURLHandler(w http.ResponseWriter, r *http.Request) {
	var req importURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"), nil)
		return
	}

	result, err := s.api.ImportFromURL(r.Context(), req.URL, req.SheetFilter)
	s.writeImport(w, result, err)
}

func (s *Server) writeImport(w http.ResponseWriter, result api.ImportResult, err error) {
	if err != nil {
		status := importErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("import failed", "error", err)
		}
		writeError(w, status, err, result.Diagnostics)
		return
	}
	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// importErrorStatus maps an import failure to its HTTP status
func importErrorStatus(err error) int {
	var statusErr *external.StatusError
	switch {
	case errors.Is(err, workbook.ErrNotWorkbook), errors.Is(err, external.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrWorkbookUnidentified), errors.Is(err, shared.ErrMissingProfile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, external.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// RecordsHandler lists the stored tournaments
func (s *Server) RecordsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.api.ListRecords(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// RecordHandler returns one stored tournament record
func (s *Server) RecordHandler(w http.ResponseWriter, r *http.Request) {
	record, err := s.api.GetRecord(r.Context(), chi.URLParam(r, "tournamentId"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ImportsHandler returns the import history of a tournament, newest first
func (s *Server) ImportsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := s.api.ListImports(r.Context(), chi.URLParam(r, "tournamentId"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if logs == nil {
		logs = []store.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err, nil)
	case errors.Is(err, api.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err, nil)
	default:
		s.logger.Error("store query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, diagnostics []shared.Diagnostic) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Diagnostics: diagnostics})
}
