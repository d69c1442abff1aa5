package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/toastui/internal/model"
)

// ClearResponse is returned by the clear endpoint.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) apiListToasts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.center.Active())
}

func (s *Server) apiCreateToast(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("api create toast bad request", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	toast := s.center.Notify(req.Message, req.ParsedSeverity(), req.Duration())
	n, ok := toast.Snapshot()
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "toast was not created")
		return
	}
	w.Header().Set("Location", PathToasts+"/"+n.ID)
	s.writeJSON(w, http.StatusCreated, n)
}

func (s *Server) apiGetToast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := s.center.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "toast not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

func (s *Server) apiDismissToast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.center.Dismiss(id) {
		s.writeError(w, http.StatusNotFound, "toast not found: "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiClearToasts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ClearResponse{Cleared: s.center.ClearAll()})
}
