package server

import (
	"errors"
	"net/http"

	"github.com/madan-prog/palletforge/pricing"
	"github.com/madan-prog/palletforge/store"
)

// handleGetSettings returns the stored rate configuration, falling back to
// the in-process snapshot before any admin has saved one.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	rates, err := s.store.GetSettings(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		current := s.rates.Current()
		writeJSON(w, http.StatusOK, &current)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// handlePutSettings stores a new rate table wholesale and refreshes the
// pricing snapshot. The refresh is this explicit save, never an implicit
// reaction; quotes priced before it keep their cached breakdowns.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var rates pricing.RateConfiguration
	if !decodeBody(w, r, &rates) {
		return
	}

	if err := s.store.PutSettings(r.Context(), rates); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.rates.Refresh(rates); err != nil {
		// Validation already passed in PutSettings; reaching here means the
		// two validators diverged.
		s.logger.Error("Rate cache refresh failed after settings save", "error", err)
	}

	writeJSON(w, http.StatusOK, &rates)
}

type noteBody struct {
	Note string `json:"note"`
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	note, err := s.store.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteBody{Note: note})
}

func (s *Server) handlePutNote(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var body noteBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.store.SetNote(r.Context(), r.PathValue("id"), body.Note); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
