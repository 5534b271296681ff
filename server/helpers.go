package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/pricing"
	"github.com/madan-prog/palletforge/store"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// validation 400, invalid transition and revision conflict 409, missing 404.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, string(verr.Code), verr.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "entity changed since last fetch, refetch and retry")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "entity not found")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// decodeBody decodes a JSON request body with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return false
	}
	return true
}

// entityIDFromPath resolves a path segment to a typed entity ID. Clients may
// send either the full typed form ("quote:<uuid>") or the bare uuid.
func entityIDFromPath(raw string, t store.EntityType) (store.EntityID, error) {
	if id, err := store.ParseEntityID(raw); err == nil {
		if id.Type != t {
			return store.EntityID{}, store.ErrNotFound
		}
		return id, nil
	}
	return store.EntityID{Type: t, ID: raw}, nil
}
