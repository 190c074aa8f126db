package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/prefs"
	"masarify/internal/query"
	"masarify/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondDomainError maps a failed operation onto an HTTP status.
// Validation problems are 422, a missing session is 401, store and
// auth errors keep the backend's status where one exists.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "Authentication required")
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, prefs.ErrUnsupportedCurrency):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		var se *store.Error
		if errors.As(err, &se) {
			status := se.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			respondError(w, status, se.Error())
			return
		}

		var ae *auth.Error
		if errors.As(err, &ae) {
			status := ae.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			respondError(w, status, ae.Message)
			return
		}

		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyTitle,
		core.ErrTitleTooShort,
		core.ErrTitleTooLong,
		core.ErrInvalidAmount,
		core.ErrAmountTooLarge,
		core.ErrInvalidType,
		core.ErrNoFields,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
