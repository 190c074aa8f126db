package http

import (
	"net/http"

	"masarify/internal/core"
)

type currencyResponse struct {
	Selected  core.Currency   `json:"selected"`
	Supported []core.Currency `json:"supported"`
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currencyResponse{
		Selected:  s.prefs.Currency(r.Context()),
		Supported: core.Currencies,
	})
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	selected, err := s.prefs.SetCurrency(r.Context(), payload.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, currencyResponse{
		Selected:  selected,
		Supported: core.Currencies,
	})
}
