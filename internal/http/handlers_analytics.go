package http

import (
	"context"
	"net/http"

	"masarify/internal/analytics"
)

type analyticsResponse struct {
	State       string             `json:"state"`
	Result      *analytics.Result  `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	LastUpdated string             `json:"lastUpdated,omitempty"`
	AutoStarted bool               `json:"autoStarted,omitempty"`
}

func (s *Server) analyticsSnapshot(started bool) analyticsResponse {
	snap := s.tracker.Snapshot()

	resp := analyticsResponse{
		State:       snap.State.String(),
		Result:      snap.Result,
		AutoStarted: started,
	}
	if snap.Err != "" {
		resp.Error = snap.Err
	}
	if !snap.LastUpdated.IsZero() {
		resp.LastUpdated = snap.LastUpdated.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// handleAnalytics returns the current analysis state. The first call
// that sees spending data kicks off an analysis automatically; later
// calls just report progress or the cached result.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		respondError(w, http.StatusServiceUnavailable, "AI analytics is not configured")
		return
	}

	records, err := s.records.ListRecords(r.Context(), nil)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// The analysis outlives the request that triggered it.
	symbol := s.currencySymbol(r)
	started := s.tracker.RecordsAvailable(context.WithoutCancel(r.Context()), records, symbol)

	respondJSON(w, http.StatusOK, s.analyticsSnapshot(started))
}

// handleAnalyticsRefresh discards any cached result and reruns the
// analysis against the owner's current records.
func (s *Server) handleAnalyticsRefresh(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		respondError(w, http.StatusServiceUnavailable, "AI analytics is not configured")
		return
	}

	records, err := s.records.ListRecords(r.Context(), nil)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	s.tracker.Refresh(context.WithoutCancel(r.Context()), records, s.currencySymbol(r))

	respondJSON(w, http.StatusAccepted, s.analyticsSnapshot(true))
}

func (s *Server) currencySymbol(r *http.Request) string {
	if s.prefs == nil {
		return ""
	}
	return s.prefs.Currency(r.Context()).Symbol
}
