package http

import (
	"net/http"
	"strings"

	"masarify/internal/core"
)

type recordPayload struct {
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
}

type recordPatch struct {
	Title       *string  `json:"title"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter *core.RecordFilter
	if q.Get("type") != "" || q.Get("start_date") != "" || q.Get("end_date") != "" || q.Get("category") != "" {
		typ := core.RecordType(q.Get("type"))
		if typ != "" && typ != core.Incoming && typ != core.Outgoing {
			respondError(w, http.StatusUnprocessableEntity, core.ErrInvalidType.Error())
			return
		}
		filter = &core.RecordFilter{
			Type:      typ,
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
			Category:  q.Get("category"),
		}
	}

	records, err := s.records.ListRecords(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if field, order, ok := parseSort(q.Get("sort"), q.Get("order")); ok {
		records = core.SortRecords(records, field, order)
	}

	if records == nil {
		records = []core.Record{}
	}
	respondJSON(w, http.StatusOK, records)
}

// parseSort maps sort/order query params onto the sort utility. The
// store already returns newest first, so no params means no re-sort.
func parseSort(sortBy, order string) (core.SortField, core.SortOrder, bool) {
	var field core.SortField
	switch strings.ToLower(sortBy) {
	case "date":
		field = core.SortByDate
	case "amount":
		field = core.SortByAmount
	default:
		return "", "", false
	}

	dir := core.Descending
	if strings.ToLower(order) == "asc" {
		dir = core.Ascending
	}
	return field, dir, true
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	rec, err := s.records.CreateRecord(r.Context(), core.RecordInsert{
		Title:       payload.Title,
		Amount:      payload.Amount,
		Description: payload.Description,
		Type:        core.RecordType(payload.Type),
		Category:    payload.Category,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var patch recordPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	update := core.RecordUpdate{
		Title:       patch.Title,
		Amount:      patch.Amount,
		Description: patch.Description,
		Category:    patch.Category,
	}
	if patch.Type != nil {
		typ := core.RecordType(*patch.Type)
		update.Type = &typ
	}

	rec, err := s.records.UpdateRecord(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.records.ResetRecords(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := s.records.Stats(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
