// Package memory is an in-process implementation of the store ports,
// used as the default development backend and in tests.
package memory

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"masarify/internal/core"
	"masarify/internal/store"
)

type Store struct {
	mu       sync.Mutex
	records  map[string]core.Record
	profiles map[string]core.Profile
}

func New() *Store {
	return &Store{
		records:  make(map[string]core.Record),
		profiles: make(map[string]core.Profile),
	}
}

func notFound(op string) *store.Error {
	return &store.Error{Op: op, Message: "record not found", Status: http.StatusNotFound}
}

func (s *Store) ListRecords(_ context.Context, ownerID string, filter *core.RecordFilter) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Record
	for _, r := range s.records {
		if r.OwnerID != ownerID || !matches(r, filter) {
			continue
		}
		out = append(out, r)
	}
	return core.SortRecords(out, core.SortByDate, core.Descending), nil
}

func matches(r core.Record, f *core.RecordFilter) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.StartDate != "" && r.CreatedAt < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.CreatedAt > f.EndDate {
		return false
	}
	return true
}

func (s *Store) GetRecord(_ context.Context, ownerID, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok || r.OwnerID != ownerID {
		return core.Record{}, notFound("fetch record")
	}
	return r, nil
}

func (s *Store) CreateRecord(_ context.Context, in core.RecordInsert) (core.Record, error) {
	if err := in.Validate(); err != nil {
		return core.Record{}, &store.Error{Op: "create record", Message: err.Error(), Err: err}
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	r := core.Record{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Amount:      in.Amount,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRecord(_ context.Context, ownerID, id string, update core.RecordUpdate) (core.Record, error) {
	if err := update.Validate(); err != nil {
		return core.Record{}, &store.Error{Op: "update record", Message: err.Error(), Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok || r.OwnerID != ownerID {
		return core.Record{}, notFound("update record")
	}
	if update.Title != nil {
		r.Title = *update.Title
	}
	if update.Amount != nil {
		r.Amount = *update.Amount
	}
	if update.Description != nil {
		r.Description = *update.Description
	}
	if update.Type != nil {
		r.Type = *update.Type
	}
	if update.Category != nil {
		r.Category = *update.Category
	}
	r.UpdatedAt = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	s.records[id] = r
	return r, nil
}

func (s *Store) DeleteRecord(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[id]; !ok || r.OwnerID != ownerID {
		return notFound("delete record")
	}
	delete(s.records, id)
	return nil
}

func (s *Store) DeleteAllRecords(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if r.OwnerID == ownerID {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *Store) RecordStats(ctx context.Context, ownerID string) (core.Stats, error) {
	records, err := s.ListRecords(ctx, ownerID, nil)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(records), nil
}

func (s *Store) RecordStatsByRange(ctx context.Context, ownerID, start, end string) (core.Stats, error) {
	records, err := s.ListRecords(ctx, ownerID, &core.RecordFilter{StartDate: start, EndDate: end})
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(records), nil
}

func (s *Store) GetProfile(_ context.Context, ownerID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return core.Profile{}, &store.Error{Op: "fetch profile", Message: "profile not found", Status: http.StatusNotFound}
	}
	return p, nil
}

func (s *Store) CreateProfile(_ context.Context, p core.Profile) (core.Profile, error) {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	if p.Currency == "" {
		p.Currency = core.DefaultCurrency().Code
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProfile(_ context.Context, ownerID string, updates map[string]any) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return core.Profile{}, &store.Error{Op: "update profile", Message: "profile not found", Status: http.StatusNotFound}
	}
	if v, ok := updates["email"].(string); ok {
		p.Email = v
	}
	if v, ok := updates["full_name"].(string); ok {
		p.FullName = v
	}
	if v, ok := updates["currency"].(string); ok {
		p.Currency = v
	}
	p.UpdatedAt = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	s.profiles[ownerID] = p
	return p, nil
}

func (s *Store) UpdateCurrency(ctx context.Context, ownerID, currency string) (core.Profile, error) {
	return s.UpdateProfile(ctx, ownerID, map[string]any{"currency": currency})
}

func (s *Store) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	s.mu.Lock()
	_, exists := s.profiles[p.ID]
	s.mu.Unlock()

	if !exists {
		return s.CreateProfile(ctx, p)
	}
	updates := map[string]any{"email": p.Email}
	if p.FullName != "" {
		updates["full_name"] = p.FullName
	}
	if p.Currency != "" {
		updates["currency"] = p.Currency
	}
	return s.UpdateProfile(ctx, p.ID, updates)
}
