// Package services orchestrates record operations across the hosted
// store, the query cache, and the event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/events"
	"masarify/internal/query"
	"masarify/internal/store"
)

// EventPublisher is the slice of the events client the service needs.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event *events.RecordEvent) error
	Close() error
}

// RecordService is the write path for records. Reads go through the
// query cache; every successful mutation invalidates the owner's cache
// and publishes a mutation event. Event publishing is best effort: the
// record is already persisted, so a broker failure is logged and the
// operation still succeeds.
type RecordService struct {
	recs      store.RecordStore
	queries   *query.Client
	publisher EventPublisher
	session   *auth.Holder
}

func NewRecordService(recs store.RecordStore, queries *query.Client, publisher EventPublisher, session *auth.Holder) *RecordService {
	return &RecordService{
		recs:      recs,
		queries:   queries,
		publisher: publisher,
		session:   session,
	}
}

func (s *RecordService) owner() (string, error) {
	id := s.session.OwnerID()
	if id == "" {
		return "", query.ErrNotAuthenticated
	}
	return id, nil
}

// ListRecords returns the signed-in owner's records, cached.
func (s *RecordService) ListRecords(ctx context.Context, filter *core.RecordFilter) ([]core.Record, error) {
	return s.queries.ListRecords(ctx, filter)
}

// GetRecord returns one record by id, cached.
func (s *RecordService) GetRecord(ctx context.Context, id string) (core.Record, error) {
	return s.queries.GetRecord(ctx, id)
}

// Stats returns aggregate totals, optionally bounded to a date range.
func (s *RecordService) Stats(ctx context.Context, startDate, endDate string) (core.Stats, error) {
	return s.queries.Stats(ctx, startDate, endDate)
}

// CreateRecord persists a new record for the signed-in owner.
func (s *RecordService) CreateRecord(ctx context.Context, in core.RecordInsert) (core.Record, error) {
	ownerID, err := s.owner()
	if err != nil {
		return core.Record{}, err
	}
	in.OwnerID = ownerID

	rec, err := s.recs.CreateRecord(ctx, in)
	if err != nil {
		return core.Record{}, fmt.Errorf("create record: %w", err)
	}

	s.queries.InvalidateOwner(ownerID)
	s.publish(ctx, events.NewRecordEvent(events.RecordCreated, rec.ID, ownerID, rec.Title))

	return rec, nil
}

// UpdateRecord applies a partial update to one record.
func (s *RecordService) UpdateRecord(ctx context.Context, id string, update core.RecordUpdate) (core.Record, error) {
	ownerID, err := s.owner()
	if err != nil {
		return core.Record{}, err
	}

	rec, err := s.recs.UpdateRecord(ctx, ownerID, id, update)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}

	s.queries.InvalidateOwner(ownerID)
	s.publish(ctx, events.NewRecordEvent(events.RecordUpdated, rec.ID, ownerID, rec.Title))

	return rec, nil
}

// DeleteRecord removes one record.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	ownerID, err := s.owner()
	if err != nil {
		return err
	}

	// Best effort title lookup so the deletion notice can name the record.
	title := ""
	if rec, err := s.queries.GetRecord(ctx, id); err == nil {
		title = rec.Title
	}

	if err := s.recs.DeleteRecord(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.queries.InvalidateOwner(ownerID)
	s.publish(ctx, events.NewRecordEvent(events.RecordDeleted, id, ownerID, title))

	return nil
}

// ResetRecords removes every record the owner has. Immediate and
// irreversible.
func (s *RecordService) ResetRecords(ctx context.Context) error {
	ownerID, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.recs.DeleteAllRecords(ctx, ownerID); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}

	s.queries.InvalidateOwner(ownerID)
	s.publish(ctx, events.NewRecordEvent(events.RecordsReset, "", ownerID, ""))

	return nil
}

func (s *RecordService) publish(ctx context.Context, event *events.RecordEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"kind", event.Kind,
			"record_id", event.RecordID,
			"error", err)
	}
}

// Close releases the cache subscription and the event publisher.
func (s *RecordService) Close() error {
	var errs []error

	if s.queries != nil {
		s.queries.Close()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
