// Package store defines the ports for the hosted record and profile
// stores, plus the shared error type their adapters return.
package store

import (
	"context"
	"fmt"

	"masarify/internal/core"
)

type (
	// RecordStore is the typed client surface over the hosted row store.
	// Every operation is a single round trip; there is no client-side
	// retry or batching.
	RecordStore interface {
		// ListRecords returns the owner's records, newest first, optionally
		// narrowed by filter.
		ListRecords(ctx context.Context, ownerID string, filter *core.RecordFilter) ([]core.Record, error)

		// GetRecord fetches one of the owner's records. A record held by
		// a different owner is reported as not found.
		GetRecord(ctx context.Context, ownerID, id string) (core.Record, error)

		// CreateRecord stamps client-computed local-time timestamps and
		// inserts the row.
		CreateRecord(ctx context.Context, in core.RecordInsert) (core.Record, error)

		// UpdateRecord applies a partial update to one of the owner's
		// records and stamps updated_at.
		UpdateRecord(ctx context.Context, ownerID, id string, update core.RecordUpdate) (core.Record, error)

		DeleteRecord(ctx context.Context, ownerID, id string) error

		// DeleteAllRecords removes every record the owner has. Immediate
		// and irreversible; there is no soft delete.
		DeleteAllRecords(ctx context.Context, ownerID string) error

		// RecordStats aggregates over the owner's full record set.
		RecordStats(ctx context.Context, ownerID string) (core.Stats, error)

		// RecordStatsByRange aggregates over records created inside
		// [start, end] inclusive.
		RecordStatsByRange(ctx context.Context, ownerID, start, end string) (core.Stats, error)
	}

	// ProfileStore manages the per-owner preferences row.
	ProfileStore interface {
		GetProfile(ctx context.Context, ownerID string) (core.Profile, error)
		CreateProfile(ctx context.Context, p core.Profile) (core.Profile, error)
		UpdateProfile(ctx context.Context, ownerID string, updates map[string]any) (core.Profile, error)
		UpdateCurrency(ctx context.Context, ownerID, currency string) (core.Profile, error)
		UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error)
	}
)

// Error wraps a failed store operation with a human-readable message
// derived from the backend's error payload. Callers see either a nil
// error or an *Error; operations never signal failure through sentinel
// return values.
type Error struct {
	Op      string // e.g. "fetch records"
	Message string // backend-provided detail
	Status  int    // HTTP status when available, 0 otherwise
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("failed to %s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }
