package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"masarify/internal/core"
)

// ListRecords fetches the owner's records newest first, applying the
// optional filter server-side.
func (c *Client) ListRecords(ctx context.Context, ownerID string, filter *core.RecordFilter) ([]core.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "created_at.desc")
	if filter != nil {
		if filter.Type != "" {
			q.Set("type", "eq."+string(filter.Type))
		}
		if filter.StartDate != "" {
			q.Add("created_at", "gte."+filter.StartDate)
		}
		if filter.EndDate != "" {
			q.Add("created_at", "lte."+filter.EndDate)
		}
		if filter.Category != "" {
			q.Set("category", "eq."+filter.Category)
		}
	}

	var records []core.Record
	if err := c.do(ctx, "fetch records", http.MethodGet, recordsTable, q, "", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord fetches one of the owner's records.
func (c *Client) GetRecord(ctx context.Context, ownerID, id string) (core.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+ownerID)

	var records []core.Record
	if err := c.do(ctx, "fetch record", http.MethodGet, recordsTable, q, "", nil, &records); err != nil {
		return core.Record{}, err
	}
	if len(records) == 0 {
		return core.Record{}, wrap("fetch record", http.StatusNotFound, "record not found", nil)
	}
	return records[0], nil
}

// CreateRecord validates and inserts a record. Both timestamps are
// stamped with the client's local wall-clock time so the stored value
// matches what the user perceived when adding the entry.
func (c *Client) CreateRecord(ctx context.Context, in core.RecordInsert) (core.Record, error) {
	if err := in.Validate(); err != nil {
		return core.Record{}, wrap("create record", 0, err.Error(), err)
	}

	stamp := localISO(time.Now())
	row := map[string]any{
		"user_id":    in.OwnerID,
		"title":      in.Title,
		"amount":     in.Amount,
		"type":       in.Type,
		"created_at": stamp,
		"updated_at": stamp,
	}
	if in.Description != "" {
		row["description"] = in.Description
	}
	if in.Category != "" {
		row["category"] = in.Category
	}

	var created []core.Record
	if err := c.do(ctx, "create record", http.MethodPost, recordsTable, nil, "return=representation", row, &created); err != nil {
		return core.Record{}, err
	}
	if len(created) == 0 {
		return core.Record{}, wrap("create record", 0, "backend returned no row", nil)
	}
	return created[0], nil
}

// UpdateRecord submits only the changed fields and stamps updated_at
// with the update time.
func (c *Client) UpdateRecord(ctx context.Context, ownerID, id string, update core.RecordUpdate) (core.Record, error) {
	if err := update.Validate(); err != nil {
		return core.Record{}, wrap("update record", 0, err.Error(), err)
	}

	patch := map[string]any{"updated_at": nowUTCISO()}
	if update.Title != nil {
		patch["title"] = *update.Title
	}
	if update.Amount != nil {
		patch["amount"] = *update.Amount
	}
	if update.Description != nil {
		patch["description"] = *update.Description
	}
	if update.Type != nil {
		patch["type"] = *update.Type
	}
	if update.Category != nil {
		patch["category"] = *update.Category
	}

	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+ownerID)

	var updated []core.Record
	if err := c.do(ctx, "update record", http.MethodPatch, recordsTable, q, "return=representation", patch, &updated); err != nil {
		return core.Record{}, err
	}
	if len(updated) == 0 {
		return core.Record{}, wrap("update record", http.StatusNotFound, "record not found", nil)
	}
	return updated[0], nil
}

func (c *Client) DeleteRecord(ctx context.Context, ownerID, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+ownerID)
	return c.do(ctx, "delete record", http.MethodDelete, recordsTable, q, "", nil, nil)
}

func (c *Client) DeleteAllRecords(ctx context.Context, ownerID string) error {
	q := url.Values{}
	q.Set("user_id", "eq."+ownerID)
	return c.do(ctx, "delete all records", http.MethodDelete, recordsTable, q, "", nil, nil)
}

// RecordStats fetches the minimal columns and folds them client-side,
// matching the aggregation contract.
func (c *Client) RecordStats(ctx context.Context, ownerID string) (core.Stats, error) {
	q := url.Values{}
	q.Set("select", "amount,type")
	q.Set("user_id", "eq."+ownerID)

	var rows []core.Record
	if err := c.do(ctx, "fetch record stats", http.MethodGet, recordsTable, q, "", nil, &rows); err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(rows), nil
}

func (c *Client) RecordStatsByRange(ctx context.Context, ownerID, start, end string) (core.Stats, error) {
	q := url.Values{}
	q.Set("select", "amount,type,created_at")
	q.Set("user_id", "eq."+ownerID)
	q.Add("created_at", "gte."+start)
	q.Add("created_at", "lte."+end)

	var rows []core.Record
	if err := c.do(ctx, "fetch record stats by range", http.MethodGet, recordsTable, q, "", nil, &rows); err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(rows), nil
}
