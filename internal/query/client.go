package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/store"
)

// ErrNotAuthenticated is returned by every read when no session is
// active. Queries never run against the store without an owner.
var ErrNotAuthenticated = errors.New("not authenticated")

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 256
)

// Client serves record reads through per-owner caches. Any mutation to
// an owner's records must go through InvalidateOwner (or the record
// service, which calls it); individual-key invalidation is deliberately
// not offered, matching the blanket invalidate-on-write strategy the
// rest of the app relies on.
type Client struct {
	recs    store.RecordStore
	session *auth.Holder
	logger  *slog.Logger

	lists   *cache[[]core.Record]
	details *cache[core.Record]
	stats   *cache[core.Stats]

	unsubscribe func()
}

type Options struct {
	TTL     time.Duration
	MaxSize int
}

func NewClient(recs store.RecordStore, session *auth.Holder, logger *slog.Logger, opts Options) *Client {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}

	c := &Client{
		recs:    recs,
		session: session,
		logger:  logger,
		lists:   newCache[[]core.Record](opts.MaxSize, opts.TTL),
		details: newCache[core.Record](opts.MaxSize, opts.TTL),
		stats:   newCache[core.Stats](opts.MaxSize, opts.TTL),
	}

	// Sign-in and sign-out both switch owners, so nothing cached under
	// the previous identity may be served again.
	c.unsubscribe = session.Subscribe(func(*auth.Session) {
		c.Clear()
	})

	return c
}

// Close detaches the client from session-change notifications.
func (c *Client) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Client) owner() (string, error) {
	id := c.session.OwnerID()
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}

// ListRecords returns the owner's records for the given filter, cached.
func (c *Client) ListRecords(ctx context.Context, filter *core.RecordFilter) ([]core.Record, error) {
	ownerID, err := c.owner()
	if err != nil {
		return nil, err
	}

	key := listKey(ownerID, filter)
	if recs, ok := c.lists.get(key); ok {
		return recs, nil
	}

	recs, err := c.recs.ListRecords(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	c.lists.set(key, recs)
	return recs, nil
}

// GetRecord returns one record by id, cached.
func (c *Client) GetRecord(ctx context.Context, recordID string) (core.Record, error) {
	ownerID, err := c.owner()
	if err != nil {
		return core.Record{}, err
	}

	key := detailKey(ownerID, recordID)
	if rec, ok := c.details.get(key); ok {
		return rec, nil
	}

	rec, err := c.recs.GetRecord(ctx, ownerID, recordID)
	if err != nil {
		return core.Record{}, err
	}

	c.details.set(key, rec)
	return rec, nil
}

// Stats returns aggregate totals, optionally bounded to a date range.
func (c *Client) Stats(ctx context.Context, startDate, endDate string) (core.Stats, error) {
	ownerID, err := c.owner()
	if err != nil {
		return core.Stats{}, err
	}

	key := statsKey(ownerID, startDate, endDate)
	if s, ok := c.stats.get(key); ok {
		return s, nil
	}

	var (
		s    core.Stats
		serr error
	)
	if startDate == "" && endDate == "" {
		s, serr = c.recs.RecordStats(ctx, ownerID)
	} else {
		s, serr = c.recs.RecordStatsByRange(ctx, ownerID, startDate, endDate)
	}
	if serr != nil {
		return core.Stats{}, serr
	}

	c.stats.set(key, s)
	return s, nil
}

// InvalidateOwner drops everything cached for one owner. Called after
// every mutation rather than chasing the exact affected keys.
func (c *Client) InvalidateOwner(ownerID string) {
	n := c.lists.deletePrefix(ownerPrefix("records", ownerID))
	n += c.details.deletePrefix(ownerPrefix("record", ownerID))
	n += c.stats.deletePrefix(ownerPrefix("stats", ownerID))
	if n > 0 && c.logger != nil {
		c.logger.Debug("cache invalidated", "owner_id", ownerID, "entries", n)
	}
}

// Clear empties every cache regardless of owner.
func (c *Client) Clear() {
	c.lists.deletePrefix("")
	c.details.deletePrefix("")
	c.stats.deletePrefix("")
}

// CleanExpired removes entries past their TTL and returns the count.
// Meant to be driven by a periodic janitor at the composition root.
func (c *Client) CleanExpired() int {
	return c.lists.cleanExpired() + c.details.cleanExpired() + c.stats.cleanExpired()
}

// Size reports the total number of live cache entries.
func (c *Client) Size() int {
	return c.lists.size() + c.details.size() + c.stats.size()
}
