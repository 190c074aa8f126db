package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"masarify/internal/core"
)

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

type State int

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a point-in-time view of the tracker for presentation.
type Snapshot struct {
	State       State
	Result      *Result
	Err         string
	LastUpdated time.Time
}

// recordAnalyzer is what the Tracker needs from the Analyzer.
type recordAnalyzer interface {
	AnalyzeRecords(ctx context.Context, records []core.Record, currencySymbol string) (*Result, error)
}

// Tracker owns the analytics request lifecycle for one consumer:
// idle → loading → ready/failed, an auto-trigger that fires at most
// once, and a refresh that always re-runs. An outstanding request is
// never cancelled; instead each run carries a sequence number and a
// result whose sequence is no longer the latest is discarded, so a
// slow response can never overwrite a newer one.
type Tracker struct {
	analyzer recordAnalyzer

	mu        sync.Mutex
	seq       uint64
	autoFired bool
	snap      Snapshot
}

func NewTracker(analyzer recordAnalyzer) *Tracker {
	return &Tracker{analyzer: analyzer}
}

// Snapshot returns the current lifecycle state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// RecordsAvailable is called whenever a fresh record set is known.
// It starts one automatic analysis the first time a non-empty set
// shows up while no result exists; later calls are no-ops. Returns
// whether a run was started.
func (t *Tracker) RecordsAvailable(ctx context.Context, records []core.Record, currencySymbol string) bool {
	t.mu.Lock()
	if len(records) == 0 || t.autoFired || t.snap.Result != nil {
		t.mu.Unlock()
		return false
	}
	t.autoFired = true
	seq := t.begin()
	t.mu.Unlock()

	go t.run(ctx, seq, records, currencySymbol)
	return true
}

// Refresh discards the prior result and re-runs the analysis
// unconditionally.
func (t *Tracker) Refresh(ctx context.Context, records []core.Record, currencySymbol string) {
	t.mu.Lock()
	t.autoFired = true
	t.snap.Result = nil
	seq := t.begin()
	t.mu.Unlock()

	go t.run(ctx, seq, records, currencySymbol)
}

// begin claims the next sequence number and flips state to loading.
// Callers must hold t.mu.
func (t *Tracker) begin() uint64 {
	t.seq++
	t.snap.State = StateLoading
	t.snap.Err = ""
	return t.seq
}

func (t *Tracker) run(ctx context.Context, seq uint64, records []core.Record, currencySymbol string) {
	result, err := t.analyzer.AnalyzeRecords(ctx, records, currencySymbol)
	t.finish(seq, result, err)
}

// finish applies a run's outcome unless a newer run has started since.
func (t *Tracker) finish(seq uint64, result *Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq {
		return
	}

	if err != nil {
		t.snap = Snapshot{State: StateFailed, Err: errorMessage(err)}
		return
	}
	t.snap = Snapshot{State: StateReady, Result: result, LastUpdated: time.Now()}
}

// errorMessage maps parse failures to a generic retry prompt and keeps
// transport/API messages as-is.
func errorMessage(err error) string {
	if errors.Is(err, ErrUnparsableResponse) {
		return "Failed to parse AI response. Please try again."
	}
	return err.Error()
}
