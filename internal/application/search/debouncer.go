// Package search debounces catalog queries typed by the user.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bep/debounce"

	"budgetree/internal/domain"
)

const (
	// DefaultDelay is how long typing must pause before a query runs
	DefaultDelay = 800 * time.Millisecond

	// MinQueryLength is the shortest query, in characters, that is searched
	MinQueryLength = 3
)

// Func runs one catalog query
type Func func(ctx context.Context, query string) ([]domain.CatalogEntry, error)

// Result is delivered once per query that was not superseded
type Result struct {
	Seq     int
	Query   string
	Entries []domain.CatalogEntry
	Err     error
}

// Debouncer delays queries until typing pauses and drops results of
// queries that were superseded while running.
type Debouncer struct {
	debounced func(f func())
	search    Func
	deliver   func(Result)

	mu     sync.Mutex
	seq    int
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer that runs search after delay and hands
// every fresh result to deliver, from its own goroutine
func NewDebouncer(delay time.Duration, search Func, deliver func(Result)) *Debouncer {
	return &Debouncer{
		debounced: debounce.New(delay),
		search:    search,
		deliver:   deliver,
	}
}

// IsSearchable reports whether a query is long enough to run
func IsSearchable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}

// Submit schedules a query, superseding the pending and in-flight ones.
// It returns the query's sequence number.
func (d *Debouncer) Submit(query string) int {
	seq := d.supersede()
	if !IsSearchable(query) {
		d.debounced(func() {})
		return seq
	}
	query = strings.TrimSpace(query)
	d.debounced(func() { d.run(seq, query) })
	return seq
}

// Stop drops the pending query and cancels the running one
func (d *Debouncer) Stop() {
	d.supersede()
	d.debounced(func() {})
}

func (d *Debouncer) supersede() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return d.seq
}

func (d *Debouncer) run(seq int, query string) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	entries, err := d.search(ctx, query)
	cancel()

	d.mu.Lock()
	stale := seq != d.seq
	if !stale {
		d.cancel = nil
	}
	d.mu.Unlock()
	if stale {
		return
	}

	d.deliver(Result{Seq: seq, Query: query, Entries: entries, Err: err})
}
