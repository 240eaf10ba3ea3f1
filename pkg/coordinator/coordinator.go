// Package coordinator keeps the store's event list in step with the remote
// catalog and carries new events from the add form into it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rescp17/stageCatalog/internal/app"
	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/report"
)

// DefaultFetchTimeout bounds a single query when no timeout is configured.
const DefaultFetchTimeout = 10 * time.Second

var ErrAlreadyStarted = errors.New("coordinator already started")

// Source answers event queries.
type Source interface {
	ListEvents(ctx context.Context, filter catalog.Filter) ([]catalog.Event, error)
}

// Outcome says how a query ended.
type Outcome int

const (
	Applied   Outcome = iota // result dispatched as SetEvents
	Failed                   // query errored; reported, nothing dispatched
	Discarded                // superseded by a later query or a filter change
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Query identifies one issued request.
type Query struct {
	Seq    uint64
	Filter catalog.Filter
}

// Hooks lets callers observe the coordinator. Both run on the store loop;
// Resolved runs after the outcome has been applied to the store.
type Hooks struct {
	Issued   func(q Query)
	Resolved func(q Query, outcome Outcome, err error)
}

// Options configures a Coordinator.
type Options struct {
	Timeout time.Duration
	Sink    report.Sink
	Hooks   Hooks
}

// Coordinator issues one query per distinct filter value and applies only
// the answer to the most recent query, and only while its filter is still
// the live one.
type Coordinator struct {
	source  Source
	sink    report.Sink
	timeout time.Duration
	hooks   Hooks

	mu       sync.Mutex
	store    *app.Store
	ctx      context.Context
	unsub    func()
	seq      uint64
	lastSeen catalog.Filter
	pending  map[uint64]catalog.Filter
	closed   bool

	inflight sync.WaitGroup
}

// New creates a coordinator reading from source.
func New(source Source, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Sink == nil {
		opts.Sink = report.SlogSink{}
	}
	return &Coordinator{
		source:  source,
		sink:    opts.Sink,
		timeout: opts.Timeout,
		hooks:   opts.Hooks,
		pending: make(map[uint64]catalog.Filter),
	}
}

// Start attaches the coordinator to the store carried by ctx and issues the
// query for the filter active at startup. Queries are cancelled with ctx.
func (c *Coordinator) Start(ctx context.Context) error {
	store, err := app.FromContext(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.store != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.store = store
	c.ctx = ctx
	c.mu.Unlock()

	// Reading the filter and subscribing happen in one loop step so no
	// filter change can slip in between.
	store.Post(func() {
		initial := store.State().CurrentFilter
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.lastSeen = initial
		c.unsub = store.Subscribe(c.onTransition)
		c.mu.Unlock()
		c.issue(initial)
	})
	return nil
}

// Refresh re-queries the live filter. Any older query still in flight
// becomes stale.
func (c *Coordinator) Refresh() error {
	c.mu.Lock()
	store := c.store
	c.mu.Unlock()
	if store == nil {
		return fmt.Errorf("refresh: %w", app.ErrNoStore)
	}
	store.Post(func() {
		c.issue(store.State().CurrentFilter)
	})
	return nil
}

// Pending returns the queries issued but not yet resolved.
func (c *Coordinator) Pending() []Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Query, 0, len(c.pending))
	for seq := uint64(1); seq <= c.seq; seq++ {
		if f, ok := c.pending[seq]; ok {
			out = append(out, Query{Seq: seq, Filter: f})
		}
	}
	return out
}

// Close detaches from the store and waits for in-flight queries to return.
// No query is issued after Close, even by a startup step still queued on
// the store loop.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	c.inflight.Wait()
}

// onTransition runs on the store loop after every transition.
func (c *Coordinator) onTransition(prev, next app.State) {
	filter := app.SelectFilter(next)
	c.mu.Lock()
	changed := filter != c.lastSeen
	c.lastSeen = filter
	c.mu.Unlock()

	if changed {
		c.issue(filter)
	}
}

// issue runs on the store loop. The in-flight count is raised under c.mu
// so it never races with the Wait in Close.
func (c *Coordinator) issue(filter catalog.Filter) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		slog.Debug("Coordinator closed, not issuing query", "filter", filter)
		return
	}
	c.seq++
	q := Query{Seq: c.seq, Filter: filter}
	c.pending[q.Seq] = filter
	ctx, store := c.ctx, c.store
	c.inflight.Add(1)
	c.mu.Unlock()

	slog.Debug("Issuing events query", "seq", q.Seq, "filter", filter)
	if c.hooks.Issued != nil {
		c.hooks.Issued(q)
	}

	go func() {
		defer c.inflight.Done()

		qctx, cancel := context.WithTimeout(ctx, c.timeout)
		events, err := c.source.ListEvents(qctx, filter)
		cancel()

		store.Update(func(live app.State) (appevents.Action, bool) {
			return c.resolve(q, live, events, err)
		})
	}()
}

// resolve runs on the store loop with the state live at resolution time.
// Bookkeeping for q is cleared whatever the outcome.
func (c *Coordinator) resolve(q Query, live app.State, events []catalog.Event, err error) (appevents.Action, bool) {
	c.mu.Lock()
	delete(c.pending, q.Seq)
	latest := c.seq
	shutdown := c.ctx.Err() != nil
	store := c.store
	c.mu.Unlock()

	if q.Seq != latest || app.SelectFilter(live) != q.Filter || shutdown {
		slog.Debug("Discarding stale events query", "seq", q.Seq, "filter", q.Filter, "latest", latest, "live", live.CurrentFilter)
		c.resolved(store, q, Discarded, err)
		return nil, false
	}

	if err != nil {
		c.sink.Report("fetch "+string(q.Filter)+" events", err)
		c.resolved(store, q, Failed, err)
		return nil, false
	}

	c.resolved(store, q, Applied, nil)
	return catalogevents.SetEvents{List: events}, true
}

// resolved schedules the Resolved hook behind the current loop step, so it
// observes the state after the result was applied.
func (c *Coordinator) resolved(store *app.Store, q Query, outcome Outcome, err error) {
	if c.hooks.Resolved == nil {
		return
	}
	store.Post(func() { c.hooks.Resolved(q, outcome, err) })
}
