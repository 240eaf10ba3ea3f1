package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rescp17/stageCatalog/internal/app"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/concurrency"
	"github.com/rescp17/stageCatalog/pkg/report"
)

// Creator stores new events and echoes them back.
type Creator interface {
	CreateEvent(ctx context.Context, c catalog.Candidate) (catalog.Event, error)
}

// Submitter sends new events to the catalog store and appends the store's
// echo to the local list without refetching.
type Submitter struct {
	creator Creator
	sink    report.Sink
	guard   *concurrency.ConcurrencyGuard
}

// NewSubmitter creates a submitter. A nil sink logs through slog.
func NewSubmitter(creator Creator, sink report.Sink) *Submitter {
	if sink == nil {
		sink = report.SlogSink{}
	}
	return &Submitter{
		creator: creator,
		sink:    sink,
		guard:   concurrency.NewConcurrencyGuard(),
	}
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.guard.Busy()
}

// Submit stores c and, once the store has accepted it, dispatches AddEvent
// with the echoed record to the store carried by ctx. On any failure nothing
// is dispatched and c can be submitted again unchanged.
//
// Identical candidates submitted one after another are all added; only a
// submission overlapping one still in flight is refused with
// concurrency.ErrBusy.
func (s *Submitter) Submit(ctx context.Context, c catalog.Candidate) (catalog.Event, error) {
	store, err := app.FromContext(ctx)
	if err != nil {
		return catalog.Event{}, err
	}
	if err := c.Validate(); err != nil {
		return catalog.Event{}, err
	}

	var created catalog.Event
	err = s.guard.ExecuteWithContext(ctx, func(ctx context.Context) error {
		echo, err := s.creator.CreateEvent(ctx, c)
		if err != nil {
			return err
		}
		if echo.ID == "" {
			slog.Warn("Catalog store echoed an event without an id", "title", echo.Title)
		}
		created = echo
		store.Dispatch(catalogevents.AddEvent{Item: echo})
		return nil
	})
	if err != nil {
		if !errors.Is(err, concurrency.ErrBusy) {
			s.sink.Report("submit event", err)
		}
		return catalog.Event{}, err
	}
	return created, nil
}
