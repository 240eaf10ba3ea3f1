package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rescp17/stageCatalog/internal/app"
	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/concurrency"
	"github.com/rescp17/stageCatalog/pkg/coordinator"
	"github.com/rescp17/stageCatalog/pkg/report"
	"golang.org/x/sync/errgroup"
)

// Catalog is the remote catalog store as seen by the browser.
type Catalog interface {
	coordinator.Source
	coordinator.Creator
}

// Options configures an App.
type Options struct {
	FetchTimeout time.Duration
	Sink         report.Sink
}

// App is the main application logic controller for the catalog browser.
type App struct {
	store       *app.Store
	coordinator *coordinator.Coordinator
	submitter   *coordinator.Submitter
	outbox      *outbox                 // store loop -> relay, never blocks
	uiMessages  chan tea.Msg            // App -> TUI
	appEvents   chan appevents.AppEvent // TUI -> App
	submitWG    sync.WaitGroup          // Track active submissions
}

// NewApp creates a browser application reading from and writing to client.
func NewApp(client Catalog, opts Options) *App {
	if opts.Sink == nil {
		opts.Sink = report.SlogSink{}
	}
	a := &App{
		store:      app.NewStore(app.InitialState()),
		submitter:  coordinator.NewSubmitter(client, opts.Sink),
		outbox:     newOutbox(),
		uiMessages: make(chan tea.Msg, 10),
		appEvents:  make(chan appevents.AppEvent),
	}
	a.coordinator = coordinator.New(client, coordinator.Options{
		Timeout: opts.FetchTimeout,
		Sink:    opts.Sink,
		Hooks: coordinator.Hooks{
			Issued:   a.fetchIssued,
			Resolved: a.fetchResolved,
		},
	})
	return a
}

// UIMessages returns the channel for the UI to listen on for updates.
func (a *App) UIMessages() <-chan tea.Msg {
	return a.uiMessages
}

// AppEvents returns a write-only channel for the TUI to send events to the app.
func (a *App) AppEvents() chan<- appevents.AppEvent {
	return a.appEvents
}

// State returns a snapshot of the browser's state.
func (a *App) State() app.State {
	return a.store.State()
}

// Run starts the store loop and the fetch coordinator, then serves TUI
// requests until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, err := app.WithStore(ctx, a.store)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.store.Run(ctx)
	})
	g.Go(func() error {
		return a.outbox.run(ctx, a.uiMessages)
	})

	unsubscribe := a.store.Subscribe(func(_, next app.State) {
		a.send(catalogevents.StateChangedMsg{
			Events:        next.Events,
			CurrentFilter: next.CurrentFilter,
		})
	})

	g.Go(func() error {
		defer unsubscribe()
		if err := a.coordinator.Start(ctx); err != nil {
			return fmt.Errorf("start fetch coordinator: %w", err)
		}
		for {
			select {
			case <-ctx.Done():
				// Wait for submissions and queries to return before exiting.
				a.submitWG.Wait()
				a.coordinator.Close()
				return nil
			case event := <-a.appEvents:
				a.handle(ctx, event)
			}
		}
	})
	return g.Wait()
}

func (a *App) handle(ctx context.Context, event appevents.AppEvent) {
	switch e := event.(type) {
	case catalogevents.FilterSelected:
		if !e.Value.Valid() {
			slog.Warn("Ignoring unknown filter", "filter", e.Value)
			return
		}
		a.store.Dispatch(catalogevents.SetFilter{Value: e.Value})
	case catalogevents.RefreshRequested:
		if err := a.coordinator.Refresh(); err != nil {
			a.sendAndLogError("refresh", err)
		}
	case catalogevents.SubmitRequested:
		a.StartSubmit(ctx, e.Candidate)
	default:
		slog.Warn("Unhandled app event", "event", fmt.Sprintf("%T", event))
	}
}

// StartSubmit submits c in the background and reports the result to the UI.
func (a *App) StartSubmit(ctx context.Context, c catalog.Candidate) {
	a.submitWG.Add(1)
	go func() {
		defer a.submitWG.Done()
		created, err := a.submitter.Submit(ctx, c)
		if err != nil {
			switch {
			case errors.Is(err, concurrency.ErrBusy):
				slog.Info("Submission refused, another one is in flight", "title", c.Title)
			case catalog.IsValidationError(err):
				slog.Debug("Submission rejected by validation", "error", err)
			}
			a.send(catalogevents.SubmitFailedMsg{Err: err})
			return
		}
		slog.Info("Event added", "id", created.ID, "title", created.Title)
		a.send(catalogevents.SubmitSucceededMsg{Event: created})
	}()
}

func (a *App) fetchIssued(q coordinator.Query) {
	a.send(catalogevents.FetchStartedMsg{Filter: q.Filter, Pending: len(a.coordinator.Pending())})
}

func (a *App) fetchResolved(q coordinator.Query, outcome coordinator.Outcome, err error) {
	slog.Debug("Fetch resolved", "seq", q.Seq, "filter", q.Filter, "outcome", outcome)
	msg := catalogevents.FetchFinishedMsg{Filter: q.Filter, Pending: len(a.coordinator.Pending())}
	if outcome == coordinator.Failed {
		msg.Err = err
	}
	a.send(msg)
}

// send queues msg for the UI without waiting for it to be read.
func (a *App) send(msg tea.Msg) {
	a.outbox.push(msg)
}

// sendAndLogError is a helper function to both log an error and send it to the UI.
func (a *App) sendAndLogError(op string, err error) {
	slog.Error("Browser operation failed", "op", op, "error", err)
	a.send(appevents.AppErrorMsg{Op: op, Err: err})
}
