package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescp17/stageCatalog/internal/app"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/concurrency"
	"github.com/rescp17/stageCatalog/pkg/report"
)

// fakeCreator echoes candidates back under sequential ids, or fails.
type fakeCreator struct {
	mu      sync.Mutex
	ids     []string
	calls   int
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeCreator) CreateEvent(ctx context.Context, c catalog.Candidate) (catalog.Event, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return catalog.Event{}, f.err
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return c.Event(catalog.ID(id)), nil
}

func candidate() catalog.Candidate {
	return catalog.Candidate{
		Title:    "Tosca",
		Date:     "July 4",
		Time:     "19:00",
		Cover:    "tosca.jpg",
		Composer: "Puccini",
		Type:     catalog.KindOpera,
	}
}

func storeContext(t *testing.T) (context.Context, *app.Store) {
	t.Helper()
	store := app.NewStore(app.InitialState())
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Run(loopCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	storeCtx, err := app.WithStore(loopCtx, store)
	require.NoError(t, err)
	return storeCtx, store
}

func flush(t *testing.T, store *app.Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, store.Wait(ctx))
}

func TestSubmitAppendsEcho(t *testing.T) {
	ctx, store := storeContext(t)
	sink := &report.Recorder{}
	sub := NewSubmitter(&fakeCreator{ids: []string{"42"}}, sink)

	created, err := sub.Submit(ctx, candidate())
	require.NoError(t, err)

	want := candidate().Event("42")
	assert.Equal(t, want, created)

	flush(t, store)
	assert.Equal(t, []catalog.Event{want}, store.State().Events)
	assert.Equal(t, catalog.FilterAll, store.State().CurrentFilter)
	assert.Empty(t, sink.Entries())
}

func TestSubmitFailureDispatchesNothingAndAllowsRetry(t *testing.T) {
	ctx, store := storeContext(t)
	sink := &report.Recorder{}
	creator := &fakeCreator{ids: []string{"7"}, err: errors.New("store unreachable")}
	sub := NewSubmitter(creator, sink)

	_, err := sub.Submit(ctx, candidate())
	require.Error(t, err)
	flush(t, store)
	assert.Empty(t, store.State().Events)
	require.Len(t, sink.Entries(), 1)
	assert.Equal(t, "submit event", sink.Entries()[0].Op)

	creator.mu.Lock()
	creator.err = nil
	creator.mu.Unlock()

	created, err := sub.Submit(ctx, candidate())
	require.NoError(t, err)
	flush(t, store)
	assert.Equal(t, []catalog.Event{created}, store.State().Events)
}

func TestSubmitDuplicatesAreKept(t *testing.T) {
	ctx, store := storeContext(t)
	sub := NewSubmitter(&fakeCreator{ids: []string{"1", "2"}}, &report.Recorder{})

	_, err := sub.Submit(ctx, candidate())
	require.NoError(t, err)
	_, err = sub.Submit(ctx, candidate())
	require.NoError(t, err)

	flush(t, store)
	events := store.State().Events
	require.Len(t, events, 2)
	assert.Equal(t, events[0].Title, events[1].Title)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestSubmitRejectsInvalidCandidateWithoutCallingStore(t *testing.T) {
	ctx, _ := storeContext(t)
	creator := &fakeCreator{}
	sink := &report.Recorder{}
	sub := NewSubmitter(creator, sink)

	c := candidate()
	c.Time = "25:00"
	_, err := sub.Submit(ctx, c)
	assert.True(t, catalog.IsValidationError(err))
	assert.Zero(t, creator.calls)
	assert.Empty(t, sink.Entries())
}

func TestSubmitRefusesOverlap(t *testing.T) {
	ctx, store := storeContext(t)
	creator := &fakeCreator{
		ids:     []string{"1"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sub := NewSubmitter(creator, &report.Recorder{})

	done := make(chan error, 1)
	go func() {
		_, err := sub.Submit(ctx, candidate())
		done <- err
	}()
	<-creator.started
	assert.True(t, sub.Busy())

	_, err := sub.Submit(ctx, candidate())
	assert.ErrorIs(t, err, concurrency.ErrBusy)

	close(creator.release)
	require.NoError(t, <-done)
	flush(t, store)
	assert.Len(t, store.State().Events, 1)
}

func TestSubmitOutsideStoreScope(t *testing.T) {
	sub := NewSubmitter(&fakeCreator{ids: []string{"1"}}, nil)

	_, err := sub.Submit(context.Background(), candidate())
	assert.ErrorIs(t, err, app.ErrNoStore)
}
