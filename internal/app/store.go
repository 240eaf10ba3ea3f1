package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	appevents "github.com/rescp17/stageCatalog/internal/app_events"
)

var ErrAlreadyRunning = errors.New("store loop is already running")

// Subscriber is notified on the store loop after every applied transition.
type Subscriber func(prev, next State)

// Store holds the live State and applies actions to it one at a time.
//
// All transitions and subscriber callbacks run on a single goroutine started
// by Run. Dispatch, Update and Post only enqueue work, never block, and may be
// called from any goroutine, including from inside a subscriber.
type Store struct {
	mu      sync.Mutex
	state   State
	queue   []func()
	subs    map[int]Subscriber
	nextSub int

	wake    chan struct{}
	running atomic.Bool
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]Subscriber),
		wake:  make(chan struct{}, 1),
	}
}

// State returns the latest state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch queues action to be applied.
func (s *Store) Dispatch(action appevents.Action) {
	s.Post(func() { s.apply(action) })
}

// Update queues fn to run on the store loop with the live state. When fn
// returns ok, its action is applied in the same step, so no other transition
// can happen between fn's check and the application.
func (s *Store) Update(fn func(State) (action appevents.Action, ok bool)) {
	s.Post(func() {
		if action, ok := fn(s.State()); ok {
			s.apply(action)
		}
	})
}

// Post queues fn to run on the store loop after all previously queued work.
func (s *Store) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Subscribe registers fn and returns a function that removes it again.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every piece of work queued before the call has run,
// or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	done := make(chan struct{})
	s.Post(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the store's event loop. It returns nil once ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
			for fn := s.pop(); fn != nil; fn = s.pop() {
				if ctx.Err() != nil {
					return nil
				}
				s.run(fn)
			}
		}
	}
}

func (s *Store) pop() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	fn := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return fn
}

// run executes one unit of work and keeps the loop alive if it panics.
func (s *Store) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Store work panicked", "panic", r)
		}
	}()
	fn()
}

func (s *Store) apply(action appevents.Action) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	subs := make([]Subscriber, 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	slog.Debug("Applied action", "action", actionName(action), "events", len(next.Events), "filter", next.CurrentFilter)
	for _, fn := range subs {
		fn(prev, next)
	}
}

func actionName(action appevents.Action) string {
	if action == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", action)
}
