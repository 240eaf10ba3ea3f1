package browser

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
)

// outbox queues messages for the TUI so that senders on the store loop never
// wait for the view. Undelivered state changes are coalesced: only the
// latest state is kept, in the place of the oldest one still queued.
type outbox struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

// push queues msg. It never blocks.
func (o *outbox) push(msg tea.Msg) {
	o.mu.Lock()
	if _, ok := msg.(catalogevents.StateChangedMsg); ok {
		if i := o.indexOfState(); i >= 0 {
			o.queue[i] = msg
			o.mu.Unlock()
			return
		}
	}
	o.queue = append(o.queue, msg)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) indexOfState() int {
	for i, m := range o.queue {
		if _, ok := m.(catalogevents.StateChangedMsg); ok {
			return i
		}
	}
	return -1
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *outbox) pop() (tea.Msg, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return nil, false
	}
	msg := o.queue[0]
	o.queue[0] = nil
	o.queue = o.queue[1:]
	return msg, true
}

// run delivers queued messages to out in order until ctx is done.
func (o *outbox) run(ctx context.Context, out chan<- tea.Msg) error {
	for {
		msg, ok := o.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-o.wake:
				continue
			}
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}
