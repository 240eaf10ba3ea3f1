// Package report is where recoverable failures end up once nothing else can
// be done about them.
package report

import (
	"log/slog"
	"sync"
)

// Sink accepts failure reports. Implementations must not block for long;
// they are called from the store loop.
type Sink interface {
	Report(op string, err error)
}

// SlogSink logs every report at error level through the default slog logger.
type SlogSink struct{}

func (SlogSink) Report(op string, err error) {
	slog.Error("Operation failed", "op", op, "error", err)
}

// Func adapts an ordinary function to a Sink.
type Func func(op string, err error)

func (f Func) Report(op string, err error) { f(op, err) }

// Multi fans a report out to several sinks in order.
type Multi []Sink

func (m Multi) Report(op string, err error) {
	for _, s := range m {
		if s != nil {
			s.Report(op, err)
		}
	}
}

// Entry is one recorded report.
type Entry struct {
	Op  string
	Err error
}

// Recorder keeps every report in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Report(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Op: op, Err: err})
}

// Entries returns a copy of everything reported so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
