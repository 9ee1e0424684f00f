package storage

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
)

// DefaultDebounceInterval is how long rapid writes coalesce before a
// flush.
const DefaultDebounceInterval = 400 * time.Millisecond

// DebouncedWriter coalesces rapid document writes: a later write to the
// same key supersedes the pending one, and a single flush runs after the
// interval. Flush is synchronous and atomic from the caller's view; a
// timer that fires mid-Flush finds nothing pending. Errors from deferred
// flushes are logged since no caller is left to receive them.
type DebouncedWriter struct {
	mu       sync.Mutex
	pending  *pendingWrite
	timer    *time.Timer
	closed   bool
	interval time.Duration
	flushFn  func(engine.AppState, SaveOptions) error
	log      *slog.Logger
}

type pendingWrite struct {
	state engine.AppState
	opts  SaveOptions
}

func NewDebouncedWriter(interval time.Duration, flushFn func(engine.AppState, SaveOptions) error, logger *slog.Logger) *DebouncedWriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DebouncedWriter{
		interval: interval,
		flushFn:  flushFn,
		log:      logger,
	}
}

// Write replaces any pending document and reschedules the flush timer.
func (w *DebouncedWriter) Write(state engine.AppState, opts SaveOptions) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &pendingWrite{state: state, opts: opts}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.interval, func() {
		if err := w.Flush(); err != nil {
			w.log.Error("deferred state flush failed", "err", err)
		}
	})
}

// Flush synchronously writes the pending document, if any.
func (w *DebouncedWriter) Flush() error {
	w.mu.Lock()
	p := w.pending
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if p == nil {
		return nil
	}
	return w.flushFn(p.state, p.opts)
}

// Close flushes any pending write and rejects further ones.
func (w *DebouncedWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.Flush()
}
