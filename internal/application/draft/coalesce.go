package draft

import (
	"context"
	"sync"
	"time"
)

// Saver is the write side of a SessionStore.
type Saver interface {
	Save(ctx context.Context, key string, value any)
}

// Writer batches rapid edits: Put records the latest value per key and a
// single flush runs once the interval has passed since the first pending
// put. Last write wins.
type Writer struct {
	saver    Saver
	interval time.Duration

	// flushMu serializes flushes with Discard so a flush that already
	// picked up a value cannot land after the value was discarded.
	flushMu sync.Mutex

	mu      sync.Mutex
	pending map[string]any
	timer   *time.Timer
	closed  bool
}

func NewWriter(saver Saver, interval time.Duration) *Writer {
	return &Writer{
		saver:    saver,
		interval: interval,
		pending:  make(map[string]any),
	}
}

// Put schedules value to be written under key. A non-positive interval or a
// closed writer writes through.
func (w *Writer) Put(key string, value any) {
	w.mu.Lock()
	if w.closed || w.interval <= 0 {
		w.mu.Unlock()
		w.flushMu.Lock()
		w.saver.Save(context.Background(), key, value)
		w.flushMu.Unlock()
		return
	}
	w.pending[key] = value
	if w.timer == nil {
		w.timer = time.AfterFunc(w.interval, func() { w.FlushNow(context.Background()) })
	}
	w.mu.Unlock()
}

// FlushNow writes every pending value immediately.
func (w *Writer) FlushNow(ctx context.Context) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]any)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	for k, v := range batch {
		w.saver.Save(ctx, k, v)
	}
}

// Discard drops pending values for keys, or all of them when none are given.
// It waits for an in-progress flush to finish first.
func (w *Writer) Discard(keys ...string) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(keys) == 0 {
		w.pending = make(map[string]any)
	} else {
		for _, k := range keys {
			delete(w.pending, k)
		}
	}
	if len(w.pending) == 0 && w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Pending reports how many keys are waiting to be written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close flushes what is pending. Later puts write through.
func (w *Writer) Close(ctx context.Context) {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.FlushNow(ctx)
}
