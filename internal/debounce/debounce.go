package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last keystroke before a
// suggestion lookup runs.
const DefaultDelay = 400 * time.Millisecond

// ErrSuperseded is the context cause of a task replaced by newer input for
// the same session, or cancelled with Cancel.
var ErrSuperseded = errors.New("superseded by newer input")

var errStopped = errors.New("debouncer stopped")

type task struct {
	timer  *time.Timer
	cancel context.CancelCauseFunc
}

// Debouncer runs at most one pending task per session. Scheduling again for
// the same session within the delay discards the earlier task; a task that
// already started has its context cancelled.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	tasks   map[string]*task
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay: delay,
		tasks: make(map[string]*task),
	}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces the pending task of session with fn.
func (d *Debouncer) Schedule(session string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked(session, ErrSuperseded)

	ctx, cancel := context.WithCancelCause(context.Background())
	t := &task{cancel: cancel}
	t.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if ctx.Err() != nil {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		fn(ctx)

		d.mu.Lock()
		if d.tasks[session] == t {
			delete(d.tasks, session)
		}
		d.mu.Unlock()
		cancel(nil)
	})
	d.tasks[session] = t
}

// Cancel drops the pending task of session, if any.
func (d *Debouncer) Cancel(session string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(session, ErrSuperseded)
}

// Pending reports the number of sessions with a task not yet finished.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Stop cancels every task and rejects further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for session := range d.tasks {
		d.cancelLocked(session, errStopped)
	}
}

func (d *Debouncer) cancelLocked(session string, cause error) {
	t, ok := d.tasks[session]
	if !ok {
		return
	}
	t.timer.Stop()
	t.cancel(cause)
	delete(d.tasks, session)
}
