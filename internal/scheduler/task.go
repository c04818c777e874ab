// Package scheduler runs a function on a fixed period with explicit
// start/stop control. It replaces ambient interval timers so that callers
// and tests can reason about when a run happens.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/logging"
)

// DefaultInterval matches the console's auto-refresh period.
const DefaultInterval = 30 * time.Second

// RunFunc is one unit of periodic work.
type RunFunc func(ctx context.Context) error

// Task fires fn every interval while running.
//
// Stop is cooperative: it prevents future firings but never cancels a run
// that already started; such a run sees a context detached from the task's
// lifetime.
type Task struct {
	name     string
	interval time.Duration
	fn       RunFunc
	clock    Clock
	logger   logging.Logger

	ctl     sync.Mutex // serializes Start and Stop
	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	nextRun time.Time
	runMu   sync.Mutex
	lastErr error
}

type Option func(*Task)

func WithClock(c Clock) Option { return func(t *Task) { t.clock = c } }

func WithLogger(l logging.Logger) Option { return func(t *Task) { t.logger = l } }

func NewTask(name string, interval time.Duration, fn RunFunc, opts ...Option) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		clock:    RealClock(),
		logger:   logging.Discard(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Start begins periodic execution. Calling Start on a running task restarts
// it with a fresh period. The loop also ends when ctx is cancelled.
func (t *Task) Start(ctx context.Context) {
	t.ctl.Lock()
	defer t.ctl.Unlock()

	t.halt()

	t.mu.Lock()
	defer t.mu.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})
	ticker := t.clock.NewTicker(t.interval)
	t.stop, t.done = stop, done
	t.nextRun = t.clock.Now().Add(t.interval)

	go t.loop(ctx, ticker, stop, done)
	t.logger.Info(ctx, "scheduled task started", "task", t.name, "interval", t.interval.String())
}

func (t *Task) loop(ctx context.Context, ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			t.mu.Lock()
			if t.stop == stop {
				t.stop, t.done = nil, nil
				t.nextRun = time.Time{}
			}
			t.mu.Unlock()
			return
		case now := <-ticker.C():
			// A tick and Stop can be ready together; Stop wins.
			select {
			case <-stop:
				return
			default:
			}

			t.mu.Lock()
			t.nextRun = now.Add(t.interval)
			t.mu.Unlock()

			_ = t.run(context.WithoutCancel(ctx))
		}
	}
}

// Stop prevents further firings. It returns once the loop goroutine has
// observed the stop, which may include waiting for an in-flight run.
func (t *Task) Stop() {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.halt()
}

func (t *Task) halt() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.nextRun = time.Time{}
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	t.logger.Info(context.Background(), "scheduled task stopped", "task", t.name)
}

func (t *Task) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// NextRun is the expected time of the next firing, or zero when stopped.
func (t *Task) NextRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextRun
}

// Until reports the time left before the next firing.
func (t *Task) Until() (time.Duration, bool) {
	next := t.NextRun()
	if next.IsZero() {
		return 0, false
	}
	d := next.Sub(t.clock.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// RunNow executes fn immediately on the caller's goroutine. Runs never
// overlap: a manual run waits for a scheduled one and vice versa.
func (t *Task) RunNow(ctx context.Context) error {
	return t.run(ctx)
}

// LastError returns the error of the most recent run.
func (t *Task) LastError() error {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	return t.lastErr
}

func (t *Task) run(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	err := t.fn(ctx)
	t.lastErr = err
	if err != nil {
		t.logger.Warn(ctx, "scheduled run failed", "task", t.name, "error", err)
	} else {
		t.logger.Debug(ctx, "scheduled run completed", "task", t.name)
	}
	return err
}
