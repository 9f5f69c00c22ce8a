// Package schedule provides cancellable timers: a periodic ticker, a
// debouncer and a rate-limited throttle.
package schedule

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Handle is a running periodic task. Stop is idempotent and safe to call
// from any goroutine.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every calls fn every interval until ctx is cancelled or Stop is called.
// fn receives the time elapsed since the task started.
func Every(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	start := time.Now()

	go func() {
		defer close(h.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				fn(now.Sub(start))
			}
		}
	}()
	return h
}

// Stop cancels the task and waits for an in-flight fn to return.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the task has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Debouncer runs the most recently triggered function once the delay has
// passed without another trigger.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fn = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush runs a pending call immediately. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop drops any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.fn = nil
}

// Throttle allows at most one call per interval.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle that admits one call per interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Allow reports whether a call may proceed now.
func (t *Throttle) Allow() bool {
	return t.limiter.Allow()
}

// Do runs fn if the throttle admits it and reports whether it ran.
func (t *Throttle) Do(fn func()) bool {
	if !t.limiter.Allow() {
		return false
	}
	fn()
	return true
}
