package grid

import (
	"sync"
	"time"
)

// DefaultDebounce is the idle window before a search query is applied.
const DefaultDebounce = 300 * time.Millisecond

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc is the production
// scheduler; tests substitute a manual one.
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc schedules with the runtime timer.
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delays a call until its input has been idle for the delay.
// Every Trigger cancels the pending call and schedules a new one, so at most
// one call is pending and it always runs the latest function.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	timer    Timer
	pending  func()
	seq      uint64
}

// NewDebouncer returns a debouncer with the given delay. A nil schedule
// uses AfterFunc. A delay of zero or less runs calls immediately.
func NewDebouncer(delay time.Duration, schedule Scheduler) *Debouncer {
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Debouncer{delay: delay, schedule: schedule}
}

// Trigger replaces any pending call with f.
func (d *Debouncer) Trigger(f func()) {
	if d.delay <= 0 {
		d.Stop()
		f()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = f
	d.timer = d.schedule(d.delay, func() { d.fire(seq) })
}

// fire runs the pending call unless it was superseded after the timer
// was started. Stop cannot always win against a timer that already fired.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	f()
}

// Flush runs the pending call now, if any, and reports whether it ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	f := d.pending
	if f == nil {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	f()
	return true
}

// Stop cancels the pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = nil
	d.timer = nil
}

// Pending reports whether a call is waiting for the idle window.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
