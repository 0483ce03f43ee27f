package grid

import (
	"fmt"
	"sync"
	"time"
)

// manualScheduler records timers and fires them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) Schedule(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every timer that is still live.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			live = append(live, t)
		}
	}
	s.mu.Unlock()

	for _, t := range live {
		t.fn()
	}
	return len(live)
}

func (s *manualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// numberedRows returns n rows with ids "r1".."rN".
func numberedRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{"id": fmt.Sprintf("r%d", i+1), "n": i + 1}
	}
	return rows
}

func rowIDs(v View) []RowID {
	ids := make([]RowID, v.Len())
	for i := range ids {
		_, id, _ := v.RowAt(i)
		ids[i] = id
	}
	return ids
}
