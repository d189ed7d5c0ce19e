// Package lookuptest provides a manually driven lookup.Scheduler.
package lookuptest

import (
	"sync"
	"time"

	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
)

// Scheduler queues callbacks until the test fires them.
type Scheduler struct {
	mu     sync.Mutex
	timers []*timer
}

type timer struct {
	s       *Scheduler
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

var _ lookup.Scheduler = (*Scheduler)(nil)

func (s *Scheduler) AfterFunc(d time.Duration, f func()) lookup.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{s: s, d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Pending returns how many callbacks are neither stopped nor fired.
func (s *Scheduler) Pending() int {
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

// LastDelay returns the delay of the most recently scheduled callback.
func (s *Scheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].d
}

// FireAll runs every pending callback in scheduling order on the calling
// goroutine.
func (s *Scheduler) FireAll() {
	s.mu.Lock()
	var due []func()
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t.f)
		}
	}
	s.mu.Unlock()
	for _, f := range due {
		f()
	}
}
