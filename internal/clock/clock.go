// Package clock provides the recurring timers that drive popup animation.
//
// Timers never run callbacks concurrently: every implementation invokes them
// from the host's event loop (the glib main loop, an ebiten Update, or an
// explicit Advance call).
package clock

import (
	"sort"
	"time"
)

// Timer is a recurring timer. Start on a running timer is a no-op and Stop on
// a stopped timer is a no-op, matching the behaviour of toolkit timers.
type Timer interface {
	Start()
	Stop()
	Running() bool
}

// Clock creates timers bound to a host event loop.
type Clock interface {
	NewTimer(interval time.Duration, fn func()) Timer
}

// Manual is a deterministic Clock advanced explicitly by its owner.
// It is used for headless rendering, for loops that tick at a fixed rate,
// and in tests.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

// NewManual returns a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	clock    *Manual
	interval time.Duration
	fn       func()
	running  bool
	due      time.Duration
	order    int
}

// NewTimer implements Clock.
func (m *Manual) NewTimer(interval time.Duration, fn func()) Timer {
	return &manualTimer{clock: m, interval: interval, fn: fn}
}

func (t *manualTimer) Start() {
	if t.running {
		return
	}
	m := t.clock
	t.running = true
	t.due = m.now + t.interval
	m.seq++
	t.order = m.seq
	m.timers = append(m.timers, t)
}

func (t *manualTimer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	m := t.clock
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
}

func (t *manualTimer) Running() bool {
	return t.running
}

// Now returns the elapsed time since the clock was created.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by d, firing every timer that becomes due
// in chronological order. A timer may fire several times within one call.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.due += max(next.interval, time.Nanosecond)
		next.fn()
	}
	m.now = target
}

// Step advances the clock straight to the next due timer and fires it.
// It reports false when no timer is running.
func (m *Manual) Step() bool {
	next := m.nextDue(-1)
	if next == nil {
		return false
	}
	m.Advance(next.due - m.now)
	return true
}

// Pending returns the number of running timers.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// nextDue returns the earliest running timer due at or before limit.
// A negative limit means no limit.
func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if limit < 0 || t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].order < due[j].order
	})
	return due[0]
}
