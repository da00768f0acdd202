package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/tetratip/internal/clock"
)

// MainLoopClock runs timers on the glib main loop.
type MainLoopClock struct{}

// NewTimer implements clock.Clock.
func (MainLoopClock) NewTimer(interval time.Duration, fn func()) clock.Timer {
	return &sourceTimer{interval: interval, fn: fn}
}

type sourceTimer struct {
	interval time.Duration
	fn       func()

	running bool
	firing  bool
	gen     uint64
	source  glib.SourceHandle
}

func (t *sourceTimer) Start() {
	if t.running {
		return
	}
	t.running = true
	t.gen++
	gen := t.gen

	ms := uint(max(t.interval.Milliseconds(), 1))
	t.source = glib.TimeoutAdd(ms, func() bool {
		if !t.running || t.gen != gen {
			return false
		}
		t.firing = true
		t.fn()
		t.firing = false
		// fn may have stopped or restarted the timer
		return t.running && t.gen == gen
	})
}

func (t *sourceTimer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	// A source stopped from its own callback is removed by returning false.
	if !t.firing {
		glib.SourceRemove(t.source)
	}
}

func (t *sourceTimer) Running() bool {
	return t.running
}
