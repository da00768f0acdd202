// Package popup implements the fading, per-pixel-alpha popup window.
//
// A Window owns two pixel buffers: the background, painted once at
// construction, and a transient frame that holds the background with its
// alpha channel scaled to the current fade level. Frames are pushed to a
// Surface obtained from a Compositor. All methods and timer callbacks must run
// on the same goroutine (the host's event loop).
package popup

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/tetratip/internal/clock"
	"github.com/jmylchreest/tetratip/internal/render"
)

// alphaStep is the alpha change per fade tick, in percent.
const alphaStep = 10

// State is the lifecycle state of a Window.
type State int

const (
	FadingIn State = iota
	Idle
	FadingOut
	Closed
)

func (s State) String() string {
	switch s {
	case FadingIn:
		return "fading-in"
	case Idle:
		return "idle"
	case FadingOut:
		return "fading-out"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a new Window.
type Options struct {
	Config Config
	// ContentSize is the size of the content area; the window adds the
	// chrome margin around it.
	ContentSize image.Point
	// Locate resolves the screen position for the final window size.
	// Nil places the window at the origin.
	Locate func(size image.Point) image.Point

	// Background paints an owner-drawn background.
	Background render.DrawFunc
	// Content paints the popup content.
	Content render.DrawFunc

	Compositor Compositor
	Clock      clock.Clock
	Logger     *slog.Logger
	Owner      any

	// OnClosed is called once after teardown completes.
	OnClosed func(*Window)
}

// Window is a single live popup.
type Window struct {
	id     ulid.ULID
	cfg    Config
	size   image.Point
	pos    image.Point
	logger *slog.Logger

	surface    Surface
	background *image.NRGBA
	frame      *image.NRGBA

	alpha   int
	closing bool
	state   State

	fade      clock.Timer
	autoClose clock.Timer

	onClosed func(*Window)
}

// New builds the popup, paints its background and starts it showing.
func New(opts Options) (*Window, error) {
	if opts.Compositor == nil {
		return nil, errors.New("popup: compositor is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("popup: clock is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Window{
		id:       ulid.Make(),
		cfg:      opts.Config,
		size:     opts.Config.WindowSize(opts.ContentSize),
		logger:   logger,
		onClosed: opts.OnClosed,
	}
	if opts.Locate != nil {
		w.pos = opts.Locate(w.size)
	}

	bounds := image.Rectangle{Max: w.size}
	w.background = image.NewNRGBA(bounds)
	w.frame = image.NewNRGBA(bounds)

	painter := render.Painter{
		Shadow:              w.cfg.ShowShadow,
		OwnerDrawBackground: w.cfg.OwnerDrawBackground,
		Background:          opts.Background,
		Content:             opts.Content,
	}
	// Paint before opening the surface so a failing host callback leaves
	// nothing to release.
	if err := paint(painter, w.background); err != nil {
		return nil, err
	}

	surface, err := opts.Compositor.Open(SurfaceOptions{Size: w.size, Position: w.pos, Owner: opts.Owner})
	if err != nil {
		return nil, fmt.Errorf("open popup surface: %w", err)
	}
	w.surface = surface

	w.fade = opts.Clock.NewTimer(w.cfg.AnimationInterval, w.tick)
	w.autoClose = opts.Clock.NewTimer(w.cfg.AutoClose, w.autoCloseFired)

	w.logger.Debug("popup created",
		"id", w.id,
		"size", w.size,
		"position", w.pos,
		"buffers", humanize.Bytes(uint64(len(w.background.Pix)+len(w.frame.Pix))),
		"animated", w.cfg.Animated(),
	)

	if w.cfg.Animated() {
		w.state = FadingIn
		if err := w.present(); err != nil {
			w.logger.Debug("popup frame dropped", "id", w.id, "alpha", w.alpha, "error", err)
		} else {
			w.fade.Start()
		}
	} else {
		w.alpha = 100
		w.state = Idle
		if err := w.present(); err != nil {
			w.logger.Debug("popup frame dropped", "id", w.id, "alpha", w.alpha, "error", err)
		}
	}

	if w.cfg.EnableAutoClose {
		w.autoClose.Start()
	}
	return w, nil
}

// ID returns the popup's unique identifier.
func (w *Window) ID() string { return w.id.String() }

// Alpha returns the current fade level in percent.
func (w *Window) Alpha() int { return w.alpha }

// State returns the lifecycle state.
func (w *Window) State() State { return w.state }

// Bounds returns the window rectangle in screen coordinates.
func (w *Window) Bounds() image.Rectangle {
	return image.Rectangle{Min: w.pos, Max: w.pos.Add(w.size)}
}

// Config returns the configuration the popup was built with.
func (w *Window) Config() Config { return w.cfg }

// Close requests the popup to close. With animation enabled it fades out from
// the current alpha; otherwise it is torn down immediately. Calling Close on
// a closing or closed popup is safe.
func (w *Window) Close() {
	if w.state == Closed {
		return
	}
	if !w.cfg.Animated() {
		w.teardown()
		return
	}
	w.closing = true
	w.state = FadingOut
	w.fade.Start()
}

// Dispose tears the popup down immediately, skipping any fade.
func (w *Window) Dispose() {
	w.teardown()
}

func (w *Window) autoCloseFired() {
	w.autoClose.Stop()
	w.logger.Debug("popup auto-close", "id", w.id)
	w.Close()
}

// tick advances the fade by one step. A frame that cannot be submitted stops
// the fade; a closing popup is then torn down rather than left on screen at
// a stale alpha with nothing driving it.
func (w *Window) tick() {
	if w.state == Closed {
		return
	}

	if w.closing {
		w.alpha = max(w.alpha-alphaStep, 0)
	} else {
		w.alpha = min(w.alpha+alphaStep, 100)
	}

	if err := w.present(); err != nil {
		w.fade.Stop()
		w.logger.Debug("popup frame dropped", "id", w.id, "alpha", w.alpha, "error", err)
		if w.closing {
			w.teardown()
		}
		return
	}

	switch {
	case w.closing && w.alpha == 0:
		w.teardown()
	case !w.closing && w.alpha == 100:
		w.fade.Stop()
		w.state = Idle
	}
}

// paint renders the static frame, turning a panic in a host draw callback
// into an error.
func paint(p render.Painter, dst *image.NRGBA) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("paint popup: %v", r)
		}
	}()
	p.Paint(dst)
	return nil
}

// present scales the background into the frame buffer at the current alpha
// and submits it.
func (w *Window) present() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("present panicked: %v", r)
		}
	}()

	render.ScaleAlpha(w.frame, w.background, w.alpha)

	var frame image.Image = w.frame
	if w.surface.Premultiplied() {
		frame = render.PremultiplyInPlace(w.frame)
	}
	return w.surface.Submit(frame, w.pos)
}

// teardown releases every resource the popup holds. Each step runs even when
// an earlier one fails.
func (w *Window) teardown() {
	if w.state == Closed {
		return
	}
	w.state = Closed

	w.release("stop fade timer", func() error { w.fade.Stop(); return nil })
	w.release("stop auto-close timer", func() error { w.autoClose.Stop(); return nil })
	w.release("detach surface", func() error { w.surface.Detach(); return nil })
	w.release("close surface", w.surface.Close)
	w.background, w.frame = nil, nil

	w.logger.Debug("popup closed", "id", w.id, "alpha", w.alpha)

	if w.onClosed != nil {
		w.release("closed callback", func() error { w.onClosed(w); return nil })
	}
}

func (w *Window) release(step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("popup teardown step panicked", "id", w.id, "step", step, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		w.logger.Debug("popup teardown step failed", "id", w.id, "step", step, "error", err)
	}
}
