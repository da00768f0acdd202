// Package tooltip associates tooltip content with host elements and shows at
// most one popup at a time.
package tooltip

import (
	"errors"
	"image"
	"image/draw"
	"log/slog"

	"github.com/jmylchreest/tetratip/internal/clock"
	"github.com/jmylchreest/tetratip/internal/content"
	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/position"
)

var (
	ErrNilElement = errors.New("tooltip: nil element")
	ErrClosed     = errors.New("tooltip: controller closed")
	ErrNoContent  = errors.New("tooltip: element has no tooltip content")
)

// ContentService measures and draws default tooltip content.
type ContentService interface {
	Measure(c content.Content) image.Point
	Draw(dst draw.Image, r image.Rectangle, c content.Content)
}

// PopupEvent asks an owner-drawing host for the content size.
type PopupEvent struct {
	Element Element
	// Size is set by the host.
	Size image.Point
}

// DrawEvent hands a paint target to an owner-drawing host.
type DrawEvent struct {
	Element Element
	Dst     draw.Image
	Rect    image.Rectangle
	Content content.Content
}

// Options configures a Controller.
type Options struct {
	Config     popup.Config
	Compositor popup.Compositor
	Clock      clock.Clock
	Screen     Screen
	// Content defaults to content.NewLayout().
	Content ContentService
	// Owner, when set, owns every popup instead of the element's owner.
	Owner  any
	Logger *slog.Logger

	// Owner-draw hooks. Nil hooks fall back to the default services.
	OnPopup          func(*PopupEvent)
	OnDraw           func(*DrawEvent)
	OnDrawBackground func(*DrawEvent)

	// OnClosed is called with the popup ID after each popup is torn down.
	OnClosed func(id string)
}

// Controller owns the tooltip configuration, the element associations and
// the single live popup. It is not safe for concurrent use; call it from the
// host's event loop.
type Controller struct {
	cfg        popup.Config
	compositor popup.Compositor
	clock      clock.Clock
	screen     Screen
	content    ContentService
	owner      any
	logger     *slog.Logger

	onPopup          func(*PopupEvent)
	onDraw           func(*DrawEvent)
	onDrawBackground func(*DrawEvent)
	onClosed         func(string)

	items  map[Element]content.Content
	hooked map[Element]bool
	hooks  *Hooks

	current *popup.Window
	tracked Element
	closed  bool
}

// NewController creates a controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Compositor == nil {
		return nil, errors.New("tooltip: compositor is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("tooltip: clock is required")
	}
	if opts.Screen == nil {
		return nil, errors.New("tooltip: screen is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	svc := opts.Content
	if svc == nil {
		svc = content.NewLayout()
	}

	c := &Controller{
		cfg:              opts.Config,
		compositor:       opts.Compositor,
		clock:            opts.Clock,
		screen:           opts.Screen,
		content:          svc,
		owner:            opts.Owner,
		logger:           logger,
		onPopup:          opts.OnPopup,
		onDraw:           opts.OnDraw,
		onDrawBackground: opts.OnDrawBackground,
		onClosed:         opts.OnClosed,
		items:            make(map[Element]content.Content),
		hooked:           make(map[Element]bool),
	}
	c.hooks = &Hooks{Enter: c.enter, Leave: c.leave, Press: c.press}
	return c, nil
}

// Config returns the configuration used for new popups.
func (c *Controller) Config() popup.Config { return c.cfg }

// SetConfig replaces the configuration. A live popup keeps the snapshot it
// was created with.
func (c *Controller) SetConfig(cfg popup.Config) { c.cfg = cfg }

// Active returns the live popup, or nil.
func (c *Controller) Active() *popup.Window { return c.current }

// Text returns the tooltip text associated with e.
func (c *Controller) Text(e Element) string { return c.items[e].Text }

// Title returns the tooltip title associated with e.
func (c *Controller) Title(e Element) string { return c.items[e].Title }

// Image returns the tooltip image associated with e.
func (c *Controller) Image(e Element) image.Image { return c.items[e].Image }

// SetText associates text with e. Empty text removes the association.
func (c *Controller) SetText(e Element, text string) {
	c.update(e, func(item *content.Content) { item.Text = text })
}

// SetTitle associates a title with e. An empty title removes it.
func (c *Controller) SetTitle(e Element, title string) {
	c.update(e, func(item *content.Content) { item.Title = title })
}

// SetImage associates an image with e. A nil image removes it.
func (c *Controller) SetImage(e Element, img image.Image) {
	c.update(e, func(item *content.Content) { item.Image = img })
}

func (c *Controller) update(e Element, fn func(*content.Content)) {
	if e == nil || c.closed {
		return
	}
	item := c.items[e]
	fn(&item)

	has := item.Present()
	if has {
		c.items[e] = item
	} else {
		delete(c.items, e)
	}

	switch {
	case has && !c.hooked[e]:
		e.Attach(c.hooks)
		c.hooked[e] = true
	case !has && c.hooked[e]:
		e.Detach(c.hooks)
		delete(c.hooked, e)
	}
}

// Show displays e's tooltip next to the mouse pointer.
func (c *Controller) Show(e Element) (*popup.Window, error) {
	return c.show(e, func(size image.Point) image.Point {
		return position.AtPointer(c.screen.Pointer(), c.screen.CursorSize(), size, c.screen.WorkArea())
	})
}

// ShowAt displays e's tooltip at p, given in e's client coordinates.
func (c *Controller) ShowAt(e Element, p image.Point) (*popup.Window, error) {
	if e == nil {
		return nil, ErrNilElement
	}
	return c.show(e, func(size image.Point) image.Point {
		return position.AtPoint(e.ClientToScreen(p), size, c.screen.WorkArea())
	})
}

// ShowAvoiding displays e's tooltip so that it does not cover r, given in
// e's client coordinates.
func (c *Controller) ShowAvoiding(e Element, r image.Rectangle) (*popup.Window, error) {
	if e == nil {
		return nil, ErrNilElement
	}
	return c.show(e, func(size image.Point) image.Point {
		anchor := r.Add(e.ClientToScreen(image.Point{}))
		return position.Avoiding(anchor, size, c.screen.WorkArea())
	})
}

// Hide requests the live popup to close. It is a no-op without one.
func (c *Controller) Hide() {
	if c.current != nil {
		c.current.Close()
	}
}

// Close detaches every hook, drops all associations and tears down the live
// popup. The controller cannot be used afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for e := range c.hooked {
		e.Detach(c.hooks)
	}
	clear(c.hooked)
	clear(c.items)
	c.tracked = nil
	if c.current != nil {
		c.current.Dispose()
	}
}

func (c *Controller) show(e Element, locate func(image.Point) image.Point) (*popup.Window, error) {
	if e == nil {
		return nil, ErrNilElement
	}
	if c.closed {
		return nil, ErrClosed
	}

	cfg := c.cfg
	item := c.items[e]
	ownerDrawn := cfg.OwnerDraw || cfg.OwnerDrawBackground

	// Refuse before touching the live popup, so it keeps showing.
	if !ownerDrawn && !item.Present() {
		return nil, ErrNoContent
	}

	c.tracked = e
	if c.current != nil {
		c.current.Dispose()
	}

	var size image.Point
	if ownerDrawn {
		ev := &PopupEvent{Element: e}
		if c.onPopup != nil {
			c.onPopup(ev)
		}
		size = ev.Size
	} else {
		size = c.content.Measure(item)
	}

	owner := c.owner
	if owner == nil {
		owner = e.Owner()
	}

	w, err := popup.New(popup.Options{
		Config:      cfg,
		ContentSize: size,
		Locate:      locate,
		Background:  c.backgroundFunc(e, item),
		Content:     c.contentFunc(e, item, ownerDrawn),
		Compositor:  c.compositor,
		Clock:       c.clock,
		Logger:      c.logger,
		Owner:       owner,
		OnClosed:    c.popupClosed,
	})
	if err != nil {
		c.logger.Warn("failed to show tooltip", "error", err)
		return nil, err
	}
	c.current = w

	c.logger.Debug("showed tooltip",
		"id", w.ID(),
		"bounds", w.Bounds(),
		"owner_draw", ownerDrawn,
	)
	return w, nil
}

func (c *Controller) contentFunc(e Element, item content.Content, ownerDrawn bool) func(draw.Image, image.Rectangle) {
	return func(dst draw.Image, r image.Rectangle) {
		if ownerDrawn && c.onDraw != nil {
			c.onDraw(&DrawEvent{Element: e, Dst: dst, Rect: r, Content: item})
			return
		}
		c.content.Draw(dst, r, item)
	}
}

func (c *Controller) backgroundFunc(e Element, item content.Content) func(draw.Image, image.Rectangle) {
	if c.onDrawBackground == nil {
		return nil
	}
	return func(dst draw.Image, r image.Rectangle) {
		c.onDrawBackground(&DrawEvent{Element: e, Dst: dst, Rect: r, Content: item})
	}
}

func (c *Controller) popupClosed(w *popup.Window) {
	if c.current == w {
		c.current = nil
	}
	if c.onClosed != nil {
		c.onClosed(w.ID())
	}
}

func (c *Controller) enter(e Element) {
	var err error
	switch c.cfg.Placement {
	case position.MousePointer:
		_, err = c.Show(e)
	case position.CustomClient:
		_, err = c.ShowAt(e, c.cfg.CustomLocation)
	case position.CustomScreen:
		_, err = c.ShowAt(e, e.ScreenToClient(c.cfg.CustomLocation))
	default:
		_, err = c.ShowAvoiding(e, e.Anchor())
	}
	if err != nil {
		c.logger.Debug("hover tooltip not shown", "error", err)
	}
}

func (c *Controller) leave(e Element) {
	if e != c.tracked {
		return
	}
	c.tracked = nil
	c.Hide()
}

func (c *Controller) press(Element) {
	c.Hide()
}
