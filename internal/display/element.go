package display

import (
	"image"
	"math"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/tetratip/internal/tooltip"
)

// Element adapts a GTK widget inside a host window to tooltip.Element.
// On Wayland clients cannot query their global position, so the host
// window's screen origin is supplied by the caller (zero for layer-shell
// hosts anchored to the monitor corner).
type Element struct {
	widget *gtk.Widget
	host   *gtk.Window
	origin image.Point
	screen *Screen

	motion *gtk.EventControllerMotion
	click  *gtk.GestureClick
	hooks  *tooltip.Hooks
}

// NewElement wraps widget. screen, when set, is updated with pointer motion
// seen over the widget.
func NewElement(widget gtk.Widgetter, host *gtk.Window, origin image.Point, screen *Screen) *Element {
	return &Element{
		widget: gtk.BaseWidget(widget),
		host:   host,
		origin: origin,
		screen: screen,
	}
}

// Attach implements tooltip.Element.
func (e *Element) Attach(h *tooltip.Hooks) {
	if e.hooks != nil {
		return
	}
	e.hooks = h

	e.motion = gtk.NewEventControllerMotion()
	e.motion.ConnectEnter(func(x, y float64) {
		e.trackPointer(x, y)
		if h.Enter != nil {
			h.Enter(e)
		}
	})
	e.motion.ConnectMotion(func(x, y float64) {
		e.trackPointer(x, y)
	})
	e.motion.ConnectLeave(func() {
		if h.Leave != nil {
			h.Leave(e)
		}
	})
	e.widget.AddController(e.motion)

	e.click = gtk.NewGestureClick()
	e.click.SetButton(0) // All buttons
	e.click.ConnectPressed(func(nPress int, x, y float64) {
		if h.Press != nil {
			h.Press(e)
		}
	})
	e.widget.AddController(e.click)
}

// Detach implements tooltip.Element.
func (e *Element) Detach(h *tooltip.Hooks) {
	if e.hooks == nil || e.hooks != h {
		return
	}
	e.widget.RemoveController(e.motion)
	e.widget.RemoveController(e.click)
	e.motion = nil
	e.click = nil
	e.hooks = nil
}

// Anchor implements tooltip.Element.
func (e *Element) Anchor() image.Rectangle {
	return image.Rect(0, 0, e.widget.Width(), e.widget.Height())
}

// ClientToScreen implements tooltip.Element.
func (e *Element) ClientToScreen(p image.Point) image.Point {
	return p.Add(e.offset()).Add(e.origin)
}

// ScreenToClient implements tooltip.Element.
func (e *Element) ScreenToClient(p image.Point) image.Point {
	return p.Sub(e.origin).Sub(e.offset())
}

// Owner implements tooltip.Element.
func (e *Element) Owner() any {
	if e.host == nil {
		return nil
	}
	return e.host
}

// offset is the widget's position inside the host window.
func (e *Element) offset() image.Point {
	if e.host == nil {
		return image.Point{}
	}
	bounds, ok := e.widget.ComputeBounds(e.host)
	if !ok {
		return image.Point{}
	}
	return image.Pt(int(math.Round(float64(bounds.X()))), int(math.Round(float64(bounds.Y()))))
}

func (e *Element) trackPointer(x, y float64) {
	if e.screen == nil {
		return
	}
	p := image.Pt(int(math.Round(x)), int(math.Round(y)))
	e.screen.SetPointer(e.ClientToScreen(p))
}
