package tooltip

import "image"

// Element is a host UI object a tooltip can be associated with.
// Implementations must be comparable (typically pointers): the controller
// keys its tables by Element.
type Element interface {
	// Attach installs the hover and press hooks.
	Attach(h *Hooks)
	// Detach removes hooks installed by Attach. Detaching hooks that were
	// never attached is a no-op.
	Detach(h *Hooks)
	// Anchor returns the area, in client coordinates, that an automatically
	// placed tooltip must not cover. Items inside a larger widget report
	// their own bounds.
	Anchor() image.Rectangle
	ClientToScreen(p image.Point) image.Point
	ScreenToClient(p image.Point) image.Point
	// Owner returns the host window the popup is attached to, or nil.
	Owner() any
}

// Hooks are the element events the controller reacts to.
type Hooks struct {
	Enter func(Element)
	Leave func(Element)
	Press func(Element)
}

// Screen reports the state of the primary display.
type Screen interface {
	// WorkArea is the display bounds minus reserved system UI.
	WorkArea() image.Rectangle
	// Pointer is the mouse pointer position in screen coordinates.
	Pointer() image.Point
	// CursorSize is the size of the pointer glyph.
	CursorSize() image.Point
}

// Spot is an Element fixed at a screen point. It has no events of its own
// and is used to show tooltips on behalf of remote clients.
type Spot struct {
	Origin image.Point
	Size   image.Point
}

// NewSpot returns a Spot covering the given screen rectangle.
func NewSpot(r image.Rectangle) *Spot {
	return &Spot{Origin: r.Min, Size: r.Size()}
}

func (s *Spot) Attach(*Hooks) {}
func (s *Spot) Detach(*Hooks) {}

func (s *Spot) Anchor() image.Rectangle {
	return image.Rectangle{Max: s.Size}
}

func (s *Spot) ClientToScreen(p image.Point) image.Point { return p.Add(s.Origin) }
func (s *Spot) ScreenToClient(p image.Point) image.Point { return p.Sub(s.Origin) }
func (s *Spot) Owner() any                               { return nil }
