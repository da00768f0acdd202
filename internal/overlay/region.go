package overlay

import (
	"image"

	"github.com/jmylchreest/tetratip/internal/tooltip"
)

// Region is a rectangular hot spot in the overlay window. Window coordinates
// double as screen coordinates.
type Region struct {
	Label string
	Rect  image.Rectangle

	hooks *tooltip.Hooks
}

// NewRegion returns a region covering r.
func NewRegion(label string, r image.Rectangle) *Region {
	return &Region{Label: label, Rect: r}
}

func (r *Region) Attach(h *tooltip.Hooks) { r.hooks = h }

func (r *Region) Detach(h *tooltip.Hooks) {
	if r.hooks == h {
		r.hooks = nil
	}
}

// Hooked reports whether a controller has attached to the region.
func (r *Region) Hooked() bool { return r.hooks != nil }

func (r *Region) Anchor() image.Rectangle {
	return image.Rectangle{Max: r.Rect.Size()}
}

func (r *Region) ClientToScreen(p image.Point) image.Point { return p.Add(r.Rect.Min) }
func (r *Region) ScreenToClient(p image.Point) image.Point { return p.Sub(r.Rect.Min) }
func (r *Region) Owner() any                               { return nil }

func (r *Region) fire(pick func(*tooltip.Hooks) func(tooltip.Element)) {
	if r.hooks == nil {
		return
	}
	if fn := pick(r.hooks); fn != nil {
		fn(r)
	}
}
