package render

import (
	"image"
	"image/color"
	"math"
)

// linearGradient is a vertical two-colour gradient spanning [top, bottom].
type linearGradient struct {
	top, bottom float64
	from, to    color.NRGBA
}

func (g linearGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g linearGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g linearGradient) At(_, y int) color.Color {
	span := g.bottom - g.top
	t := 0.0
	if span > 0 {
		t = (float64(y) + 0.5 - g.top) / span
	}
	return lerpNRGBA(g.from, g.to, clamp01(t))
}

// gradientStop is a colour at a relative position between a path boundary
// (0) and its centre point (1).
type gradientStop struct {
	pos   float64
	color color.NRGBA
}

// pathGradient shades a rectangle by how far a pixel lies from its boundary
// towards a centre point, measured along the ray from the centre.
type pathGradient struct {
	center fpoint
	bounds frect
	stops  []gradientStop
}

func (g pathGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g pathGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g pathGradient) At(x, y int) color.Color {
	return g.colorAt(g.position(float64(x)+0.5, float64(y)+0.5))
}

// position returns 0 on the boundary and 1 at the centre.
func (g pathGradient) position(px, py float64) float64 {
	dx, dy := px-g.center.X, py-g.center.Y
	if dx == 0 && dy == 0 {
		return 1
	}

	// Scale factor along (dx,dy) at which the ray leaves the rectangle.
	s := math.Inf(1)
	if dx > 0 {
		s = math.Min(s, (g.bounds.MaxX-g.center.X)/dx)
	} else if dx < 0 {
		s = math.Min(s, (g.bounds.MinX-g.center.X)/dx)
	}
	if dy > 0 {
		s = math.Min(s, (g.bounds.MaxY-g.center.Y)/dy)
	} else if dy < 0 {
		s = math.Min(s, (g.bounds.MinY-g.center.Y)/dy)
	}
	if s <= 0 || math.IsInf(s, 1) {
		return 0
	}
	return clamp01(1 - 1/s)
}

func (g pathGradient) colorAt(pos float64) color.NRGBA {
	stops := g.stops
	if pos <= stops[0].pos {
		return stops[0].color
	}
	for i := 1; i < len(stops); i++ {
		if pos <= stops[i].pos {
			lo, hi := stops[i-1], stops[i]
			span := hi.pos - lo.pos
			if span <= 0 {
				return hi.color
			}
			return lerpNRGBA(lo.color, hi.color, (pos-lo.pos)/span)
		}
	}
	return stops[len(stops)-1].color
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	l := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
