package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// cornerSegments is the number of line segments used per rounded corner.
const cornerSegments = 6

type fpoint struct{ X, Y float64 }

type frect struct{ MinX, MinY, MaxX, MaxY float64 }

func toFRect(r image.Rectangle) frect {
	return frect{float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)}
}

func (r frect) inset(d float64) frect {
	return frect{r.MinX + d, r.MinY + d, r.MaxX - d, r.MaxY - d}
}

func (r frect) width() float64  { return r.MaxX - r.MinX }
func (r frect) height() float64 { return r.MaxY - r.MinY }

// roundedRect flattens a rounded rectangle into a clockwise polygon.
func roundedRect(r frect, radius float64) []fpoint {
	radius = math.Min(radius, math.Min(r.width(), r.height())/2)
	if radius <= 0 {
		return []fpoint{{r.MinX, r.MinY}, {r.MaxX, r.MinY}, {r.MaxX, r.MaxY}, {r.MinX, r.MaxY}}
	}

	corners := []struct {
		cx, cy float64
		start  float64
	}{
		{r.MaxX - radius, r.MinY + radius, -math.Pi / 2}, // top right
		{r.MaxX - radius, r.MaxY - radius, 0},            // bottom right
		{r.MinX + radius, r.MaxY - radius, math.Pi / 2},  // bottom left
		{r.MinX + radius, r.MinY + radius, math.Pi},      // top left
	}

	pts := make([]fpoint, 0, 4*(cornerSegments+1))
	for _, c := range corners {
		for i := 0; i <= cornerSegments; i++ {
			a := c.start + float64(i)*(math.Pi/2)/cornerSegments
			pts = append(pts, fpoint{c.cx + radius*math.Cos(a), c.cy + radius*math.Sin(a)})
		}
	}
	return pts
}

// addPolygon appends a closed polygon to z, optionally in reverse order so it
// cancels coverage of an enclosing polygon.
func addPolygon(z *vector.Rasterizer, pts []fpoint, reverse bool) {
	n := len(pts)
	if n == 0 {
		return
	}
	at := func(i int) fpoint {
		if reverse {
			return pts[n-1-i]
		}
		return pts[i]
	}
	first := at(0)
	z.MoveTo(float32(first.X), float32(first.Y))
	for i := 1; i < n; i++ {
		p := at(i)
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// fillRoundedRect composites src over dst inside the rounded rectangle r.
func fillRoundedRect(dst *image.NRGBA, r frect, radius float64, src image.Image) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	addPolygon(z, roundedRect(r, radius), false)
	z.Draw(dst, b, src, image.Point{})
}

// strokeRoundedRect draws a one pixel outline just inside r.
func strokeRoundedRect(dst *image.NRGBA, r frect, radius float64, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	addPolygon(z, roundedRect(r, radius), false)
	addPolygon(z, roundedRect(r.inset(1), math.Max(radius-1, 0)), true)
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}
