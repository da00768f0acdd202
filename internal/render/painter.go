// Package render paints tooltip chrome into straight-alpha pixel buffers and
// implements the per-pixel alpha math used by the fade animation.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Margins added around the content size to get the window size.
var (
	ShadowMargin = image.Pt(10, 10)
	PlainMargin  = image.Pt(6, 6)
)

const (
	shadowOffset = 4
	shadowRadius = 4
	bodyRadius   = 2
	contentInset = 3
)

var (
	gradientTop    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gradientBottom = color.NRGBA{R: 201, G: 217, B: 239, A: 255}
	outline        = color.NRGBA{R: 118, G: 118, B: 118, A: 255}

	shadowColors = [4]uint8{0, 16, 32, 128}
)

// DrawFunc paints into dst within r.
type DrawFunc func(dst draw.Image, r image.Rectangle)

// Painter renders the static frame of a popup.
type Painter struct {
	Shadow              bool
	OwnerDrawBackground bool

	// Background paints the chrome when OwnerDrawBackground is set.
	Background DrawFunc
	// Content paints the popup body: a host callback or the default text
	// layout.
	Content DrawFunc
}

// WindowSize returns the window size needed for content of the given size.
func WindowSize(content image.Point, shadow bool) image.Point {
	if shadow {
		return content.Add(ShadowMargin)
	}
	return content.Add(PlainMargin)
}

// Paint draws background then content into dst.
func (p Painter) Paint(dst *image.NRGBA) {
	p.DrawBackground(dst)
	p.DrawContent(dst)
}

// DrawBackground clears dst and paints the chrome.
func (p Painter) DrawBackground(dst *image.NRGBA) {
	Clear(dst)
	size := dst.Bounds().Size()

	if p.OwnerDrawBackground {
		if p.Background != nil {
			p.Background(dst, image.Rect(0, 0, size.X-1, size.Y-1))
		}
		return
	}

	body := frect{0, 0, float64(size.X), float64(size.Y)}
	if p.Shadow {
		shadow := image.Rect(shadowOffset, shadowOffset, size.X, size.Y)
		fillRoundedRect(dst, toFRect(shadow), shadowRadius, shadowGradient(shadow))
		body = frect{0, 0, float64(size.X - shadowOffset), float64(size.Y - shadowOffset)}
	}

	fill := linearGradient{top: body.MinY, bottom: body.MaxY, from: gradientTop, to: gradientBottom}
	fillRoundedRect(dst, body, bodyRadius, fill)
	strokeRoundedRect(dst, body, bodyRadius, outline)
}

// DrawContent invokes the content callback with the content rectangle.
func (p Painter) DrawContent(dst *image.NRGBA) {
	if p.Content == nil {
		return
	}
	p.Content(dst, p.ContentRect(dst.Bounds().Size()))
}

// ContentRect returns the rectangle handed to the content callback for a
// window of the given size.
func (p Painter) ContentRect(size image.Point) image.Rectangle {
	switch {
	case p.OwnerDrawBackground:
		return image.Rect(0, 0, size.X-1, size.Y-1)
	case p.Shadow:
		return image.Rect(contentInset, contentInset, size.X-ShadowMargin.X+contentInset, size.Y-ShadowMargin.Y+contentInset)
	default:
		return image.Rect(contentInset, contentInset, size.X-PlainMargin.X+contentInset, size.Y-PlainMargin.Y+contentInset)
	}
}

// shadowGradient builds the drop shadow brush for the shadow rectangle r.
// The centre sits on the bottom edge's half-width for wide rectangles and on
// the trailing edge's half-height for tall ones.
func shadowGradient(r image.Rectangle) pathGradient {
	w, h := r.Dx(), r.Dy()

	var center image.Point
	switch {
	case w > h:
		center = image.Pt(r.Min.X+w/2, r.Max.Y-w/2)
	case w == h:
		center = image.Pt(r.Min.X+w/2, r.Min.Y+h/2)
	default:
		center = image.Pt(r.Max.X-h/2, r.Min.Y+h/2)
	}

	long := float64(max(w, h))
	positions := [4]float64{0, 4 / long, 8 / long, 1}
	stops := make([]gradientStop, len(positions))
	for i := range stops {
		stops[i] = gradientStop{pos: positions[i], color: color.NRGBA{A: shadowColors[i]}}
	}

	return pathGradient{
		center: fpoint{float64(center.X), float64(center.Y)},
		bounds: toFRect(r),
		stops:  stops,
	}
}
