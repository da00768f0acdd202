// Package content lays out and draws the default tooltip body: an optional
// thumbnail on the left, a bold title and the text below it.
package content

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	padding   = 2
	gap       = 4
	lineGap   = 1
	maxImage  = 48
	titleSize = 12
	textSize  = 11
	dpi       = 72
)

var (
	titleColor = color.NRGBA{R: 30, G: 57, B: 91, A: 255}
	textColor  = color.NRGBA{R: 76, G: 76, B: 76, A: 255}
)

// Content is what a default tooltip shows.
type Content struct {
	Title string
	Text  string
	Image image.Image
}

// Present reports whether there is anything to show.
func (c Content) Present() bool {
	return c.Title != "" || c.Text != "" || c.Image != nil
}

// Layout measures and draws Content with the Go fonts.
type Layout struct {
	title font.Face
	text  font.Face
}

// NewLayout returns a Layout using Go Bold for titles and Go Regular for text.
// Faces that fail to load fall back to a fixed bitmap font.
func NewLayout() *Layout {
	return &Layout{
		title: loadFace(gobold.TTF, titleSize),
		text:  loadFace(goregular.TTF, textSize),
	}
}

func loadFace(ttf []byte, size float64) font.Face {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// Measure returns the content size needed to draw c.
func (l *Layout) Measure(c Content) image.Point {
	if !c.Present() {
		return image.Point{}
	}

	text := l.textBlock(c)
	img := thumbSize(c.Image)

	w := text.X
	h := text.Y
	if img != (image.Point{}) {
		w += img.X
		if text.X > 0 {
			w += gap
		}
		h = max(h, img.Y)
	}
	return image.Pt(w+2*padding, h+2*padding)
}

// Draw paints c into dst within r.
func (l *Layout) Draw(dst draw.Image, r image.Rectangle, c Content) {
	if !c.Present() {
		return
	}
	inner := r.Inset(padding)

	x := inner.Min.X
	if c.Image != nil {
		ts := thumbSize(c.Image)
		thumb := image.Rectangle{Min: inner.Min, Max: inner.Min.Add(ts)}.Intersect(inner)
		draw.CatmullRom.Scale(dst, thumb, c.Image, c.Image.Bounds(), draw.Over, nil)
		x += ts.X + gap
	}

	y := inner.Min.Y
	if c.Title != "" {
		y = l.drawLines(dst, l.title, titleColor, x, y, c.Title)
		if c.Text != "" {
			y += gap
		}
	}
	if c.Text != "" {
		l.drawLines(dst, l.text, textColor, x, y, c.Text)
	}
}

// textBlock returns the size of the title and text column.
func (l *Layout) textBlock(c Content) image.Point {
	var size image.Point
	if c.Title != "" {
		t := blockSize(l.title, c.Title)
		size.X = t.X
		size.Y = t.Y
	}
	if c.Text != "" {
		t := blockSize(l.text, c.Text)
		size.X = max(size.X, t.X)
		if size.Y > 0 {
			size.Y += gap
		}
		size.Y += t.Y
	}
	return size
}

func (l *Layout) drawLines(dst draw.Image, face font.Face, c color.Color, x, y int, s string) int {
	m := face.Metrics()
	lineHeight := m.Height.Ceil()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			y += lineGap
		}
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + m.Ascent}
		d.DrawString(line)
		y += lineHeight
	}
	return y
}

// blockSize measures s, one line per newline.
func blockSize(face font.Face, s string) image.Point {
	lines := strings.Split(s, "\n")
	lineHeight := face.Metrics().Height.Ceil()

	w := 0
	for _, line := range lines {
		w = max(w, font.MeasureString(face, line).Ceil())
	}
	h := len(lines)*lineHeight + (len(lines)-1)*lineGap
	return image.Pt(w, h)
}

// thumbSize fits img inside maxImage×maxImage keeping its aspect ratio.
func thumbSize(img image.Image) image.Point {
	if img == nil {
		return image.Point{}
	}
	s := img.Bounds().Size()
	if s.X <= 0 || s.Y <= 0 {
		return image.Point{}
	}
	if s.X <= maxImage && s.Y <= maxImage {
		return s
	}
	if s.X >= s.Y {
		return image.Pt(maxImage, max(1, s.Y*maxImage/s.X))
	}
	return image.Pt(max(1, s.X*maxImage/s.Y), maxImage)
}
