// Package overlay hosts tooltips inside an ebiten window. Popups become
// sprites composited over the game screen, which makes the fade visible on
// platforms without a layer-shell compositor.
package overlay

import (
	"errors"
	"image"
	"image/draw"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jmylchreest/tetratip/internal/popup"
)

var errSurfaceClosed = errors.New("overlay: surface closed")

// Compositor implements popup.Compositor with in-window sprites.
type Compositor struct {
	surfaces []*Surface
}

// NewCompositor returns an empty compositor.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Open implements popup.Compositor.
func (c *Compositor) Open(opts popup.SurfaceOptions) (popup.Surface, error) {
	if opts.Size.X <= 0 || opts.Size.Y <= 0 {
		return nil, errors.New("overlay: invalid surface size")
	}
	s := &Surface{
		compositor: c,
		size:       opts.Size,
		pos:        opts.Position,
		owner:      opts.Owner,
		pix:        make([]byte, 4*opts.Size.X*opts.Size.Y),
	}
	c.surfaces = append(c.surfaces, s)
	return s, nil
}

// Surfaces returns the open surfaces in stacking order.
func (c *Compositor) Surfaces() []*Surface {
	return slices.Clone(c.surfaces)
}

// Draw composites every visible surface onto screen.
func (c *Compositor) Draw(screen *ebiten.Image) {
	for _, s := range c.surfaces {
		s.draw(screen)
	}
}

func (c *Compositor) remove(s *Surface) {
	c.surfaces = slices.DeleteFunc(c.surfaces, func(other *Surface) bool { return other == s })
}

// Surface is a popup sprite. Pixels are kept premultiplied, which is the
// layout ebiten images use.
type Surface struct {
	compositor *Compositor
	size       image.Point
	pos        image.Point
	owner      any

	pix      []byte
	frames   int
	dirty    bool
	detached bool
	closed   bool

	img *ebiten.Image
}

func (s *Surface) Premultiplied() bool { return true }

func (s *Surface) Submit(frame image.Image, at image.Point) error {
	if s.closed {
		return errSurfaceClosed
	}
	dst := &image.RGBA{Pix: s.pix, Stride: 4 * s.size.X, Rect: image.Rectangle{Max: s.size}}
	draw.Draw(dst, dst.Rect, frame, frame.Bounds().Min, draw.Src)
	s.pos = at
	s.frames++
	s.dirty = true
	return nil
}

func (s *Surface) Detach() {
	s.detached = true
	s.owner = nil
}

func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.compositor.remove(s)
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	return nil
}

// Bounds returns the sprite's screen rectangle.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rectangle{Min: s.pos, Max: s.pos.Add(s.size)}
}

// Frames returns the number of frames submitted so far.
func (s *Surface) Frames() int { return s.frames }

// Pixel returns the premultiplied colour at p in surface coordinates.
func (s *Surface) Pixel(p image.Point) [4]uint8 {
	i := 4 * (p.Y*s.size.X + p.X)
	return [4]uint8(s.pix[i : i+4])
}

func (s *Surface) draw(screen *ebiten.Image) {
	if s.frames == 0 {
		return
	}
	if s.img == nil {
		s.img = ebiten.NewImage(s.size.X, s.size.Y)
		s.dirty = true
	}
	if s.dirty {
		s.img.WritePixels(s.pix)
		s.dirty = false
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(s.pos.X), float64(s.pos.Y))
	screen.DrawImage(s.img, op)
}
