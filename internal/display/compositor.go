package display

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"

	"github.com/jmylchreest/tetratip/internal/popup"
)

// popupCSSClass marks tooltip windows for the transparent stylesheet.
const popupCSSClass = "tetratip-popup"

// Compositor opens tooltip surfaces as layer-shell overlay windows.
// It must be used from the GTK main thread.
type Compositor struct {
	app       *gtk.Application
	namespace string
	screen    *Screen
	logger    *slog.Logger
}

// NewCompositor creates a compositor for app. Popup positions are given in
// screen coordinates and translated to margins relative to screen's monitor.
func NewCompositor(app *gtk.Application, namespace string, screen *Screen, logger *slog.Logger) *Compositor {
	if logger == nil {
		logger = slog.Default()
	}
	if namespace == "" {
		namespace = "tetratip"
	}
	return &Compositor{
		app:       app,
		namespace: namespace,
		screen:    screen,
		logger:    logger,
	}
}

// Open implements popup.Compositor.
func (c *Compositor) Open(opts popup.SurfaceOptions) (popup.Surface, error) {
	if opts.Size.X <= 0 || opts.Size.Y <= 0 {
		return nil, &DisplayError{Message: "invalid popup size"}
	}
	if !layershell.IsSupported() {
		return nil, &DisplayError{Message: "compositor does not support layer-shell"}
	}

	s := &surface{
		window:  gtk.NewWindow(),
		picture: gtk.NewPicture(),
		origin:  c.origin(),
		logger:  c.logger,
	}
	if c.app != nil {
		s.window.SetApplication(c.app)
	}
	s.window.SetDecorated(false)
	s.window.SetResizable(false)
	s.window.SetCanFocus(false)
	s.window.SetDefaultSize(opts.Size.X, opts.Size.Y)
	s.window.SetSizeRequest(opts.Size.X, opts.Size.Y)
	s.window.AddCSSClass(popupCSSClass)

	if owner, ok := opts.Owner.(*gtk.Window); ok && owner != nil {
		s.window.SetTransientFor(owner)
		s.owned = true
	}

	layershell.InitForWindow(s.window)
	layershell.SetLayer(s.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(s.window, -1)
	layershell.SetKeyboardMode(s.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(s.window, c.namespace)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, true)

	s.picture.SetCanShrink(false)
	s.picture.SetCanTarget(false)
	s.window.SetChild(s.picture)
	s.move(opts.Position)

	return s, nil
}

func (c *Compositor) origin() image.Point {
	if c.screen == nil {
		return image.Point{}
	}
	return c.screen.WorkArea().Min
}

// surface is one tooltip window. Frames are uploaded as premultiplied
// RGBA memory textures.
type surface struct {
	window  *gtk.Window
	picture *gtk.Picture
	origin  image.Point
	logger  *slog.Logger

	pos     image.Point
	shown   bool
	owned   bool
	closed  bool
	scratch *image.RGBA
}

func (s *surface) Premultiplied() bool { return true }

func (s *surface) Submit(frame image.Image, at image.Point) error {
	if s.closed {
		return &DisplayError{Message: "surface closed"}
	}

	rgba := s.rgba(frame)
	b := rgba.Bounds()
	bytes := glib.NewBytes(rgba.Pix)
	texture := gdk.NewMemoryTexture(b.Dx(), b.Dy(), gdk.MemoryR8G8B8A8Premultiplied, bytes, uint(rgba.Stride))
	s.picture.SetPaintable(texture)

	if at != s.pos {
		s.move(at)
	}
	if !s.shown {
		s.window.Present()
		s.shown = true
	}
	return nil
}

// rgba returns frame as tightly packed RGBA starting at the origin.
func (s *surface) rgba(frame image.Image) *image.RGBA {
	if rgba, ok := frame.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := frame.Bounds()
	if s.scratch == nil || s.scratch.Rect.Size() != b.Size() {
		s.scratch = image.NewRGBA(image.Rectangle{Max: b.Size()})
	}
	draw.Draw(s.scratch, s.scratch.Rect, frame, b.Min, draw.Src)
	return s.scratch
}

func (s *surface) move(at image.Point) {
	s.pos = at
	margin := at.Sub(s.origin)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, margin.X)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, margin.Y)
}

func (s *surface) Detach() {
	if s.owned {
		s.window.SetTransientFor(nil)
		s.owned = false
	}
}

func (s *surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.picture.SetPaintable(nil)
	s.window.Destroy()
	s.scratch = nil
	return nil
}
