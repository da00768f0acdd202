package display

import (
	"image"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// DefaultCursorSize is used when neither the config nor GTK name a size.
const DefaultCursorSize = 24

// Screen reports the work area of the primary monitor and the last pointer
// position seen by any adapted element.
type Screen struct {
	work       image.Rectangle
	pointer    image.Point
	cursorSize int
}

// NewScreen queries the default display. A cursorSize of 0 asks GTK for the
// cursor theme size.
func NewScreen(cursorSize int) (*Screen, error) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &DisplayError{Message: "no display available"}
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil, &DisplayError{Message: "no monitors available"}
	}
	monitor, ok := monitors.Item(0).Cast().(*gdk.Monitor)
	if !ok {
		return nil, &DisplayError{Message: "unexpected monitor type"}
	}
	g := monitor.Geometry()

	if cursorSize <= 0 {
		cursorSize = themeCursorSize()
	}
	return &Screen{
		work:       image.Rect(g.X(), g.Y(), g.X()+g.Width(), g.Y()+g.Height()),
		cursorSize: cursorSize,
	}, nil
}

// NewStaticScreen returns a screen with a fixed work area. It is used when no
// GTK display is available, such as when rendering previews.
func NewStaticScreen(work image.Rectangle, cursorSize int) *Screen {
	if cursorSize <= 0 {
		cursorSize = DefaultCursorSize
	}
	return &Screen{work: work, pointer: work.Min, cursorSize: cursorSize}
}

func (s *Screen) WorkArea() image.Rectangle { return s.work }

func (s *Screen) Pointer() image.Point { return s.pointer }

func (s *Screen) CursorSize() image.Point { return image.Pt(s.cursorSize, s.cursorSize) }

// SetPointer records the pointer position in screen coordinates.
func (s *Screen) SetPointer(p image.Point) { s.pointer = p }

func themeCursorSize() int {
	if settings := gtk.SettingsGetDefault(); settings != nil {
		if size, ok := settings.ObjectProperty("gtk-cursor-theme-size").(int); ok && size > 0 {
			return size
		}
	}
	return DefaultCursorSize
}
