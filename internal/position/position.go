// Package position resolves where a popup lands on screen.
//
// All functions are pure: they take the popup size, the primary display's
// working area and a policy-specific input, and return the top-left screen
// point. Only the right and bottom edges are corrected; left/top may end up
// negative when the popup is larger than the working area.
package position

import (
	"fmt"
	"image"
)

// Placement selects how a popup is positioned when its anchor is hovered.
type Placement int

const (
	// Auto places the popup below the anchor, avoiding its rectangle.
	Auto Placement = iota
	// MousePointer places the popup just below-right of the pointer glyph.
	MousePointer
	// CustomClient places the popup at a point in anchor coordinates.
	CustomClient
	// CustomScreen places the popup at a point in screen coordinates.
	CustomScreen
)

// AnchorGap is the vertical gap between an anchor's bottom edge and the popup.
const AnchorGap = 5

var placementNames = map[Placement]string{
	Auto:         "auto",
	MousePointer: "mouse-pointer",
	CustomClient: "custom-client",
	CustomScreen: "custom-screen",
}

// ValidPlacements returns all placements in declaration order.
func ValidPlacements() []Placement {
	return []Placement{Auto, MousePointer, CustomClient, CustomScreen}
}

// String returns the configuration name of the placement.
func (p Placement) String() string {
	if name, ok := placementNames[p]; ok {
		return name
	}
	return fmt.Sprintf("placement(%d)", int(p))
}

// ParsePlacement converts a configuration name into a Placement.
func ParsePlacement(s string) (Placement, error) {
	for p, name := range placementNames {
		if name == s {
			return p, nil
		}
	}
	return Auto, fmt.Errorf("invalid placement %q, must be one of: %v", s, ValidPlacements())
}

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Placement) UnmarshalText(text []byte) error {
	parsed, err := ParsePlacement(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// AtPointer positions a popup of the given size next to the mouse pointer.
// The pointer glyph size pushes the popup off the cursor. When the popup
// overflows the bottom edge it flips above the pointer, compensating for the
// glyph height; a right-edge overflow only shifts by the popup width.
func AtPointer(pointer, glyph, size image.Point, work image.Rectangle) image.Point {
	p := pointer.Add(glyph)
	if p.X+size.X > work.Max.X {
		p.X -= size.X
	}
	if p.Y+size.Y > work.Max.Y {
		p.Y -= size.Y + glyph.Y
	}
	return p
}

// AtPoint positions a popup at a screen point, flipping it left or up when
// it would overflow the working area.
func AtPoint(screen, size image.Point, work image.Rectangle) image.Point {
	p := screen
	if p.X+size.X > work.Max.X {
		p.X -= size.X
	}
	if p.Y+size.Y > work.Max.Y {
		p.Y -= size.Y
	}
	return p
}

// Avoiding positions a popup below anchor (in screen coordinates) so that it
// does not cover it. On overflow it right-aligns with the anchor or moves
// above it.
func Avoiding(anchor image.Rectangle, size image.Point, work image.Rectangle) image.Point {
	p := image.Pt(anchor.Min.X, anchor.Max.Y+AnchorGap)
	if p.X+size.X > work.Max.X {
		p.X -= size.X - anchor.Dx()
	}
	if p.Y+size.Y > work.Max.Y {
		p.Y -= size.Y + anchor.Dy() + 2*AnchorGap
	}
	return p
}
