package dbus

import (
	"fmt"
	"image"
	"os"

	// Decoders for the image-path hint
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/godbus/dbus/v5"
)

// Mode selects how a remote tooltip is positioned.
type Mode int

const (
	// ModePointer places the tooltip next to the mouse pointer.
	ModePointer Mode = iota
	// ModePoint places the tooltip at a screen point.
	ModePoint
	// ModeAvoid places the tooltip so that it does not cover a screen area.
	ModeAvoid
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModePointer:
		return "pointer"
	case ModePoint:
		return "point"
	case ModeAvoid:
		return "avoid"
	default:
		return "unknown"
	}
}

// ShowRequest is a tooltip requested over D-Bus.
type ShowRequest struct {
	Title string
	Text  string
	Hints map[string]dbus.Variant

	Mode Mode
	// Area is the screen point (ModePoint, Min only) or area to avoid
	// (ModeAvoid).
	Area image.Rectangle
}

// ImagePath extracts the image-path hint.
func (r *ShowRequest) ImagePath() string {
	if v, ok := r.Hints["image-path"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// Image loads the image named by the image-path hint. It returns nil without
// error when no hint is present.
func (r *ShowRequest) Image() (image.Image, error) {
	path := r.ImagePath()
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Handler shows and hides tooltips on behalf of the server. Implementations
// are called from the D-Bus goroutine.
type Handler interface {
	// Show displays a tooltip and returns its ID.
	Show(req *ShowRequest) (string, error)
	Hide()
}

// ServerInfo contains information about the tooltip server.
type ServerInfo struct {
	Name    string // "tetratipd"
	Vendor  string // "tetratip"
	Version string // Build version
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:    "tetratipd",
		Vendor:  "tetratip",
		Version: "0.0.1", // Will be replaced by build-time version
	}
}
