package popup

import "image"

// SurfaceOptions describes the native window to open.
type SurfaceOptions struct {
	Size     image.Point
	Position image.Point
	// Owner is the host object the surface is attached to, if any.
	Owner any
}

// Compositor opens native per-pixel-alpha surfaces.
type Compositor interface {
	Open(opts SurfaceOptions) (Surface, error)
}

// Surface is a native window that displays whole frames.
type Surface interface {
	// Premultiplied reports whether Submit expects premultiplied colour.
	Premultiplied() bool
	// Submit displays frame at the given screen position. frame is only
	// valid for the duration of the call.
	Submit(frame image.Image, at image.Point) error
	// Detach unlinks the surface from its owner.
	Detach()
	// Close releases the native handle.
	Close() error
}
