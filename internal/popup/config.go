package popup

import (
	"image"
	"time"

	"github.com/jmylchreest/tetratip/internal/position"
	"github.com/jmylchreest/tetratip/internal/render"
)

// Config is the immutable snapshot of settings a Window is built from.
type Config struct {
	// AnimationInterval is the fade tick interval. Zero disables fading.
	AnimationInterval time.Duration
	// AutoClose is the delay after which the popup closes itself.
	AutoClose       time.Duration
	EnableAutoClose bool

	ShowShadow          bool
	OwnerDraw           bool
	OwnerDrawBackground bool

	Placement      position.Placement
	CustomLocation image.Point
}

// DefaultConfig returns the default popup settings.
func DefaultConfig() Config {
	return Config{
		AnimationInterval: 20 * time.Millisecond,
		AutoClose:         3 * time.Second,
		EnableAutoClose:   true,
		ShowShadow:        true,
		Placement:         position.Auto,
	}
}

// Animated reports whether the popup fades in and out.
func (c Config) Animated() bool {
	return c.AnimationInterval > 0
}

// WindowSize returns the window size for content of the given size.
func (c Config) WindowSize(content image.Point) image.Point {
	return render.WindowSize(content, c.ShowShadow)
}
