package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// popupCSS clears every background GTK would draw behind the tooltip
// texture so that per-pixel alpha reaches the compositor.
const popupCSS = `
window.tetratip-popup,
window.tetratip-popup > picture {
	background: transparent;
	box-shadow: none;
	border: none;
	padding: 0;
	margin: 0;
}
`

// ApplyStyles installs the tooltip stylesheet on display, or on the default
// display if nil. It returns the provider so callers can extend it.
func ApplyStyles(display *gdk.Display, logger *slog.Logger) *gtk.CSSProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		logger.Warn("no display available, cannot apply tooltip styles")
		return nil
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(popupCSS)
	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
	logger.Debug("applied tooltip styles to display")
	return provider
}
