package main

import (
	"fmt"
	"image"
	"os"
	"time"

	// Decoders for --image
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tetratip/internal/content"
	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/position"
)

// popupFlags are the content and behaviour flags shared by the commands
// that show a popup.
type popupFlags struct {
	title     string
	text      string
	imagePath string

	interval  time.Duration
	autoClose time.Duration
	noShadow  bool
	noAuto    bool
	placement string
}

func (f *popupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "tetratip",
		"Tooltip title")
	cmd.Flags().StringVarP(&f.text, "text", "m", "A semi-transparent tooltip.",
		"Tooltip text")
	cmd.Flags().StringVarP(&f.imagePath, "image", "i", "",
		"Image shown left of the text (PNG, JPEG or GIF)")
	cmd.Flags().DurationVar(&f.interval, "interval", -1,
		"Fade animation interval, 0 disables fading (default: from config)")
	cmd.Flags().DurationVar(&f.autoClose, "auto-close", -1,
		"Auto-close delay (default: from config)")
	cmd.Flags().BoolVar(&f.noShadow, "no-shadow", false,
		"Draw the popup without a drop shadow")
	cmd.Flags().BoolVar(&f.noAuto, "no-auto-close", false,
		"Keep the popup until it is hidden")
	cmd.Flags().StringVar(&f.placement, "placement", "",
		"Placement: auto, mouse-pointer, custom-client, custom-screen (default: from config)")
}

// popupConfig applies the flags on top of the loaded configuration.
func (f *popupFlags) popupConfig() (popup.Config, error) {
	pc := cfg.Tooltip.PopupConfig()
	if f.interval >= 0 {
		if f.interval > time.Second {
			return pc, fmt.Errorf("--interval must not exceed 1s, got %s", f.interval)
		}
		pc.AnimationInterval = f.interval
	}
	if f.autoClose >= 0 {
		pc.AutoClose = f.autoClose
	}
	if f.noShadow {
		pc.ShowShadow = false
	}
	if f.noAuto {
		pc.EnableAutoClose = false
	}
	if f.placement != "" {
		p, err := position.ParsePlacement(f.placement)
		if err != nil {
			return pc, err
		}
		pc.Placement = p
	}
	return pc, nil
}

// content loads the tooltip content named by the flags.
func (f *popupFlags) content() (content.Content, error) {
	c := content.Content{Title: f.title, Text: f.text}
	if f.imagePath == "" {
		return c, nil
	}

	file, err := os.Open(f.imagePath)
	if err != nil {
		return c, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return c, fmt.Errorf("failed to decode image %s: %w", f.imagePath, err)
	}
	c.Image = img
	return c, nil
}
