package main

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tetratip/internal/overlay"
	"github.com/jmylchreest/tetratip/internal/tooltip"
)

var previewOpts struct {
	popupFlags
	width  int
	height int
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Try tooltips in a window",
	Long: `Open a window with a few hot spots. Hovering a hot spot shows its tooltip
with the configured placement, moving away fades it out and clicking hides it.

Works anywhere ebiten runs, without a layer-shell compositor.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewOpts.register(previewCmd)
	previewCmd.Flags().IntVar(&previewOpts.width, "width", 800,
		"Window width")
	previewCmd.Flags().IntVar(&previewOpts.height, "height", 600,
		"Window height")
}

func runPreview(cmd *cobra.Command, args []string) error {
	pc, err := previewOpts.popupConfig()
	if err != nil {
		return err
	}
	c, err := previewOpts.content()
	if err != nil {
		return err
	}

	game := overlay.NewGame(previewOpts.width, previewOpts.height)
	ctrl, err := tooltip.NewController(tooltip.Options{
		Config:     pc,
		Compositor: game.Compositor(),
		Clock:      game.Clock(),
		Screen:     game,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	for i, r := range previewRegions(previewOpts.width, previewOpts.height) {
		game.AddRegion(r)
		ctrl.SetTitle(r, c.Title)
		ctrl.SetText(r, fmt.Sprintf("%s\n(hot spot %d)", c.Text, i+1))
		ctrl.SetImage(r, c.Image)
	}

	ebiten.SetWindowTitle("tetratip preview")
	ebiten.SetWindowSize(previewOpts.width, previewOpts.height)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run preview: %w", err)
	}
	return nil
}

// previewRegions lays out hot spots near the corners and in the middle, so
// that every placement rule gets exercised.
func previewRegions(w, h int) []*overlay.Region {
	size := image.Pt(120, 32)
	at := func(x, y int) image.Rectangle {
		return image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x, y).Add(size)}
	}
	return []*overlay.Region{
		overlay.NewRegion("top-left", at(16, 16)),
		overlay.NewRegion("top-right", at(w-size.X-16, 16)),
		overlay.NewRegion("center", at((w-size.X)/2, (h-size.Y)/2)),
		overlay.NewRegion("bottom-left", at(16, h-size.Y-16)),
		overlay.NewRegion("bottom-right", at(w-size.X-16, h-size.Y-16)),
	}
}
