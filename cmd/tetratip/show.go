package main

import (
	"fmt"
	"image"
	"os"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tetratip/internal/display"
	"github.com/jmylchreest/tetratip/internal/tooltip"
)

const showAppID = "io.github.jmylchreest.tetratip.show"

var showOpts struct {
	popupFlags
	x, y int
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one tooltip on the desktop",
	Long: `Show a tooltip as a layer-shell overlay on a Wayland desktop and exit once
it has faded out.

Examples:
  # Show a tooltip in the middle of the screen
  tetratip show --title Build --text "All tests passed"

  # Show it at a screen position and keep it for 10 seconds
  tetratip show --x 40 --y 40 --auto-close 10s`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showOpts.register(showCmd)
	showCmd.Flags().IntVar(&showOpts.x, "x", -1,
		"Screen X position (default: centered)")
	showCmd.Flags().IntVar(&showOpts.y, "y", -1,
		"Screen Y position (default: centered)")
}

func runShow(cmd *cobra.Command, args []string) error {
	pc, err := showOpts.popupConfig()
	if err != nil {
		return err
	}
	if !pc.EnableAutoClose {
		return fmt.Errorf("a tooltip without auto-close would never exit")
	}
	c, err := showOpts.content()
	if err != nil {
		return err
	}

	app := adw.NewApplication(showAppID, 0)
	var showErr error

	app.ConnectActivate(func() {
		app.Hold()

		display.ApplyStyles(nil, logger)
		screen, err := display.NewScreen(cfg.Display.CursorSize)
		if err != nil {
			showErr = err
			app.Release()
			return
		}

		ctrl, err := tooltip.NewController(tooltip.Options{
			Config:     pc,
			Compositor: display.NewCompositor(&app.Application, cfg.Display.Namespace, screen, logger),
			Clock:      display.MainLoopClock{},
			Screen:     screen,
			Logger:     logger,
			OnClosed: func(id string) {
				logger.Debug("tooltip closed, exiting", "id", id)
				app.Release()
			},
		})
		if err != nil {
			showErr = err
			app.Release()
			return
		}

		spot := tooltip.NewSpot(image.Rectangle{Min: showPoint(screen.WorkArea())})
		ctrl.SetTitle(spot, c.Title)
		ctrl.SetText(spot, c.Text)
		ctrl.SetImage(spot, c.Image)

		if _, err := ctrl.ShowAt(spot, image.Point{}); err != nil {
			showErr = err
			app.Release()
		}
	})

	// GTK must not see cobra's flags
	if status := app.Run(os.Args[:1]); status != 0 {
		return fmt.Errorf("application exited with status %d", status)
	}
	return showErr
}

// showPoint returns the requested position, centering unset coordinates.
func showPoint(work image.Rectangle) image.Point {
	p := image.Pt(showOpts.x, showOpts.y)
	center := work.Min.Add(work.Size().Div(2))
	if p.X < 0 {
		p.X = center.X
	}
	if p.Y < 0 {
		p.Y = center.Y
	}
	return p
}
