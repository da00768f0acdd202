package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tetratip/internal/clock"
	"github.com/jmylchreest/tetratip/internal/content"
	"github.com/jmylchreest/tetratip/internal/display"
	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/tooltip"
)

var renderOpts struct {
	popupFlags
	outDir  string
	prefix  string
	alpha   int
	fadeOut bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the frames of a tooltip to PNG files",
	Long: `Render a tooltip without a display and write every frame of its fade-in
as a PNG file with straight (non-premultiplied) alpha.

Examples:
  # Write all fade-in frames to ./frames
  tetratip render --out frames

  # Write only the half transparent frame
  tetratip render --alpha 50 --title Save --text "Save the document"

  # Include the fade-out
  tetratip render --fade-out --no-shadow`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderOpts.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOpts.outDir, "out", "o", ".",
		"Output directory")
	renderCmd.Flags().StringVar(&renderOpts.prefix, "prefix", "tetratip",
		"File name prefix")
	renderCmd.Flags().IntVar(&renderOpts.alpha, "alpha", -1,
		"Only write frames at this opacity percentage")
	renderCmd.Flags().BoolVar(&renderOpts.fadeOut, "fade-out", false,
		"Also write the fade-out frames")
}

func runRender(cmd *cobra.Command, args []string) error {
	pc, err := renderOpts.popupConfig()
	if err != nil {
		return err
	}
	pc.EnableAutoClose = false
	c, err := renderOpts.content()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(renderOpts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	frames, err := renderFrames(pc, c, renderOpts.fadeOut)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	written := 0
	for i, f := range frames {
		if renderOpts.alpha >= 0 && f.alpha != renderOpts.alpha {
			continue
		}
		name := fmt.Sprintf("%s-%02d-a%03d.png", renderOpts.prefix, i, f.alpha)
		path := filepath.Join(renderOpts.outDir, name)
		size, err := writePNG(path, f.image)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%dx%d, %s)\n", path, f.image.Bounds().Dx(), f.image.Bounds().Dy(), humanize.Bytes(uint64(size)))
		written++
	}
	if written == 0 {
		return fmt.Errorf("no frame has opacity %d%%", renderOpts.alpha)
	}
	return nil
}

// renderArea is the virtual screen popups are placed on.
var renderArea = image.Rect(0, 0, 1920, 1080)

// renderedFrame is one submitted frame and the opacity it was shown at.
type renderedFrame struct {
	alpha int
	image *image.NRGBA
}

// renderFrames drives a popup on a manual clock and collects its frames.
func renderFrames(pc popup.Config, c content.Content, fadeOut bool) ([]renderedFrame, error) {
	sink := &frameSink{}
	clk := clock.NewManual()
	ctrl, err := tooltip.NewController(tooltip.Options{
		Config:     pc,
		Compositor: sink,
		Clock:      clk,
		Screen:     display.NewStaticScreen(renderArea, 0),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	spot := tooltip.NewSpot(image.Rectangle{Max: image.Pt(1, 1)})
	ctrl.SetTitle(spot, c.Title)
	ctrl.SetText(spot, c.Text)
	ctrl.SetImage(spot, c.Image)

	w, err := ctrl.ShowAt(spot, image.Point{})
	if errors.Is(err, tooltip.ErrNoContent) {
		return nil, errors.New("nothing to render: title, text and image are empty")
	}
	if err != nil {
		return nil, err
	}

	var frames []renderedFrame
	collect := func() {
		for len(frames) < len(sink.frames) {
			frames = append(frames, renderedFrame{alpha: w.Alpha(), image: sink.frames[len(frames)]})
		}
	}
	collect()
	for w.State() == popup.FadingIn && clk.Step() {
		collect()
	}

	if fadeOut {
		w.Close()
		for w.State() != popup.Closed && clk.Step() {
			collect()
		}
	}
	return frames, nil
}

func writePNG(path string, img image.Image) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return buf.Len(), nil
}

// frameSink is a headless compositor that keeps a copy of every frame.
type frameSink struct {
	frames []*image.NRGBA
	closed bool
}

func (s *frameSink) Open(popup.SurfaceOptions) (popup.Surface, error) { return s, nil }

func (s *frameSink) Premultiplied() bool { return false }

func (s *frameSink) Submit(frame image.Image, at image.Point) error {
	b := frame.Bounds()
	dst := image.NewNRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(dst, dst.Rect, frame, b.Min, draw.Src)
	s.frames = append(s.frames, dst)
	return nil
}

func (s *frameSink) Detach() {}

func (s *frameSink) Close() error {
	s.closed = true
	return nil
}

var _ popup.Compositor = (*frameSink)(nil)
