package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tetratip/internal/config"
	"github.com/jmylchreest/tetratip/internal/content"
	"github.com/jmylchreest/tetratip/internal/popup"
)

func TestRenderFrames_FadeIn(t *testing.T) {
	pc := popup.DefaultConfig()
	pc.EnableAutoClose = false

	frames, err := renderFrames(pc, content.Content{Title: "Title", Text: "Text"}, false)
	require.NoError(t, err)
	require.Len(t, frames, 11)

	for i, f := range frames {
		assert.Equal(t, i*10, f.alpha)
	}
	assert.Equal(t, frames[0].image.Bounds(), frames[10].image.Bounds())

	// The body is opaque at full alpha and invisible at zero
	sampleAt := image.Pt(20, 10)
	assert.Equal(t, uint8(0), frames[0].image.NRGBAAt(sampleAt.X, sampleAt.Y).A)
	assert.Equal(t, uint8(255), frames[10].image.NRGBAAt(sampleAt.X, sampleAt.Y).A)
}

func TestRenderFrames_FadeOut(t *testing.T) {
	pc := popup.DefaultConfig()
	pc.EnableAutoClose = false

	frames, err := renderFrames(pc, content.Content{Text: "Text"}, true)
	require.NoError(t, err)
	require.Len(t, frames, 21)
	assert.Equal(t, 100, frames[10].alpha)
	assert.Equal(t, 0, frames[20].alpha)
}

func TestRenderFrames_NoAnimation(t *testing.T) {
	pc := popup.DefaultConfig()
	pc.AnimationInterval = 0

	frames, err := renderFrames(pc, content.Content{Text: "Text"}, false)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 100, frames[0].alpha)
}

func TestRenderFrames_Empty(t *testing.T) {
	_, err := renderFrames(popup.DefaultConfig(), content.Content{}, false)
	assert.Error(t, err)
}

func TestPopupFlags(t *testing.T) {
	cfg = config.Default()
	t.Cleanup(func() { cfg = nil })

	var f popupFlags
	cmd := &cobra.Command{}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--interval", "0", "--no-shadow", "--placement", "mouse-pointer"}))

	pc, err := f.popupConfig()
	require.NoError(t, err)
	assert.False(t, pc.Animated())
	assert.False(t, pc.ShowShadow)
	assert.Equal(t, 3*time.Second, pc.AutoClose)
	assert.Equal(t, "mouse-pointer", pc.Placement.String())

	require.NoError(t, cmd.ParseFlags([]string{"--placement", "diagonal"}))
	_, err = f.popupConfig()
	assert.Error(t, err)
}

func TestPopupFlags_Image(t *testing.T) {
	f := popupFlags{imagePath: filepath.Join(t.TempDir(), "missing.png")}
	_, err := f.content()
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("nope"), 0644))
	f.imagePath = garbage
	_, err = f.content()
	assert.ErrorContains(t, err, "decode")
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	n, err := writePNG(path, image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(n), info.Size())
}
