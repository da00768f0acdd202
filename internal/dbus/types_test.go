package dbus

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModePointer, "pointer"},
		{ModePoint, "point"},
		{ModeAvoid, "avoid"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
}

func TestShowRequest_ImagePath(t *testing.T) {
	req := &ShowRequest{Hints: map[string]dbus.Variant{
		"image-path": dbus.MakeVariant("/tmp/icon.png"),
	}}
	assert.Equal(t, "/tmp/icon.png", req.ImagePath())

	req = &ShowRequest{Hints: map[string]dbus.Variant{
		"image-path": dbus.MakeVariant(int32(4)),
	}}
	assert.Empty(t, req.ImagePath())

	assert.Empty(t, (&ShowRequest{}).ImagePath())
}

func TestShowRequest_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.NRGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	req := &ShowRequest{Hints: map[string]dbus.Variant{"image-path": dbus.MakeVariant(path)}}
	img, err := req.Image()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	r, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestShowRequest_ImageErrors(t *testing.T) {
	img, err := (&ShowRequest{}).Image()
	assert.NoError(t, err)
	assert.Nil(t, img)

	req := &ShowRequest{Hints: map[string]dbus.Variant{
		"image-path": dbus.MakeVariant(filepath.Join(t.TempDir(), "missing.png")),
	}}
	_, err = req.Image()
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	req.Hints["image-path"] = dbus.MakeVariant(garbage)
	_, err = req.Image()
	assert.ErrorContains(t, err, "decode")
}

type fakeHandler struct {
	requests []*ShowRequest
	hides    int
	err      error
}

func (h *fakeHandler) Show(req *ShowRequest) (string, error) {
	h.requests = append(h.requests, req)
	if h.err != nil {
		return "", h.err
	}
	return "01TIP", nil
}

func (h *fakeHandler) Hide() { h.hides++ }

func TestTooltipServer_Methods(t *testing.T) {
	h := &fakeHandler{}
	s := NewTooltipServer("test.Tetratip", h, nil)

	id, derr := s.Show("Title", "Body", nil)
	require.Nil(t, derr)
	assert.Equal(t, "01TIP", id)

	_, derr = s.ShowAt("", "at", 10, 20, nil)
	require.Nil(t, derr)

	_, derr = s.ShowAvoiding("", "avoid", 10, 20, 30, 40, nil)
	require.Nil(t, derr)

	require.Len(t, h.requests, 3)
	assert.Equal(t, ModePointer, h.requests[0].Mode)
	assert.Equal(t, "Title", h.requests[0].Title)
	assert.Equal(t, "Body", h.requests[0].Text)

	assert.Equal(t, ModePoint, h.requests[1].Mode)
	assert.Equal(t, image.Pt(10, 20), h.requests[1].Area.Min)

	assert.Equal(t, ModeAvoid, h.requests[2].Mode)
	assert.Equal(t, image.Rect(10, 20, 40, 60), h.requests[2].Area)

	assert.Nil(t, s.Hide())
	assert.Equal(t, 1, h.hides)
}

func TestTooltipServer_Errors(t *testing.T) {
	h := &fakeHandler{err: errors.New("no display")}
	s := NewTooltipServer("test.Tetratip", h, nil)

	_, derr := s.Show("", "text", nil)
	require.NotNil(t, derr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", derr.Name)

	_, derr = s.ShowAvoiding("", "text", 0, 0, -1, 5, nil)
	require.NotNil(t, derr)
	assert.Len(t, h.requests, 1, "negative size rejected before the handler")

	s = NewTooltipServer("test.Tetratip", nil, nil)
	_, derr = s.Show("", "text", nil)
	assert.NotNil(t, derr)
	assert.Nil(t, s.Hide())
}

func TestTooltipServer_ServerInformation(t *testing.T) {
	s := NewTooltipServer("test.Tetratip", nil, nil)
	name, vendor, version, derr := s.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, "tetratipd", name)
	assert.Equal(t, "tetratip", vendor)
	assert.NotEmpty(t, version)

	s.SetServerInfo(ServerInfo{Name: "n", Vendor: "v", Version: "1.2.3"})
	_, _, version, _ = s.GetServerInformation()
	assert.Equal(t, "1.2.3", version)
}

func TestTooltipServer_NotConnected(t *testing.T) {
	s := NewTooltipServer("test.Tetratip", nil, nil)
	assert.Error(t, s.EmitPopupClosed("01TIP"))
	assert.NoError(t, s.Stop())
}
