package tooltip

import (
	"image"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tetratip/internal/clock"
	"github.com/jmylchreest/tetratip/internal/content"
	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/position"
)

type fakeElement struct {
	origin   image.Point
	anchor   image.Rectangle
	owner    any
	hooks    *Hooks
	attaches int
	detaches int
}

func (e *fakeElement) Attach(h *Hooks) { e.attaches++; e.hooks = h }
func (e *fakeElement) Detach(*Hooks)   { e.detaches++; e.hooks = nil }

func (e *fakeElement) Anchor() image.Rectangle                  { return e.anchor }
func (e *fakeElement) ClientToScreen(p image.Point) image.Point { return p.Add(e.origin) }
func (e *fakeElement) ScreenToClient(p image.Point) image.Point { return p.Sub(e.origin) }
func (e *fakeElement) Owner() any                               { return e.owner }

type fakeScreen struct {
	work    image.Rectangle
	pointer image.Point
	cursor  image.Point
}

func (s *fakeScreen) WorkArea() image.Rectangle { return s.work }
func (s *fakeScreen) Pointer() image.Point      { return s.pointer }
func (s *fakeScreen) CursorSize() image.Point   { return s.cursor }

type fakeSurface struct {
	opts     popup.SurfaceOptions
	submits  int
	detached int
	closed   int
}

func (s *fakeSurface) Premultiplied() bool                  { return false }
func (s *fakeSurface) Submit(image.Image, image.Point) error { s.submits++; return nil }
func (s *fakeSurface) Detach()                              { s.detached++ }
func (s *fakeSurface) Close() error                         { s.closed++; return nil }

type fakeCompositor struct {
	surfaces []*fakeSurface
}

func (c *fakeCompositor) Open(opts popup.SurfaceOptions) (popup.Surface, error) {
	s := &fakeSurface{opts: opts}
	c.surfaces = append(c.surfaces, s)
	return s, nil
}

func (c *fakeCompositor) last() *fakeSurface {
	return c.surfaces[len(c.surfaces)-1]
}

type countingService struct {
	measured int
	drawn    int
	size     image.Point
}

func (s *countingService) Measure(content.Content) image.Point { s.measured++; return s.size }
func (s *countingService) Draw(draw.Image, image.Rectangle, content.Content) {
	s.drawn++
}

type harness struct {
	ctrl    *Controller
	comp    *fakeCompositor
	clock   *clock.Manual
	screen  *fakeScreen
	service *countingService
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		comp:    &fakeCompositor{},
		clock:   clock.NewManual(),
		screen:  &fakeScreen{work: image.Rect(0, 0, 1920, 1080), pointer: image.Pt(300, 300), cursor: image.Pt(16, 16)},
		service: &countingService{size: image.Pt(100, 60)},
	}
	opts := Options{
		Config:     popup.DefaultConfig(),
		Compositor: h.comp,
		Clock:      h.clock,
		Screen:     h.screen,
		Content:    h.service,
	}
	if mutate != nil {
		mutate(&opts)
	}
	ctrl, err := NewController(opts)
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

func TestNewController_Requires(t *testing.T) {
	_, err := NewController(Options{Clock: clock.NewManual(), Screen: &fakeScreen{}})
	assert.Error(t, err)
	_, err = NewController(Options{Compositor: &fakeCompositor{}, Screen: &fakeScreen{}})
	assert.Error(t, err)
	_, err = NewController(Options{Compositor: &fakeCompositor{}, Clock: clock.NewManual()})
	assert.Error(t, err)
}

func TestController_ShowTwiceKeepsOnePopup(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	h.ctrl.SetText(e, "hello")

	first, err := h.ctrl.Show(e)
	require.NoError(t, err)
	h.clock.Advance(60 * time.Millisecond)

	second, err := h.ctrl.Show(e)
	require.NoError(t, err)

	assert.Same(t, second, h.ctrl.Active())
	assert.Equal(t, popup.Closed, first.State())
	assert.Equal(t, 1, h.comp.surfaces[0].closed)
	assert.Equal(t, 1, h.comp.surfaces[0].detached)
	assert.Equal(t, 0, h.comp.surfaces[1].closed)
	assert.Equal(t, 2, h.clock.Pending(), "fade and auto-close of the live popup only")
}

func TestController_HideWithoutPopup(t *testing.T) {
	h := newHarness(t, nil)
	assert.NotPanics(t, h.ctrl.Hide)
	assert.Nil(t, h.ctrl.Active())
}

func TestController_HideFadesOut(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	h.ctrl.SetText(e, "hello")

	w, err := h.ctrl.Show(e)
	require.NoError(t, err)
	h.clock.Advance(time.Second)

	h.ctrl.Hide()
	assert.Equal(t, popup.FadingOut, w.State())

	h.clock.Advance(time.Second)
	assert.Equal(t, popup.Closed, w.State())
	assert.Nil(t, h.ctrl.Active())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestController_OwnerDrawSize(t *testing.T) {
	var drawn *DrawEvent
	h := newHarness(t, func(o *Options) {
		o.Config.OwnerDraw = true
		o.OnPopup = func(ev *PopupEvent) { ev.Size = image.Pt(200, 40) }
		o.OnDraw = func(ev *DrawEvent) { drawn = ev }
	})
	e := &fakeElement{}

	w, err := h.ctrl.Show(e)
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.Equal(t, image.Pt(210, 50), h.comp.last().opts.Size)
	assert.Equal(t, 0, h.service.measured)
	assert.Equal(t, 0, h.service.drawn)
	require.NotNil(t, drawn)
	assert.Same(t, e, drawn.Element)
	assert.Equal(t, image.Rect(3, 3, 203, 43), drawn.Rect)
}

func TestController_OwnerDrawWithoutDrawHookFallsBack(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Config.OwnerDraw = true
		o.OnPopup = func(ev *PopupEvent) { ev.Size = image.Pt(50, 20) }
	})

	_, err := h.ctrl.Show(&fakeElement{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.service.measured)
	assert.Equal(t, 1, h.service.drawn)
}

func TestController_OwnerDrawBackground(t *testing.T) {
	var bg, fg image.Rectangle
	h := newHarness(t, func(o *Options) {
		o.Config.OwnerDrawBackground = true
		o.OnPopup = func(ev *PopupEvent) { ev.Size = image.Pt(90, 30) }
		o.OnDrawBackground = func(ev *DrawEvent) { bg = ev.Rect }
		o.OnDraw = func(ev *DrawEvent) { fg = ev.Rect }
	})

	_, err := h.ctrl.Show(&fakeElement{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 99, 39), bg)
	assert.Equal(t, image.Rect(0, 0, 99, 39), fg)
	assert.Equal(t, 0, h.service.measured)
}

func TestController_DefaultContentMeasured(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	h.ctrl.SetText(e, "hello")

	_, err := h.ctrl.Show(e)
	require.NoError(t, err)
	assert.Equal(t, 1, h.service.measured)
	assert.Equal(t, 1, h.service.drawn)
	assert.Equal(t, image.Pt(110, 70), h.comp.last().opts.Size)
}

func TestController_ShowWithoutContent(t *testing.T) {
	h := newHarness(t, nil)

	w, err := h.ctrl.Show(&fakeElement{})
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Nil(t, w)
	assert.Empty(t, h.comp.surfaces)
	assert.Equal(t, 0, h.service.measured)
}

func TestController_ShowWithoutContentKeepsLivePopup(t *testing.T) {
	h := newHarness(t, nil)
	a := &fakeElement{}
	b := &fakeElement{}
	h.ctrl.SetText(a, "hello")

	first, err := h.ctrl.Show(a)
	require.NoError(t, err)

	w, err := h.ctrl.ShowAt(b, image.Point{})
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Nil(t, w)

	require.Len(t, h.comp.surfaces, 1)
	assert.Equal(t, 0, h.comp.surfaces[0].closed)
	assert.Same(t, first, h.ctrl.Active())
	assert.NotEqual(t, popup.Closed, first.State())

	// Leaving b must not hide a's popup
	h.ctrl.leave(b)
	assert.NotEqual(t, popup.FadingOut, first.State())
}

func TestController_NilElement(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.ctrl.Show(nil)
	assert.ErrorIs(t, err, ErrNilElement)
	_, err = h.ctrl.ShowAt(nil, image.Point{})
	assert.ErrorIs(t, err, ErrNilElement)
	_, err = h.ctrl.ShowAvoiding(nil, image.Rectangle{})
	assert.ErrorIs(t, err, ErrNilElement)
	assert.NotPanics(t, func() { h.ctrl.SetText(nil, "x") })
}

func TestController_HooksAttachOnce(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	h.ctrl.SetText(e, "text")
	assert.Equal(t, 1, e.attaches)

	h.ctrl.SetTitle(e, "title")
	h.ctrl.SetImage(e, img)
	h.ctrl.SetText(e, "other text")
	assert.Equal(t, 1, e.attaches)
	assert.Equal(t, 0, e.detaches)

	h.ctrl.SetText(e, "")
	h.ctrl.SetTitle(e, "")
	assert.Equal(t, 0, e.detaches, "image keeps the association")
	assert.Same(t, img, h.ctrl.Image(e))

	h.ctrl.SetImage(e, nil)
	assert.Equal(t, 1, e.detaches)

	h.ctrl.SetTitle(e, "")
	h.ctrl.SetImage(e, nil)
	assert.Equal(t, 1, e.detaches, "removing a missing association does not detach again")

	h.ctrl.SetTitle(e, "again")
	assert.Equal(t, 2, e.attaches)
	assert.Equal(t, "again", h.ctrl.Title(e))
	assert.Equal(t, "", h.ctrl.Text(e))
}

func TestController_LeaveOnlyTracked(t *testing.T) {
	h := newHarness(t, nil)
	a := &fakeElement{anchor: image.Rect(0, 0, 50, 20)}
	b := &fakeElement{anchor: image.Rect(0, 0, 50, 20)}
	h.ctrl.SetText(a, "a")
	h.ctrl.SetText(b, "b")

	a.hooks.Enter(a)
	w := h.ctrl.Active()
	require.NotNil(t, w)

	b.hooks.Leave(b)
	assert.Equal(t, popup.FadingIn, w.State())

	a.hooks.Leave(a)
	assert.Equal(t, popup.FadingOut, w.State())
}

func TestController_PressHides(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	h.ctrl.SetText(e, "e")

	e.hooks.Enter(e)
	w := h.ctrl.Active()
	require.NotNil(t, w)
	h.clock.Advance(time.Second)

	e.hooks.Press(e)
	assert.Equal(t, popup.FadingOut, w.State())
}

func TestController_EnterPlacement(t *testing.T) {
	tests := []struct {
		name      string
		placement position.Placement
		custom    image.Point
		want      image.Point
	}{
		{"auto avoids anchor", position.Auto, image.Point{}, image.Pt(100, 125)},
		{"mouse pointer", position.MousePointer, image.Point{}, image.Pt(316, 316)},
		{"custom client", position.CustomClient, image.Pt(10, 20), image.Pt(110, 120)},
		{"custom screen", position.CustomScreen, image.Pt(500, 400), image.Pt(500, 400)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(o *Options) {
				o.Config.Placement = tt.placement
				o.Config.CustomLocation = tt.custom
			})
			e := &fakeElement{origin: image.Pt(100, 100), anchor: image.Rect(0, 0, 50, 20)}
			h.ctrl.SetText(e, "hello")

			e.hooks.Enter(e)
			require.NotEmpty(t, h.comp.surfaces)
			assert.Equal(t, tt.want, h.comp.last().opts.Position)
		})
	}
}

func TestController_PopupOwner(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{owner: "element-window"}
	h.ctrl.SetText(e, "x")

	_, err := h.ctrl.Show(e)
	require.NoError(t, err)
	assert.Equal(t, "element-window", h.comp.last().opts.Owner)

	h = newHarness(t, func(o *Options) { o.Owner = "controller-window" })
	h.ctrl.SetText(e, "x")
	_, err = h.ctrl.Show(e)
	require.NoError(t, err)
	assert.Equal(t, "controller-window", h.comp.last().opts.Owner)
}

func TestController_SetConfigAffectsNextPopupOnly(t *testing.T) {
	h := newHarness(t, nil)
	e := &fakeElement{}
	h.ctrl.SetText(e, "x")

	w, err := h.ctrl.Show(e)
	require.NoError(t, err)

	cfg := h.ctrl.Config()
	cfg.ShowShadow = false
	h.ctrl.SetConfig(cfg)
	assert.True(t, w.Config().ShowShadow)

	_, err = h.ctrl.Show(e)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(106, 66), h.comp.last().opts.Size)
}

func TestController_OnClosed(t *testing.T) {
	var ids []string
	h := newHarness(t, func(o *Options) { o.OnClosed = func(id string) { ids = append(ids, id) } })
	e := &fakeElement{}
	h.ctrl.SetText(e, "x")

	w, err := h.ctrl.Show(e)
	require.NoError(t, err)
	h.clock.Advance(4 * time.Second)

	assert.Equal(t, []string{w.ID()}, ids)
}

func TestController_Close(t *testing.T) {
	h := newHarness(t, nil)
	a, b := &fakeElement{}, &fakeElement{}
	h.ctrl.SetText(a, "a")
	h.ctrl.SetTitle(b, "b")

	w, err := h.ctrl.Show(a)
	require.NoError(t, err)

	h.ctrl.Close()
	h.ctrl.Close()

	assert.Equal(t, popup.Closed, w.State())
	assert.Equal(t, 1, a.detaches)
	assert.Equal(t, 1, b.detaches)
	assert.Equal(t, "", h.ctrl.Text(a))
	assert.Equal(t, 0, h.clock.Pending())

	_, err = h.ctrl.Show(a)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSpot(t *testing.T) {
	s := NewSpot(image.Rect(10, 20, 40, 30))
	assert.Equal(t, image.Rect(0, 0, 30, 10), s.Anchor())
	assert.Equal(t, image.Pt(15, 25), s.ClientToScreen(image.Pt(5, 5)))
	assert.Equal(t, image.Pt(5, 5), s.ScreenToClient(image.Pt(15, 25)))
	assert.Nil(t, s.Owner())
}
