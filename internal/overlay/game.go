package overlay

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jmylchreest/tetratip/internal/clock"
	"github.com/jmylchreest/tetratip/internal/tooltip"
)

var (
	backgroundColor = color.RGBA{R: 0x3a, G: 0x4a, B: 0x5e, A: 0xff}
	regionColor     = color.RGBA{R: 0x5d, G: 0x7a, B: 0x99, A: 0xff}
	hoverColor      = color.RGBA{R: 0x7f, G: 0x9f, B: 0xc2, A: 0xff}
)

// Game is an ebiten game that hosts hot-spot regions and their tooltips.
// The manual clock advances by one tick per Update so popup timers run on
// the game loop.
type Game struct {
	Width, Height int

	clock      *clock.Manual
	compositor *Compositor
	regions    []*Region

	pointer image.Point
	hovered *Region
}

// NewGame creates a game of the given size.
func NewGame(width, height int) *Game {
	return &Game{
		Width:      width,
		Height:     height,
		clock:      clock.NewManual(),
		compositor: NewCompositor(),
	}
}

// Clock returns the clock driving popup timers.
func (g *Game) Clock() *clock.Manual { return g.clock }

// Compositor returns the compositor popups should be opened on.
func (g *Game) Compositor() *Compositor { return g.compositor }

// AddRegion adds a hot spot. Later regions are on top.
func (g *Game) AddRegion(r *Region) { g.regions = append(g.regions, r) }

// WorkArea implements tooltip.Screen.
func (g *Game) WorkArea() image.Rectangle { return image.Rect(0, 0, g.Width, g.Height) }

// Pointer implements tooltip.Screen.
func (g *Game) Pointer() image.Point { return g.pointer }

// CursorSize implements tooltip.Screen.
func (g *Game) CursorSize() image.Point { return image.Pt(16, 16) }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	x, y := ebiten.CursorPosition()
	g.HandlePointer(image.Pt(x, y), inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft))
	g.clock.Advance(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// HandlePointer moves the pointer and dispatches enter, leave and press
// events to the regions.
func (g *Game) HandlePointer(p image.Point, pressed bool) {
	g.pointer = p
	hit := g.regionAt(p)
	if hit != g.hovered {
		if g.hovered != nil {
			g.hovered.fire(func(h *tooltip.Hooks) func(tooltip.Element) { return h.Leave })
		}
		g.hovered = hit
		if hit != nil {
			hit.fire(func(h *tooltip.Hooks) func(tooltip.Element) { return h.Enter })
		}
	}
	if pressed && hit != nil {
		hit.fire(func(h *tooltip.Hooks) func(tooltip.Element) { return h.Press })
	}
}

func (g *Game) regionAt(p image.Point) *Region {
	for i := len(g.regions) - 1; i >= 0; i-- {
		if p.In(g.regions[i].Rect) {
			return g.regions[i]
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	for _, r := range g.regions {
		c := regionColor
		if r == g.hovered {
			c = hoverColor
		}
		b := r.Rect
		vector.DrawFilledRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), c, false)
	}
	g.compositor.Draw(screen)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.Width, g.Height
}
