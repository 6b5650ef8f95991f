// Package viewer renders the scene in a desktop window.
package viewer

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/scene"
)

var (
	background  = color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff}
	leftColor   = color.RGBA{R: 0x4f, G: 0xc3, B: 0xf7, A: 0xff}
	rightColor  = color.RGBA{R: 0xff, G: 0x8a, B: 0x65, A: 0xff}
	anchorColor = color.RGBA{R: 0x81, G: 0xc7, B: 0x84, A: 0xff}
	hudColor    = color.RGBA{R: 0xcf, G: 0xd8, B: 0xdc, A: 0xff}
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

// Config controls the preview window.
type Config struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

// Game draws scene snapshots and keeps the scene camera in step with the
// window size.
type Game struct {
	scene    *scene.Scene
	width    int
	height   int
	onResize func(width, height int)
}

// NewGame creates a Game for sc. onResize, if set, is called after every
// accepted window size change.
func NewGame(sc *scene.Scene, onResize func(width, height int)) *Game {
	return &Game{scene: sc, onResize: onResize}
}

// Run opens the window and blocks until it is closed.
func Run(sc *scene.Scene, cfg Config, onResize func(width, height int)) error {
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	err := ebiten.RunGame(NewGame(sc, onResize))
	if err == ebiten.Termination {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	snap := g.scene.Snapshot()
	cam := g.scene.Camera()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	for _, side := range []detector.Side{detector.SideLeft, detector.SideRight} {
		clr := leftColor
		if side == detector.SideRight {
			clr = rightColor
		}

		for _, m := range snap.Markers(side) {
			if !m.Visible {
				continue
			}
			x, y, ok := ToScreen(cam, m.Position, w, h)
			if !ok {
				continue
			}
			r := RadiusPx(cam, m.Position, scene.MarkerRadius*m.Scale, h)
			vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), clr, true)
		}
	}

	if snap.Anchor.Visible {
		g.drawAnchor(screen, snap.Anchor, w, h)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, HUD(snap, ebiten.ActualTPS()), hudFace, op)
}

// HUD is the status line drawn in the window corner.
func HUD(snap scene.Snapshot, tps float64) string {
	count := func(side detector.Side) int {
		n := 0
		for _, m := range snap.Markers(side) {
			if m.Visible {
				n++
			}
		}
		return n
	}
	return fmt.Sprintf("frame %d  L %d/21  R %d/21  %.0f tps",
		snap.Frame, count(detector.SideLeft), count(detector.SideRight), tps)
}

func (g *Game) drawAnchor(screen *ebiten.Image, a scene.Anchor, w, h int) {
	cam := g.scene.Camera()
	corners := AnchorCorners(a)

	var pts [8][2]float32
	for i, c := range corners {
		x, y, ok := ToScreen(cam, c, w, h)
		if !ok {
			return
		}
		pts[i] = [2]float32{float32(x), float32(y)}
	}

	for _, e := range cubeEdges {
		p, q := pts[e[0]], pts[e[1]]
		vector.StrokeLine(screen, p[0], p[1], q[0], q[1], 1.5, anchorColor, true)
	}
}

// Layout resizes the scene camera whenever the window size changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return max(outsideWidth, 1), max(outsideHeight, 1)
	}

	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if err := g.scene.Resize(outsideWidth, outsideHeight); err != nil {
			log.Printf("viewer resize %dx%d: %v", outsideWidth, outsideHeight, err)
		} else if g.onResize != nil {
			g.onResize(outsideWidth, outsideHeight)
		}
	}
	return outsideWidth, outsideHeight
}
