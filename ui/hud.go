package ui

import (
	"fmt"
	"math"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/systems"
	"github.com/gdamore/tcell/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

const headerRows = 3

var (
	styleText  = tcell.StyleDefault
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMine  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleWall  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	teamStyles = [netconfig.TeamCount]tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorRed),
		tcell.StyleDefault.Foreground(tcell.ColorBlue),
	}
	shipGlyphs = []rune("→↘↓↙←↖↑↗")

	drawQuery = donburi.NewQuery(filter.Contains(netcomponents.NetTransform))
)

// HUD is the terminal status view. All methods except Poll run on the
// client tick goroutine.
type HUD struct {
	screen tcell.Screen
	keys   chan *tcell.EventKey

	status string
	lobby  string
	score  string
	bounds [2]float64
	walls  []wall
}

type wall struct {
	x, y, w, h float64
}

// NewHUD takes over the terminal.
func NewHUD() (*HUD, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return newHUD(s), nil
}

func newHUD(s tcell.Screen) *HUD {
	return &HUD{
		screen: s,
		keys:   make(chan *tcell.EventKey, 64),
		status: "not in lobby",
		bounds: [2]float64{320, 192},
	}
}

// Keys delivers key events read by Poll.
func (h *HUD) Keys() <-chan *tcell.EventKey {
	return h.keys
}

// Poll forwards key events until Close. Run it on its own goroutine.
func (h *HUD) Poll() {
	for {
		switch ev := h.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			select {
			case h.keys <- ev:
			default:
			}
		case *tcell.EventResize:
			h.screen.Sync()
		}
	}
}

// Close restores the terminal.
func (h *HUD) Close() {
	h.screen.Fini()
}

// SetArena sets the map the viewport is scaled to.
func (h *HUD) SetArena(lvl *leveldata.Level) {
	h.bounds = [2]float64{lvl.MapWidth, lvl.MapHeight}
	h.walls = h.walls[:0]
	for _, r := range lvl.Solids {
		h.walls = append(h.walls, wall{r.X, r.Y, r.W, r.H})
	}
}

func (h *HUD) ShowNotInLobby(reason string) {
	h.status = "not in lobby (" + reason + ")"
	h.lobby = ""
}

func (h *HUD) ShowLobbyStatus(room netconfig.RoomID, members, size int) {
	h.status = "waiting for players"
	if members >= size {
		h.status = "lobby full, starting soon"
	}
	h.lobby = fmt.Sprintf("room %d  %d/%d", room, members, size)
}

func (h *HUD) ShowGameStarted(seed uint32) {
	h.status = fmt.Sprintf("in game (arena %08x)", seed)
}

func (h *HUD) ShowScore(score messages.GameScore) {
	h.score = fmt.Sprintf("red %d  blue %d  to %d", score.Scores[netconfig.TeamRed], score.Scores[netconfig.TeamBlue], score.MaxScore)
}

func (h *HUD) ShowGameResult(score messages.GameScore, team netconfig.Team) {
	h.ShowScore(score)
	h.status = "game over: " + Result(score, team)
}

// Draw renders the header and every entity with a transform.
func (h *HUD) Draw(w donburi.World, sess *systems.SessionState) {
	h.screen.Clear()
	cols, rows := h.screen.Size()

	h.text(0, 0, fmt.Sprintf("orbitfall  %s  %s  team %s", sess.Mode, sess.Player, sess.Team), styleText)
	h.text(0, 1, h.status+"  "+h.lobby, styleText)
	h.text(0, 2, h.score, styleDim)

	rows -= headerRows
	if cols <= 0 || rows <= 0 {
		h.screen.Show()
		return
	}
	sx := float64(cols) / h.bounds[0]
	sy := float64(rows) / h.bounds[1]
	cell := func(x, y float64) (int, int) {
		return int(x * sx), int(y*sy) + headerRows
	}

	for _, wl := range h.walls {
		x0, y0 := cell(wl.x, wl.y)
		x1, y1 := cell(wl.x+wl.w, wl.y+wl.h)
		for y := y0; y < max(y1, y0+1); y++ {
			for x := x0; x < max(x1, x0+1); x++ {
				h.screen.SetContent(x, y, '░', nil, styleWall)
			}
		}
	}

	drawQuery.Each(w, func(e *donburi.Entry) {
		tr := netcomponents.NetTransform.Get(e)
		x, y, rot := tr.Position.X, tr.Position.Y, tr.Rotation
		if e.HasComponent(components.NetInterp) {
			in := components.NetInterp.Get(e)
			x, y, rot = in.DisplayX, in.DisplayY, in.DisplayRot
		}
		glyph, style := '·', styleDim
		if e.HasComponent(netcomponents.NetIdentity) {
			id := netcomponents.NetIdentity.Get(e)
			style = teamStyles[id.Team%netconfig.TeamCount]
			if id.Kind == netconfig.KindSpaceship {
				glyph = ShipGlyph(rot)
			}
			if id.Kind == netconfig.KindSpaceship && id.Player == sess.Player {
				style = styleMine
			}
		}
		cx, cy := cell(x, y)
		h.screen.SetContent(cx, cy, glyph, nil, style)
	})
	h.screen.Show()
}

func (h *HUD) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// ShipGlyph picks the arrow closest to a heading; 0 rad points right and
// angles grow clockwise on screen.
func ShipGlyph(rot float64) rune {
	i := int(math.Round(rot/(math.Pi/4))) % len(shipGlyphs)
	if i < 0 {
		i += len(shipGlyphs)
	}
	return shipGlyphs[i]
}
