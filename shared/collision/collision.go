// Package collision answers overlap queries against a map's solid geometry.
// Server and client prediction share it so both reach the same positions.
package collision

import (
	"math"

	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/terrain"
	"github.com/automoto/orbitfall/tags"
	"github.com/solarlune/resolv"
)

const tagProbe = "probe"

// Level holds a map's collision space.
type Level struct {
	Level *leveldata.Level
	Space *resolv.Space
	probe *resolv.Object
}

// NewLevel builds a resolv.Space from parsed collision data.
func NewLevel(data *leveldata.Level) *Level {
	w := int(math.Ceil(data.MapWidth))
	h := int(math.Ceil(data.MapHeight))
	space := resolv.NewSpace(w, h, 16, 16)

	for _, r := range data.Solids {
		obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		space.Add(obj)
	}

	probe := resolv.NewObject(0, 0, 1, 1, tagProbe)
	probe.SetShape(resolv.NewRectangle(0, 0, 1, 1))
	space.Add(probe)

	return &Level{
		Level: data,
		Space: space,
		probe: probe,
	}
}

// NewArena generates the in-game cave for a session seed. Server and clients
// call it with the StartGame seed and get the same geometry.
func NewArena(seed uint32) *Level {
	grid := terrain.Generate(seed, config.Terrain.Params)
	return NewLevel(leveldata.FromGrid(grid, config.Terrain.TileSize))
}

// Blocked reports whether a circle-ish body of the given radius centred on
// (x, y) overlaps solid geometry or leaves the map.
func (l *Level) Blocked(x, y, radius float64) bool {
	if x-radius < 0 || y-radius < 0 || x+radius > l.Level.MapWidth || y+radius > l.Level.MapHeight {
		return true
	}

	size := 2 * radius
	l.probe.X = x - radius
	l.probe.Y = y - radius
	l.probe.W = size
	l.probe.H = size
	l.probe.SetShape(resolv.NewRectangle(0, 0, size, size))
	l.probe.Update()

	col := l.probe.Check(0, 0, tags.ResolvSolid)
	if col == nil {
		return false
	}
	// Check reports objects sharing a cell; solids are axis-aligned, so a box
	// overlap settles it, including a probe wholly inside a solid.
	for _, o := range col.Objects {
		if overlaps(l.probe, o) {
			return true
		}
	}
	return false
}

func overlaps(a, b *resolv.Object) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// BlockedFunc adapts Blocked for gamemath.StepShip.
func (l *Level) BlockedFunc(radius float64) func(x, y float64) bool {
	return func(x, y float64) bool {
		return l.Blocked(x, y, radius)
	}
}
