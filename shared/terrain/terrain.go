// Package terrain generates the in-game cave map from a session seed. The same
// seed always produces the same grid, so the server only has to ship the seed.
package terrain

import (
	"math/rand/v2"
)

// Params controls the cave generator.
type Params struct {
	Width, Height int     // in tiles
	FillChance    float64 // initial probability a tile is solid
	Smoothing     int     // cellular automaton passes
	SpawnsPerTeam int
	SpawnClear    int // half-size in tiles of the open square required around a spawn
}

// Point is a tile coordinate.
type Point struct {
	X, Y int
}

// Grid is an occupancy grid. Solid[y*Width+x] is true for rock.
type Grid struct {
	Width, Height int
	Solid         []bool
	// Spawns[team] are candidate spawn tiles, left side for team 0, right side for team 1.
	Spawns [][]Point
}

// At reports whether (x, y) is solid. Out-of-range tiles are solid.
func (g *Grid) At(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return true
	}
	return g.Solid[y*g.Width+x]
}

func (g *Grid) set(x, y int, v bool) {
	g.Solid[y*g.Width+x] = v
}

// Generate builds a cave grid for seed.
func Generate(seed uint32, p Params) *Grid {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	g := &Grid{Width: p.Width, Height: p.Height, Solid: make([]bool, p.Width*p.Height)}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			border := x == 0 || y == 0 || x == p.Width-1 || y == p.Height-1
			g.set(x, y, border || rng.Float64() < p.FillChance)
		}
	}

	for i := 0; i < p.Smoothing; i++ {
		g = smooth(g)
	}

	g.Spawns = make([][]Point, 2)
	for team := 0; team < 2; team++ {
		g.Spawns[team] = carveSpawns(g, rng, team, p)
	}
	return g
}

func smooth(g *Grid) *Grid {
	next := &Grid{Width: g.Width, Height: g.Height, Solid: make([]bool, len(g.Solid))}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1 {
				next.set(x, y, true)
				continue
			}
			n := solidNeighbours(g, x, y)
			switch {
			case n > 4:
				next.set(x, y, true)
			case n < 4:
				next.set(x, y, false)
			default:
				next.set(x, y, g.At(x, y))
			}
		}
	}
	return next
}

func solidNeighbours(g *Grid, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.At(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// carveSpawns picks spawn tiles in the team's third of the map and clears rock
// around each so a ship never spawns inside a wall.
func carveSpawns(g *Grid, rng *rand.Rand, team int, p Params) []Point {
	third := g.Width / 3
	minX := 1 + p.SpawnClear
	maxX := third - p.SpawnClear - 1
	if team == 1 {
		minX = g.Width - third + p.SpawnClear
		maxX = g.Width - 2 - p.SpawnClear
	}
	minY := 1 + p.SpawnClear
	maxY := g.Height - 2 - p.SpawnClear
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}

	spawns := make([]Point, 0, p.SpawnsPerTeam)
	for len(spawns) < p.SpawnsPerTeam {
		pt := Point{X: minX + rng.IntN(maxX-minX+1), Y: minY + rng.IntN(maxY-minY+1)}
		if contains(spawns, pt) {
			continue
		}
		for y := pt.Y - p.SpawnClear; y <= pt.Y+p.SpawnClear; y++ {
			for x := pt.X - p.SpawnClear; x <= pt.X+p.SpawnClear; x++ {
				if x > 0 && y > 0 && x < g.Width-1 && y < g.Height-1 {
					g.set(x, y, false)
				}
			}
		}
		spawns = append(spawns, pt)
	}
	return spawns
}

func contains(pts []Point, p Point) bool {
	for _, q := range pts {
		if q == p {
			return true
		}
	}
	return false
}
