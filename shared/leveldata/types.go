// Package leveldata turns map sources (the TMX hangar and generated caves) into
// plain collision data. It has no dependencies on donburi or resolv.
package leveldata

import "github.com/automoto/orbitfall/shared/netconfig"

// Level holds all collision-relevant data for one map.
type Level struct {
	Name      string
	MapWidth  float64 // pixels
	MapHeight float64
	Solids    []Rect
	// Spawns[team] in load order. Order is the spawn pool's acquisition order.
	Spawns [netconfig.TeamCount][]SpawnPoint
}

// Rect is an axis aligned solid area in pixels.
type Rect struct {
	X, Y, W, H float64
}

// SpawnPoint is a ship spawn location in pixels.
type SpawnPoint struct {
	X, Y  float64
	Team  netconfig.Team
	Index int
}

// SpawnCount returns the total number of spawn points across all teams.
func (l *Level) SpawnCount() int {
	n := 0
	for _, s := range l.Spawns {
		n += len(s)
	}
	return n
}
