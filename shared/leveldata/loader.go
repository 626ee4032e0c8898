package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/shared/terrain"
	"github.com/lafriks/go-tiled"
)

// LoadHangar parses a TMX map with a "Solid" object group (rectangles) and a
// "PlayerSpawn" object group whose objects carry int "team" and "spawnIndex"
// properties. It takes an fs.FS so callers can pass embed.FS or os.DirFS.
func LoadHangar(fsys fs.FS, tmxPath string) (*Level, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	lvl := &Level{
		Name:      strings.TrimSuffix(filepath.Base(tmxPath), ".tmx"),
		MapWidth:  float64(levelMap.Width * levelMap.TileWidth),
		MapHeight: float64(levelMap.Height * levelMap.TileHeight),
	}

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case "Solid":
			for _, o := range og.Objects {
				lvl.Solids = append(lvl.Solids, Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case "PlayerSpawn":
			for _, o := range og.Objects {
				team := o.Properties.GetInt("team")
				if team < 0 || team >= netconfig.TeamCount {
					return nil, fmt.Errorf("spawn %q in %s: team %d out of range", o.Name, tmxPath, team)
				}
				lvl.Spawns[team] = append(lvl.Spawns[team], SpawnPoint{
					X:     o.X,
					Y:     o.Y,
					Team:  netconfig.Team(team),
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		}
	}

	for t := range lvl.Spawns {
		pts := lvl.Spawns[t]
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Index < pts[j].Index })
	}
	if lvl.SpawnCount() == 0 {
		return nil, fmt.Errorf("no PlayerSpawn objects in %s", tmxPath)
	}
	return lvl, nil
}

// FromGrid converts a generated cave into collision data. Horizontal runs of
// solid tiles are merged into one rect each.
func FromGrid(g *terrain.Grid, tileSize float64) *Level {
	lvl := &Level{
		Name:      "arena",
		MapWidth:  float64(g.Width) * tileSize,
		MapHeight: float64(g.Height) * tileSize,
	}

	for y := 0; y < g.Height; y++ {
		x := 0
		for x < g.Width {
			if !g.At(x, y) {
				x++
				continue
			}
			start := x
			for x < g.Width && g.At(x, y) {
				x++
			}
			lvl.Solids = append(lvl.Solids, Rect{
				X: float64(start) * tileSize,
				Y: float64(y) * tileSize,
				W: float64(x-start) * tileSize,
				H: tileSize,
			})
		}
	}

	for team, pts := range g.Spawns {
		if team >= netconfig.TeamCount {
			break
		}
		for i, p := range pts {
			lvl.Spawns[team] = append(lvl.Spawns[team], SpawnPoint{
				X:     (float64(p.X) + 0.5) * tileSize,
				Y:     (float64(p.Y) + 0.5) * tileSize,
				Team:  netconfig.Team(team),
				Index: i,
			})
		}
	}
	return lvl
}
