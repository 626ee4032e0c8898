package core

import (
	"math"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

// createSpawnPoints adds a spawn point entity per level spawn to the lobby's
// pools. hangar marks points that are torn down when the game starts.
func (s *Server) createSpawnPoints(lobby *donburi.Entry, lvl *leveldata.Level, hangar bool) {
	pools := components.SpawnPools.Get(lobby)
	room := components.Lobby.Get(lobby).Room
	for team, pts := range lvl.Spawns {
		for _, sp := range pts {
			point := archetypes.SpawnPoint.Spawn(s.world)
			components.SpawnPoint.SetValue(point, components.SpawnPointData{
				Team: netconfig.Team(team),
				X:    sp.X,
				Y:    sp.Y,
			})
			components.RoomIndex.SetValue(point, components.RoomIndexData{Room: room})
			if hangar {
				point.AddComponent(tags.HangarSpawn)
			}
			pools.Pools[team].Add(point.Entity())
		}
	}
}

// destroySpawnPoints removes every spawn point of the lobby, releasing any
// claims first so occupants are not left pointing at dead entities.
func (s *Server) destroySpawnPoints(lobby *donburi.Entry) {
	pools := components.SpawnPools.Get(lobby)
	for team := range pools.Pools {
		pool := &pools.Pools[team]
		for point, occupant := range pool.Used {
			if occ, ok := s.entry(occupant); ok && occ.HasComponent(components.SpawnClaim) {
				if components.SpawnClaim.Get(occ).Point == point {
					occ.RemoveComponent(components.SpawnClaim)
				}
			}
		}
		for _, point := range pool.Points() {
			pool.Forget(point)
			s.despawn(point)
		}
	}
}

// placeAtSpawn checks out a spawn point of team for ship and moves the ship
// there. If the team pool is exhausted the other pools are tried; with no free
// point at all the ship is placed at the map centre.
func (s *Server) placeAtSpawn(ship *donburi.Entry, lobby *donburi.Entry, team netconfig.Team) {
	s.releaseSpawnClaim(ship)

	pools := components.SpawnPools.Get(lobby)
	x, y := 0.0, 0.0
	placed := false
	for i := 0; i < netconfig.TeamCount && !placed; i++ {
		t := netconfig.Team((int(team) + i) % netconfig.TeamCount)
		point, ok := pools.Pools[t].Acquire(ship.Entity())
		if !ok {
			continue
		}
		pe, ok := s.entry(point)
		if !ok {
			pools.Pools[t].Forget(point)
			continue
		}
		sp := components.SpawnPoint.Get(pe)
		x, y = sp.X, sp.Y
		upsert(ship, components.SpawnClaim, &components.SpawnClaimData{Lobby: lobby.Entity(), Team: t, Point: point})
		placed = true
	}

	arena := s.arenas[lobby.Entity()]
	if !placed {
		s.logSess.Warn("no free spawn point", "lobby", components.Lobby.Get(lobby).ID, "team", team)
		if arena != nil {
			x, y = arena.Level.MapWidth/2, arena.Level.MapHeight/2
		}
	}
	if arena != nil && arena.Blocked(x, y, shipRadius(ship)) {
		s.logSess.Debug("spawn point overlaps terrain", "x", x, "y", y)
	}

	tr := netcomponents.NetTransform.Get(ship)
	tr.Position = dmath.NewVec2(x, y)
	tr.Rotation = 0
	if team == netconfig.TeamBlue {
		tr.Rotation = math.Pi
	}
	vel := netcomponents.NetVelocity.Get(ship)
	vel.Linear = dmath.Vec2{}
	vel.Angular = 0
}

// releaseSpawnClaim returns the entry's spawn point to its pool, if any.
func (s *Server) releaseSpawnClaim(e *donburi.Entry) {
	if !e.HasComponent(components.SpawnClaim) {
		return
	}
	claim := components.SpawnClaim.Get(e)
	if lobby, ok := s.entry(claim.Lobby); ok && lobby.HasComponent(components.SpawnPools) {
		components.SpawnPools.Get(lobby).Pools[claim.Team].Release(claim.Point)
	}
	e.RemoveComponent(components.SpawnClaim)
}
