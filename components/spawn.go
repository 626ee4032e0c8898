package components

import (
	"slices"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// SpawnPointData is a location ships can be placed at.
type SpawnPointData struct {
	Team netconfig.Team
	X, Y float64
}

var SpawnPoint = donburi.NewComponentType[SpawnPointData]()

// SpawnPool tracks availability of one team's spawn points. It does not own
// the point entities.
type SpawnPool struct {
	Unused []donburi.Entity
	Used   map[donburi.Entity]donburi.Entity // point -> occupant
}

// Add registers a new free point.
func (p *SpawnPool) Add(point donburi.Entity) {
	p.Unused = append(p.Unused, point)
}

// Acquire checks out the first free point for occupant.
func (p *SpawnPool) Acquire(occupant donburi.Entity) (donburi.Entity, bool) {
	if len(p.Unused) == 0 {
		return donburi.Null, false
	}
	point := p.Unused[0]
	p.Unused = p.Unused[1:]
	if p.Used == nil {
		p.Used = make(map[donburi.Entity]donburi.Entity)
	}
	p.Used[point] = occupant
	return point, true
}

// Release returns a checked-out point to the free list. Unknown points are ignored.
func (p *SpawnPool) Release(point donburi.Entity) bool {
	if _, ok := p.Used[point]; !ok {
		return false
	}
	delete(p.Used, point)
	p.Unused = append(p.Unused, point)
	return true
}

// Forget drops point from the pool whether used or not.
func (p *SpawnPool) Forget(point donburi.Entity) {
	delete(p.Used, point)
	if i := slices.Index(p.Unused, point); i >= 0 {
		p.Unused = slices.Delete(p.Unused, i, i+1)
	}
}

func (p *SpawnPool) UsedCount() int {
	return len(p.Used)
}

// Points returns every point in the pool, free ones first.
func (p *SpawnPool) Points() []donburi.Entity {
	out := slices.Clone(p.Unused)
	for point := range p.Used {
		out = append(out, point)
	}
	return out
}

// SpawnPoolsData holds one pool per team.
type SpawnPoolsData struct {
	Pools [netconfig.TeamCount]SpawnPool
}

var SpawnPools = donburi.NewComponentType[SpawnPoolsData]()

// BalancedTeam picks the team with fewer used points, lowest team on a tie.
func (s *SpawnPoolsData) BalancedTeam() netconfig.Team {
	best := netconfig.Team(0)
	for t := 1; t < netconfig.TeamCount; t++ {
		if s.Pools[t].UsedCount() < s.Pools[best].UsedCount() {
			best = netconfig.Team(t)
		}
	}
	return best
}

// SpawnClaimData links an occupant to the spawn point it checked out.
type SpawnClaimData struct {
	Lobby donburi.Entity
	Team  netconfig.Team
	Point donburi.Entity
}

var SpawnClaim = donburi.NewComponentType[SpawnClaimData]()
