package core

import (
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var ammoQuery = donburi.NewQuery(filter.Contains(tags.Ammo, components.Ammo))

type ammoHit struct {
	ammo   donburi.Entity
	target netconfig.PlayerID
	owner  netconfig.PlayerID
	damage int
}

// systemAmmo moves projectiles, expires them and resolves hits against ships
// of the other team in the same lobby.
func (s *Server) systemAmmo(_ *ecs.ECS) {
	dt := s.dt.Seconds()
	var expired []donburi.Entity
	var hits []ammoHit

	ammoQuery.Each(s.world, func(entry *donburi.Entry) {
		a := components.Ammo.Get(entry)
		tr := netcomponents.NetTransform.Get(entry)
		vel := netcomponents.NetVelocity.Get(entry)

		a.Lifetime -= s.dt
		tr.Position.X += vel.Linear.X * dt
		tr.Position.Y += vel.Linear.Y * dt
		if a.Lifetime <= 0 {
			expired = append(expired, entry.Entity())
			return
		}

		owner, ok := s.playerEntry(kindSpaceship, a.Owner)
		if !ok {
			expired = append(expired, entry.Entity())
			return
		}
		lobbyEnt := components.Ship.Get(owner).Lobby
		if arena := s.arenas[lobbyEnt]; arena != nil && arena.Blocked(tr.Position.X, tr.Position.Y, 1) {
			expired = append(expired, entry.Entity())
			return
		}
		lobbyEntry, ok := s.entry(lobbyEnt)
		if !ok {
			return
		}

		wCfg := config.Weapons[a.Weapon]
		for _, ship := range s.lobbyShips(components.Lobby.Get(lobbyEntry)) {
			if components.Ship.Get(ship).Team == a.Team {
				continue
			}
			st := netcomponents.NetTransform.Get(ship)
			if gamemath.Distance(tr.Position.X, tr.Position.Y, st.Position.X, st.Position.Y) > wCfg.HitRadius+shipRadius(ship) {
				continue
			}
			hits = append(hits, ammoHit{
				ammo:   entry.Entity(),
				target: components.PlayerOwner.Get(ship).Player,
				owner:  a.Owner,
				damage: wCfg.Damage,
			})
			return
		}
	})

	for _, h := range hits {
		s.ApplyDamage(h.target, h.owner, h.damage)
		s.despawn(h.ammo)
	}
	for _, e := range expired {
		s.despawn(e)
	}
}
