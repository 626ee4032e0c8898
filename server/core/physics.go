package core

import (
	"math"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"
)

// handleInput stores the newest input on the player's action entity. Older
// or duplicate sequences are dropped; clients number inputs from 1.
func (s *Server) handleInput(client netconfig.ClientID, in messages.PlayerInput) {
	action, ok := s.playerEntry(kindAction, netconfig.PlayerOf(client))
	if !ok {
		s.logLife.Debug("input without action entity", "client", client)
		return
	}
	a := components.Action.Get(action)
	if in.Sequence <= a.Latest.Sequence {
		return
	}
	a.Latest = in.Clamped()
	a.Pending = true
}

// systemShips steps every ship with its owner's latest input, in lobby and
// member order.
func (s *Server) systemShips(_ *ecs.ECS) {
	dt := s.dt.Seconds()
	for _, le := range s.lobbies {
		lobbyEntry, ok := s.entry(le)
		if !ok {
			continue
		}
		lobby := components.Lobby.Get(lobbyEntry)
		inGame := lobbyEntry.HasComponent(tags.InGame)
		arena := s.arenas[le]

		for _, c := range lobby.Members {
			player := netconfig.PlayerOf(c)
			ship, ok := s.playerEntry(kindSpaceship, player)
			if !ok {
				continue
			}
			var in messages.PlayerInput
			if action, ok := s.playerEntry(kindAction, player); ok {
				a := components.Action.Get(action)
				in = a.Latest
				a.Pending = false
			}
			s.stepShip(ship, in, dt, arena)
			if inGame {
				s.tickWeapon(ship, in)
			}
		}
	}
}

func (s *Server) stepShip(ship *donburi.Entry, in messages.PlayerInput, dt float64, arena *collision.Level) {
	shipCfg := config.Ships[components.Ship.Get(ship).Type]
	tr := netcomponents.NetTransform.Get(ship)
	vel := netcomponents.NetVelocity.Get(ship)

	var blocked gamemath.Blocked
	if arena != nil {
		blocked = arena.BlockedFunc(shipCfg.Radius)
	}
	next := gamemath.StepShip(gamemath.ShipState{
		X:        tr.Position.X,
		Y:        tr.Position.Y,
		Rotation: tr.Rotation,
		VelX:     vel.Linear.X,
		VelY:     vel.Linear.Y,
		AngVel:   vel.Angular,
	}, shipCfg.Movement, in.Thrust, in.Turn, dt, blocked)

	tr.Position = dmath.NewVec2(next.X, next.Y)
	tr.Rotation = next.Rotation
	vel.Linear = dmath.NewVec2(next.VelX, next.VelY)
	vel.Angular = next.AngVel
	netcomponents.NetInputAck.Get(ship).LastSequence = in.Sequence
}

// tickWeapon cools the ship's weapon down and fires it if requested.
func (s *Server) tickWeapon(ship *donburi.Entry, in messages.PlayerInput) {
	player := components.PlayerOwner.Get(ship).Player
	wEntry, ok := s.playerEntry(kindWeapon, player)
	if !ok {
		return
	}
	w := components.Weapon.Get(wEntry)
	if w.Cooldown > 0 {
		w.Cooldown -= s.dt
	}
	if !in.Fire || w.Cooldown > 0 {
		return
	}
	w.Cooldown = config.Weapons[w.Type].Cooldown
	s.spawnAmmo(ship, w.Type)
}

func shipRadius(ship *donburi.Entry) float64 {
	if !ship.HasComponent(components.Ship) {
		return 0
	}
	return config.Ships[components.Ship.Get(ship).Type].Radius
}

// spawnAmmo fires a projectile from the ship's nose. The projectile is a
// scene child of the ship for ownership but replicates on its own.
func (s *Server) spawnAmmo(ship *donburi.Entry, weapon netconfig.WeaponType) {
	wCfg := config.Weapons[weapon]
	sh := components.Ship.Get(ship)
	tr := netcomponents.NetTransform.Get(ship)
	vel := netcomponents.NetVelocity.Get(ship)
	player := components.PlayerOwner.Get(ship).Player

	dirX, dirY := math.Cos(tr.Rotation), math.Sin(tr.Rotation)
	nose := shipRadius(ship) + 2

	ammo := archetypes.Ammo.Spawn(s.world, tags.NoRecursiveReplication)
	s.newNetworkID(ammo)
	components.Ammo.SetValue(ammo, components.AmmoData{
		Owner:    player,
		Team:     sh.Team,
		Weapon:   weapon,
		Lifetime: wCfg.Lifetime,
	})
	netcomponents.NetIdentity.SetValue(ammo, netcomponents.NetIdentityData{
		Player: player,
		Team:   sh.Team,
		Kind:   netconfig.KindAmmo,
		Weapon: weapon,
	})
	netcomponents.NetTransform.SetValue(ammo, netcomponents.NetTransformData{
		Position: dmath.NewVec2(tr.Position.X+dirX*nose, tr.Position.Y+dirY*nose),
		Rotation: tr.Rotation,
	})
	netcomponents.NetVelocity.SetValue(ammo, netcomponents.NetVelocityData{
		Linear: dmath.NewVec2(vel.Linear.X+dirX*wCfg.Speed, vel.Linear.Y+dirY*wCfg.Speed),
	})

	s.attachChild(ship, ammo)
	s.bindToRoom(ammo, components.Lobby.Get(s.world.Entry(sh.Lobby)).Room)
}
