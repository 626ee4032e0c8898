package systems

import (
	"math"
	"time"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"
	"github.com/yohamta/donburi/filter"
)

var localAmmoQuery = donburi.NewQuery(filter.Contains(tags.Ammo, tags.LocalOnly, components.Ammo))

// LocalSim runs the sandbox weapon while offline. Ship movement already
// happens in the predictor.
type LocalSim struct {
	sess *SessionState
	pred *Predictor
	dt   time.Duration
}

func NewLocalSim(sess *SessionState, pred *Predictor, tickRate int) *LocalSim {
	return &LocalSim{sess: sess, pred: pred, dt: time.Second / time.Duration(tickRate)}
}

// Update is the ECS system.
func (l *LocalSim) Update(e *ecs.ECS) {
	if l.sess.Mode != ModeLocal {
		return
	}
	l.Step(e.World)
}

func (l *LocalSim) Step(w donburi.World) {
	ship := ownedBy(w, ownedShipQuery, netconfig.LocalPlayer)
	weapon := ownedBy(w, ownedWeapQuery, netconfig.LocalPlayer)
	action := ownedBy(w, actionQuery, netconfig.LocalPlayer)
	if ship != nil && weapon != nil && action != nil && weapon.HasComponent(components.Weapon) {
		wd := components.Weapon.Get(weapon)
		if wd.Cooldown > 0 {
			wd.Cooldown -= l.dt
		}
		if components.Action.Get(action).Latest.Fire && wd.Cooldown <= 0 {
			wd.Cooldown = config.Weapons[wd.Type].Cooldown
			l.fire(w, ship, wd.Type)
		}
	}

	secs := l.dt.Seconds()
	var gone []donburi.Entity
	localAmmoQuery.Each(w, func(e *donburi.Entry) {
		a := components.Ammo.Get(e)
		tr := netcomponents.NetTransform.Get(e)
		vel := netcomponents.NetVelocity.Get(e)
		tr.Position.X += vel.Linear.X * secs
		tr.Position.Y += vel.Linear.Y * secs
		a.Lifetime -= l.dt
		if a.Lifetime <= 0 || (l.pred.level != nil && l.pred.level.Blocked(tr.Position.X, tr.Position.Y, 1)) {
			gone = append(gone, e.Entity())
		}
	})
	for _, e := range gone {
		w.Remove(e)
	}
}

func (l *LocalSim) fire(w donburi.World, ship *donburi.Entry, weapon netconfig.WeaponType) {
	wCfg := config.Weapons[weapon]
	tr := netcomponents.NetTransform.Get(ship)
	vel := netcomponents.NetVelocity.Get(ship)
	dirX, dirY := math.Cos(tr.Rotation), math.Sin(tr.Rotation)
	nose := config.Ships[netcomponents.NetIdentity.Get(ship).Ship].Radius + 2

	ammo := archetypes.LocalAmmo.Spawn(w)
	components.Ammo.SetValue(ammo, components.AmmoData{
		Owner:    netconfig.LocalPlayer,
		Weapon:   weapon,
		Lifetime: wCfg.Lifetime,
	})
	netcomponents.NetTransform.SetValue(ammo, netcomponents.NetTransformData{
		Position: dmath.NewVec2(tr.Position.X+dirX*nose, tr.Position.Y+dirY*nose),
		Rotation: tr.Rotation,
	})
	netcomponents.NetVelocity.SetValue(ammo, netcomponents.NetVelocityData{
		Linear: dmath.NewVec2(vel.Linear.X+dirX*wCfg.Speed, vel.Linear.Y+dirY*wCfg.Speed),
	})
}
