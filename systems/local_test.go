package systems

import (
	"testing"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

func TestLocalSimFiresOnCooldown(t *testing.T) {
	w := donburi.NewWorld()
	sess := &SessionState{}
	SpawnLocal(w, netconfig.ShipInterceptor, 50, 50)
	sim := NewLocalSim(sess, NewPredictor(60), 60)
	action := ownedBy(w, actionQuery, netconfig.LocalPlayer)
	components.Action.Get(action).Latest.Fire = true

	sim.Step(w)
	sim.Step(w)
	if n := localAmmoQuery.Count(w); n != 1 {
		t.Fatalf("%d shots inside one cooldown, want 1", n)
	}

	cooldown := config.Weapons[netconfig.WeaponBlaster].Cooldown
	for i := 0; i < int(cooldown/sim.dt); i++ {
		sim.Step(w)
	}
	if n := localAmmoQuery.Count(w); n != 2 {
		t.Fatalf("%d shots after cooldown, want 2", n)
	}

	components.Action.Get(action).Latest.Fire = false
	lifetime := config.Weapons[netconfig.WeaponBlaster].Lifetime
	for i := 0; i <= int(lifetime/sim.dt); i++ {
		sim.Step(w)
	}
	if n := localAmmoQuery.Count(w); n != 0 {
		t.Fatalf("%d shots outlived their lifetime", n)
	}
}
