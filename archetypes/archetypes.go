package archetypes

import (
	"slices"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

var (
	Lobby = newArchetype(
		tags.Lobby,
		components.Lobby,
		components.Session,
		components.SpawnPools,
	)
	SpawnPoint = newArchetype(
		tags.SpawnPoint,
		components.SpawnPoint,
		components.RoomIndex,
	)
	Action = newArchetype(
		tags.Action,
		components.Action,
		components.PlayerOwner,
		components.RoomIndex,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
	)
	Spaceship = newArchetype(
		tags.Spaceship,
		components.Ship,
		components.PlayerOwner,
		components.RoomIndex,
		components.KDA,
		components.DamageLog,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetVelocity,
		netcomponents.NetHealth,
		netcomponents.NetInputAck,
	)
	Weapon = newArchetype(
		tags.Weapon,
		components.Weapon,
		components.PlayerOwner,
		components.RoomIndex,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
	)
	Ammo = newArchetype(
		tags.Ammo,
		components.Ammo,
		components.PlayerOwner,
		components.RoomIndex,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetVelocity,
	)

	// Client side. Local sandbox entities have no NetworkId until adopted.
	LocalShip = newArchetype(
		tags.Spaceship,
		components.PlayerOwner,
		components.NetPrediction,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetVelocity,
		netcomponents.NetHealth,
	)
	LocalWeapon = newArchetype(
		tags.Weapon,
		components.Weapon,
		components.PlayerOwner,
		components.SceneParent,
		netcomponents.NetIdentity,
	)
	LocalInput = newArchetype(
		tags.Action,
		tags.LocalOnly,
		components.Action,
		components.PlayerOwner,
	)
	LocalAmmo = newArchetype(
		tags.Ammo,
		tags.LocalOnly,
		components.Ammo,
		netcomponents.NetTransform,
		netcomponents.NetVelocity,
	)
	// NetAction is the server's input entity for the local player.
	NetAction = newArchetype(
		tags.Action,
		tags.Replicated,
		components.Action,
		components.PlayerOwner,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
	)
	Remote = newArchetype(
		tags.Replicated,
		components.NetInterp,
		esync.NetworkIdComponent,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(w donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := append(slices.Clip(a.components), cs...)
	return w.Entry(w.Create(all...))
}
