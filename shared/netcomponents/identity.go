package netcomponents

import (
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetIdentityData never changes after spawn and is replicated once per client.
type NetIdentityData struct {
	Player netconfig.PlayerID
	Team   netconfig.Team
	Kind   netconfig.EntityKind
	Ship   netconfig.ShipType
	Weapon netconfig.WeaponType
}

var NetIdentity = donburi.NewComponentType[NetIdentityData]()

// NetInputAckData carries the last input sequence the server applied to a ship.
type NetInputAckData struct {
	LastSequence uint32
}

var NetInputAck = donburi.NewComponentType[NetInputAckData]()
