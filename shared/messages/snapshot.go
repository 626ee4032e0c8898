package messages

import (
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// RoomSnapshot carries the replicated state of every entity in one room. It is
// built per client, so Once-mode data only appears the first time an entity is
// sent to that client.
type RoomSnapshot struct {
	RoomID   netconfig.RoomID
	Tick     uint32
	Entities []EntityState
}

// EntityState is one replicated entity. Nil fields mean "not sent this time"
// (Once data already delivered) or "entity has no such component".
type EntityState struct {
	ID        esync.NetworkId
	Identity  *netcomponents.NetIdentityData  // SyncOnce
	Transform *netcomponents.NetTransformData // SyncFull
	Velocity  *netcomponents.NetVelocityData  // SyncFull
	Health    *netcomponents.NetHealthData    // SyncFull
	Ack       uint32                          // last input sequence applied by the server
}
