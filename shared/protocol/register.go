package protocol

import (
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetTransform uint = 10
	SyncIDNetVelocity  uint = 11
	SyncIDNetHealth    uint = 12
	SyncIDNetIdentity  uint = 13
	SyncIDNetInputAck  uint = 14
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetTransform uint8 = 10
	InterpIDNetVelocity  uint8 = 11
)

// Modes lists the sync mode of every registered component.
var Modes = map[uint]netconfig.SyncMode{
	SyncIDNetTransform: netconfig.SyncFull,
	SyncIDNetVelocity:  netconfig.SyncFull,
	SyncIDNetHealth:    netconfig.SyncFull,
	SyncIDNetIdentity:  netconfig.SyncOnce,
	SyncIDNetInputAck:  netconfig.SyncFull,
}

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Physics state interpolates on remote clients
	if err := esync.RegisterComponent(
		SyncIDNetTransform,
		netcomponents.NetTransformData{},
		netcomponents.NetTransform,
		esync.WithInterpFn(InterpIDNetTransform, netcomponents.LerpNetTransform),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetVelocity,
		netcomponents.NetVelocityData{},
		netcomponents.NetVelocity,
		esync.WithInterpFn(InterpIDNetVelocity, netcomponents.LerpNetVelocity),
	); err != nil {
		return err
	}

	// Discrete state: no interpolation
	if err := esync.RegisterComponent(
		SyncIDNetHealth,
		netcomponents.NetHealthData{},
		netcomponents.NetHealth,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetIdentity,
		netcomponents.NetIdentityData{},
		netcomponents.NetIdentity,
	); err != nil {
		return err
	}

	return esync.RegisterComponent(
		SyncIDNetInputAck,
		netcomponents.NetInputAckData{},
		netcomponents.NetInputAck,
	)
}
