package components

import (
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// SceneParentData is the ownership/transform relation. PlayerOwner and
// RoomIndex flow down it.
type SceneParentData struct {
	Parent donburi.Entity
}

var SceneParent = donburi.NewComponentType[SceneParentData]()

// ReplicationGroupData is the relevance relation: binding a parent to a room
// binds its replication children too.
type ReplicationGroupData struct {
	Parent donburi.Entity
}

var ReplicationGroup = donburi.NewComponentType[ReplicationGroupData]()

type RoomIndexData struct {
	Room netconfig.RoomID
}

var RoomIndex = donburi.NewComponentType[RoomIndexData]()

type PlayerOwnerData struct {
	Player netconfig.PlayerID
}

var PlayerOwner = donburi.NewComponentType[PlayerOwnerData]()
