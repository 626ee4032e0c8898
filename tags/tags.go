package tags

import "github.com/yohamta/donburi"

var (
	Lobby      = donburi.NewTag().SetName("Lobby")
	LobbyFull  = donburi.NewTag().SetName("LobbyFull")
	InGame     = donburi.NewTag().SetName("InGame")
	Spaceship  = donburi.NewTag().SetName("Spaceship")
	Weapon     = donburi.NewTag().SetName("Weapon")
	Action     = donburi.NewTag().SetName("Action")
	Ammo       = donburi.NewTag().SetName("Ammo")
	SpawnPoint = donburi.NewTag().SetName("SpawnPoint")
	// HangarSpawn marks spawn points that only exist before the game starts.
	HangarSpawn = donburi.NewTag().SetName("HangarSpawn")
	// NoRecursiveReplication keeps an entity out of its scene parent's replication group.
	NoRecursiveReplication = donburi.NewTag().SetName("NoRecursiveReplication")

	// Client only
	LocalOnly  = donburi.NewTag().SetName("LocalOnly")
	Replicated = donburi.NewTag().SetName("Replicated")
)

// Resolv tags for physics collision
const (
	ResolvSolid = "solid"
	ResolvSpawn = "spawn"
)
