package config

import (
	"time"

	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/shared/terrain"
)

// LobbyConfig contains matchmaking limits
type LobbyConfig struct {
	MaxSize     int // largest lobby a client may request
	DefaultSize int
	MaxPlayers  int // capacity advertised to the master server
}

// SessionConfig contains game session timing and win conditions
type SessionConfig struct {
	Countdown    time.Duration // full lobby to game start
	GameDuration time.Duration
	MaxScore     int // first team to reach this wins
}

// ShipConfig contains per-hull movement and durability values
type ShipConfig struct {
	Movement gamemath.ShipParams
	Health   int
	Radius   float64 // collision radius in pixels
	Weapon   netconfig.WeaponType
}

// WeaponConfig contains per-weapon values
type WeaponConfig struct {
	Damage    int
	Cooldown  time.Duration
	Speed     float64 // projectile speed, pixels/s
	Lifetime  time.Duration
	HitRadius float64
}

// ScoringConfig contains KDA bookkeeping values
type ScoringConfig struct {
	AssistWindow time.Duration // damage older than this earns no assist
}

// TerrainConfig contains the in-game cave generator settings
type TerrainConfig struct {
	Params   terrain.Params
	TileSize float64
}

// NetworkConfig contains protocol constants not exposed as settings
type NetworkConfig struct {
	Version          string
	ChallengeSize    int // nonce bytes
	InboxSize        int // buffered inbound commands per tick
	PredictionBuffer int // client input history length
	InterpDelay      time.Duration
}

var Lobby LobbyConfig
var Session SessionConfig
var Ships map[netconfig.ShipType]ShipConfig
var Weapons map[netconfig.WeaponType]WeaponConfig
var Scoring ScoringConfig
var Terrain TerrainConfig
var Network NetworkConfig

func init() {
	Lobby = LobbyConfig{
		MaxSize:     6,
		DefaultSize: 2,
		MaxPlayers:  48,
	}

	Session = SessionConfig{
		Countdown:    5 * time.Second,
		GameDuration: 150 * time.Second,
		MaxScore:     10,
	}

	Ships = map[netconfig.ShipType]ShipConfig{
		netconfig.ShipInterceptor: {
			Movement: gamemath.ShipParams{
				Thrust:         320,
				TurnRate:       18,
				MaxSpeed:       220,
				MaxAngular:     5,
				LinearDamping:  0.6,
				AngularDamping: 4,
			},
			Health: 100,
			Radius: 7,
			Weapon: netconfig.WeaponBlaster,
		},
		netconfig.ShipGunship: {
			Movement: gamemath.ShipParams{
				Thrust:         220,
				TurnRate:       12,
				MaxSpeed:       160,
				MaxAngular:     3.5,
				LinearDamping:  0.8,
				AngularDamping: 5,
			},
			Health: 160,
			Radius: 10,
			Weapon: netconfig.WeaponRailgun,
		},
	}

	Weapons = map[netconfig.WeaponType]WeaponConfig{
		netconfig.WeaponBlaster: {
			Damage:    20,
			Cooldown:  200 * time.Millisecond,
			Speed:     420,
			Lifetime:  1500 * time.Millisecond,
			HitRadius: 9,
		},
		netconfig.WeaponRailgun: {
			Damage:    55,
			Cooldown:  900 * time.Millisecond,
			Speed:     900,
			Lifetime:  700 * time.Millisecond,
			HitRadius: 12,
		},
	}

	Scoring = ScoringConfig{
		AssistWindow: 8 * time.Second,
	}

	Terrain = TerrainConfig{
		Params: terrain.Params{
			Width:         64,
			Height:        40,
			FillChance:    0.45,
			Smoothing:     4,
			SpawnsPerTeam: 4,
			SpawnClear:    1,
		},
		TileSize: 16,
	}

	Network = NetworkConfig{
		Version:          "0.3.0",
		ChallengeSize:    16,
		InboxSize:        1024,
		PredictionBuffer: 128,
		InterpDelay:      100 * time.Millisecond,
	}
}
