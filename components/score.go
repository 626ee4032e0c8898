package components

import (
	"time"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// KDAData tracks a ship's match statistics
type KDAData struct {
	Kills      int
	Deaths     int
	Assists    int
	Streak     int
	BestStreak int
}

var KDA = donburi.NewComponentType[KDAData]()

// AddKill increments kills and the current streak
func (k *KDAData) AddKill() {
	k.Kills++
	k.Streak++
	if k.Streak > k.BestStreak {
		k.BestStreak = k.Streak
	}
}

// AddDeath increments deaths and resets the streak
func (k *KDAData) AddDeath() {
	k.Deaths++
	k.Streak = 0
}

// DamageEntry records who hurt a ship and when (session clock).
type DamageEntry struct {
	Attacker netconfig.PlayerID
	At       time.Duration
}

// DamageLogData keeps the most recent hit per attacker.
type DamageLogData struct {
	Entries []DamageEntry
}

var DamageLog = donburi.NewComponentType[DamageLogData]()

// Record notes a hit, replacing any older entry by the same attacker.
func (d *DamageLogData) Record(attacker netconfig.PlayerID, at time.Duration) {
	for i := range d.Entries {
		if d.Entries[i].Attacker == attacker {
			d.Entries[i].At = at
			return
		}
	}
	d.Entries = append(d.Entries, DamageEntry{Attacker: attacker, At: at})
}

// Assisters returns attackers other than killer who hit within window of now.
func (d *DamageLogData) Assisters(killer netconfig.PlayerID, now, window time.Duration) []netconfig.PlayerID {
	var out []netconfig.PlayerID
	for _, e := range d.Entries {
		if e.Attacker == killer || now-e.At > window {
			continue
		}
		out = append(out, e.Attacker)
	}
	return out
}

func (d *DamageLogData) Clear() {
	d.Entries = d.Entries[:0]
}
