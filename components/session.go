package components

import (
	"time"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// TimerPhase is the explicit state of a Timer.
type TimerPhase uint8

const (
	TimerIdle TimerPhase = iota
	TimerRunning
	TimerFinished
)

// Timer is a countdown advanced by the fixed tick.
type Timer struct {
	Phase     TimerPhase
	Remaining time.Duration
}

func (t *Timer) Start(d time.Duration) {
	t.Phase = TimerRunning
	t.Remaining = d
}

// Stop returns the timer to Idle.
func (t *Timer) Stop() {
	*t = Timer{}
}

func (t *Timer) Running() bool {
	return t.Phase == TimerRunning
}

// Advance subtracts dt from a running timer and reports true on the tick it finishes.
func (t *Timer) Advance(dt time.Duration) bool {
	if t.Phase != TimerRunning {
		return false
	}
	t.Remaining -= dt
	if t.Remaining > 0 {
		return false
	}
	t.Remaining = 0
	t.Phase = TimerFinished
	return true
}

// SessionData is the game session state machine of one lobby.
type SessionData struct {
	State     netconfig.SessionStateID
	Countdown Timer
	GameTimer Timer
	Score     [netconfig.TeamCount]int
	MaxScore  int
	Seed      uint32
}

var Session = donburi.NewComponentType[SessionData]()

// ScoreReached reports whether any team reached MaxScore.
func (s *SessionData) ScoreReached() bool {
	for _, v := range s.Score {
		if v >= s.MaxScore {
			return true
		}
	}
	return false
}
