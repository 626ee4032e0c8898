package config

import "github.com/gdamore/tcell/v2"

// ActionID represents a logical client action
type ActionID int

const (
	ActionNone ActionID = iota
	ActionThrust
	ActionReverse
	ActionTurnLeft
	ActionTurnRight
	ActionFire
	ActionMatchmake
	ActionExitLobby
	ActionQuit
	ActionCount // Must be last - used for array sizing
)

// InputBinding represents the keys bound to an action
type InputBinding struct {
	Keys  []tcell.Key
	Runes []rune
}

// InputConfig holds all input mappings
type InputConfig struct {
	Bindings map[ActionID]InputBinding
	// HoldFrames is how many ticks a key press keeps an axis held. Terminals
	// only report key down, never key up.
	HoldFrames int
}

// Input is the global input configuration
var Input InputConfig

func init() {
	Input = InputConfig{
		HoldFrames: 6,
		Bindings: map[ActionID]InputBinding{
			ActionThrust:    {Keys: []tcell.Key{tcell.KeyUp}, Runes: []rune{'w'}},
			ActionReverse:   {Keys: []tcell.Key{tcell.KeyDown}, Runes: []rune{'s'}},
			ActionTurnLeft:  {Keys: []tcell.Key{tcell.KeyLeft}, Runes: []rune{'a'}},
			ActionTurnRight: {Keys: []tcell.Key{tcell.KeyRight}, Runes: []rune{'d'}},
			ActionFire:      {Runes: []rune{' '}},
			ActionMatchmake: {Keys: []tcell.Key{tcell.KeyEnter}, Runes: []rune{'m'}},
			ActionExitLobby: {Keys: []tcell.Key{tcell.KeyEscape}, Runes: []rune{'x'}},
			ActionQuit:      {Keys: []tcell.Key{tcell.KeyCtrlC}, Runes: []rune{'q'}},
		},
	}
}

// ActionFor resolves a key event to an action.
func ActionFor(ev *tcell.EventKey) ActionID {
	for action, b := range Input.Bindings {
		if ev.Key() == tcell.KeyRune {
			for _, r := range b.Runes {
				if ev.Rune() == r {
					return action
				}
			}
			continue
		}
		for _, k := range b.Keys {
			if ev.Key() == k {
				return action
			}
		}
	}
	return ActionNone
}
