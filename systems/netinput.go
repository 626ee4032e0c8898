package systems

import (
	"time"

	"github.com/automoto/orbitfall/components"
	cfg "github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// InputState turns terminal key-down events into held actions. A key stays
// held for HoldFrames ticks after its last repeat.
type InputState struct {
	hold     [cfg.ActionCount]int
	Current  [cfg.ActionCount]bool
	Previous [cfg.ActionCount]bool
}

// HandleKey records a key event. Safe to call only from the tick goroutine.
func (s *InputState) HandleKey(ev *tcell.EventKey) {
	s.Press(cfg.ActionFor(ev))
}

func (s *InputState) Press(a cfg.ActionID) {
	if a == cfg.ActionNone {
		return
	}
	s.hold[a] = cfg.Input.HoldFrames
}

// Advance swaps buffers and ages every held key by one tick.
func (s *InputState) Advance() {
	s.Previous = s.Current
	for a := range s.hold {
		s.Current[a] = s.hold[a] > 0
		if s.hold[a] > 0 {
			s.hold[a]--
		}
	}
}

func (s *InputState) Held(a cfg.ActionID) bool {
	return s.Current[a]
}

func (s *InputState) JustPressed(a cfg.ActionID) bool {
	return s.Current[a] && !s.Previous[a]
}

func (s *InputState) axis(neg, pos cfg.ActionID) float64 {
	v := 0.0
	if s.Held(pos) {
		v++
	}
	if s.Held(neg) {
		v--
	}
	return v
}

// Controls are the lobby actions the input system can trigger.
type Controls interface {
	Matchmake(w donburi.World)
	Exit(w donburi.World)
	Quit()
}

// InputSystem builds one PlayerInput per tick, feeds it to the owned action
// entity and the predictor, and sends it while in a lobby.
type InputSystem struct {
	sess     *SessionState
	state    *InputState
	pred     *Predictor
	controls Controls
	send     func(any) error
	now      func() time.Time
	log      *log.Logger
}

func NewInputSystem(sess *SessionState, state *InputState, pred *Predictor, controls Controls, send func(any) error, logger *log.Logger) *InputSystem {
	return &InputSystem{
		sess:     sess,
		state:    state,
		pred:     pred,
		controls: controls,
		send:     send,
		now:      time.Now,
		log:      logger.WithPrefix("input"),
	}
}

// Update is the ECS system.
func (s *InputSystem) Update(e *ecs.ECS) {
	s.Step(e.World)
}

func (s *InputSystem) Step(w donburi.World) messages.PlayerInput {
	s.state.Advance()

	switch {
	case s.state.JustPressed(cfg.ActionQuit):
		s.controls.Quit()
	case s.state.JustPressed(cfg.ActionMatchmake) && s.sess.Mode == ModeLocal:
		s.controls.Matchmake(w)
	case s.state.JustPressed(cfg.ActionExitLobby) && s.sess.Mode == ModeNetworked:
		s.controls.Exit(w)
	}

	in := messages.PlayerInput{
		Sequence:  s.pred.Buffer.NextSeq(),
		Thrust:    s.state.axis(cfg.ActionReverse, cfg.ActionThrust),
		Turn:      s.state.axis(cfg.ActionTurnLeft, cfg.ActionTurnRight),
		Fire:      s.state.Held(cfg.ActionFire),
		Timestamp: s.now().UnixMilli(),
	}

	if action := ownedBy(w, actionQuery, s.sess.Player); action != nil {
		a := components.Action.Get(action)
		a.Latest = in
		a.Pending = true
	}
	if ship := ownedBy(w, ownedShipQuery, s.sess.Player); ship != nil && ship.HasComponent(components.NetPrediction) {
		s.pred.Predict(ship, in)
	}
	if s.sess.Mode == ModeNetworked {
		if err := s.send(in); err != nil {
			s.log.Debug("input not sent", "seq", in.Sequence, "err", err)
		}
	}
	return in
}

func ownedBy(w donburi.World, q *donburi.Query, player netconfig.PlayerID) *donburi.Entry {
	var found *donburi.Entry
	q.Each(w, func(e *donburi.Entry) {
		if found == nil && e.HasComponent(components.PlayerOwner) && components.PlayerOwner.Get(e).Player == player {
			found = e
		}
	})
	return found
}
