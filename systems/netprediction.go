package systems

import (
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/network"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

// Predictor runs the local ship ahead of the server with the same movement
// step and replays unacknowledged inputs when a snapshot corrects it.
type Predictor struct {
	Buffer *network.PredictionBuffer
	level  *collision.Level
	dt     float64
}

func NewPredictor(tickRate int) *Predictor {
	return &Predictor{
		Buffer: network.NewPredictionBuffer(config.Network.PredictionBuffer),
		dt:     1 / float64(tickRate),
	}
}

// SetLevel switches the collision geometry, e.g. from hangar to arena.
func (p *Predictor) SetLevel(l *collision.Level) {
	p.level = l
}

func (p *Predictor) blocked(ship *donburi.Entry) gamemath.Blocked {
	if p.level == nil {
		return nil
	}
	return p.level.BlockedFunc(config.Ships[netcomponents.NetIdentity.Get(ship).Ship].Radius)
}

// Predict applies input to ship and records the result.
func (p *Predictor) Predict(ship *donburi.Entry, input messages.PlayerInput) {
	next := p.step(ship, shipState(ship), input)
	writeShipState(ship, next)
	p.Buffer.Store(input, next)
}

func (p *Predictor) step(ship *donburi.Entry, s gamemath.ShipState, input messages.PlayerInput) gamemath.ShipState {
	params := config.Ships[netcomponents.NetIdentity.Get(ship).Ship].Movement
	in := input.Clamped()
	return gamemath.StepShip(s, params, in.Thrust, in.Turn, p.dt, p.blocked(ship))
}

// Reconcile rewinds ship to the server state for sequence ack and replays
// every newer input.
func (p *Predictor) Reconcile(ship *donburi.Entry, tr netcomponents.NetTransformData, vel *netcomponents.NetVelocityData, ack uint32) {
	pred := components.NetPrediction.Get(ship)
	pred.Correction = p.Buffer.PredictionError(ack, tr.Position.X, tr.Position.Y)
	pred.LastAcked = ack

	s := gamemath.ShipState{X: tr.Position.X, Y: tr.Position.Y, Rotation: tr.Rotation}
	if vel != nil {
		s.VelX, s.VelY, s.AngVel = vel.Linear.X, vel.Linear.Y, vel.Angular
	}
	for _, rec := range p.Buffer.Unacknowledged(ack) {
		s = p.step(ship, s, rec.Input)
	}
	writeShipState(ship, s)
}

// Reset drops the input history, e.g. when leaving a lobby.
func (p *Predictor) Reset() {
	p.Buffer.Reset()
}

func shipState(ship *donburi.Entry) gamemath.ShipState {
	tr := netcomponents.NetTransform.Get(ship)
	vel := netcomponents.NetVelocity.Get(ship)
	return gamemath.ShipState{
		X:        tr.Position.X,
		Y:        tr.Position.Y,
		Rotation: tr.Rotation,
		VelX:     vel.Linear.X,
		VelY:     vel.Linear.Y,
		AngVel:   vel.Angular,
	}
}

func writeShipState(ship *donburi.Entry, s gamemath.ShipState) {
	tr := netcomponents.NetTransform.Get(ship)
	tr.Position = dmath.NewVec2(s.X, s.Y)
	tr.Rotation = s.Rotation
	vel := netcomponents.NetVelocity.Get(ship)
	vel.Linear = dmath.NewVec2(s.VelX, s.VelY)
	vel.Angular = s.AngVel
}
