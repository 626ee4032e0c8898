// Package gamemath holds the deterministic movement math shared by the server
// simulation and client-side prediction. Both sides must produce identical
// results for identical inputs, so nothing here reads clocks or globals.
package gamemath

import "math"

// ShipState is the kinematic state of a ship.
type ShipState struct {
	X, Y     float64
	Rotation float64 // radians, 0 points along +X
	VelX     float64
	VelY     float64
	AngVel   float64
}

// ShipParams are the per-hull tuning values.
type ShipParams struct {
	Thrust         float64 // units/s^2 at full throttle
	TurnRate       float64 // rad/s^2 at full turn
	MaxSpeed       float64
	MaxAngular     float64
	LinearDamping  float64 // fraction of velocity lost per second
	AngularDamping float64
}

// Blocked reports whether the ship may not occupy (x, y). A nil Blocked means open space.
type Blocked func(x, y float64) bool

// StepShip advances s by dt seconds under the given throttle and turn axes
// (each in [-1, 1]). If the new position is blocked on an axis the velocity on
// that axis is zeroed and the ship stays put on it.
func StepShip(s ShipState, p ShipParams, thrust, turn, dt float64, blocked Blocked) ShipState {
	s.AngVel += turn * p.TurnRate * dt
	s.AngVel = Damp(s.AngVel, p.AngularDamping, dt)
	s.AngVel = ClampSpeed(s.AngVel, p.MaxAngular)
	s.Rotation = WrapAngle(s.Rotation + s.AngVel*dt)

	ax := math.Cos(s.Rotation) * thrust * p.Thrust
	ay := math.Sin(s.Rotation) * thrust * p.Thrust
	s.VelX = Damp(s.VelX+ax*dt, p.LinearDamping, dt)
	s.VelY = Damp(s.VelY+ay*dt, p.LinearDamping, dt)
	s.VelX, s.VelY = ClampLength(s.VelX, s.VelY, p.MaxSpeed)

	nx := s.X + s.VelX*dt
	if blocked != nil && blocked(nx, s.Y) {
		s.VelX = 0
	} else {
		s.X = nx
	}
	ny := s.Y + s.VelY*dt
	if blocked != nil && blocked(s.X, ny) {
		s.VelY = 0
	} else {
		s.Y = ny
	}
	return s
}

// Damp scales v by (1 - damping*dt), never flipping its sign.
func Damp(v, damping, dt float64) float64 {
	f := 1 - damping*dt
	if f < 0 {
		f = 0
	}
	return v * f
}

// ClampSpeed clamps a value to [-max, max].
func ClampSpeed(speed, max float64) float64 {
	if speed > max {
		return max
	}
	if speed < -max {
		return -max
	}
	return speed
}

// ClampLength scales (x, y) down so its length does not exceed max.
func ClampLength(x, y, max float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l <= max || l == 0 {
		return x, y
	}
	k := max / l
	return x * k, y * k
}

// WrapAngle normalizes a to [-pi, pi).
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Distance returns the euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
