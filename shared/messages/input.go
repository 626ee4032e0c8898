package messages

// PlayerInput is sent from client to server every tick with the ship controls.
// Used for server-side movement processing and client-side prediction reconciliation.
type PlayerInput struct {
	Sequence  uint32  // Incrementing ID for reconciliation
	Thrust    float64 // -1 reverse .. 1 forward
	Turn      float64 // -1 left .. 1 right
	Fire      bool
	Timestamp int64 // Client timestamp (Unix ms)
}

// Clamped returns the input with axes limited to [-1, 1].
func (p PlayerInput) Clamped() PlayerInput {
	p.Thrust = clampAxis(p.Thrust)
	p.Turn = clampAxis(p.Turn)
	return p
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	if v != v { // NaN
		return 0
	}
	return v
}
