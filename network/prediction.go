package network

import (
	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/messages"
)

// InputRecord stores an input alongside the predicted ship state after applying it.
type InputRecord struct {
	Input     messages.PlayerInput
	Predicted gamemath.ShipState
}

// PredictionBuffer is a ring buffer that stores recent inputs and their
// predicted outcomes for server reconciliation.
type PredictionBuffer struct {
	history []InputRecord
	nextSeq uint32
}

// NewPredictionBuffer keeps the last size inputs.
func NewPredictionBuffer(size int) *PredictionBuffer {
	if size < 1 {
		size = 1
	}
	return &PredictionBuffer{history: make([]InputRecord, size), nextSeq: 1}
}

func (pb *PredictionBuffer) slot(seq uint32) int {
	return int(seq % uint32(len(pb.history)))
}

// Store saves an input and the resulting predicted state.
func (pb *PredictionBuffer) Store(input messages.PlayerInput, predicted gamemath.ShipState) {
	pb.history[pb.slot(input.Sequence)] = InputRecord{
		Input:     input,
		Predicted: predicted,
	}
	pb.nextSeq = input.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (pb *PredictionBuffer) Get(seq uint32) (InputRecord, bool) {
	record := pb.history[pb.slot(seq)]
	if seq == 0 || record.Input.Sequence != seq {
		return InputRecord{}, false
	}
	return record, true
}

// NextSeq returns the next sequence number to assign.
func (pb *PredictionBuffer) NextSeq() uint32 {
	return pb.nextSeq
}

// Unacknowledged returns all stored inputs with sequence numbers greater
// than lastAcked and less than NextSeq, oldest first.
func (pb *PredictionBuffer) Unacknowledged(lastAcked uint32) []InputRecord {
	var results []InputRecord
	start := lastAcked + 1
	if oldest := pb.nextSeq - min(pb.nextSeq, uint32(len(pb.history))); start < oldest {
		start = oldest
	}
	for seq := start; seq < pb.nextSeq; seq++ {
		if record, ok := pb.Get(seq); ok {
			results = append(results, record)
		}
	}
	return results
}

// PredictionError is the distance between the predicted and the server
// position for a given sequence.
func (pb *PredictionBuffer) PredictionError(seq uint32, serverX, serverY float64) float64 {
	record, ok := pb.Get(seq)
	if !ok {
		return 0
	}
	return gamemath.Distance(record.Predicted.X, record.Predicted.Y, serverX, serverY)
}

// Reset forgets every stored input. Sequence numbers keep counting up so a
// server never sees one twice.
func (pb *PredictionBuffer) Reset() {
	clear(pb.history)
}
