package network

import (
	"testing"

	"github.com/automoto/orbitfall/shared/gamemath"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
)

func TestPredictionBufferRing(t *testing.T) {
	pb := NewPredictionBuffer(4)
	for seq := uint32(1); seq <= 6; seq++ {
		pb.Store(messages.PlayerInput{Sequence: seq}, gamemath.ShipState{X: float64(seq)})
	}

	if _, ok := pb.Get(2); ok {
		t.Fatal("overwritten slot still returned")
	}
	rec, ok := pb.Get(5)
	if !ok || rec.Predicted.X != 5 {
		t.Fatalf("Get(5) = %+v, %v", rec, ok)
	}
	if pb.NextSeq() != 7 {
		t.Fatalf("NextSeq = %d", pb.NextSeq())
	}

	unacked := pb.Unacknowledged(3)
	if len(unacked) != 3 || unacked[0].Input.Sequence != 4 || unacked[2].Input.Sequence != 6 {
		t.Fatalf("Unacknowledged(3) = %+v", unacked)
	}
	if got := pb.Unacknowledged(0); len(got) != 4 || got[0].Input.Sequence != 3 {
		t.Fatalf("Unacknowledged(0) = %+v", got)
	}
	if got := pb.PredictionError(6, 6, 4); got != 4 {
		t.Fatalf("PredictionError = %v, want 4", got)
	}

	pb.Reset()
	if _, ok := pb.Get(6); ok || pb.NextSeq() != 7 {
		t.Fatalf("after Reset: NextSeq = %d", pb.NextSeq())
	}
	if got := pb.Unacknowledged(0); len(got) != 0 {
		t.Fatalf("Unacknowledged after Reset = %+v", got)
	}
}

func TestMergeSnapshotsKeepsIdentity(t *testing.T) {
	ident := &netcomponents.NetIdentityData{Player: 3}
	prev := messages.RoomSnapshot{Tick: 6, Entities: []messages.EntityState{
		{ID: 1, Identity: ident},
		{ID: 2, Identity: ident},
	}}
	next := messages.RoomSnapshot{Tick: 12, Entities: []messages.EntityState{
		{ID: 1},
	}}

	got := MergeSnapshots(prev, next)
	if got.Tick != 12 || len(got.Entities) != 1 {
		t.Fatalf("merged = %+v", got)
	}
	if got.Entities[0].Identity == nil || got.Entities[0].Identity.Player != 3 {
		t.Fatal("identity of replaced snapshot lost")
	}
}
