package rooms

import (
	"testing"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

var marker = donburi.NewComponentType[struct{}]()

func newEntities(n int) (donburi.World, []donburi.Entity) {
	w := donburi.NewWorld()
	out := make([]donburi.Entity, n)
	for i := range out {
		out[i] = w.Create(marker)
	}
	return w, out
}

func TestVisibilityFollowsRoomMembership(t *testing.T) {
	_, ents := newEntities(2)
	m := NewManager()
	m.AddClient(1, 10)
	m.AddClient(2, 20)
	m.AddEntity(1, ents[0])
	m.AddEntity(2, ents[1])

	if !m.Visible(10, ents[0]) {
		t.Error("client 10 should see entity in its room")
	}
	if m.Visible(10, ents[1]) {
		t.Error("client 10 must not see entity of another room")
	}
	if got := m.Clients(1); len(got) != 1 || got[0] != 10 {
		t.Errorf("Clients(1) = %v", got)
	}
}

func TestRemoveEntityEverywhere(t *testing.T) {
	_, ents := newEntities(1)
	m := NewManager()
	m.AddEntity(1, ents[0])
	m.AddEntity(2, ents[0])
	m.AddClient(1, 10)

	m.RemoveEntityEverywhere(ents[0])

	if m.HasEntity(1, ents[0]) || m.HasEntity(2, ents[0]) {
		t.Fatal("entity still in a room after RemoveEntityEverywhere")
	}
	if m.Visible(10, ents[0]) {
		t.Fatal("removed entity still visible")
	}
	if m.RoomsOfEntity(ents[0]) != 0 {
		t.Fatal("reverse index not cleared")
	}
	// second call is a no-op
	m.RemoveEntityEverywhere(ents[0])
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	m := NewManager()
	m.AddClient(1, 10)
	if !m.RemoveClient(1, 10) {
		t.Fatal("first remove should report true")
	}
	if m.RemoveClient(1, 10) {
		t.Fatal("second remove should report false")
	}
	if m.RemoveClient(99, 10) {
		t.Fatal("remove from unknown room should report false")
	}
}

func TestRemoveClientEverywhere(t *testing.T) {
	m := NewManager()
	m.AddClient(1, 10)
	m.AddClient(2, 10)
	m.AddClient(2, 11)
	m.RemoveClientEverywhere(10)
	if m.HasClient(1, 10) || m.HasClient(2, 10) {
		t.Fatal("client still in a room")
	}
	if !m.HasClient(2, 11) {
		t.Fatal("other client removed")
	}
}

func TestDeleteClearsReverseIndices(t *testing.T) {
	_, ents := newEntities(1)
	m := NewManager()
	m.AddClient(1, 10)
	m.AddEntity(1, ents[0])
	m.Delete(1)

	if m.Exists(1) || m.Len() != 0 {
		t.Fatal("room not deleted")
	}
	if m.Visible(10, ents[0]) || m.RoomsOfEntity(ents[0]) != 0 {
		t.Fatal("stale reverse index after Delete")
	}
	if m.Clients(netconfig.RoomID(1)) != nil {
		t.Fatal("deleted room should have no clients")
	}
}

func TestEntitiesAreOrdered(t *testing.T) {
	_, ents := newEntities(5)
	m := NewManager()
	for i := len(ents) - 1; i >= 0; i-- {
		m.AddEntity(1, ents[i])
	}
	got := m.Entities(1)
	for i := 1; i < len(got); i++ {
		if got[i-1].Id() > got[i].Id() {
			t.Fatalf("entities not ordered: %v", got)
		}
	}
}
