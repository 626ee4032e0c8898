package core

import (
	"math/rand/v2"
	"testing"

	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
)

func TestMatchmakeFirstFitAndCapacity(t *testing.T) {
	h := newHarness(t)
	for c := netconfig.ClientID(1); c <= 3; c++ {
		h.join(c)
		h.matchmake(c, 2)
	}

	a, _ := h.srv.LobbyOf(1)
	b, _ := h.srv.LobbyOf(2)
	c, ok := h.srv.LobbyOf(3)
	if !ok {
		t.Fatal("third client has no lobby")
	}
	if a.ID != b.ID {
		t.Fatalf("first two clients split: %d vs %d", a.ID, b.ID)
	}
	if c.ID == a.ID {
		t.Fatal("third client placed in a full lobby")
	}
	if !a.Full || a.State != netconfig.SessionCountdown {
		t.Fatalf("full lobby: Full=%v State=%v", a.Full, a.State)
	}
	if got := of[messages.LobbyData](h.sink, 3); len(got) != 1 || got[0].RoomID != c.Room {
		t.Fatalf("LobbyData to client 3 = %+v, want room %d", got, c.Room)
	}
	h.checkIndex()
}

func TestMatchmakeRespectsRequestedSize(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.matchmake(1, 3)
	h.join(2)
	h.matchmake(2, 2)

	a, _ := h.srv.LobbyOf(1)
	b, _ := h.srv.LobbyOf(2)
	if a.ID == b.ID {
		t.Fatal("clients with different sizes share a lobby")
	}
}

func TestDuplicateMatchmakeIgnored(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.matchmake(1, 3)
	h.matchmake(1, 3)
	h.matchmake(1, 2)

	if n := len(h.srv.Lobbies()); n != 1 {
		t.Fatalf("lobbies = %d, want 1", n)
	}
	info, _ := h.srv.LobbyOf(1)
	if len(info.Members) != 1 {
		t.Fatalf("members = %v", info.Members)
	}
	if n := len(of[messages.LobbyData](h.sink, 1)); n != 1 {
		t.Fatalf("LobbyData sent %d times", n)
	}
}

func TestInvalidLobbySizeIgnored(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	for _, size := range []uint8{0, 7, 255} {
		h.matchmake(1, size)
	}
	if _, ok := h.srv.LobbyOf(1); ok {
		t.Fatal("client placed in a lobby with an invalid size")
	}
	if n := len(h.srv.Lobbies()); n != 0 {
		t.Fatalf("lobbies = %d", n)
	}
}

func TestHandshake(t *testing.T) {
	tests := []struct {
		name     string
		protocol uint64
		key      []byte
		accepted bool
	}{
		{"valid", testProtocol, testKey, true},
		{"wrong protocol", testProtocol + 1, testKey, false},
		{"wrong key", testProtocol, []byte("not the key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.srv.Inbox().Connected(1)
			h.step(1)
			nonce := of[messages.Challenge](h.sink, 1)[0].Nonce
			h.srv.Inbox().Received(1, messages.JoinRequest{
				ProtocolID: tt.protocol,
				Proof:      messages.ComputeProof(tt.key, tt.protocol, nonce),
			})
			h.step(1)

			accepted := of[messages.JoinAccepted](h.sink, 1)
			rejected := of[messages.JoinRejected](h.sink, 1)
			if tt.accepted {
				if len(accepted) != 1 || accepted[0].ClientID != 1 || accepted[0].SessionToken == "" {
					t.Fatalf("JoinAccepted = %+v", accepted)
				}
				if accepted[0].BroadcastIntervalMs != 100 {
					t.Errorf("BroadcastIntervalMs = %d, want 100", accepted[0].BroadcastIntervalMs)
				}
				return
			}
			if len(accepted) != 0 || len(rejected) != 1 {
				t.Fatalf("accepted=%d rejected=%d", len(accepted), len(rejected))
			}
		})
	}
}

func TestUnauthenticatedMessagesDropped(t *testing.T) {
	h := newHarness(t)
	h.srv.Inbox().Connected(1)
	h.matchmake(1, 2)
	if _, ok := h.srv.LobbyOf(1); ok {
		t.Fatal("unauthenticated client was matchmade")
	}

	// Unknown connection.
	h.srv.Inbox().Received(99, messages.Matchmake{LobbySize: 2})
	h.step(1)
	if n := len(h.srv.Lobbies()); n != 0 {
		t.Fatalf("lobbies = %d", n)
	}
}

func TestFullLobbyLosingMemberIsJoinableAgain(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.matchmake(1, 2)
	h.join(2)
	h.matchmake(2, 2)
	h.exit(2)

	info, _ := h.srv.LobbyOf(1)
	if info.Full {
		t.Fatal("full marker not cleared after member left")
	}
	h.join(3)
	h.matchmake(3, 2)
	got, _ := h.srv.LobbyOf(3)
	if got.ID != info.ID {
		t.Fatalf("client 3 in lobby %d, want %d", got.ID, info.ID)
	}
	h.checkIndex()
}

func TestEmptyLobbyDestroyed(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.matchmake(1, 3)
	info, _ := h.srv.LobbyOf(1)
	h.exit(1)

	if n := len(h.srv.Lobbies()); n != 0 {
		t.Fatalf("lobbies = %d, want 0", n)
	}
	if h.srv.Rooms().Exists(info.Room) {
		t.Fatal("room of destroyed lobby still exists")
	}
}

func TestIndexConsistencyUnderRandomOperations(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewPCG(7, 11))
	connected := map[netconfig.ClientID]bool{}

	for i := 0; i < 400; i++ {
		c := netconfig.ClientID(rng.IntN(8) + 1)
		if !connected[c] {
			h.join(c)
			connected[c] = true
			continue
		}
		switch rng.IntN(4) {
		case 0, 1:
			h.matchmake(c, uint8(rng.IntN(3)+1))
		case 2:
			h.exit(c)
		case 3:
			h.disconnect(c)
			connected[c] = false
		}
		h.checkIndex()
	}

	for c, ok := range connected {
		if ok {
			h.disconnect(c)
		}
	}
	h.checkIndex()
	if n := len(h.srv.lobbyInfos); n != 0 {
		t.Fatalf("lobbyInfos has %d entries after everyone left", n)
	}
}
