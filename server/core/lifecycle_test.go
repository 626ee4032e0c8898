package core

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

func TestDespawnRemovesRoomMembership(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.matchmake(1, 2)
	info, _ := h.srv.LobbyOf(1)

	ship := h.srv.players[kindSpaceship][netconfig.PlayerOf(1)]
	weapon := h.srv.players[kindWeapon][netconfig.PlayerOf(1)]
	for _, e := range []donburi.Entity{ship, weapon} {
		if !h.srv.Rooms().HasEntity(info.Room, e) {
			t.Fatalf("entity %v not bound to room %d", e, info.Room)
		}
	}

	h.srv.despawn(ship)

	for _, e := range []donburi.Entity{ship, weapon} {
		if h.srv.Rooms().HasEntity(info.Room, e) || h.srv.Rooms().Visible(1, e) {
			t.Fatalf("despawned entity %v still visible", e)
		}
		if h.srv.world.Valid(e) {
			t.Fatalf("entity %v still alive", e)
		}
	}
	if slices.Contains(h.srv.Rooms().Entities(info.Room), ship) {
		t.Fatal("room listing includes despawned ship")
	}

	// Despawning again only clears stale state.
	h.srv.despawn(ship)
}

// lifecycleState renders everything an exit is supposed to touch.
func lifecycleState(h *harness) string {
	out := fmt.Sprintf("infos=%d world=%d rooms=%d", len(h.srv.lobbyInfos), h.srv.world.Len(), h.srv.Rooms().Len())
	for k := range h.srv.players {
		out += fmt.Sprintf(" players[%d]=%d", k, len(h.srv.players[k]))
	}
	for _, info := range h.srv.Lobbies() {
		out += fmt.Sprintf(" lobby%d=%v/%v/%v clients=%v ents=%d", info.ID, info.Members, info.Full, info.State,
			h.srv.Rooms().Clients(info.Room), len(h.srv.Rooms().Entities(info.Room)))
	}
	return out
}

func TestExitIsIdempotent(t *testing.T) {
	setup := func() *harness {
		h := newHarness(t)
		h.join(1)
		h.join(2)
		h.matchmake(1, 3)
		h.matchmake(2, 3)
		return h
	}

	once := setup()
	once.exit(1)

	twice := setup()
	twice.srv.Inbox().Received(1, messages.ExitLobby{})
	twice.srv.Inbox().Disconnected(1, nil)
	twice.step(1)
	ClientExitLobbyEvent.Publish(twice.srv.world, ClientExitLobby{Client: 1, Reason: ExitRequested})
	ClientExitLobbyEvent.ProcessEvents(twice.srv.world)

	if a, b := lifecycleState(once), lifecycleState(twice); a != b {
		t.Fatalf("state differs\nonce:  %s\ntwice: %s", a, b)
	}
	twice.checkIndex()
}

func TestExitWithoutLobbyIsNoop(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	before := lifecycleState(h)
	h.exit(1)
	h.exit(1)
	if after := lifecycleState(h); after != before {
		t.Fatalf("exit without lobby changed state\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestDisconnectDuringGame(t *testing.T) {
	shortSession(t, time.Second, time.Minute, 10)
	h := newHarness(t)
	info := h.startGame(1, 2)
	h.kill(2, 1)

	owned := h.owned(1)
	if len(owned) != int(kindCount) {
		t.Fatalf("client 1 owns %d entities, want %d", len(owned), kindCount)
	}
	h.disconnect(1)

	for _, e := range owned {
		if h.srv.world.Valid(e) {
			t.Errorf("entity %v of disconnected client still alive", e)
		}
		if h.srv.Rooms().HasEntity(info.Room, e) {
			t.Errorf("entity %v of disconnected client still in room", e)
		}
	}
	if h.srv.Rooms().HasClient(info.Room, 1) {
		t.Error("disconnected client still in room")
	}
	if _, ok := h.srv.LobbyOf(1); ok {
		t.Error("disconnected client still indexed")
	}

	rest, ok := h.srv.LobbyOf(2)
	if !ok {
		t.Fatal("remaining client lost its lobby")
	}
	if !slices.Equal(rest.Members, []netconfig.ClientID{2}) {
		t.Errorf("members = %v, want [2]", rest.Members)
	}
	if rest.State != netconfig.SessionInGame || !rest.InGame {
		t.Errorf("remaining session state = %v", rest.State)
	}
	if rest.Score != [netconfig.TeamCount]int{1, 0} {
		t.Errorf("score reset to %v", rest.Score)
	}
	h.step(60)
	if n := len(of[messages.EndGame](h.sink, 2)); n != 0 {
		t.Errorf("spurious EndGame to remaining client")
	}
	if len(h.owned(2)) != int(kindCount) {
		t.Error("remaining client's entities were touched")
	}
	h.checkIndex()
}

func TestEmptyInGameLobbyCleanedUpAtEnd(t *testing.T) {
	shortSession(t, time.Second, 2*time.Second, 10)
	h := newHarness(t)
	h.startGame(1, 2)
	h.disconnect(1)
	h.disconnect(2)

	if n := len(h.srv.Lobbies()); n != 1 {
		t.Fatalf("in-game lobby destroyed eagerly: lobbies = %d", n)
	}
	h.stepFor(2 * time.Second)
	if n := len(h.srv.Lobbies()); n != 0 {
		t.Fatalf("lobby survived end of game: %d", n)
	}
}
