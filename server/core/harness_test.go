package core

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

const (
	testProtocol uint64 = 0x0b17
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type sent struct {
	client   netconfig.ClientID
	msg      any
	reliable bool
}

// recordingSink stands in for the websocket connections.
type recordingSink struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recordingSink) Deliver(c netconfig.ClientID, msg any, reliable bool) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, sent{client: c, msg: msg, reliable: reliable})
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

// of returns every recorded message of type T sent to c.
func of[T any](r *recordingSink, c netconfig.ClientID) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, m := range r.msgs {
		if v, ok := m.msg.(T); ok && m.client == c {
			out = append(out, v)
		}
	}
	return out
}

func testHangar() *leveldata.Level {
	lvl := &leveldata.Level{
		Name:      "test-hangar",
		MapWidth:  320,
		MapHeight: 192,
		Solids:    []leveldata.Rect{{X: 150, Y: 0, W: 20, H: 40}},
	}
	for i := 0; i < 4; i++ {
		y := 32 + float64(i)*40
		lvl.Spawns[netconfig.TeamRed] = append(lvl.Spawns[netconfig.TeamRed],
			leveldata.SpawnPoint{X: 40, Y: y, Team: netconfig.TeamRed, Index: i})
		lvl.Spawns[netconfig.TeamBlue] = append(lvl.Spawns[netconfig.TeamBlue],
			leveldata.SpawnPoint{X: 280, Y: y, Team: netconfig.TeamBlue, Index: i})
	}
	return lvl
}

type harness struct {
	t    *testing.T
	srv  *Server
	sink *recordingSink
}

func newHarness(t *testing.T, mods ...func(*Options)) *harness {
	t.Helper()
	sink := &recordingSink{}
	opts := Options{
		TickRate:       60,
		BroadcastEvery: 6,
		ProtocolID:     testProtocol,
		PrivateKey:     testKey,
		Hangar:         testHangar(),
		Seed:           func() uint32 { return 1234 },
		Nonce:          func() []byte { return []byte("fixed-test-nonce") },
	}
	for _, m := range mods {
		m(&opts)
	}
	srv := NewServer(opts, sink)
	return &harness{t: t, srv: srv, sink: sink}
}

// shortSession shrinks session timing for the duration of a test.
func shortSession(t *testing.T, countdown, game time.Duration, maxScore int) {
	t.Helper()
	old := config.Session
	config.Session.Countdown = countdown
	config.Session.GameDuration = game
	config.Session.MaxScore = maxScore
	t.Cleanup(func() { config.Session = old })
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.srv.Step()
	}
}

// stepFor runs enough ticks to cover d.
func (h *harness) stepFor(d time.Duration) {
	h.step(int(d/h.srv.dt) + 1)
}

// join connects and authenticates c.
func (h *harness) join(c netconfig.ClientID) {
	h.t.Helper()
	h.srv.Inbox().Connected(c)
	h.step(1)
	challenges := of[messages.Challenge](h.sink, c)
	if len(challenges) == 0 {
		h.t.Fatalf("client %d got no challenge", c)
	}
	nonce := challenges[len(challenges)-1].Nonce
	h.srv.Inbox().Received(c, messages.JoinRequest{
		ProtocolID: testProtocol,
		Proof:      messages.ComputeProof(testKey, testProtocol, nonce),
		PlayerName: "pilot",
		Version:    config.Network.Version,
	})
	h.step(1)
	if len(of[messages.JoinAccepted](h.sink, c)) == 0 {
		h.t.Fatalf("client %d was not accepted", c)
	}
}

func (h *harness) matchmake(c netconfig.ClientID, size uint8) {
	h.srv.Inbox().Received(c, messages.Matchmake{LobbySize: size})
	h.step(1)
}

func (h *harness) exit(c netconfig.ClientID) {
	h.srv.Inbox().Received(c, messages.ExitLobby{})
	h.step(1)
}

func (h *harness) disconnect(c netconfig.ClientID) {
	h.srv.Inbox().Disconnected(c, nil)
	h.step(1)
}

// startGame fills a lobby of size len(clients) and runs the countdown.
func (h *harness) startGame(clients ...netconfig.ClientID) LobbyInfo {
	h.t.Helper()
	for _, c := range clients {
		h.join(c)
		h.matchmake(c, uint8(len(clients)))
	}
	h.stepFor(config.Session.Countdown)
	info, ok := h.srv.LobbyOf(clients[0])
	if !ok || info.State != netconfig.SessionInGame {
		h.t.Fatalf("lobby not in game after countdown: %+v", info)
	}
	return info
}

// checkIndex asserts LobbyInfos and member lists agree in both directions.
func (h *harness) checkIndex() {
	h.t.Helper()
	for c, e := range h.srv.lobbyInfos {
		info, ok := h.srv.lobbyInfo(e)
		if !ok {
			h.t.Fatalf("client %d indexed to dead lobby", c)
		}
		if !slices.Contains(info.Members, c) {
			h.t.Fatalf("client %d indexed to lobby %d but not a member %v", c, info.ID, info.Members)
		}
	}
	for _, info := range h.srv.Lobbies() {
		if len(info.Members) > info.Size {
			h.t.Fatalf("lobby %d over capacity: %d > %d", info.ID, len(info.Members), info.Size)
		}
		for _, c := range info.Members {
			got, ok := h.srv.LobbyOf(c)
			if !ok || got.ID != info.ID {
				h.t.Fatalf("member %d of lobby %d not indexed to it", c, info.ID)
			}
		}
	}
}

// lobbyEntry returns the lobby entity c is recorded in.
func (h *harness) lobbyEntry(c netconfig.ClientID) *donburi.Entry {
	h.t.Helper()
	entry, ok := h.srv.entry(h.srv.lobbyInfos[c])
	if !ok {
		h.t.Fatalf("client %d has no lobby", c)
	}
	return entry
}

// owned returns the action, ship and weapon entities of c.
func (h *harness) owned(c netconfig.ClientID) []donburi.Entity {
	var out []donburi.Entity
	for k := range h.srv.players {
		if e, ok := h.srv.players[k][netconfig.PlayerOf(c)]; ok {
			out = append(out, e)
		}
	}
	return out
}

// kill drops victim's ship to zero health and runs the tick that scores it.
func (h *harness) kill(victim, killer netconfig.ClientID) {
	h.t.Helper()
	if !h.srv.ApplyDamage(netconfig.PlayerOf(victim), netconfig.PlayerOf(killer), 10_000) {
		h.t.Fatalf("damage to client %d not applied", victim)
	}
	h.step(1)
}
