package scenes

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/network"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/systems"
	"github.com/automoto/orbitfall/tags"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var shipQuery = donburi.NewQuery(filter.Contains(tags.Spaceship, components.PlayerOwner))

type fakeConn struct {
	state    network.ClientState
	id       netconfig.ClientID
	dialed   []string
	events   []any
	snapshot *messages.RoomSnapshot
	sent     []any
}

func (c *fakeConn) Connect(address string) {
	c.dialed = append(c.dialed, address)
	c.state = network.StateConnecting
}
func (c *fakeConn) Disconnect()                      { c.state = network.StateDisconnected }
func (c *fakeConn) LastError() error                 { return nil }
func (c *fakeConn) State() network.ClientState       { return c.state }
func (c *fakeConn) ClientID() netconfig.ClientID     { return c.id }
func (c *fakeConn) BroadcastInterval() time.Duration { return 100 * time.Millisecond }
func (c *fakeConn) Pump(time.Time)                   {}
func (c *fakeConn) SendMessage(msg any) error        { c.sent = append(c.sent, msg); return nil }
func (c *fakeConn) LatestSnapshot() *messages.RoomSnapshot {
	s := c.snapshot
	c.snapshot = nil
	return s
}
func (c *fakeConn) DrainEvents() []any {
	ev := c.events
	c.events = nil
	return ev
}

type statusLog struct {
	notInLobby []string
	started    int
}

func (v *statusLog) ShowNotInLobby(reason string)                      { v.notInLobby = append(v.notInLobby, reason) }
func (v *statusLog) ShowLobbyStatus(netconfig.RoomID, int, int)        {}
func (v *statusLog) ShowGameStarted(uint32)                            { v.started++ }
func (v *statusLog) ShowScore(messages.GameScore)                      {}
func (v *statusLog) ShowGameResult(messages.GameScore, netconfig.Team) {}

func testHangar() *leveldata.Level {
	lvl := &leveldata.Level{Name: "hangar", MapWidth: 320, MapHeight: 192}
	lvl.Spawns[netconfig.TeamRed] = []leveldata.SpawnPoint{{X: 40, Y: 96}}
	return lvl
}

func newTestSession(t *testing.T) (*Session, *fakeConn, *statusLog, chan *tcell.EventKey) {
	t.Helper()
	conn := &fakeConn{id: 5}
	view := &statusLog{}
	keys := make(chan *tcell.EventKey, 8)
	s := NewSession(conn, Options{
		Settings: config.Defaults(),
		Hangar:   testHangar(),
		View:     view,
		Keys:     keys,
		Logger:   log.New(io.Discard),
	})
	return s, conn, view, keys
}

func press(keys chan *tcell.EventKey, r rune) {
	keys <- tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestMatchmakeConnectsThenSends(t *testing.T) {
	s, conn, _, keys := newTestSession(t)
	now := time.Now()

	press(keys, 'm')
	s.Tick(now)
	if len(conn.dialed) != 1 || conn.dialed[0] != "127.0.0.1:5000" {
		t.Fatalf("dialed = %v", conn.dialed)
	}
	if len(conn.sent) != 0 {
		t.Fatalf("sent before joining: %v", conn.sent)
	}

	conn.state = network.StateJoined
	s.Tick(now)
	if len(conn.sent) != 1 {
		t.Fatalf("sent = %#v, want one matchmake", conn.sent)
	}
	if mm, ok := conn.sent[0].(messages.Matchmake); !ok || int(mm.LobbySize) != config.Defaults().LobbySize {
		t.Fatalf("sent = %#v", conn.sent[0])
	}
}

func TestSessionLobbyRoundTrip(t *testing.T) {
	s, conn, view, keys := newTestSession(t)
	conn.state = network.StateJoined
	now := time.Now()

	conn.events = []any{messages.LobbyData{RoomID: 2}}
	s.Tick(now)
	if st := s.State(); st.Mode != systems.ModeNetworked || st.Player != netconfig.PlayerOf(5) {
		t.Fatalf("state after LobbyData = %+v", st)
	}
	// Networked ticks send one input each.
	if _, ok := conn.sent[len(conn.sent)-1].(messages.PlayerInput); !ok {
		t.Fatalf("last send = %#v, want input", conn.sent[len(conn.sent)-1])
	}

	conn.events = []any{messages.StartGame{Seed: 99}}
	s.Tick(now)
	if view.started != 1 || !s.State().InGame {
		t.Fatal("StartGame not applied")
	}

	ship, ok := shipQuery.First(s.World())
	if !ok {
		t.Fatal("no ship")
	}
	tr := netcomponents.NetTransform.Get(ship)
	tr.Position.X, tr.Position.Y = 200, 150

	press(keys, 'x')
	s.Tick(now)
	if s.State().Mode != systems.ModeLocal {
		t.Fatal("exit key did not return to the sandbox")
	}
	if pos := netcomponents.NetTransform.Get(ship).Position; math.Abs(pos.X-40) > 1e-9 || math.Abs(pos.Y-96) > 1e-9 {
		t.Fatalf("ship at %v after exit, want hangar spawn (40, 96)", pos)
	}
	var exits int
	for _, m := range conn.sent {
		if _, ok := m.(messages.ExitLobby); ok {
			exits++
		}
	}
	if exits != 1 {
		t.Fatalf("sent %d ExitLobby, want 1", exits)
	}
	if last := view.notInLobby[len(view.notInLobby)-1]; last != "exit" {
		t.Fatalf("last status = %q", last)
	}
}

func TestConnectionErrorReportedOnce(t *testing.T) {
	s, conn, view, _ := newTestSession(t)
	s.Matchmake(s.World())
	conn.state = network.StateError

	s.Tick(time.Now())
	s.Tick(time.Now())
	if n := len(view.notInLobby); n != 2 || view.notInLobby[1] != "connection failed" {
		t.Fatalf("statuses = %v", view.notInLobby)
	}
	if s.pendingMatchmake {
		t.Fatal("matchmake still pending after error")
	}
}

func TestApplyProfile(t *testing.T) {
	s := config.Defaults()
	ApplyProfile(s, &systems.Profile{PlayerName: "vega", LobbySize: 4, LastServer: "10.0.0.2:7000"})
	if s.PlayerName != "vega" || s.LobbySize != 4 || s.Addr() != "10.0.0.2:7000" {
		t.Fatalf("settings = %+v", s)
	}

	s = config.Defaults()
	s.PlayerName = "flag"
	ApplyProfile(s, &systems.Profile{PlayerName: "vega", LobbySize: 99})
	if s.PlayerName != "flag" || s.LobbySize != config.Defaults().LobbySize {
		t.Fatalf("explicit settings overridden: %+v", s)
	}
	if p := ProfileOf(s); p.LastServer != s.Addr() {
		t.Fatalf("profile = %+v", p)
	}
}
