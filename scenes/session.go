// Package scenes drives the client: one tick loop that owns the client world,
// applies server traffic and switches between sandbox and lobby play.
package scenes

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/network"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/systems"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Conn is the client connection as the session uses it. *network.Client
// implements it.
type Conn interface {
	Connect(address string)
	Disconnect()
	State() network.ClientState
	LastError() error
	ClientID() netconfig.ClientID
	BroadcastInterval() time.Duration
	DrainEvents() []any
	LatestSnapshot() *messages.RoomSnapshot
	SendMessage(msg any) error
	Pump(now time.Time)
}

// Drawer renders the world once per tick.
type Drawer interface {
	Draw(w donburi.World, sess *systems.SessionState)
}

type arenaSetter interface {
	SetArena(lvl *leveldata.Level)
}

type Options struct {
	Settings *config.Settings
	Hangar   *leveldata.Level
	View     systems.StatusView
	Drawer   Drawer                 // optional
	Keys     <-chan *tcell.EventKey // optional
	Logger   *log.Logger
}

// Session is the client driver.
type Session struct {
	conn     Conn
	settings *config.Settings
	hangar   *collision.Level
	view     systems.StatusView
	drawer   Drawer
	keys     <-chan *tcell.EventKey
	log      *log.Logger

	ecs     *ecs.ECS
	sess    *systems.SessionState
	input   *systems.InputState
	pred    *systems.Predictor
	netSess *systems.NetSession

	pendingMatchmake bool
	reportedError    bool
	stop             context.CancelFunc
}

func NewSession(conn Conn, opts Options) *Session {
	s := &Session{
		conn:     conn,
		settings: opts.Settings,
		hangar:   collision.NewLevel(opts.Hangar),
		view:     opts.View,
		drawer:   opts.Drawer,
		keys:     opts.Keys,
		log:      opts.Logger.WithPrefix("scene"),
		ecs:      ecs.NewECS(donburi.NewWorld()),
		sess:     &systems.SessionState{LobbySize: opts.Settings.LobbySize},
		input:    &systems.InputState{},
		pred:     systems.NewPredictor(opts.Settings.TickRate),
	}
	s.configure(opts.Logger)
	return s
}

func (s *Session) configure(logger *log.Logger) {
	view := arenaView{StatusView: s.view, s: s}
	s.netSess = systems.NewNetSession(s.sess, view, s.conn.DrainEvents, s.conn.ClientID, logger)
	applier := systems.NewSnapshotApplier(s.sess, s.pred, s.conn.LatestSnapshot, s.interpInterval, logger)
	inputSys := systems.NewInputSystem(s.sess, s.input, s.pred, s, s.conn.SendMessage, logger)
	local := systems.NewLocalSim(s.sess, s.pred, s.settings.TickRate)

	s.ecs.AddSystem(s.netSess.Update)
	s.ecs.AddSystem(applier.Update)
	s.ecs.AddSystem(inputSys.Update)
	s.ecs.AddSystem(local.Update)
	s.ecs.AddSystem(systems.NewNetInterpSystem(s.settings.TickInterval()))

	x, y := s.home()
	systems.SpawnLocal(s.ecs.World, netconfig.ShipInterceptor, x, y)
	view.ShowNotInLobby("sandbox")
}

// home is the sandbox spawn in the hangar.
func (s *Session) home() (float64, float64) {
	if spawns := s.hangar.Level.Spawns[netconfig.TeamRed]; len(spawns) > 0 {
		return spawns[0].X, spawns[0].Y
	}
	return s.hangar.Level.MapWidth / 2, s.hangar.Level.MapHeight / 2
}

func (s *Session) interpInterval() time.Duration {
	if d := s.conn.BroadcastInterval(); d > 0 {
		return d
	}
	return config.Network.InterpDelay
}

func (s *Session) setArena(l *collision.Level) {
	s.pred.SetLevel(l)
	if a, ok := s.drawer.(arenaSetter); ok {
		a.SetArena(l.Level)
	}
}

// Run ticks until ctx ends or the player quits.
func (s *Session) Run(ctx context.Context) error {
	ctx, s.stop = context.WithCancel(ctx)
	defer s.stop()
	defer s.conn.Disconnect()

	ticker := time.NewTicker(s.settings.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick runs one client frame.
func (s *Session) Tick(now time.Time) {
	s.drainKeys()
	s.conn.Pump(now)

	switch s.conn.State() {
	case network.StateJoined:
		s.reportedError = false
		if s.pendingMatchmake {
			s.pendingMatchmake = false
			s.sendMatchmake()
		}
	case network.StateError:
		if !s.reportedError {
			s.reportedError = true
			s.pendingMatchmake = false
			s.log.Warn("connection failed", "err", s.conn.LastError())
			s.view.ShowNotInLobby("connection failed")
		}
	}

	s.ecs.Update()
	if s.drawer != nil {
		s.drawer.Draw(s.ecs.World, s.sess)
	}
}

func (s *Session) drainKeys() {
	for {
		select {
		case ev := <-s.keys:
			s.input.HandleKey(ev)
		default:
			return
		}
	}
}

// State is the client's lobby view.
func (s *Session) State() systems.SessionState {
	return *s.sess
}

func (s *Session) World() donburi.World {
	return s.ecs.World
}

// Matchmake connects first if needed; the request goes out once joined.
func (s *Session) Matchmake(donburi.World) {
	switch s.conn.State() {
	case network.StateJoined:
		s.sendMatchmake()
	case network.StateConnecting, network.StateConnected:
		s.pendingMatchmake = true
	default:
		s.log.Info("connecting", "addr", s.settings.Addr())
		s.conn.Connect(s.settings.Addr())
		s.pendingMatchmake = true
	}
}

func (s *Session) sendMatchmake() {
	if err := s.conn.SendMessage(messages.Matchmake{LobbySize: uint8(s.sess.LobbySize)}); err != nil {
		s.log.Warn("matchmake not sent", "err", err)
	}
}

// Exit leaves the lobby locally right away; the server cleans up on its side.
func (s *Session) Exit(w donburi.World) {
	_ = s.conn.SendMessage(messages.ExitLobby{})
	s.netSess.Leave(w)
}

func (s *Session) Quit() {
	if s.stop != nil {
		s.stop()
	}
}

// arenaView swaps collision geometry as games start and end, and sends the
// sandbox ship home when a lobby is left.
type arenaView struct {
	systems.StatusView
	s *Session
}

func (v arenaView) ShowGameStarted(seed uint32) {
	v.s.setArena(collision.NewArena(seed))
	v.StatusView.ShowGameStarted(seed)
}

func (v arenaView) ShowNotInLobby(reason string) {
	v.s.setArena(v.s.hangar)
	hx, hy := v.s.home()
	systems.PlaceLocal(v.s.ecs.World, hx, hy)
	v.StatusView.ShowNotInLobby(reason)
}

// ApplyProfile fills settings still at their defaults from a saved profile.
func ApplyProfile(s *config.Settings, p *systems.Profile) {
	if p == nil {
		return
	}
	d := config.Defaults()
	if s.PlayerName == d.PlayerName && p.PlayerName != "" {
		s.PlayerName = p.PlayerName
	}
	if s.LobbySize == d.LobbySize && p.LobbySize >= 1 && p.LobbySize <= config.Lobby.MaxSize {
		s.LobbySize = p.LobbySize
	}
	if s.ServerHost == d.ServerHost && s.ServerPort == d.ServerPort && p.LastServer != "" {
		host, port, err := net.SplitHostPort(p.LastServer)
		if err != nil {
			return
		}
		if n, err := strconv.Atoi(port); err == nil {
			s.ServerHost, s.ServerPort = host, n
		}
	}
}

// ProfileOf is what gets saved on exit.
func ProfileOf(s *config.Settings) systems.Profile {
	return systems.Profile{
		PlayerName: s.PlayerName,
		LobbySize:  s.LobbySize,
		LastServer: s.Addr(),
	}
}
