// Package core is the authoritative game server: connection handshake,
// matchmaking, room binding, the per-lobby session state machine, the player
// lifecycle and scoring. All state is owned by the tick; transport goroutines
// only touch the Inbox and the Sink.
package core

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync/atomic"
	"time"

	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/server/rooms"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/charmbracelet/log"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// playerKind indexes the per-player entity maps.
type playerKind int

const (
	kindAction playerKind = iota
	kindSpaceship
	kindWeapon
	kindCount
)

// Options configures a Server.
type Options struct {
	TickRate       int
	BroadcastEvery int // ticks between snapshots
	ProtocolID     uint64
	PrivateKey     []byte
	Hangar         *leveldata.Level
	Logger         *log.Logger
	// Seed returns the terrain seed for a new game. Defaults to crypto/rand.
	Seed func() uint32
	// Nonce returns a fresh handshake challenge. Defaults to crypto/rand.
	Nonce func() []byte
}

// clientRecord is the server's view of one connection.
type clientRecord struct {
	authenticated bool
	rejected      bool
	nonce         []byte
	name          string
	token         string
}

// Stats is a lock-free summary for the master server heartbeat.
type Stats struct {
	Players     int
	Lobbies     int
	OpenLobbies int
}

// Server manages the game state and client connections
type Server struct {
	world  donburi.World
	ecs    *ecs.ECS
	rooms  *rooms.Manager
	inbox  *Inbox
	outbox *Outbox
	hier   *hierarchy

	opts Options
	dt   time.Duration
	tick uint32
	// clock is simulated session time, advanced by dt each tick.
	clock time.Duration

	clients    map[netconfig.ClientID]*clientRecord
	lobbyInfos map[netconfig.ClientID]donburi.Entity
	lobbies    []donburi.Entity // creation order, first-fit scans this
	players    [kindCount]map[netconfig.PlayerID]donburi.Entity
	arenas     map[donburi.Entity]*collision.Level
	// sentOnce records which SyncOnce data each client already received.
	sentOnce map[netconfig.ClientID]map[donburi.Entity]struct{}

	nextLobby netconfig.LobbyID
	nextNetID esync.NetworkId

	log      *log.Logger
	logLobby *log.Logger
	logLife  *log.Logger
	logSess  *log.Logger

	statPlayers, statLobbies, statOpen atomic.Int64
}

// NewServer creates a game server that sends through sink.
func NewServer(opts Options, sink Sink) *Server {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Seed == nil {
		opts.Seed = randomSeed
	}
	if opts.Nonce == nil {
		opts.Nonce = randomNonce
	}

	world := donburi.NewWorld()
	r := rooms.NewManager()

	s := &Server{
		world:      world,
		ecs:        ecs.NewECS(world),
		rooms:      r,
		inbox:      NewInbox(config.Network.InboxSize),
		outbox:     NewOutbox(sink, r),
		hier:       newHierarchy(),
		opts:       opts,
		dt:         time.Second / time.Duration(opts.TickRate),
		clients:    make(map[netconfig.ClientID]*clientRecord),
		lobbyInfos: make(map[netconfig.ClientID]donburi.Entity),
		arenas:     make(map[donburi.Entity]*collision.Level),
		sentOnce:   make(map[netconfig.ClientID]map[donburi.Entity]struct{}),
		log:        opts.Logger,
		logLobby:   opts.Logger.WithPrefix("matchmaking"),
		logLife:    opts.Logger.WithPrefix("lifecycle"),
		logSess:    opts.Logger.WithPrefix("session"),
	}
	for k := range s.players {
		s.players[k] = make(map[netconfig.PlayerID]donburi.Entity)
	}

	InboundEvent.Subscribe(world, func(_ donburi.World, in Inbound) { s.dispatch(in.cmd) })
	ClientExitLobbyEvent.Subscribe(world, func(_ donburi.World, ev ClientExitLobby) { s.handleClientExit(ev) })
	KillEventType.Subscribe(world, func(_ donburi.World, ev KillEvent) { s.handleKill(ev) })

	s.ecs.AddSystem(s.systemInbound)
	s.ecs.AddSystem(s.systemShips)
	s.ecs.AddSystem(s.systemAmmo)
	s.ecs.AddSystem(s.systemKills)
	s.ecs.AddSystem(s.systemSessions)
	s.ecs.AddSystem(s.systemReplication)

	return s
}

// Step runs one fixed tick and flushes queued messages.
func (s *Server) Step() {
	s.tick++
	s.clock += s.dt
	s.ecs.Update()
	s.outbox.Flush()
	s.publishStats()
}

// Inbox returns the queue transport callbacks feed.
func (s *Server) Inbox() *Inbox {
	return s.inbox
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// Rooms returns the interest-management registry.
func (s *Server) Rooms() *rooms.Manager {
	return s.rooms
}

// Stats returns the latest published counters. Safe from any goroutine.
func (s *Server) Stats() Stats {
	return Stats{
		Players:     int(s.statPlayers.Load()),
		Lobbies:     int(s.statLobbies.Load()),
		OpenLobbies: int(s.statOpen.Load()),
	}
}

func (s *Server) publishStats() {
	open := 0
	for _, l := range s.lobbies {
		if s.joinable(s.world.Entry(l)) {
			open++
		}
	}
	s.statPlayers.Store(int64(len(s.clients)))
	s.statLobbies.Store(int64(len(s.lobbies)))
	s.statOpen.Store(int64(open))
}

// systemInbound applies queued transport commands in arrival order. Exits
// triggered by a command are fully processed before the next command.
func (s *Server) systemInbound(_ *ecs.ECS) {
	for _, cmd := range s.inbox.drain() {
		InboundEvent.Publish(s.world, Inbound{cmd: cmd})
		InboundEvent.ProcessEvents(s.world)
	}
}

func (s *Server) newNetworkID(entry *donburi.Entry) {
	s.nextNetID++
	esync.NetworkIdComponent.SetValue(entry, s.nextNetID)
}

func (s *Server) entry(e donburi.Entity) (*donburi.Entry, bool) {
	if e == donburi.Null || !s.world.Valid(e) {
		return nil, false
	}
	return s.world.Entry(e), true
}

func randomSeed() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func randomNonce() []byte {
	b := make([]byte, config.Network.ChallengeSize)
	_, _ = rand.Read(b)
	return b
}
