package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/automoto/orbitfall/shared/linkcond"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoined
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by SendMessage before the socket is open.
var ErrNotConnected = errors.New("not connected")

// Disconnected is delivered on the event channel when the connection drops.
type Disconnected struct {
	Err error
}

// Options configures a Client.
type Options struct {
	ProtocolID uint64
	PrivateKey []byte
	PlayerName string
	Version    string
	Link       linkcond.Conditions
	Logger     *log.Logger
}

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	opts      Options
	log       *log.Logger
	state     ClientState
	lastError error
	clientID  netconfig.ClientID
	token     string
	tickRate  int
	interval  time.Duration
	conn      *websocket.Conn
	cond      *linkcond.Conditioner[struct{}]

	// Reliable messages in arrival order, unbounded so none is lost.
	evMu   sync.Mutex
	events []any
	// Latest snapshot wins; Once data of replaced snapshots is carried over.
	snapshot chan messages.RoomSnapshot
}

func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	c := &Client{
		opts:     opts,
		log:      opts.Logger.WithPrefix("client"),
		state:    StateDisconnected,
		snapshot: make(chan messages.RoomSnapshot, 1),
	}
	if opts.Link.Latency > 0 || opts.Link.Jitter > 0 || opts.Link.Loss > 0 {
		c.cond = linkcond.New(opts.Link, uint64(time.Now().UnixNano()), func(_ struct{}, msg any) error {
			return c.write(msg)
		})
	}
	return c
}

// Connect dials the server in a background goroutine. The join handshake
// runs when the server's challenge arrives.
func (c *Client) Connect(address string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Info("connected to server", "address", address)
		c.setState(StateConnected)
	})

	router.On(func(_ *router.NetworkClient, msg messages.Challenge) {
		req := messages.JoinRequest{
			ProtocolID: c.opts.ProtocolID,
			Proof:      messages.ComputeProof(c.opts.PrivateKey, c.opts.ProtocolID, msg.Nonce),
			PlayerName: c.opts.PlayerName,
			Version:    c.opts.Version,
		}
		if err := c.write(req); err != nil {
			c.setError(fmt.Errorf("send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.log.Info("join accepted", "client", msg.ClientID, "tickRate", msg.TickRate)
		c.mu.Lock()
		c.clientID = msg.ClientID
		c.token = msg.SessionToken
		c.tickRate = msg.TickRate
		c.interval = time.Duration(msg.BroadcastIntervalMs) * time.Millisecond
		c.state = StateJoined
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.Warn("join rejected", "reason", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	forward[messages.LobbyData](c)
	forward[messages.LobbyStatus](c)
	forward[messages.StartGame](c)
	forward[messages.EndGame](c)
	forward[messages.GameScore](c)

	router.On(func(_ *router.NetworkClient, snap messages.RoomSnapshot) {
		c.pushSnapshot(snap)
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.Info("disconnected", "err", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
		c.pushEvent(Disconnected{Err: err})
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.Warn("transport error", "err", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
			c.pushEvent(Disconnected{Err: err})
		}
	}()
}

// forward queues every message of type T on the event channel.
func forward[T any](c *Client) {
	router.On(func(_ *router.NetworkClient, msg T) {
		c.pushEvent(msg)
	})
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) ClientID() netconfig.ClientID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientID
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// BroadcastInterval is the server's snapshot spacing announced in JoinAccepted.
func (c *Client) BroadcastInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

// DrainEvents returns all pending reliable messages in arrival order, non-blocking.
func (c *Client) DrainEvents() []any {
	c.evMu.Lock()
	defer c.evMu.Unlock()
	out := c.events
	c.events = nil
	return out
}

// LatestSnapshot returns the most recent RoomSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *messages.RoomSnapshot {
	select {
	case snap := <-c.snapshot:
		return &snap
	default:
		return nil
	}
}

// SendMessage sends msg to the server, through the link conditioner if one
// is configured. Inputs are sent unreliably, everything else reliably.
func (c *Client) SendMessage(msg any) error {
	if c.cond == nil {
		return c.write(msg)
	}
	_, input := msg.(messages.PlayerInput)
	c.cond.Send(time.Now(), struct{}{}, msg, !input)
	return nil
}

// Pump releases conditioned messages that are due.
func (c *Client) Pump(now time.Time) {
	if c.cond != nil {
		c.cond.Pump(now)
	}
}

func (c *Client) write(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) pushEvent(ev any) {
	c.evMu.Lock()
	c.events = append(c.events, ev)
	c.evMu.Unlock()
}

// pushSnapshot replaces any unread snapshot with snap, keeping identity data
// the replaced one carried.
func (c *Client) pushSnapshot(snap messages.RoomSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case old := <-c.snapshot:
		snap = MergeSnapshots(old, snap)
	default:
	}
	c.snapshot <- snap
}

// MergeSnapshots returns next with Once data from prev copied onto entities
// next sends without it.
func MergeSnapshots(prev, next messages.RoomSnapshot) messages.RoomSnapshot {
	ids := make(map[esync.NetworkId]int, len(next.Entities))
	for i, e := range next.Entities {
		ids[e.ID] = i
	}
	for _, e := range prev.Entities {
		if e.Identity == nil {
			continue
		}
		if i, ok := ids[e.ID]; ok && next.Entities[i].Identity == nil {
			next.Entities[i].Identity = e.Identity
		}
	}
	return next
}

func (c *Client) setState(s ClientState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
