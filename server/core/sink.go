package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/automoto/orbitfall/shared/linkcond"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/leap-fish/necs/router"
)

// ErrUnknownClient is returned when delivering to a connection that is gone.
var ErrUnknownClient = errors.New("unknown client")

// Sink is the raw send path to connected clients.
type Sink interface {
	Deliver(client netconfig.ClientID, msg any, reliable bool) error
}

// pumper is implemented by sinks that buffer messages.
type pumper interface {
	Pump(now time.Time) int
}

// ConnSink maps client ids to necs connections.
type ConnSink struct {
	mu    sync.RWMutex
	conns map[netconfig.ClientID]*router.NetworkClient
}

func NewConnSink() *ConnSink {
	return &ConnSink{conns: make(map[netconfig.ClientID]*router.NetworkClient)}
}

func (s *ConnSink) add(id netconfig.ClientID, c *router.NetworkClient) {
	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
}

func (s *ConnSink) remove(id netconfig.ClientID) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Deliver sends over the websocket. Every websocket message is reliable; the
// flag only matters to conditioned sinks.
func (s *ConnSink) Deliver(id netconfig.ClientID, msg any, _ bool) error {
	s.mu.RLock()
	c, ok := s.conns[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("deliver to %d: %w", id, ErrUnknownClient)
	}
	return c.SendMessage(msg)
}

// conditionedSink delays and drops outbound messages to simulate a bad link.
type conditionedSink struct {
	cond *linkcond.Conditioner[netconfig.ClientID]
	now  func() time.Time
}

// NewConditionedSink wraps inner with simulated latency, jitter and loss.
func NewConditionedSink(inner Sink, c linkcond.Conditions, seed uint64) Sink {
	return &conditionedSink{
		cond: linkcond.New(c, seed, func(id netconfig.ClientID, msg any) error {
			return inner.Deliver(id, msg, true)
		}),
		now: time.Now,
	}
}

func (s *conditionedSink) Deliver(id netconfig.ClientID, msg any, reliable bool) error {
	s.cond.Send(s.now(), id, msg, reliable)
	return nil
}

func (s *conditionedSink) Pump(now time.Time) int {
	return s.cond.Pump(now)
}
