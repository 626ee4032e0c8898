package core

import (
	"sync"

	"github.com/automoto/orbitfall/shared/netconfig"
)

// command is one inbound transport event, queued by the transport goroutines
// and applied by the tick in arrival order.
type command interface {
	clientID() netconfig.ClientID
}

type connectCmd struct {
	client netconfig.ClientID
}

type disconnectCmd struct {
	client netconfig.ClientID
	err    error
}

type messageCmd struct {
	client netconfig.ClientID
	msg    any
}

func (c connectCmd) clientID() netconfig.ClientID    { return c.client }
func (c disconnectCmd) clientID() netconfig.ClientID { return c.client }
func (c messageCmd) clientID() netconfig.ClientID    { return c.client }

// Inbox is the only state shared between transport goroutines and the tick.
type Inbox struct {
	mu    sync.Mutex
	queue []command
}

func NewInbox(capacity int) *Inbox {
	return &Inbox{queue: make([]command, 0, capacity)}
}

// Connected queues a new connection.
func (in *Inbox) Connected(c netconfig.ClientID) {
	in.push(connectCmd{client: c})
}

// Disconnected queues a dropped connection.
func (in *Inbox) Disconnected(c netconfig.ClientID, err error) {
	in.push(disconnectCmd{client: c, err: err})
}

// Received queues a decoded message from c.
func (in *Inbox) Received(c netconfig.ClientID, msg any) {
	in.push(messageCmd{client: c, msg: msg})
}

func (in *Inbox) push(cmd command) {
	in.mu.Lock()
	in.queue = append(in.queue, cmd)
	in.mu.Unlock()
}

// drain returns every queued command and empties the inbox.
func (in *Inbox) drain() []command {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.queue) == 0 {
		return nil
	}
	out := in.queue
	in.queue = make([]command, 0, cap(out))
	return out
}
