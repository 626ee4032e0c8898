package core

import (
	"time"

	"github.com/automoto/orbitfall/server/rooms"
	"github.com/automoto/orbitfall/shared/netconfig"
)

type envelope struct {
	client   netconfig.ClientID
	msg      any
	reliable bool
}

// Outbox buffers messages produced during a tick and delivers them in queue
// order when the tick flushes. Nothing in the tick ever blocks on the network.
type Outbox struct {
	sink  Sink
	rooms *rooms.Manager
	queue []envelope
	now   func() time.Time
}

func NewOutbox(sink Sink, r *rooms.Manager) *Outbox {
	return &Outbox{sink: sink, rooms: r, now: time.Now}
}

// Send queues a reliable message to one client.
func (o *Outbox) Send(c netconfig.ClientID, msg any) {
	o.queue = append(o.queue, envelope{client: c, msg: msg, reliable: true})
}

// SendUnreliable queues a message that may be dropped by a conditioned link.
func (o *Outbox) SendUnreliable(c netconfig.ClientID, msg any) {
	o.queue = append(o.queue, envelope{client: c, msg: msg})
}

// Broadcast queues a reliable message to every client currently in room.
func (o *Outbox) Broadcast(room netconfig.RoomID, msg any) {
	for _, c := range o.rooms.Clients(room) {
		o.Send(c, msg)
	}
}

// Flush delivers the queue. Send errors are discarded: a failed send means the
// connection dropped and the disconnect path reconciles state.
func (o *Outbox) Flush() {
	for _, env := range o.queue {
		_ = o.sink.Deliver(env.client, env.msg, env.reliable)
	}
	clear(o.queue)
	o.queue = o.queue[:0]
	if p, ok := o.sink.(pumper); ok {
		p.Pump(o.now())
	}
}

// Len returns the number of queued messages.
func (o *Outbox) Len() int {
	return len(o.queue)
}
