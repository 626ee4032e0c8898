// Package linkcond simulates a degraded network link on an outbound path by
// delaying and dropping messages before handing them to the real sender.
package linkcond

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

// Conditions describes the simulated link.
type Conditions struct {
	Latency time.Duration
	Jitter  time.Duration // uniform in [-Jitter, +Jitter]
	Loss    float64       // probability an unreliable message is dropped
}

// DeliverFunc sends one message to key over the real link.
type DeliverFunc[K comparable] func(key K, msg any) error

type pending[K comparable] struct {
	due time.Time
	seq uint64
	key K
	msg any
}

// Conditioner buffers messages until their simulated arrival time. Reliable
// messages are never dropped and are delivered in send order per key.
// It is safe for concurrent use.
type Conditioner[K comparable] struct {
	mu      sync.Mutex
	cond    Conditions
	deliver DeliverFunc[K]
	rng     *rand.Rand
	queue   []pending[K]
	seq     uint64
	lastDue map[K]time.Time
	dropped uint64
}

// New returns a Conditioner. seed makes loss and jitter reproducible.
func New[K comparable](cond Conditions, seed uint64, deliver DeliverFunc[K]) *Conditioner[K] {
	return &Conditioner[K]{
		cond:    cond,
		deliver: deliver,
		rng:     rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
		lastDue: make(map[K]time.Time),
	}
}

// Send queues msg for key. Unreliable messages may be dropped.
func (c *Conditioner[K]) Send(now time.Time, key K, msg any, reliable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !reliable && c.cond.Loss > 0 && c.rng.Float64() < c.cond.Loss {
		c.dropped++
		return
	}

	delay := c.cond.Latency
	if c.cond.Jitter > 0 {
		delay += time.Duration(c.rng.Int64N(int64(2*c.cond.Jitter)+1)) - c.cond.Jitter
	}
	if delay < 0 {
		delay = 0
	}
	due := now.Add(delay)
	if reliable {
		if last, ok := c.lastDue[key]; ok && due.Before(last) {
			due = last
		}
		c.lastDue[key] = due
	}

	c.seq++
	c.queue = append(c.queue, pending[K]{due: due, seq: c.seq, key: key, msg: msg})
}

// Pump delivers every message due at or before now, oldest first. Delivery
// errors are discarded.
func (c *Conditioner[K]) Pump(now time.Time) int {
	c.mu.Lock()
	sort.SliceStable(c.queue, func(i, j int) bool {
		if c.queue[i].due.Equal(c.queue[j].due) {
			return c.queue[i].seq < c.queue[j].seq
		}
		return c.queue[i].due.Before(c.queue[j].due)
	})
	n := 0
	for n < len(c.queue) && !c.queue[n].due.After(now) {
		n++
	}
	ready := make([]pending[K], n)
	copy(ready, c.queue[:n])
	c.queue = c.queue[n:]
	c.mu.Unlock()

	for _, p := range ready {
		_ = c.deliver(p.key, p.msg)
	}
	return n
}

// Forget drops queued messages and ordering state for key.
func (c *Conditioner[K]) Forget(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lastDue, key)
	kept := c.queue[:0]
	for _, p := range c.queue {
		if p.key != key {
			kept = append(kept, p)
		}
	}
	c.queue = kept
}

// Pending returns the number of queued messages.
func (c *Conditioner[K]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Dropped returns how many unreliable messages were lost.
func (c *Conditioner[K]) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
