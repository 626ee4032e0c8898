package linkcond

import (
	"testing"
	"time"
)

type delivery struct {
	key int
	msg any
}

func recorder() (*[]delivery, DeliverFunc[int]) {
	var got []delivery
	return &got, func(k int, m any) error {
		got = append(got, delivery{k, m})
		return nil
	}
}

func TestLatencyDelaysDelivery(t *testing.T) {
	got, deliver := recorder()
	c := New(Conditions{Latency: 50 * time.Millisecond}, 1, deliver)
	t0 := time.Unix(0, 0)

	c.Send(t0, 1, "a", true)
	if n := c.Pump(t0.Add(49 * time.Millisecond)); n != 0 {
		t.Fatalf("delivered %d messages before latency elapsed", n)
	}
	if n := c.Pump(t0.Add(50 * time.Millisecond)); n != 1 {
		t.Fatalf("delivered %d messages after latency, want 1", n)
	}
	if len(*got) != 1 || (*got)[0].msg != "a" {
		t.Fatalf("got %v", *got)
	}
}

func TestReliableNeverDroppedAndOrdered(t *testing.T) {
	got, deliver := recorder()
	c := New(Conditions{Latency: 20 * time.Millisecond, Jitter: 15 * time.Millisecond, Loss: 1}, 7, deliver)
	t0 := time.Unix(0, 0)

	for i := 0; i < 100; i++ {
		c.Send(t0.Add(time.Duration(i)*time.Millisecond), 1, i, true)
	}
	c.Pump(t0.Add(time.Second))

	if len(*got) != 100 {
		t.Fatalf("delivered %d reliable messages, want 100", len(*got))
	}
	for i, d := range *got {
		if d.msg != i {
			t.Fatalf("message %d out of order: got %v", i, d.msg)
		}
	}
}

func TestUnreliableLoss(t *testing.T) {
	got, deliver := recorder()
	c := New(Conditions{Loss: 1}, 3, deliver)
	t0 := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		c.Send(t0, 1, i, false)
	}
	c.Pump(t0)
	if len(*got) != 0 || c.Dropped() != 10 {
		t.Fatalf("delivered %d, dropped %d; want 0 and 10", len(*got), c.Dropped())
	}
}

func TestForgetDropsQueued(t *testing.T) {
	got, deliver := recorder()
	c := New(Conditions{Latency: time.Second}, 1, deliver)
	t0 := time.Unix(0, 0)
	c.Send(t0, 1, "x", true)
	c.Send(t0, 2, "y", true)
	c.Forget(1)
	c.Pump(t0.Add(2 * time.Second))
	if len(*got) != 1 || (*got)[0].key != 2 {
		t.Fatalf("got %v, want only key 2", *got)
	}
	if c.Pending() != 0 {
		t.Fatalf("pending = %d", c.Pending())
	}
}
