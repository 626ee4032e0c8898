package main

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestRegistry(ttl time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	reg := NewRegistry(ttl, log.New(io.Discard))
	reg.now = clock.now
	return reg, clock
}

func TestRegistryHeartbeatAndExpiry(t *testing.T) {
	reg, clock := newTestRegistry(90 * time.Second)
	a := reg.Register(ServerInfo{Name: "alpha", Address: "a:5000"})
	b := reg.Register(ServerInfo{Name: "bravo", Address: "b:5000"})
	if a == b || a == "" {
		t.Fatalf("ids not unique: %q %q", a, b)
	}

	clock.t = clock.t.Add(60 * time.Second)
	if !reg.Heartbeat(b, Load{Players: 3, Lobbies: 2, OpenLobbies: 1}) {
		t.Fatal("heartbeat for known server rejected")
	}
	if reg.Heartbeat("missing", Load{}) {
		t.Fatal("heartbeat for unknown server accepted")
	}

	clock.t = clock.t.Add(31 * time.Second)
	list := reg.List()
	if len(list) != 1 || list[0].ID != b || list[0].OpenLobbies != 1 || list[0].Players != 3 {
		t.Fatalf("List = %+v, want only bravo", list)
	}
	if n := reg.Expire(); n != 1 {
		t.Fatalf("Expire = %d, want 1", n)
	}
	if reg.Heartbeat(a, Load{}) {
		t.Fatal("expired server accepted a heartbeat")
	}
}

func TestRegistryListOrder(t *testing.T) {
	reg, _ := newTestRegistry(time.Minute)
	reg.Register(ServerInfo{Name: "charlie"})
	reg.Register(ServerInfo{Name: "alpha"})
	reg.Register(ServerInfo{Name: "bravo", OpenLobbies: 2})

	list := reg.List()
	want := []string{"bravo", "alpha", "charlie"}
	for i, name := range want {
		if list[i].Name != name {
			t.Fatalf("List order = %+v, want %v", list, want)
		}
	}
}
