package main

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ServerInfo describes a game server visible to clients.
type ServerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
	Lobbies     int    `json:"lobbies"`
	OpenLobbies int    `json:"openLobbies"`
	Version     string `json:"version"`
	Region      string `json:"region"`
}

// Load is the part of ServerInfo a heartbeat refreshes.
type Load struct {
	Players     int
	Lobbies     int
	OpenLobbies int
}

type serverRecord struct {
	ServerInfo
	LastSeen time.Time
}

// Registry is an in-memory store of active game servers with TTL-based expiry.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*serverRecord
	ttl     time.Duration
	now     func() time.Time
	log     *log.Logger
}

func NewRegistry(ttl time.Duration, logger *log.Logger) *Registry {
	return &Registry{
		servers: make(map[string]*serverRecord),
		ttl:     ttl,
		now:     time.Now,
		log:     logger,
	}
}

func (r *Registry) Register(info ServerInfo) string {
	info.ID = uuid.NewString()

	r.mu.Lock()
	r.servers[info.ID] = &serverRecord{
		ServerInfo: info,
		LastSeen:   r.now(),
	}
	r.mu.Unlock()

	return info.ID
}

func (r *Registry) Heartbeat(id string, load Load) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.servers[id]
	if !ok {
		return false
	}
	rec.LastSeen = r.now()
	rec.Players = load.Players
	rec.Lobbies = load.Lobbies
	rec.OpenLobbies = load.OpenLobbies
	return true
}

// List returns live servers, those with open lobbies first.
func (r *Registry) List() []ServerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	result := make([]ServerInfo, 0, len(r.servers))
	for _, rec := range r.servers {
		if now.Sub(rec.LastSeen) < r.ttl {
			result = append(result, rec.ServerInfo)
		}
	}
	slices.SortFunc(result, func(a, b ServerInfo) int {
		if c := cmp.Compare(b.OpenLobbies, a.OpenLobbies); c != 0 {
			return c
		}
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return result
}

// Expire drops every server not seen within the TTL and returns how many.
func (r *Registry) Expire() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, rec := range r.servers {
		if age := now.Sub(rec.LastSeen); age >= r.ttl {
			r.log.Info("expired server", "name", rec.Name, "id", id, "lastSeen", age.Round(time.Second))
			delete(r.servers, id)
			n++
		}
	}
	return n
}

// CleanupLoop expires servers every interval until stop closes.
func (r *Registry) CleanupLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Expire()
		}
	}
}
