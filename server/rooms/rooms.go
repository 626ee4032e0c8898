// Package rooms is the interest-management registry: a room pairs a set of
// clients with a set of entities, and an entity is only replicated to the
// clients of rooms it was explicitly added to.
//
// Manager is not safe for concurrent use. It is owned by the server tick.
package rooms

import (
	"cmp"
	"slices"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

type set[K comparable] map[K]struct{}

func (s set[K]) add(k K) { s[k] = struct{}{} }

func (s set[K]) has(k K) bool {
	_, ok := s[k]
	return ok
}

type room struct {
	clients  set[netconfig.ClientID]
	entities set[donburi.Entity]
}

// Manager owns every room plus reverse indices from client and entity to the
// rooms they belong to.
type Manager struct {
	rooms       map[netconfig.RoomID]*room
	clientRooms map[netconfig.ClientID]set[netconfig.RoomID]
	entityRooms map[donburi.Entity]set[netconfig.RoomID]
}

func NewManager() *Manager {
	return &Manager{
		rooms:       make(map[netconfig.RoomID]*room),
		clientRooms: make(map[netconfig.ClientID]set[netconfig.RoomID]),
		entityRooms: make(map[donburi.Entity]set[netconfig.RoomID]),
	}
}

func (m *Manager) get(id netconfig.RoomID) *room {
	r, ok := m.rooms[id]
	if !ok {
		r = &room{clients: set[netconfig.ClientID]{}, entities: set[donburi.Entity]{}}
		m.rooms[id] = r
	}
	return r
}

// Exists reports whether the room has been created and not deleted.
func (m *Manager) Exists(id netconfig.RoomID) bool {
	_, ok := m.rooms[id]
	return ok
}

func (m *Manager) AddClient(id netconfig.RoomID, c netconfig.ClientID) {
	m.get(id).clients.add(c)
	rs, ok := m.clientRooms[c]
	if !ok {
		rs = set[netconfig.RoomID]{}
		m.clientRooms[c] = rs
	}
	rs.add(id)
}

// RemoveClient removes c from the room. Missing rooms or members are ignored.
func (m *Manager) RemoveClient(id netconfig.RoomID, c netconfig.ClientID) bool {
	r, ok := m.rooms[id]
	if !ok || !r.clients.has(c) {
		return false
	}
	delete(r.clients, c)
	if rs := m.clientRooms[c]; rs != nil {
		delete(rs, id)
		if len(rs) == 0 {
			delete(m.clientRooms, c)
		}
	}
	return true
}

// RemoveClientEverywhere removes c from every room it is in.
func (m *Manager) RemoveClientEverywhere(c netconfig.ClientID) {
	for id := range m.clientRooms[c] {
		delete(m.rooms[id].clients, c)
	}
	delete(m.clientRooms, c)
}

func (m *Manager) AddEntity(id netconfig.RoomID, e donburi.Entity) {
	m.get(id).entities.add(e)
	rs, ok := m.entityRooms[e]
	if !ok {
		rs = set[netconfig.RoomID]{}
		m.entityRooms[e] = rs
	}
	rs.add(id)
}

func (m *Manager) RemoveEntity(id netconfig.RoomID, e donburi.Entity) bool {
	r, ok := m.rooms[id]
	if !ok || !r.entities.has(e) {
		return false
	}
	delete(r.entities, e)
	if rs := m.entityRooms[e]; rs != nil {
		delete(rs, id)
		if len(rs) == 0 {
			delete(m.entityRooms, e)
		}
	}
	return true
}

// RemoveEntityEverywhere removes e from every room it is in.
func (m *Manager) RemoveEntityEverywhere(e donburi.Entity) {
	for id := range m.entityRooms[e] {
		delete(m.rooms[id].entities, e)
	}
	delete(m.entityRooms, e)
}

// Delete drops a room and all of its memberships.
func (m *Manager) Delete(id netconfig.RoomID) {
	r, ok := m.rooms[id]
	if !ok {
		return
	}
	for c := range r.clients {
		if rs := m.clientRooms[c]; rs != nil {
			delete(rs, id)
			if len(rs) == 0 {
				delete(m.clientRooms, c)
			}
		}
	}
	for e := range r.entities {
		if rs := m.entityRooms[e]; rs != nil {
			delete(rs, id)
			if len(rs) == 0 {
				delete(m.entityRooms, e)
			}
		}
	}
	delete(m.rooms, id)
}

// Clients returns the room's clients in ascending order.
func (m *Manager) Clients(id netconfig.RoomID) []netconfig.ClientID {
	r, ok := m.rooms[id]
	if !ok {
		return nil
	}
	out := make([]netconfig.ClientID, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Entities returns the room's entities ordered by entity id.
func (m *Manager) Entities(id netconfig.RoomID) []donburi.Entity {
	r, ok := m.rooms[id]
	if !ok {
		return nil
	}
	out := make([]donburi.Entity, 0, len(r.entities))
	for e := range r.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b donburi.Entity) int {
		return cmp.Compare(a.Id(), b.Id())
	})
	return out
}

func (m *Manager) HasClient(id netconfig.RoomID, c netconfig.ClientID) bool {
	r, ok := m.rooms[id]
	return ok && r.clients.has(c)
}

func (m *Manager) HasEntity(id netconfig.RoomID, e donburi.Entity) bool {
	r, ok := m.rooms[id]
	return ok && r.entities.has(e)
}

// Visible reports whether e is replicated to c through any shared room.
func (m *Manager) Visible(c netconfig.ClientID, e donburi.Entity) bool {
	for id := range m.clientRooms[c] {
		if m.rooms[id].entities.has(e) {
			return true
		}
	}
	return false
}

// RoomsOfEntity returns how many rooms hold e.
func (m *Manager) RoomsOfEntity(e donburi.Entity) int {
	return len(m.entityRooms[e])
}

// Len returns the number of live rooms.
func (m *Manager) Len() int {
	return len(m.rooms)
}
