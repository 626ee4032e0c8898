package core

import (
	"slices"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
)

// hierarchy indexes the two parent relations by parent. The parent link
// itself lives on the child as a SceneParent or ReplicationGroup component.
type hierarchy struct {
	scene map[donburi.Entity][]donburi.Entity
	repl  map[donburi.Entity][]donburi.Entity
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		scene: make(map[donburi.Entity][]donburi.Entity),
		repl:  make(map[donburi.Entity][]donburi.Entity),
	}
}

func removeChild(m map[donburi.Entity][]donburi.Entity, parent, child donburi.Entity) {
	kids := m[parent]
	if i := slices.Index(kids, child); i >= 0 {
		kids = slices.Delete(kids, i, i+1)
	}
	if len(kids) == 0 {
		delete(m, parent)
		return
	}
	m[parent] = kids
}

// attachChild makes child a scene child of parent and, unless child is tagged
// NoRecursiveReplication, a replication child as well. Ownership and room
// index are pushed down to the new subtree.
func (s *Server) attachChild(parent, child *donburi.Entry) {
	s.detach(child)

	upsert(child, components.SceneParent, &components.SceneParentData{Parent: parent.Entity()})
	s.hier.scene[parent.Entity()] = append(s.hier.scene[parent.Entity()], child.Entity())

	if !child.HasComponent(tags.NoRecursiveReplication) {
		upsert(child, components.ReplicationGroup, &components.ReplicationGroupData{Parent: parent.Entity()})
		s.hier.repl[parent.Entity()] = append(s.hier.repl[parent.Entity()], child.Entity())
	}

	s.propagate(parent)
}

// detach removes child from both relations.
func (s *Server) detach(child *donburi.Entry) {
	if child.HasComponent(components.SceneParent) {
		removeChild(s.hier.scene, components.SceneParent.Get(child).Parent, child.Entity())
		child.RemoveComponent(components.SceneParent)
	}
	if child.HasComponent(components.ReplicationGroup) {
		removeChild(s.hier.repl, components.ReplicationGroup.Get(child).Parent, child.Entity())
		child.RemoveComponent(components.ReplicationGroup)
	}
}

// propagate copies PlayerOwner and RoomIndex from e to all scene descendants.
func (s *Server) propagate(e *donburi.Entry) {
	for _, c := range s.hier.scene[e.Entity()] {
		child, ok := s.entry(c)
		if !ok {
			continue
		}
		if e.HasComponent(components.PlayerOwner) {
			upsert(child, components.PlayerOwner, components.PlayerOwner.Get(e))
		}
		if e.HasComponent(components.RoomIndex) {
			upsert(child, components.RoomIndex, components.RoomIndex.Get(e))
		}
		s.propagate(child)
	}
}

// sceneChildren returns a copy of e's scene children.
func (s *Server) sceneChildren(e donburi.Entity) []donburi.Entity {
	return slices.Clone(s.hier.scene[e])
}

// replicationSubtree returns e and every replication descendant.
func (s *Server) replicationSubtree(e donburi.Entity) []donburi.Entity {
	out := []donburi.Entity{e}
	for _, c := range s.hier.repl[e] {
		out = append(out, s.replicationSubtree(c)...)
	}
	return out
}

// bindToRoom registers e and its replication group with room and stamps the
// room index on e's scene subtree.
func (s *Server) bindToRoom(e *donburi.Entry, room netconfig.RoomID) {
	upsert(e, components.RoomIndex, &components.RoomIndexData{Room: room})
	s.propagate(e)
	for _, member := range s.replicationSubtree(e.Entity()) {
		if s.world.Valid(member) {
			s.rooms.AddEntity(room, member)
		}
	}
}

// despawn removes e and its scene descendants from every room and from the
// world. Removing an entity that is already gone only clears stale room entries.
func (s *Server) despawn(e donburi.Entity) {
	entry, ok := s.entry(e)
	if !ok {
		s.rooms.RemoveEntityEverywhere(e)
		s.forgetEntity(e)
		return
	}
	for _, c := range s.sceneChildren(e) {
		s.despawn(c)
	}

	s.releaseSpawnClaim(entry)
	s.unindex(entry)
	s.rooms.RemoveEntityEverywhere(e)
	s.forgetEntity(e)
	s.detach(entry)
	delete(s.hier.scene, e)
	delete(s.hier.repl, e)
	s.world.Remove(e)
}

// unindex drops player index entries that point at e.
func (s *Server) unindex(e *donburi.Entry) {
	if !e.HasComponent(components.PlayerOwner) {
		return
	}
	p := components.PlayerOwner.Get(e).Player
	for k := range s.players {
		if s.players[k][p] == e.Entity() {
			delete(s.players[k], p)
		}
	}
}

// upsert sets a component, adding it first if the entry lacks it.
func upsert[T any](e *donburi.Entry, c *donburi.ComponentType[T], v *T) {
	if e.HasComponent(c) {
		c.SetValue(e, *v)
		return
	}
	donburi.Add(e, c, v)
}
