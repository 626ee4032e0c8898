package core

import (
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// systemReplication sends each client in a lobby room a snapshot of the
// entities bound to that room. Identity is sent once per client and entity.
func (s *Server) systemReplication(_ *ecs.ECS) {
	if s.tick%uint32(s.opts.BroadcastEvery) != 0 {
		return
	}
	for _, le := range s.lobbies {
		lobbyEntry, ok := s.entry(le)
		if !ok {
			continue
		}
		room := components.Lobby.Get(lobbyEntry).Room
		ents := s.rooms.Entities(room)
		for _, c := range s.rooms.Clients(room) {
			snap, once := s.snapshotFor(c, room, ents)
			if once {
				s.outbox.Send(c, snap)
			} else {
				s.outbox.SendUnreliable(c, snap)
			}
		}
	}
}

// snapshotFor builds one client's view of room. It reports whether the
// snapshot carries data that will not be repeated.
func (s *Server) snapshotFor(c netconfig.ClientID, room netconfig.RoomID, ents []donburi.Entity) (messages.RoomSnapshot, bool) {
	sent := s.sentOnce[c]
	if sent == nil {
		sent = make(map[donburi.Entity]struct{})
		s.sentOnce[c] = sent
	}

	snap := messages.RoomSnapshot{
		RoomID:   room,
		Tick:     s.tick,
		Entities: make([]messages.EntityState, 0, len(ents)),
	}
	once := false
	for _, e := range ents {
		entry, ok := s.entry(e)
		if !ok || !entry.HasComponent(esync.NetworkIdComponent) {
			continue
		}
		st := messages.EntityState{ID: *esync.NetworkIdComponent.Get(entry)}

		if entry.HasComponent(netcomponents.NetIdentity) {
			if _, done := sent[e]; !done {
				id := *netcomponents.NetIdentity.Get(entry)
				st.Identity = &id
				sent[e] = struct{}{}
				once = true
			}
		}
		if entry.HasComponent(netcomponents.NetTransform) {
			tr := *netcomponents.NetTransform.Get(entry)
			st.Transform = &tr
		}
		if entry.HasComponent(netcomponents.NetVelocity) {
			v := *netcomponents.NetVelocity.Get(entry)
			st.Velocity = &v
		}
		if entry.HasComponent(netcomponents.NetHealth) {
			h := *netcomponents.NetHealth.Get(entry)
			st.Health = &h
		}
		if entry.HasComponent(netcomponents.NetInputAck) {
			st.Ack = netcomponents.NetInputAck.Get(entry).LastSequence
		}
		snap.Entities = append(snap.Entities, st)
	}
	return snap, once
}

// forgetEntity drops e from every client's once-sent record so a recycled
// entity handle is treated as new.
func (s *Server) forgetEntity(e donburi.Entity) {
	for _, sent := range s.sentOnce {
		delete(sent, e)
	}
}
