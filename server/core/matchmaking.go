package core

import (
	"errors"
	"slices"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
)

// ErrInvalidLobbySize is logged when a client requests a size outside 1..MaxSize.
var ErrInvalidLobbySize = errors.New("invalid lobby size")

// handleMatchmake assigns client to the first open lobby of the requested
// size, creating one if none has room.
func (s *Server) handleMatchmake(client netconfig.ClientID, size int) {
	if _, ok := s.lobbyInfos[client]; ok {
		s.logLobby.Warn("duplicate matchmake request ignored", "client", client)
		return
	}
	if size < 1 || size > config.Lobby.MaxSize {
		s.logLobby.Warn("matchmake request ignored", "client", client, "size", size, "err", ErrInvalidLobbySize)
		return
	}

	entry := s.findLobby(size)
	if entry == nil {
		entry = s.createLobby(size)
	}
	lobby := components.Lobby.Get(entry)

	if !lobby.Add(client) {
		// joinable() checked capacity; this only trips if the lobby changed under us.
		s.logLobby.Warn("lobby refused member", "client", client, "lobby", lobby.ID)
		return
	}
	if !lobby.HasRoom() {
		entry.AddComponent(tags.LobbyFull)
		s.startCountdown(entry)
	}
	s.rooms.AddClient(lobby.Room, client)
	s.lobbyInfos[client] = entry.Entity()
	s.spawnPlayer(entry, client)

	s.logLobby.Info("client joined lobby", "client", client, "lobby", lobby.ID, "members", lobby.Len(), "size", lobby.Size)
	s.outbox.Send(client, messages.LobbyData{RoomID: lobby.Room})
	s.broadcastLobbyStatus(entry)
}

// findLobby returns the first lobby in creation order that can take a member
// of the requested size, or nil.
func (s *Server) findLobby(size int) *donburi.Entry {
	for _, e := range s.lobbies {
		entry, ok := s.entry(e)
		if !ok {
			continue
		}
		if components.Lobby.Get(entry).Size == size && s.joinable(entry) {
			return entry
		}
	}
	return nil
}

// joinable reports whether a lobby may be offered to a new member. The
// length check is authoritative; the full marker only short-circuits it.
func (s *Server) joinable(entry *donburi.Entry) bool {
	if entry.HasComponent(tags.LobbyFull) || entry.HasComponent(tags.InGame) {
		return false
	}
	if components.Session.Get(entry).State != netconfig.SessionWaiting {
		return false
	}
	return components.Lobby.Get(entry).HasRoom()
}

func (s *Server) createLobby(size int) *donburi.Entry {
	s.nextLobby++
	id := s.nextLobby

	entry := archetypes.Lobby.Spawn(s.world)
	components.Lobby.SetValue(entry, components.LobbyData{
		ID:   id,
		Room: netconfig.RoomFor(id),
		Size: size,
	})
	components.Session.SetValue(entry, components.SessionData{
		State:    netconfig.SessionWaiting,
		MaxScore: config.Session.MaxScore,
	})

	if s.opts.Hangar != nil {
		s.arenas[entry.Entity()] = collision.NewLevel(s.opts.Hangar)
		s.createSpawnPoints(entry, s.opts.Hangar, true)
	}
	s.lobbies = append(s.lobbies, entry.Entity())

	s.logLobby.Info("lobby created", "lobby", id, "room", netconfig.RoomFor(id), "size", size)
	return entry
}

// destroyLobby removes the lobby, its spawn points and its room.
func (s *Server) destroyLobby(entry *donburi.Entry) {
	lobby := components.Lobby.Get(entry)
	s.destroySpawnPoints(entry)
	for _, e := range s.rooms.Entities(lobby.Room) {
		s.despawn(e)
	}
	s.rooms.Delete(lobby.Room)
	delete(s.arenas, entry.Entity())
	if i := slices.Index(s.lobbies, entry.Entity()); i >= 0 {
		s.lobbies = slices.Delete(s.lobbies, i, i+1)
	}
	s.logLobby.Info("lobby destroyed", "lobby", lobby.ID)
	s.world.Remove(entry.Entity())
}

func (s *Server) broadcastLobbyStatus(entry *donburi.Entry) {
	lobby := components.Lobby.Get(entry)
	s.outbox.Broadcast(lobby.Room, messages.LobbyStatus{
		RoomID:      lobby.Room,
		ClientCount: uint8(lobby.Len()),
	})
}

// spawnPlayer creates the action entity and the spaceship (with its weapon)
// for client, binds them to the lobby room and indexes them by player.
func (s *Server) spawnPlayer(lobbyEntry *donburi.Entry, client netconfig.ClientID) {
	lobby := components.Lobby.Get(lobbyEntry)
	player := netconfig.PlayerOf(client)

	action := archetypes.Action.Spawn(s.world)
	s.newNetworkID(action)
	components.PlayerOwner.SetValue(action, components.PlayerOwnerData{Player: player})
	netcomponents.NetIdentity.SetValue(action, netcomponents.NetIdentityData{
		Player: player,
		Kind:   netconfig.KindAction,
	})
	s.bindToRoom(action, lobby.Room)
	s.indexPlayer(kindAction, player, action.Entity())

	team := components.SpawnPools.Get(lobbyEntry).BalancedTeam()
	shipType := netconfig.ShipType((lobby.Len() - 1) % 2)
	s.spawnShip(lobbyEntry, player, team, shipType)
}

func (s *Server) spawnShip(lobbyEntry *donburi.Entry, player netconfig.PlayerID, team netconfig.Team, shipType netconfig.ShipType) {
	lobby := components.Lobby.Get(lobbyEntry)
	shipCfg := config.Ships[shipType]

	ship := archetypes.Spaceship.Spawn(s.world)
	s.newNetworkID(ship)
	components.Ship.SetValue(ship, components.ShipData{Type: shipType, Team: team, Lobby: lobbyEntry.Entity()})
	components.PlayerOwner.SetValue(ship, components.PlayerOwnerData{Player: player})
	netcomponents.NetIdentity.SetValue(ship, netcomponents.NetIdentityData{
		Player: player,
		Team:   team,
		Kind:   netconfig.KindSpaceship,
		Ship:   shipType,
		Weapon: shipCfg.Weapon,
	})
	netcomponents.NetHealth.SetValue(ship, netcomponents.NetHealthData{Current: shipCfg.Health, Max: shipCfg.Health})
	netcomponents.NetVelocity.SetValue(ship, netcomponents.NetVelocityData{
		LinearDamping:  shipCfg.Movement.LinearDamping,
		AngularDamping: shipCfg.Movement.AngularDamping,
	})
	s.placeAtSpawn(ship, lobbyEntry, team)

	weapon := archetypes.Weapon.Spawn(s.world)
	s.newNetworkID(weapon)
	components.Weapon.SetValue(weapon, components.WeaponData{Type: shipCfg.Weapon})
	netcomponents.NetIdentity.SetValue(weapon, netcomponents.NetIdentityData{
		Player: player,
		Team:   team,
		Kind:   netconfig.KindWeapon,
		Weapon: shipCfg.Weapon,
	})
	s.attachChild(ship, weapon)

	s.bindToRoom(ship, lobby.Room)
	s.indexPlayer(kindSpaceship, player, ship.Entity())
	s.indexPlayer(kindWeapon, player, weapon.Entity())
}

func (s *Server) indexPlayer(kind playerKind, p netconfig.PlayerID, e donburi.Entity) {
	if old, ok := s.players[kind][p]; ok && old != e {
		s.logLife.Warn("replacing indexed entity", "player", p, "kind", kind)
		s.despawn(old)
	}
	s.players[kind][p] = e
}

// playerEntry looks up a player's entity of the given kind.
func (s *Server) playerEntry(kind playerKind, p netconfig.PlayerID) (*donburi.Entry, bool) {
	e, ok := s.players[kind][p]
	if !ok {
		return nil, false
	}
	return s.entry(e)
}
