package systems

import (
	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/network"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/charmbracelet/log"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

// Mode is whether the client plays the offline sandbox or a server lobby.
type Mode int

const (
	ModeLocal Mode = iota
	ModeNetworked
)

func (m Mode) String() string {
	if m == ModeNetworked {
		return "networked"
	}
	return "local"
}

// StatusView shows lobby and game state to the player.
type StatusView interface {
	ShowNotInLobby(reason string)
	ShowLobbyStatus(room netconfig.RoomID, members, size int)
	ShowGameStarted(seed uint32)
	ShowScore(score messages.GameScore)
	ShowGameResult(score messages.GameScore, team netconfig.Team)
}

// SessionState is the client's view of its lobby. Owned by the client tick.
type SessionState struct {
	Mode      Mode
	Player    netconfig.PlayerID
	Team      netconfig.Team
	Room      netconfig.RoomID
	LobbySize int
	Members   int
	InGame    bool
	Seed      uint32
	Score     messages.GameScore
}

var (
	ownedQuery     = donburi.NewQuery(filter.Contains(components.PlayerOwner))
	localOnlyQuery = donburi.NewQuery(filter.Contains(tags.LocalOnly))
	replicaQuery   = donburi.NewQuery(filter.Contains(tags.Replicated))
	actionQuery    = donburi.NewQuery(filter.Contains(tags.Action, components.Action))
)

// SpawnLocal creates the sandbox ship, its weapon and the local input entity.
func SpawnLocal(w donburi.World, shipType netconfig.ShipType, x, y float64) *donburi.Entry {
	shipCfg := config.Ships[shipType]

	ship := archetypes.LocalShip.Spawn(w)
	components.PlayerOwner.SetValue(ship, components.PlayerOwnerData{Player: netconfig.LocalPlayer})
	netcomponents.NetIdentity.SetValue(ship, netcomponents.NetIdentityData{
		Player: netconfig.LocalPlayer,
		Kind:   netconfig.KindSpaceship,
		Ship:   shipType,
		Weapon: shipCfg.Weapon,
	})
	tr := netcomponents.NetTransform.Get(ship)
	tr.Position.X, tr.Position.Y = x, y
	netcomponents.NetHealth.SetValue(ship, netcomponents.NetHealthData{Current: shipCfg.Health, Max: shipCfg.Health})
	netcomponents.NetVelocity.SetValue(ship, netcomponents.NetVelocityData{
		LinearDamping:  shipCfg.Movement.LinearDamping,
		AngularDamping: shipCfg.Movement.AngularDamping,
	})

	weapon := archetypes.LocalWeapon.Spawn(w)
	components.PlayerOwner.SetValue(weapon, components.PlayerOwnerData{Player: netconfig.LocalPlayer})
	components.SceneParent.SetValue(weapon, components.SceneParentData{Parent: ship.Entity()})
	components.Weapon.SetValue(weapon, components.WeaponData{Type: shipCfg.Weapon})
	netcomponents.NetIdentity.SetValue(weapon, netcomponents.NetIdentityData{
		Player: netconfig.LocalPlayer,
		Kind:   netconfig.KindWeapon,
		Weapon: shipCfg.Weapon,
	})

	spawnLocalInput(w)
	return ship
}

// PlaceLocal moves the sandbox ship to (x, y) at rest.
func PlaceLocal(w donburi.World, x, y float64) {
	ship := ownedBy(w, ownedShipQuery, netconfig.LocalPlayer)
	if ship == nil {
		return
	}
	tr := netcomponents.NetTransform.Get(ship)
	tr.Position.X, tr.Position.Y = x, y
	tr.Rotation = 0
	vel := netcomponents.NetVelocity.Get(ship)
	vel.Linear.X, vel.Linear.Y, vel.Angular = 0, 0, 0
}

func spawnLocalInput(w donburi.World) {
	if _, ok := localOnlyQuery.First(w); ok {
		return
	}
	input := archetypes.LocalInput.Spawn(w)
	components.PlayerOwner.SetValue(input, components.PlayerOwnerData{Player: netconfig.LocalPlayer})
}

// rewriteOwner moves every entity owned by from over to to.
func rewriteOwner(w donburi.World, from, to netconfig.PlayerID) int {
	n := 0
	ownedQuery.Each(w, func(e *donburi.Entry) {
		owner := components.PlayerOwner.Get(e)
		if owner.Player != from {
			return
		}
		owner.Player = to
		if e.HasComponent(netcomponents.NetIdentity) {
			netcomponents.NetIdentity.Get(e).Player = to
		}
		n++
	})
	return n
}

func removeAll(w donburi.World, q *donburi.Query) int {
	var doomed []donburi.Entity
	q.Each(w, func(e *donburi.Entry) {
		doomed = append(doomed, e.Entity())
	})
	for _, e := range doomed {
		w.Remove(e)
	}
	return len(doomed)
}

// EnterNetworked switches to the server lobby after LobbyData arrives: the
// local player takes the networked id and local-only entities go away.
func EnterNetworked(w donburi.World, sess *SessionState, client netconfig.ClientID, room netconfig.RoomID) {
	player := netconfig.PlayerOf(client)
	if sess.Mode == ModeNetworked && sess.Player == player && sess.Room == room {
		return
	}
	rewriteOwner(w, sess.Player, player)
	removeAll(w, localOnlyQuery)
	sess.Mode = ModeNetworked
	sess.Player = player
	sess.Room = room
	sess.InGame = false
	sess.Score = messages.GameScore{}
}

// FallBackToLocal returns to the sandbox. EndGame, a local exit and a
// disconnect all end up here.
func FallBackToLocal(w donburi.World, sess *SessionState) {
	removeAll(w, replicaQuery)
	var adopted []*donburi.Entry
	ownedQuery.Each(w, func(e *donburi.Entry) {
		if e.HasComponent(esync.NetworkIdComponent) {
			adopted = append(adopted, e)
		}
	})
	for _, e := range adopted {
		e.RemoveComponent(esync.NetworkIdComponent)
	}
	rewriteOwner(w, sess.Player, netconfig.LocalPlayer)
	spawnLocalInput(w)

	*sess = SessionState{Mode: ModeLocal, Player: netconfig.LocalPlayer, LobbySize: sess.LobbySize, Team: sess.Team}
}

// NetSession applies reliable server messages to the client world.
type NetSession struct {
	sess   *SessionState
	view   StatusView
	events func() []any
	client func() netconfig.ClientID
	log    *log.Logger
}

func NewNetSession(sess *SessionState, view StatusView, events func() []any, client func() netconfig.ClientID, logger *log.Logger) *NetSession {
	return &NetSession{
		sess:   sess,
		view:   view,
		events: events,
		client: client,
		log:    logger.WithPrefix("session"),
	}
}

// Update is the ECS system.
func (n *NetSession) Update(e *ecs.ECS) {
	for _, ev := range n.events() {
		n.Apply(e.World, ev)
	}
}

// Apply handles one message.
func (n *NetSession) Apply(w donburi.World, ev any) {
	switch m := ev.(type) {
	case messages.LobbyData:
		EnterNetworked(w, n.sess, n.client(), m.RoomID)
		n.log.Info("joined lobby", "room", m.RoomID, "player", n.sess.Player)
	case messages.LobbyStatus:
		if n.sess.Mode != ModeNetworked || m.RoomID != n.sess.Room {
			n.log.Debug("status for another room dropped", "room", m.RoomID)
			return
		}
		n.sess.Members = int(m.ClientCount)
		n.view.ShowLobbyStatus(m.RoomID, n.sess.Members, n.sess.LobbySize)
	case messages.StartGame:
		if n.sess.Mode != ModeNetworked {
			n.log.Debug("start outside a lobby dropped", "seed", m.Seed)
			return
		}
		n.sess.InGame = true
		n.sess.Seed = m.Seed
		n.view.ShowGameStarted(m.Seed)
	case messages.GameScore:
		if n.sess.Mode != ModeNetworked {
			return
		}
		n.sess.Score = m
		n.view.ShowScore(m)
	case messages.EndGame:
		score, team := n.sess.Score, n.sess.Team
		if n.fallBack(w, "game over") {
			n.view.ShowGameResult(score, team)
		}
	case network.Disconnected:
		n.fallBack(w, "disconnected")
	}
}

// Leave is the local exit path.
func (n *NetSession) Leave(w donburi.World) {
	n.fallBack(w, "exit")
}

func (n *NetSession) fallBack(w donburi.World, reason string) bool {
	if n.sess.Mode == ModeLocal {
		return false
	}
	n.log.Info("leaving lobby", "reason", reason)
	FallBackToLocal(w, n.sess)
	n.view.ShowNotInLobby(reason)
	return true
}
