package systems

import (
	"time"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
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

var (
	networkedQuery = donburi.NewQuery(filter.Contains(esync.NetworkIdComponent))
	ownedShipQuery = donburi.NewQuery(filter.Contains(tags.Spaceship, components.PlayerOwner))
	ownedWeapQuery = donburi.NewQuery(filter.Contains(tags.Weapon, components.PlayerOwner))
)

// SnapshotApplier folds room snapshots into the client world. Our own ship
// and weapon are adopted rather than recreated; everything else becomes an
// interpolated replica.
type SnapshotApplier struct {
	sess     *SessionState
	pred     *Predictor
	latest   func() *messages.RoomSnapshot
	interval func() time.Duration
	log      *log.Logger
}

func NewSnapshotApplier(sess *SessionState, pred *Predictor, latest func() *messages.RoomSnapshot, interval func() time.Duration, logger *log.Logger) *SnapshotApplier {
	return &SnapshotApplier{
		sess:     sess,
		pred:     pred,
		latest:   latest,
		interval: interval,
		log:      logger.WithPrefix("snapshot"),
	}
}

// Update is the ECS system.
func (a *SnapshotApplier) Update(e *ecs.ECS) {
	if snap := a.latest(); snap != nil {
		a.Apply(e.World, *snap)
	}
}

// Apply reports whether the snapshot was used.
func (a *SnapshotApplier) Apply(w donburi.World, snap messages.RoomSnapshot) bool {
	if a.sess.Mode != ModeNetworked || snap.RoomID != a.sess.Room {
		return false
	}

	known := make(map[esync.NetworkId]*donburi.Entry)
	networkedQuery.Each(w, func(e *donburi.Entry) {
		known[*esync.NetworkIdComponent.Get(e)] = e
	})

	seen := make(map[esync.NetworkId]struct{}, len(snap.Entities))
	for _, st := range snap.Entities {
		entry, ok := known[st.ID]
		if !ok {
			if st.Identity == nil {
				a.log.Debug("entity without identity skipped", "id", st.ID)
				continue
			}
			entry = a.create(w, st.ID, *st.Identity)
			known[st.ID] = entry
		}
		seen[st.ID] = struct{}{}
		a.update(entry, st)
	}

	var gone []donburi.Entity
	replicaQuery.Each(w, func(e *donburi.Entry) {
		if !e.HasComponent(esync.NetworkIdComponent) {
			return
		}
		if _, ok := seen[*esync.NetworkIdComponent.Get(e)]; !ok {
			gone = append(gone, e.Entity())
		}
	})
	for _, e := range gone {
		w.Remove(e)
	}
	return true
}

func (a *SnapshotApplier) create(w donburi.World, id esync.NetworkId, ident netcomponents.NetIdentityData) *donburi.Entry {
	var entry *donburi.Entry
	mine := ident.Player == a.sess.Player
	switch {
	case mine && ident.Kind == netconfig.KindSpaceship:
		entry = a.adopt(w, ownedShipQuery)
		if entry == nil {
			entry = archetypes.LocalShip.Spawn(w)
		}
		a.sess.Team = ident.Team
		shipCfg := config.Ships[ident.Ship]
		vel := netcomponents.NetVelocity.Get(entry)
		vel.LinearDamping = shipCfg.Movement.LinearDamping
		vel.AngularDamping = shipCfg.Movement.AngularDamping
		a.pred.Reset()
	case mine && ident.Kind == netconfig.KindWeapon:
		entry = a.adopt(w, ownedWeapQuery)
		if entry == nil {
			entry = archetypes.LocalWeapon.Spawn(w)
		}
	case mine && ident.Kind == netconfig.KindAction:
		entry = archetypes.NetAction.Spawn(w)
	default:
		entry = archetypes.Remote.Spawn(w)
	}
	if entry.HasComponent(components.PlayerOwner) {
		components.PlayerOwner.SetValue(entry, components.PlayerOwnerData{Player: ident.Player})
	}
	upsert(entry, esync.NetworkIdComponent, &id)
	netcomponents.NetIdentity.SetValue(entry, ident)
	a.log.Debug("entity created", "id", id, "kind", ident.Kind, "player", ident.Player, "mine", mine)
	return entry
}

// adopt returns the first entity of q owned by the local player that has no
// network id yet.
func (a *SnapshotApplier) adopt(w donburi.World, q *donburi.Query) *donburi.Entry {
	var found *donburi.Entry
	q.Each(w, func(e *donburi.Entry) {
		if found != nil || e.HasComponent(esync.NetworkIdComponent) {
			return
		}
		if components.PlayerOwner.Get(e).Player == a.sess.Player {
			found = e
		}
	})
	return found
}

func (a *SnapshotApplier) update(entry *donburi.Entry, st messages.EntityState) {
	if st.Health != nil {
		upsert(entry, netcomponents.NetHealth, st.Health)
	}
	if st.Transform == nil {
		return
	}
	switch {
	case entry.HasComponent(components.NetPrediction):
		a.pred.Reconcile(entry, *st.Transform, st.Velocity, st.Ack)
	case entry.HasComponent(components.NetInterp):
		PushInterpTarget(entry, *st.Transform, a.interval())
	default:
		upsert(entry, netcomponents.NetTransform, st.Transform)
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
