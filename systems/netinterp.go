package systems

import (
	"time"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var interpQuery = donburi.NewQuery(filter.Contains(components.NetInterp, netcomponents.NetTransform))

// PushInterpTarget stores the newest server transform and starts tweening the
// displayed transform toward it over d. The first target snaps.
func PushInterpTarget(entry *donburi.Entry, target netcomponents.NetTransformData, d time.Duration) {
	netcomponents.NetTransform.SetValue(entry, target)
	interp := components.NetInterp.Get(entry)
	if !interp.Initialized || d <= 0 {
		interp.DisplayX = target.Position.X
		interp.DisplayY = target.Position.Y
		interp.DisplayRot = target.Rotation
		interp.X, interp.Y, interp.Rot = nil, nil, nil
		interp.Initialized = true
		return
	}
	secs := float32(d.Seconds())
	endRot := interp.DisplayRot + netcomponents.AngleDelta(interp.DisplayRot, target.Rotation)
	interp.X = gween.New(float32(interp.DisplayX), float32(target.Position.X), secs, ease.Linear)
	interp.Y = gween.New(float32(interp.DisplayY), float32(target.Position.Y), secs, ease.Linear)
	interp.Rot = gween.New(float32(interp.DisplayRot), float32(endRot), secs, ease.Linear)
}

// NewNetInterpSystem advances every remote entity's tweens by one frame.
func NewNetInterpSystem(frame time.Duration) func(*ecs.ECS) {
	dt := float32(frame.Seconds())
	return func(e *ecs.ECS) {
		interpQuery.Each(e.World, func(entry *donburi.Entry) {
			AdvanceInterp(components.NetInterp.Get(entry), dt)
		})
	}
}

// AdvanceInterp steps the tweens and updates the displayed values.
func AdvanceInterp(interp *components.NetInterpData, dt float32) {
	step := func(tw **gween.Tween, out *float64) {
		if *tw == nil {
			return
		}
		v, done := (*tw).Update(dt)
		*out = float64(v)
		if done {
			*tw = nil
		}
	}
	step(&interp.X, &interp.DisplayX)
	step(&interp.Y, &interp.DisplayY)
	step(&interp.Rot, &interp.DisplayRot)
}
