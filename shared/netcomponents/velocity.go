package netcomponents

import (
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

type NetVelocityData struct {
	Linear         dmath.Vec2
	Angular        float64
	LinearDamping  float64
	AngularDamping float64
}

var NetVelocity = donburi.NewComponentType[NetVelocityData]()

// LerpNetVelocity interpolates between two velocities
func LerpNetVelocity(from, to NetVelocityData, t float64) *NetVelocityData {
	return &NetVelocityData{
		Linear: dmath.Vec2{
			X: from.Linear.X + (to.Linear.X-from.Linear.X)*t,
			Y: from.Linear.Y + (to.Linear.Y-from.Linear.Y)*t,
		},
		Angular:        from.Angular + (to.Angular-from.Angular)*t,
		LinearDamping:  to.LinearDamping,
		AngularDamping: to.AngularDamping,
	}
}
