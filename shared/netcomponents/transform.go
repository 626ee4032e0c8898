package netcomponents

import (
	"math"

	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

// NetTransformData is the server-authoritative position and heading.
type NetTransformData struct {
	Position dmath.Vec2
	Rotation float64 // radians
}

var NetTransform = donburi.NewComponentType[NetTransformData]()

// LerpNetTransform interpolates between two transforms, taking the short way
// around the circle for rotation.
func LerpNetTransform(from, to NetTransformData, t float64) *NetTransformData {
	return &NetTransformData{
		Position: dmath.Vec2{
			X: from.Position.X + (to.Position.X-from.Position.X)*t,
			Y: from.Position.Y + (to.Position.Y-from.Position.Y)*t,
		},
		Rotation: from.Rotation + AngleDelta(from.Rotation, to.Rotation)*t,
	}
}

// AngleDelta returns the signed shortest rotation from a to b in (-pi, pi].
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
