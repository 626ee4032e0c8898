package systems

import (
	"math"
	"testing"
	"time"

	"github.com/automoto/orbitfall/archetypes"
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestInterpolationTweensToTarget(t *testing.T) {
	w := donburi.NewWorld()
	e := archetypes.Remote.Spawn(w)
	interp := components.NetInterp.Get(e)

	PushInterpTarget(e, netcomponents.NetTransformData{Position: dmath.NewVec2(10, 10), Rotation: 3}, 100*time.Millisecond)
	if !interp.Initialized || interp.DisplayX != 10 || interp.DisplayRot != 3 {
		t.Fatalf("first target did not snap: %+v", interp)
	}

	PushInterpTarget(e, netcomponents.NetTransformData{Position: dmath.NewVec2(30, 10), Rotation: -3}, 100*time.Millisecond)
	AdvanceInterp(interp, 0.05)
	if !near(interp.DisplayX, 20) {
		t.Fatalf("halfway x = %v, want 20", interp.DisplayX)
	}
	// 3 to -3 rad goes the short way, through pi.
	if interp.DisplayRot <= 3 {
		t.Fatalf("rotation went the long way: %v", interp.DisplayRot)
	}

	AdvanceInterp(interp, 0.1)
	if !near(interp.DisplayX, 30) || interp.X != nil {
		t.Fatalf("tween not finished: x = %v", interp.DisplayX)
	}
	if got := netcomponents.NetTransform.Get(e).Position.X; got != 30 {
		t.Fatalf("server transform = %v, want 30", got)
	}
}
