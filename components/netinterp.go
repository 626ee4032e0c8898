package components

import (
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// NetInterpData smooths a remote entity between server snapshots. Each axis
// tweens from the displayed value to the newest server value over one
// broadcast interval.
type NetInterpData struct {
	X, Y, Rot   *gween.Tween
	DisplayX    float64
	DisplayY    float64
	DisplayRot  float64
	Initialized bool
}

var NetInterp = donburi.NewComponentType[NetInterpData]()

// NetPredictionData marks the locally controlled ship.
type NetPredictionData struct {
	LastAcked  uint32
	Correction float64 // last reconciliation error in pixels
}

var NetPrediction = donburi.NewComponentType[NetPredictionData]()
