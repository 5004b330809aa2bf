package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// MomentumDrift is the largest |P - P0| seen, relative to the sum of m|v|
// over the first snapshot. A system that starts at rest uses the absolute
// drift instead.
type MomentumDrift struct {
	name     string
	initial  r2.Vec
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s dynamo.Snapshot) {
	p := physics.Momentum(s.Bodies)
	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for _, b := range s.Bodies {
			m.scale += b.Mass * r2.Norm(b.Vel)
		}
	}
	m.samples++

	drift := r2.Norm(r2.Sub(p, m.initial))
	if m.scale > 0 {
		drift /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r2.Vec{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
