package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// MinSeparation is the closest approach of any pair over the run.
type MinSeparation struct {
	name    string
	closest float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", closest: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(s dynamo.Snapshot) {
	m.closest = math.Min(m.closest, physics.MinSeparation(s.Bodies))
}

func (m *MinSeparation) Value() float64 { return m.closest }

func (m *MinSeparation) Reset() { m.closest = math.Inf(1) }
