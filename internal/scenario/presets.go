package scenario

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const day = 24 * 3600.0

func EarthMoon() *Scenario {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = 3600
	cfg.Duration = 30 * day

	return &Scenario{
		Bodies: []dynamo.Body{
			{Name: "Earth", Mass: 5.972e24},
			{Name: "Moon", Mass: 7.348e22, Pos: r2.Vec{X: 3.844e8}, Vel: r2.Vec{Y: 1022}},
		},
		Config: cfg,
	}
}

// Solar places every planet on the +x axis with a +y orbital speed. Moons
// are offset from their planet rather than from the Sun.
func Solar() *Scenario {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = 600
	cfg.Duration = 365.25 * day

	bodies := []dynamo.Body{
		{Name: "Sun", Mass: 1.989e30},
		{Name: "Mercury", Mass: 3.302e23, Pos: r2.Vec{X: 57.909e9}, Vel: r2.Vec{Y: 47.36e3}},
		{Name: "Venus", Mass: 4.869e24, Pos: r2.Vec{X: 108.208e9}, Vel: r2.Vec{Y: 35.02e3}},
		{Name: "Earth", Mass: 5.972e24, Pos: r2.Vec{X: 149.596e9}, Vel: r2.Vec{Y: 29.78e3}},
		{Name: "Mars", Mass: 6.419e23, Pos: r2.Vec{X: 227.939e9}, Vel: r2.Vec{Y: 24.07e3}},
		{Name: "Jupiter", Mass: 1.898e27, Pos: r2.Vec{X: 778.299e9}, Vel: r2.Vec{Y: 13.07e3}},
	}

	moons := []struct {
		name, parent string
		mass, dist   float64
		speed        float64
	}{
		{"Moon", "Earth", 7.349e22, 384.4e6, 1.022e3},
		{"Io", "Jupiter", 8.931e22, 426.0e6, 17.34e3},
		{"Europa", "Jupiter", 4.879e22, 670.9e6, 13.86e3},
		{"Ganymede", "Jupiter", 3.275e23, 1070.4e6, 10.87e3},
		{"Callisto", "Jupiter", 1.075e23, 1882.7e6, 8.22e3},
	}
	for _, m := range moons {
		parent := find(bodies, m.parent)
		bodies = append(bodies, dynamo.Body{
			Name: m.name,
			Mass: m.mass,
			Pos:  r2.Add(parent.Pos, r2.Vec{X: m.dist}),
			Vel:  r2.Add(parent.Vel, r2.Vec{Y: m.speed}),
		})
	}

	return &Scenario{Bodies: bodies, Config: cfg}
}

// Binary is two solar-mass stars on a circular orbit about their common
// centre, run for one period.
func Binary() *Scenario {
	const (
		mass = 1.989e30
		d    = 1.0e11
	)
	g := dynamo.GravitationalConstant
	v := math.Sqrt(g * mass / (4 * d))
	period := 2 * math.Pi * d / v

	cfg := dynamo.DefaultConfig()
	cfg.Dt = period / 2000
	cfg.Duration = period

	return &Scenario{
		Bodies: []dynamo.Body{
			{Name: "A", Mass: mass, Pos: r2.Vec{X: -d}, Vel: r2.Vec{Y: -v}},
			{Name: "B", Mass: mass, Pos: r2.Vec{X: d}, Vel: r2.Vec{Y: v}},
		},
		Config: cfg,
	}
}

func find(bodies []dynamo.Body, name string) dynamo.Body {
	for _, b := range bodies {
		if b.Name == name {
			return b
		}
	}
	return dynamo.Body{}
}
