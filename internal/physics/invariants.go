package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func KineticEnergy(bodies []dynamo.Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Mass * r2.Norm2(b.Vel)
	}
	return ke
}

// PotentialEnergy sums the pair potential over every unordered pair.
func PotentialEnergy(g float64, bodies []dynamo.Body) (float64, error) {
	pe := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			u, err := Potential(g, 0, bodies[i], bodies[j])
			if err != nil {
				return 0, err
			}
			pe += u
		}
	}
	return pe, nil
}

func TotalEnergy(g float64, bodies []dynamo.Body) (float64, error) {
	pe, err := PotentialEnergy(g, bodies)
	if err != nil {
		return 0, err
	}
	return KineticEnergy(bodies) + pe, nil
}

func Momentum(bodies []dynamo.Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, r2.Scale(b.Mass, b.Vel))
	}
	return p
}

// AngularMomentum about the origin (z component).
func AngularMomentum(bodies []dynamo.Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * r2.Cross(b.Pos, b.Vel)
	}
	return L
}

func CenterOfMass(bodies []dynamo.Body) r2.Vec {
	var c r2.Vec
	m := 0.0
	for _, b := range bodies {
		c = r2.Add(c, r2.Scale(b.Mass, b.Pos))
		m += b.Mass
	}
	if m == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/m, c)
}

// MinSeparation returns the closest pair distance, or +Inf for fewer than two bodies.
func MinSeparation(bodies []dynamo.Body) float64 {
	closest := math.Inf(1)
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if r := r2.Norm(r2.Sub(bodies[j].Pos, bodies[i].Pos)); r < closest {
				closest = r
			}
		}
	}
	return closest
}
