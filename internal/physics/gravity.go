package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Separation returns the distance between two bodies and the bearing of
// b as seen from a.
func Separation(a, b dynamo.Body) (r, phi float64) {
	d := r2.Sub(b.Pos, a.Pos)
	return math.Sqrt(d.X*d.X + d.Y*d.Y), math.Atan2(d.Y, d.X)
}

// Force is the magnitude of the attraction G*m1*m2/r^2 between a and b.
// Separations at or below minSep report dynamo.ErrCoincident.
func Force(g, minSep float64, a, b dynamo.Body) (float64, error) {
	r, _ := Separation(a, b)
	if r <= minSep {
		return 0, dynamo.ErrCoincident
	}
	return g * a.Mass * b.Mass / (r * r), nil
}

// ForceOn is the force vector exerted by source on target. The direction
// is decomposed from the bearing angle with cos and sin.
func ForceOn(g, minSep float64, target, source dynamo.Body) (r2.Vec, error) {
	r, phi := Separation(target, source)
	if r <= minSep {
		return r2.Vec{}, dynamo.ErrCoincident
	}
	f := g * target.Mass * source.Mass / (r * r)
	return r2.Vec{X: f * math.Cos(phi), Y: f * math.Sin(phi)}, nil
}

// AccelerationOn is ForceOn divided by the target's mass.
func AccelerationOn(g, minSep float64, target, source dynamo.Body) (r2.Vec, error) {
	f, err := ForceOn(g, minSep, target, source)
	if err != nil {
		return r2.Vec{}, err
	}
	return r2.Vec{X: f.X / target.Mass, Y: f.Y / target.Mass}, nil
}

// Potential is the pair potential energy -G*m1*m2/r.
func Potential(g, minSep float64, a, b dynamo.Body) (float64, error) {
	r, _ := Separation(a, b)
	if r <= minSep {
		return 0, dynamo.ErrCoincident
	}
	return -g * a.Mass * b.Mass / r, nil
}
