package integrators

import (
	"errors"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sequential applies explicit Euler to each ordered pair as soon as it is
// visited: body i is moved by the pull of body j before the pull of body j+1
// is evaluated, so later pairs in a step see partially updated state. This
// reproduces reference trajectories exactly; use NetForce for the standard
// scheme.
type Sequential struct {
	MinSeparation float64
}

func NewSequential(minSep float64) *Sequential {
	return &Sequential{MinSeparation: minSep}
}

func (s *Sequential) Name() string { return dynamo.ModelSequential }

func (s *Sequential) Step(bodies []dynamo.Body, g, dt float64) error {
	for i := range bodies {
		bodies[i].Acc = r2.Vec{}
		for j := range bodies {
			if i == j {
				continue
			}

			a, err := physics.AccelerationOn(g, s.MinSeparation, bodies[i], bodies[j])
			if err != nil {
				return pairError(bodies, i, j, err)
			}

			b := &bodies[i]
			b.Acc = r2.Add(b.Acc, a)
			b.Vel.X += a.X * dt
			b.Vel.Y += a.Y * dt
			b.Pos.X += b.Vel.X * dt
			b.Pos.Y += b.Vel.Y * dt
		}
	}
	return nil
}

func pairError(bodies []dynamo.Body, i, j int, err error) error {
	if !errors.Is(err, dynamo.ErrCoincident) {
		return err
	}
	r, _ := physics.Separation(bodies[i], bodies[j])
	return &dynamo.SeparationError{
		I: i, J: j,
		A: bodies[i].Name, B: bodies[j].Name,
		Distance: r,
	}
}
