package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// NetForce sums every pairwise acceleration from the start-of-step
// positions before moving any body, then applies one Euler update per body.
type NetForce struct {
	MinSeparation float64
	acc           []r2.Vec
	errs          []error
}

// parallelChunk is the smallest number of bodies handed to one goroutine
// when accumulating accelerations.
const parallelChunk = 64

func NewNetForce(minSep float64) *NetForce {
	return &NetForce{MinSeparation: minSep}
}

func (n *NetForce) Name() string { return dynamo.ModelNetForce }

func (n *NetForce) ensureScratch(size int) {
	if len(n.acc) != size {
		n.acc = make([]r2.Vec, size)
		n.errs = make([]error, size)
	}
}

func (n *NetForce) Step(bodies []dynamo.Body, g, dt float64) error {
	n.ensureScratch(len(bodies))

	// each body's sum only reads start-of-step state, so chunks are
	// independent and the result does not depend on scheduling
	dynamo.ParallelFor(len(bodies), parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			n.acc[i], n.errs[i] = n.accumulate(bodies, i, g)
		}
	})

	for _, err := range n.errs {
		if err != nil {
			return err
		}
	}

	for i := range bodies {
		b := &bodies[i]
		b.Acc = n.acc[i]
		b.Vel = r2.Add(b.Vel, r2.Scale(dt, b.Acc))
		b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
	}
	return nil
}

func (n *NetForce) accumulate(bodies []dynamo.Body, i int, g float64) (r2.Vec, error) {
	var sum r2.Vec
	for j := range bodies {
		if i == j {
			continue
		}
		a, err := physics.AccelerationOn(g, n.MinSeparation, bodies[i], bodies[j])
		if err != nil {
			return r2.Vec{}, pairError(bodies, i, j, err)
		}
		sum = r2.Add(sum, a)
	}
	return sum, nil
}
