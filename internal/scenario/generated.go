package scenario

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	defaultRingN   = 3
	defaultRandomN = 4
	maxBodies      = 10000
)

// Ring spaces n unit masses evenly on the unit circle with tangential speed
// 0.5, in units where G = 1.
func Ring(n int) (*Scenario, error) {
	if n == 0 {
		n = defaultRingN
	}
	if err := checkN(n); err != nil {
		return nil, err
	}

	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		bodies[i] = dynamo.Body{
			Name: fmt.Sprintf("m%d", i+1),
			Mass: 1.0,
			Pos:  r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)},
			Vel:  r2.Vec{X: -math.Sin(angle) * 0.5, Y: math.Cos(angle) * 0.5},
		}
	}

	return &Scenario{
		Bodies: bodies,
		Config: dynamo.Config{
			G:             1.0,
			Dt:            0.001,
			Duration:      10.0,
			Model:         dynamo.ModelSequential,
			ValidateState: true,
		},
	}, nil
}

// Random draws n bodies with angle U[0, 2pi), radius U[1e10, 1e11] m,
// mass U[1e24, 1e25] kg and a tangential speed of 2e4 m/s. The same seed
// always yields the same bodies.
func Random(n int, seed int64) (*Scenario, error) {
	if n == 0 {
		n = defaultRandomN
	}
	if err := checkN(n); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(uint64(seed)))
	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		angle := uniform(rng, 0, 2*math.Pi)
		radius := uniform(rng, 1e10, 1e11)
		mass := uniform(rng, 1e24, 1e25)
		bodies[i] = dynamo.Body{
			Name: fmt.Sprintf("Body %d", i+1),
			Mass: mass,
			Pos:  r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)},
			Vel:  r2.Vec{X: -math.Sin(angle) * 2e4, Y: math.Cos(angle) * 2e4},
		}
	}

	cfg := dynamo.DefaultConfig()
	cfg.Dt = 1e5
	cfg.Duration = 3.15e7

	return &Scenario{Bodies: bodies, Config: cfg}, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func checkN(n int) error {
	if n < 1 || n > maxBodies {
		return &dynamo.ConfigError{Field: "bodies", Value: n, Reason: fmt.Sprintf("must be between 1 and %d", maxBodies)}
	}
	return nil
}
