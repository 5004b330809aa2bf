package sim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// maxPrealloc caps the trajectory capacity reserved up front; longer runs
// grow it as they go.
const maxPrealloc = 1 << 16

type Simulator struct {
	stepper   dynamo.Stepper
	cfg       dynamo.Config
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(stepper dynamo.Stepper, cfg dynamo.Config) *Simulator {
	return &Simulator{
		stepper:   stepper,
		cfg:       cfg,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

// NewFromConfig builds the stepper named by cfg.Model.
func NewFromConfig(cfg dynamo.Config) (*Simulator, error) {
	stepper, err := integrators.Get(cfg.Model, cfg.MinSeparation)
	if err != nil {
		return nil, &dynamo.ConfigError{Field: "model", Value: cfg.Model, Reason: err.Error()}
	}
	return New(stepper, cfg), nil
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Config() dynamo.Config         { return s.cfg }

// Run integrates a private copy of bodies for cfg.Steps() steps. The input
// slice is never modified. Any failure discards the partial trajectory.
func (s *Simulator) Run(ctx context.Context, bodies []dynamo.Body) (*dynamo.Result, error) {
	if err := s.validate(bodies); err != nil {
		return nil, err
	}

	cfg := s.cfg
	steps := cfg.Steps()

	arena := dynamo.Clone(bodies)
	for i := range arena {
		arena[i].Acc = r2.Vec{}
	}

	result := &dynamo.Result{
		Model:      s.stepper.Name(),
		Initial:    dynamo.Snapshot{Step: 0, Time: 0, Bodies: dynamo.Clone(arena)},
		Trajectory: make(dynamo.Trajectory, 0, min(steps, maxPrealloc)),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(result.Initial)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := s.stepper.Step(arena, cfg.G, cfg.Dt); err != nil {
			start := float64(i) * cfg.Dt
			var se *dynamo.SeparationError
			if errors.As(err, &se) {
				se.Step = i + 1
				se.Time = start
				return nil, se
			}
			return nil, &dynamo.SimError{Time: start, Step: i + 1, Wrapped: err}
		}

		snap := dynamo.Snapshot{
			Step:   i + 1,
			Time:   float64(i+1) * cfg.Dt,
			Bodies: dynamo.Clone(arena),
		}

		if cfg.ValidateState && !snap.IsValid() {
			return nil, &dynamo.SimError{Time: snap.Time, Step: snap.Step, Wrapped: dynamo.ErrInvalidState}
		}

		result.Trajectory = append(result.Trajectory, snap)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(snap)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap)
		}
	}

	result.EnergyDrift = energyDrift(cfg.G, result.Initial, result.Final())

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(bodies []dynamo.Body) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if s.stepper.Name() != s.cfg.Model {
		return &dynamo.ConfigError{Field: "model", Value: s.cfg.Model, Reason: "does not match stepper " + s.stepper.Name()}
	}
	return dynamo.ValidateBodies(bodies)
}

func energyDrift(g float64, initial, final dynamo.Snapshot) float64 {
	e0, err := physics.TotalEnergy(g, initial.Bodies)
	if err != nil || e0 == 0 {
		return 0
	}
	e1, err := physics.TotalEnergy(g, final.Bodies)
	if err != nil {
		return math.Inf(1)
	}
	return math.Abs(e1-e0) / math.Abs(e0)
}
