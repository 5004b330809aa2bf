package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a point mass. Acc is recomputed every step and is only recorded
// for consumers; it never feeds back into the next step.
type Body struct {
	Name string
	Mass float64
	Pos  r2.Vec
	Vel  r2.Vec
	Acc  r2.Vec
}

func (b Body) IsValid() bool {
	for _, v := range []float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Acc.X, b.Acc.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clone copies a body slice so the copy can be mutated without aliasing.
func Clone(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}

// Snapshot is the system state after Step has been applied.
type Snapshot struct {
	Step   int
	Time   float64
	Bodies []Body
}

func (s Snapshot) IsValid() bool {
	for _, b := range s.Bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

// Flat returns all x coordinates followed by all y coordinates.
func (s Snapshot) Flat() []float64 {
	n := len(s.Bodies)
	out := make([]float64, 2*n)
	for i, b := range s.Bodies {
		out[i] = b.Pos.X
		out[n+i] = b.Pos.Y
	}
	return out
}

// Trajectory is the chronological list of snapshots of one run.
type Trajectory []Snapshot

// Positions flattens every snapshot, so Positions()[step][i] is the x of
// body i and Positions()[step][n+i] its y.
func (tr Trajectory) Positions() [][]float64 {
	out := make([][]float64, len(tr))
	for i, s := range tr {
		out[i] = s.Flat()
	}
	return out
}

// Series extracts one scalar per step for a single body.
func (tr Trajectory) Series(body int, fn func(Body) float64) []float64 {
	out := make([]float64, len(tr))
	for i, s := range tr {
		out[i] = fn(s.Bodies[body])
	}
	return out
}

func (tr Trajectory) Times() []float64 {
	out := make([]float64, len(tr))
	for i, s := range tr {
		out[i] = s.Time
	}
	return out
}

// Stepper advances every body by one time step in place.
type Stepper interface {
	Name() string
	Step(bodies []Body, g, dt float64) error
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) { f(s) }

const (
	ModelSequential = "sequential"
	ModelNetForce   = "netforce"
)

// GravitationalConstant in m^3 kg^-1 s^-2.
const GravitationalConstant = 6.674e-11

type Config struct {
	G             float64
	Dt            float64
	Duration      float64
	Model         string
	MinSeparation float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		G:             GravitationalConstant,
		Dt:            3600,
		Duration:      30 * 24 * 3600,
		Model:         ModelSequential,
		ValidateState: true,
	}
}

// MaxSteps bounds the step count of a single run.
const MaxSteps = 100_000_000

// Steps is the number of whole steps that fit in Duration. The quotient is
// nudged by an absolute 1e-9 so that 0.3/0.1 counts three steps without
// rounding large quotients up. Only meaningful for a config that passed
// Validate.
func (c Config) Steps() int {
	return int(c.stepCount())
}

func (c Config) stepCount() float64 {
	return math.Floor(c.Duration/c.Dt + 1e-9)
}

func (c Config) Validate() error {
	if err := positive("g", c.G); err != nil {
		return err
	}
	if err := positive("dt", c.Dt); err != nil {
		return err
	}
	if err := positive("duration", c.Duration); err != nil {
		return err
	}
	if n := c.stepCount(); math.IsNaN(n) || n > MaxSteps {
		return &ConfigError{Field: "duration", Value: c.Duration, Reason: fmt.Sprintf("duration/dt exceeds %d steps", MaxSteps)}
	}
	if c.MinSeparation < 0 || math.IsNaN(c.MinSeparation) {
		return &ConfigError{Field: "min_separation", Value: c.MinSeparation, Reason: "must be non-negative"}
	}
	switch c.Model {
	case ModelSequential, ModelNetForce:
	default:
		return &ConfigError{Field: "model", Value: c.Model, Reason: "unknown model"}
	}
	return nil
}

// ValidateBodies checks the initial body set before any stepping.
func ValidateBodies(bodies []Body) error {
	if len(bodies) == 0 {
		return &ConfigError{Field: "bodies", Value: 0, Reason: "at least one body is required"}
	}
	seen := make(map[string]int, len(bodies))
	for i, b := range bodies {
		if b.Name == "" {
			return &ConfigError{Field: fmt.Sprintf("bodies[%d].name", i), Value: b.Name, Reason: "must not be empty"}
		}
		if j, dup := seen[b.Name]; dup {
			return &ConfigError{Field: fmt.Sprintf("bodies[%d].name", i), Value: b.Name, Reason: fmt.Sprintf("duplicates bodies[%d]", j)}
		}
		seen[b.Name] = i
		if err := positive(fmt.Sprintf("bodies[%d].mass", i), b.Mass); err != nil {
			return err
		}
		if !b.IsValid() {
			return &ConfigError{Field: fmt.Sprintf("bodies[%d]", i), Value: b.Name, Reason: "non-finite position or velocity"}
		}
	}
	return nil
}

func positive(field string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigError{Field: field, Value: v, Reason: "must be positive and finite"}
	}
	return nil
}

type Result struct {
	Model       string
	Initial     Snapshot
	Trajectory  Trajectory
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}

// Final returns the last recorded snapshot, or the initial one when no step
// was taken.
func (r *Result) Final() Snapshot {
	if len(r.Trajectory) == 0 {
		return r.Initial
	}
	return r.Trajectory[len(r.Trajectory)-1]
}
