package analysis

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func Separation(traj dynamo.Trajectory, i, j int) []float64 {
	out := make([]float64, len(traj))
	for k, s := range traj {
		out[k] = r2.Norm(r2.Sub(s.Bodies[j].Pos, s.Bodies[i].Pos))
	}
	return out
}

// Return is the step at which a body came closest to its starting position
// relative to a reference body.
type Return struct {
	Step     int
	Time     float64
	Distance float64
}

// ClosestReturn scans the second half of traj. Comparing relative positions
// removes the drift of the centre of mass.
func ClosestReturn(initial dynamo.Snapshot, traj dynamo.Trajectory, body, ref int) (Return, bool) {
	if len(traj) == 0 {
		return Return{}, false
	}

	start := r2.Sub(initial.Bodies[body].Pos, initial.Bodies[ref].Pos)
	best := Return{Distance: math.Inf(1)}
	for _, s := range traj[len(traj)/2:] {
		rel := r2.Sub(s.Bodies[body].Pos, s.Bodies[ref].Pos)
		if d := r2.Norm(r2.Sub(rel, start)); d < best.Distance {
			best = Return{Step: s.Step, Time: s.Time, Distance: d}
		}
	}
	return best, true
}

// OrbitalPeriod estimates the period of body about ref from the x component
// of their separation.
func OrbitalPeriod(traj dynamo.Trajectory, body, ref int) (float64, error) {
	if len(traj) < minSamples {
		return 0, ErrTooShort
	}
	dt := traj[1].Time - traj[0].Time

	series := make([]float64, len(traj))
	for k, s := range traj {
		series[k] = s.Bodies[body].Pos.X - s.Bodies[ref].Pos.X
	}
	return DominantPeriod(series, dt)
}

// Divergence is, for each step both trajectories share, the largest
// distance between the same body in a and b.
func Divergence(a, b dynamo.Trajectory) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		worst := 0.0
		for i := range a[k].Bodies {
			worst = math.Max(worst, r2.Norm(r2.Sub(a[k].Bodies[i].Pos, b[k].Bodies[i].Pos)))
		}
		out[k] = worst
	}
	return out
}
