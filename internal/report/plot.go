package report

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const (
	PlotHeight = 10
	PlotWidth  = 80
)

func Plot(data []float64, caption string) string {
	if len(data) == 0 {
		return Subtle.Render(caption + ": no data")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotBody charts x and y of body i, initial state included.
func PlotBody(initial dynamo.Snapshot, traj dynamo.Trajectory, i int) string {
	full := withInitial(initial, traj)
	name := initial.Bodies[i].Name

	xs := full.Series(i, func(b dynamo.Body) float64 { return b.Pos.X })
	ys := full.Series(i, func(b dynamo.Body) float64 { return b.Pos.Y })

	return Plot(xs, name+" x (m)") + "\n\n" + Plot(ys, name+" y (m)")
}

func PlotSeparation(initial dynamo.Snapshot, traj dynamo.Trajectory, i, j int) string {
	caption := fmt.Sprintf("|%s - %s| (m)", initial.Bodies[i].Name, initial.Bodies[j].Name)
	return Plot(analysis.Separation(withInitial(initial, traj), i, j), caption)
}

// PlotEnergy charts total energy. Steps where it is undefined are skipped.
func PlotEnergy(g float64, initial dynamo.Snapshot, traj dynamo.Trajectory) string {
	full := withInitial(initial, traj)
	data := make([]float64, 0, len(full))
	for _, s := range full {
		e, err := physics.TotalEnergy(g, s.Bodies)
		if err != nil {
			continue
		}
		data = append(data, e)
	}
	return Plot(data, "total energy (J)")
}

func PlotSpectrum(ps []float64, caption string) string {
	if len(ps) > 4 {
		ps = ps[:len(ps)/4]
	}
	return asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}

// Overview renders every body's coordinates, stopping after limit bodies.
func Overview(g float64, initial dynamo.Snapshot, traj dynamo.Trajectory, limit int) string {
	var b strings.Builder
	n := len(initial.Bodies)
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		b.WriteString(PlotBody(initial, traj, i))
		b.WriteString("\n\n")
	}
	if len(initial.Bodies) >= 2 {
		b.WriteString(PlotSeparation(initial, traj, 0, 1))
		b.WriteString("\n\n")
	}
	b.WriteString(PlotEnergy(g, initial, traj))
	return b.String()
}

func withInitial(initial dynamo.Snapshot, traj dynamo.Trajectory) dynamo.Trajectory {
	full := make(dynamo.Trajectory, 0, len(traj)+1)
	full = append(full, initial)
	return append(full, traj...)
}
