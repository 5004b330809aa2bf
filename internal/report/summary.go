package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Run is what the summary panel shows about one finished run.
type Run struct {
	ID       string
	Scenario string
	Elapsed  time.Duration
	Config   dynamo.Config
	Result   *dynamo.Result
}

func Summary(r Run) string {
	rows := [][2]string{
		{"scenario", r.Scenario},
		{"model", r.Result.Model},
		{"bodies", fmt.Sprintf("%d", len(r.Result.Initial.Bodies))},
		{"G", fmt.Sprintf("%.6g", r.Config.G)},
		{"dt", fmt.Sprintf("%.6g s", r.Config.Dt)},
		{"duration", fmt.Sprintf("%.6g s", r.Config.Duration)},
		{"steps", fmt.Sprintf("%d", r.Result.StepsTaken)},
	}
	if r.ID != "" {
		rows = append([][2]string{{"run", r.ID}}, rows...)
	}
	if r.Elapsed > 0 {
		rows = append(rows, [2]string{"elapsed", r.Elapsed.Round(time.Microsecond).String()})
	}
	rows = append(rows, [2]string{"energy drift", driftStyle(r.Result.EnergyDrift).Render(fmt.Sprintf("%.3e", r.Result.EnergyDrift))})

	var b strings.Builder
	b.WriteString(Title.Render("gravsim run"))
	b.WriteString("\n")
	b.WriteString(keyValues(rows))
	return Panel.Render(b.String())
}

func MetricsTable(metrics map[string]float64) string {
	if len(metrics) == 0 {
		return Subtle.Render("no metrics")
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][2]string, len(names))
	for i, name := range names {
		rows[i] = [2]string{name, fmt.Sprintf("%.6e", metrics[name])}
	}
	return Header.Render("metrics") + "\n" + keyValues(rows)
}

// BodiesTable lists each body's state in one snapshot.
func BodiesTable(s dynamo.Snapshot) string {
	cols := []string{"name", "mass", "x", "y", "vx", "vy"}
	cells := make([][]string, 0, len(s.Bodies)+1)
	cells = append(cells, cols)
	for _, b := range s.Bodies {
		cells = append(cells, []string{
			b.Name,
			fmt.Sprintf("%.4e", b.Mass),
			fmt.Sprintf("%.4e", b.Pos.X),
			fmt.Sprintf("%.4e", b.Pos.Y),
			fmt.Sprintf("%.4e", b.Vel.X),
			fmt.Sprintf("%.4e", b.Vel.Y),
		})
	}
	title := fmt.Sprintf("state at step %d (t=%.6g s)", s.Step, s.Time)
	return Header.Render(title) + "\n" + grid(cells)
}

// CompareRow is one model's outcome in a side-by-side comparison.
type CompareRow struct {
	Model         string
	EnergyDrift   float64
	MomentumDrift float64
	MinSeparation float64
	MaxDivergence float64
}

func Comparison(rows []CompareRow) string {
	cells := [][]string{{"model", "energy drift", "momentum drift", "min separation", "max divergence"}}
	for _, r := range rows {
		cells = append(cells, []string{
			r.Model,
			fmt.Sprintf("%.3e", r.EnergyDrift),
			fmt.Sprintf("%.3e", r.MomentumDrift),
			fmt.Sprintf("%.4e", r.MinSeparation),
			fmt.Sprintf("%.4e", r.MaxDivergence),
		})
	}
	return Header.Render("model comparison") + "\n" + grid(cells)
}

func keyValues(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(r[0]))
		lines[i] = Label.Render(r[0]) + pad + "  " + Value.Render(r[1])
	}
	return strings.Join(lines, "\n")
}

func grid(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	widths := make([]int, len(cells[0]))
	for _, row := range cells {
		for j, c := range row {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
	}

	lines := make([]string, len(cells))
	for i, row := range cells {
		parts := make([]string, len(row))
		for j, c := range row {
			cell := c + strings.Repeat(" ", widths[j]-lipgloss.Width(c))
			if i == 0 {
				cell = Label.Render(cell)
			}
			parts[j] = cell
		}
		lines[i] = strings.Join(parts, "  ")
	}
	return strings.Join(lines, "\n")
}
