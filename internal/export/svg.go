package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Palette cycles through stroke colors, one per body.
var Palette = []string{"#ffcc00", "#00ff88", "#33aaff", "#ff5566", "#cc88ff", "#ff9933", "#66ffff", "#ffffff"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) project(p dynamo.Body, width, height int) (float64, float64) {
	x := (p.Pos.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Pos.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

// fit returns a square box around every position with 10% padding, so
// circular orbits stay circular.
func fit(frames dynamo.Trajectory) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range frames {
		for _, body := range s.Bodies {
			b.minX, b.maxX = min(b.minX, body.Pos.X), max(b.maxX, body.Pos.X)
			b.minY, b.maxY = min(b.minY, body.Pos.Y), max(b.maxY, body.Pos.Y)
		}
	}

	span := max(b.maxX-b.minX, b.maxY-b.minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := span * 0.6
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

// OrbitsSVG draws every body's path through initial and traj, with a dot
// at each final position. Every keeps one sample in Every (the last is
// always kept).
func OrbitsSVG(initial dynamo.Snapshot, traj dynamo.Trajectory, size, every int) string {
	frames := append(dynamo.Trajectory{initial}, traj...)
	if len(initial.Bodies) == 0 {
		return ""
	}
	if every < 1 {
		every = 1
	}

	b := fit(frames)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	last := len(frames) - 1
	for i, body := range initial.Bodies {
		color := Palette[i%len(Palette)]
		name := html.EscapeString(body.Name)

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-body="%s" d="M`, color, name))
		for k, s := range frames {
			if k%every != 0 && k != last {
				continue
			}
			x, y := b.project(s.Bodies[i], size, size)
			if k == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		x, y := b.project(frames[last].Bodies[i], size, size)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s</title></circle>
`, x, y, color, name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
