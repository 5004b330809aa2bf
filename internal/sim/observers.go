package sim

import (
	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// LogObserver writes each body's state and every ordered pair's potential
// energy at debug level, once every Every steps.
type LogObserver struct {
	logger *log.Logger
	g      float64
	Every  int
}

func NewLogObserver(logger *log.Logger, g float64, every int) *LogObserver {
	if every < 1 {
		every = 1
	}
	return &LogObserver{logger: logger, g: g, Every: every}
}

func (o *LogObserver) OnStep(s dynamo.Snapshot) {
	if s.Step%o.Every != 0 {
		return
	}

	for _, b := range s.Bodies {
		o.logger.Debug("body",
			"step", s.Step,
			"name", b.Name,
			"x", b.Pos.X, "y", b.Pos.Y,
			"vx", b.Vel.X, "vy", b.Vel.Y,
		)
	}

	for i, a := range s.Bodies {
		for j, b := range s.Bodies {
			if i == j {
				continue
			}
			u, err := physics.Potential(o.g, 0, a, b)
			if err != nil {
				o.logger.Warn("potential undefined", "step", s.Step, "a", a.Name, "b", b.Name, "err", err)
				continue
			}
			o.logger.Debug("potential", "step", s.Step, "a", a.Name, "b", b.Name, "u", u)
		}
	}
}

// Progress logs a single info line every Every steps.
type Progress struct {
	logger *log.Logger
	total  int
	Every  int
}

func NewProgress(logger *log.Logger, total, every int) *Progress {
	if every < 1 {
		every = 1
	}
	return &Progress{logger: logger, total: total, Every: every}
}

func (p *Progress) OnStep(s dynamo.Snapshot) {
	if s.Step%p.Every != 0 && s.Step != p.total {
		return
	}
	p.logger.Info("progress", "step", s.Step, "of", p.total, "t", s.Time)
}
