package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/gomega"
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestEnsembleMatchesSerialRuns(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 48 * cfg.Dt

	e := NewEnsemble(2)
	for _, model := range []string{dynamo.ModelSequential, dynamo.ModelNetForce, dynamo.ModelSequential} {
		c := cfg
		c.Model = model
		e.Add(Job{Name: model, Bodies: earthMoon(), Config: c})
	}
	g.Expect(e.Len()).To(gomega.Equal(3))

	results, err := e.Run(context.Background())
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(results).To(gomega.HaveLen(3))

	serial, err := New(mustStepper(t, dynamo.ModelNetForce), withModel(cfg, dynamo.ModelNetForce)).Run(context.Background(), earthMoon())
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(results[0].Model).To(gomega.Equal(dynamo.ModelSequential))
	g.Expect(results[1].Trajectory).To(gomega.Equal(serial.Trajectory))
	g.Expect(results[0].Trajectory).To(gomega.Equal(results[2].Trajectory))
}

func TestEnsembleMetricsArePerJob(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 10 * cfg.Dt

	var made []*countingMetric
	factory := func(dynamo.Config) []dynamo.Metric {
		m := &countingMetric{}
		made = append(made, m)
		return []dynamo.Metric{m}
	}

	e := NewEnsemble(1)
	e.Add(
		Job{Name: "a", Bodies: earthMoon(), Config: cfg, Metrics: factory},
		Job{Name: "b", Bodies: earthMoon(), Config: cfg, Metrics: factory},
	)
	results, err := e.Run(context.Background())
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(made).To(gomega.HaveLen(2))
	for _, res := range results {
		g.Expect(res.Metrics["count"]).To(gomega.Equal(11.0))
	}
}

func TestEnsembleReturnsFirstError(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 10 * cfg.Dt

	e := NewEnsemble(0)
	e.Add(
		Job{Name: "ok", Bodies: earthMoon(), Config: cfg},
		Job{Name: "bad", Bodies: []dynamo.Body{
			{Name: "x", Mass: 1, Pos: r2.Vec{X: 1}},
			{Name: "y", Mass: 1, Pos: r2.Vec{X: 1}},
		}, Config: cfg},
	)

	results, err := e.Run(context.Background())
	g.Expect(results).To(gomega.BeNil())
	g.Expect(errors.Is(err, dynamo.ErrCoincident)).To(gomega.BeTrue())
}

func mustStepper(t *testing.T, model string) dynamo.Stepper {
	t.Helper()
	s, err := NewFromConfig(withModel(dynamo.DefaultConfig(), model))
	if err != nil {
		t.Fatal(err)
	}
	return s.stepper
}

func withModel(cfg dynamo.Config, model string) dynamo.Config {
	cfg.Model = model
	return cfg
}
