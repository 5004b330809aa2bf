package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	earthMass    = 5.972e24
	moonMass     = 7.348e22
	moonDistance = 3.844e8
	moonSpeed    = 1022.0
)

func earthMoon() []dynamo.Body {
	return []dynamo.Body{
		{Name: "Earth", Mass: earthMass},
		{Name: "Moon", Mass: moonMass, Pos: r2.Vec{X: moonDistance}, Vel: r2.Vec{Y: moonSpeed}},
	}
}

func run(cfg dynamo.Config, bodies []dynamo.Body) (*dynamo.Result, error) {
	s, err := NewFromConfig(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s.Run(context.Background(), bodies)
}

type countingMetric struct {
	seen  int
	reset int
}

func (m *countingMetric) Name() string             { return "count" }
func (m *countingMetric) Observe(_ dynamo.Snapshot) { m.seen++ }
func (m *countingMetric) Value() float64           { return float64(m.seen) }
func (m *countingMetric) Reset()                   { m.seen = 0; m.reset++ }

var _ = Describe("Simulator", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
	})

	Describe("step count", func() {
		DescribeTable("records floor(duration/dt) snapshots",
			func(dt, duration float64, want int) {
				cfg.Dt, cfg.Duration = dt, duration
				res, err := run(cfg, earthMoon())
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Trajectory).To(HaveLen(want))
				Expect(res.StepsTaken).To(Equal(want))
			},
			Entry("whole multiple", 3600.0, 36000.0, 10),
			Entry("remainder dropped", 3600.0, 37000.0, 10),
			Entry("duration shorter than dt", 3600.0, 1800.0, 0),
			Entry("inexact decimal quotient", 0.1, 0.3, 3),
			Entry("large quotient just short of a whole step", 1.0, 1e5-1e-5, 99999),
		)

		It("returns the initial state as final when no step fits", func() {
			cfg.Duration = cfg.Dt / 2
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory).To(BeEmpty())
			Expect(res.Final().Bodies).To(Equal(earthMoon()))
		})
	})

	Describe("snapshots", func() {
		It("stamps each snapshot with its step and end-of-step time", func() {
			cfg.Duration = 5 * cfg.Dt
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())

			for i, snap := range res.Trajectory {
				Expect(snap.Step).To(Equal(i + 1))
				Expect(snap.Time).To(Equal(float64(i+1) * cfg.Dt))
			}
			Expect(res.Initial.Step).To(Equal(0))
			Expect(res.Initial.Time).To(BeZero())
		})

		It("records the state after the update", func() {
			cfg.Duration = cfg.Dt
			bodies := earthMoon()

			res, err := run(cfg, bodies)
			Expect(err).NotTo(HaveOccurred())

			manual := dynamo.Clone(bodies)
			Expect(integrators.NewSequential(0).Step(manual, cfg.G, cfg.Dt)).To(Succeed())
			Expect(res.Trajectory[0].Bodies).To(Equal(manual))
			Expect(res.Trajectory[0].Bodies[1].Pos).NotTo(Equal(bodies[1].Pos))
		})

		It("does not alias state between snapshots", func() {
			cfg.Duration = 3 * cfg.Dt
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Trajectory[0].Bodies[1].Pos).NotTo(Equal(res.Trajectory[2].Bodies[1].Pos))
			res.Trajectory[2].Bodies[1].Pos = r2.Vec{}
			Expect(res.Trajectory[1].Bodies[1].Pos).NotTo(Equal(r2.Vec{}))
		})

		It("leaves the caller's bodies untouched", func() {
			bodies := earthMoon()
			before := dynamo.Clone(bodies)
			_, err := run(cfg, bodies)
			Expect(err).NotTo(HaveOccurred())
			Expect(bodies).To(Equal(before))
		})
	})

	It("is deterministic", func() {
		for _, model := range integrators.Names() {
			cfg.Model = model
			a, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			b, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Trajectory).To(Equal(b.Trajectory), "model %s", model)
		}
	})

	Describe("Earth and Moon", func() {
		relative := func(s dynamo.Snapshot) r2.Vec {
			return r2.Sub(s.Bodies[1].Pos, s.Bodies[0].Pos)
		}

		It("keeps the Moon near its initial orbital radius", func() {
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory).To(HaveLen(720))

			for _, snap := range res.Trajectory {
				r := r2.Norm(relative(snap))
				Expect(math.Abs(r-moonDistance) / moonDistance).To(BeNumerically("<", 0.05))
			}
		})

		It("brings the Moon back near its start after one sidereal month", func() {
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())

			start := relative(res.Initial)
			closest := math.Inf(1)
			for _, snap := range res.Trajectory[len(res.Trajectory)/2:] {
				closest = math.Min(closest, r2.Norm(r2.Sub(relative(snap), start)))
			}
			Expect(closest / moonDistance).To(BeNumerically("<", 0.03))
		})

		// With dt=3600 over 2.36e6 s (655 steps) the Moon ends about 3 degrees
		// past a full revolution: radius and speed stay within 0.5% while the
		// phase offset puts position and velocity within 6% of their start.
		It("returns the Moon near its start in position and velocity after 2.36e6 s", func() {
			cfg.Dt, cfg.Duration = 3600, 2.36e6
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory).To(HaveLen(655))

			final := res.Final()
			pos := relative(final)
			vel := r2.Sub(final.Bodies[1].Vel, final.Bodies[0].Vel)
			startPos := relative(res.Initial)
			startVel := r2.Sub(res.Initial.Bodies[1].Vel, res.Initial.Bodies[0].Vel)

			Expect(r2.Norm(r2.Sub(pos, startPos)) / moonDistance).To(BeNumerically("<", 0.06))
			Expect(r2.Norm(r2.Sub(vel, startVel)) / moonSpeed).To(BeNumerically("<", 0.06))

			Expect(r2.Norm(pos) / moonDistance).To(BeNumerically("~", 1, 0.005))
			Expect(r2.Norm(vel) / moonSpeed).To(BeNumerically("~", 1, 0.005))
			Expect(math.Abs(math.Atan2(pos.Y, pos.X))).To(BeNumerically("<", 0.06))
		})

		It("records a non-zero acceleration toward Earth", func() {
			cfg.Duration = cfg.Dt
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())

			moon := res.Trajectory[0].Bodies[1]
			Expect(moon.Acc.X).To(BeNumerically("<", 0))
			Expect(r2.Norm(moon.Acc)).To(BeNumerically("~", cfg.G*earthMass/(moonDistance*moonDistance), 1e-6))
		})
	})

	It("tightens a resting pair monotonically", func() {
		cfg = dynamo.Config{G: 1, Dt: 0.01, Duration: 0.5, Model: dynamo.ModelSequential, ValidateState: true}
		bodies := []dynamo.Body{
			{Name: "a", Mass: 1, Pos: r2.Vec{X: -1}},
			{Name: "b", Mass: 1, Pos: r2.Vec{X: 1}},
		}
		res, err := run(cfg, bodies)
		Expect(err).NotTo(HaveOccurred())

		prev, err := physics.PotentialEnergy(cfg.G, res.Initial.Bodies)
		Expect(err).NotTo(HaveOccurred())
		for _, snap := range res.Trajectory {
			u, err := physics.PotentialEnergy(cfg.G, snap.Bodies)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(u)).To(BeNumerically(">", math.Abs(prev)))
			prev = u
		}
	})

	Describe("failures", func() {
		It("reports coincident bodies with the pair and step", func() {
			bodies := []dynamo.Body{
				{Name: "A", Mass: 1e20, Pos: r2.Vec{X: 5, Y: 5}},
				{Name: "B", Mass: 1e20, Pos: r2.Vec{X: 5, Y: 5}},
			}
			res, err := run(cfg, bodies)
			Expect(res).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrCoincident)).To(BeTrue())

			var se *dynamo.SeparationError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(1))
			Expect(se.Time).To(BeZero())
			Expect([]string{se.A, se.B}).To(ConsistOf("A", "B"))
		})

		It("treats separations inside the floor as coincident", func() {
			cfg.MinSeparation = 1e3
			bodies := []dynamo.Body{
				{Name: "A", Mass: 1, Pos: r2.Vec{}},
				{Name: "B", Mass: 1, Pos: r2.Vec{X: 500}},
			}
			_, err := run(cfg, bodies)
			Expect(err).To(MatchError(dynamo.ErrCoincident))
		})

		DescribeTable("rejects invalid configuration before stepping",
			func(mutate func(*dynamo.Config)) {
				mutate(&cfg)
				s := New(integrators.NewSequential(0), cfg)
				_, err := s.Run(context.Background(), earthMoon())
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("zero dt", func(c *dynamo.Config) { c.Dt = 0 }),
			Entry("negative dt", func(c *dynamo.Config) { c.Dt = -1 }),
			Entry("zero duration", func(c *dynamo.Config) { c.Duration = 0 }),
			Entry("zero G", func(c *dynamo.Config) { c.G = 0 }),
			Entry("NaN G", func(c *dynamo.Config) { c.G = math.NaN() }),
			Entry("model mismatch", func(c *dynamo.Config) { c.Model = dynamo.ModelNetForce }),
			Entry("step count beyond int range", func(c *dynamo.Config) { c.Dt, c.Duration = 1e-300, 1 }),
		)

		DescribeTable("rejects invalid bodies",
			func(bodies []dynamo.Body) {
				_, err := run(cfg, bodies)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("empty set", []dynamo.Body{}),
			Entry("zero mass", []dynamo.Body{{Name: "a", Mass: 0}}),
			Entry("negative mass", []dynamo.Body{{Name: "a", Mass: -5}}),
			Entry("duplicate names", []dynamo.Body{{Name: "a", Mass: 1}, {Name: "a", Mass: 1, Pos: r2.Vec{X: 1}}}),
			Entry("infinite position", []dynamo.Body{{Name: "a", Mass: 1, Pos: r2.Vec{X: math.Inf(1)}}}),
		)

		It("rejects an unknown model name", func() {
			cfg.Model = "rk4"
			_, err := NewFromConfig(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("stops on cancellation without a partial result", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s, err := NewFromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, earthMoon())
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("observers and metrics", func() {
		It("calls observers once per completed step in order", func() {
			cfg.Duration = 4 * cfg.Dt
			s, err := NewFromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())

			var steps []int
			s.AddObserver(dynamo.ObserverFunc(func(snap dynamo.Snapshot) {
				steps = append(steps, snap.Step)
			}))
			_, err = s.Run(context.Background(), earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal([]int{1, 2, 3, 4}))
		})

		It("feeds metrics the initial state plus every step", func() {
			cfg.Duration = 4 * cfg.Dt
			s, err := NewFromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())

			m := &countingMetric{}
			s.AddMetric(m)
			res, err := s.Run(context.Background(), earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("count", 5.0))

			_, err = s.Run(context.Background(), earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(m.reset).To(Equal(2))
			Expect(m.seen).To(Equal(5))
		})

		It("reports a small energy drift for a bound orbit", func() {
			res, err := run(cfg, earthMoon())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.EnergyDrift).To(BeNumerically("<", 0.05))
		})
	})
})
