package sim

import (
	"context"

	"github.com/san-kum/gravsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Job is one independent run of an Ensemble. Metrics is a factory because
// metrics carry per-run state.
type Job struct {
	Name    string
	Bodies  []dynamo.Body
	Config  dynamo.Config
	Metrics func(cfg dynamo.Config) []dynamo.Metric
}

// Ensemble runs independent jobs concurrently. Each job gets its own
// simulator and stepper; nothing is shared between goroutines.
type Ensemble struct {
	jobs  []Job
	limit int
}

func NewEnsemble(limit int) *Ensemble {
	return &Ensemble{limit: limit}
}

func (e *Ensemble) Add(jobs ...Job) { e.jobs = append(e.jobs, jobs...) }
func (e *Ensemble) Len() int        { return len(e.jobs) }

// Run returns results in job order, or the first error. The remaining jobs
// are cancelled once one fails.
func (e *Ensemble) Run(ctx context.Context) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, job := range e.jobs {
		g.Go(func() error {
			s, err := NewFromConfig(job.Config)
			if err != nil {
				return err
			}
			if job.Metrics != nil {
				for _, m := range job.Metrics(job.Config) {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, job.Bodies)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
