package sim

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
)

// Ensemble runs the same network from jittered initial states. Each run gets
// its own integrator and metrics; the system is shared, which is safe since
// evaluation keeps no state of its own.
type Ensemble struct {
	sys           integrators.RHS
	newIntegrator func() integrators.Integrator
	newMetrics    func() []Metric
	numRuns       int
	seedStart     int64
	workers       int
	jitter        float64
}

func NewEnsemble(sys integrators.RHS, newIntegrator func() integrators.Integrator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		sys:           sys,
		newIntegrator: newIntegrator,
		numRuns:       numRuns,
		seedStart:     seedStart,
		workers:       dynamo.DefaultWorkers,
	}
}

// WithJitter adds sigma·N(0,1) noise to every initial component except the
// algebraic ones.
func (e *Ensemble) WithJitter(sigma float64) *Ensemble {
	e.jitter = sigma
	return e
}

func (e *Ensemble) WithMetrics(newMetrics func() []Metric) *Ensemble {
	e.newMetrics = newMetrics
	return e
}

func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run returns one result per run, in seed order. The first failing run
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(i)

			s := New(e.sys, e.newIntegrator())
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, e.perturb(x0, cfgCopy.Seed), cfgCopy)
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

func (e *Ensemble) perturb(x0 dynamo.State, seed int64) dynamo.State {
	x := x0.Clone()
	if e.jitter == 0 {
		return x
	}

	rng := rand.New(rand.NewSource(seed))
	for i := range x {
		x[i] += e.jitter * rng.NormFloat64()
	}
	for _, seg := range e.sys.Algebraic() {
		copy(seg.Slice(x), seg.Slice(x0))
	}
	return x
}
