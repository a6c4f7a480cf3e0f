package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// Case is one member of an ensemble: its own stepper and run config. World
// overrides the ensemble's shared initial world when set.
type Case struct {
	Name    string
	Stepper Stepper
	Config  Config
	World   *world.World
}

// Ensemble runs independent simulations of the same initial world
// concurrently. Each case gets its own clone of the world and a fresh metric
// set from newMetrics(i), so nothing is shared between goroutines; every
// individual tick stays single-threaded.
type Ensemble struct {
	cases      []Case
	newMetrics func(i int) []Metric
	limit      int
}

func NewEnsemble(cases []Case, newMetrics func(i int) []Metric) *Ensemble {
	return &Ensemble{cases: cases, newMetrics: newMetrics}
}

// SetLimit bounds the number of cases running at once. Zero or less means
// no bound.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns results in case order. The first failing case cancels the rest.
func (e *Ensemble) Run(ctx context.Context, w0 *world.World) ([]*Result, error) {
	results := make([]*Result, len(e.cases))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, c := range e.cases {
		g.Go(func() error {
			s := New(c.Stepper)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics(i) {
					s.AddMetric(m)
				}
			}

			w := w0
			if c.World != nil {
				w = c.World
			}
			res, err := s.Run(ctx, w, c.Config)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
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
