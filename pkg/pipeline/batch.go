package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch runs independent jobs concurrently with at most limit in flight
// (GOMAXPROCS when limit is not positive). Results are returned in job
// order regardless of completion order. The first failure cancels the
// remaining jobs and is returned.
func (r *Runner) Batch(ctx context.Context, jobs []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.name(), err)
			}
			results[i] = res
			if r.OnJobDone != nil {
				r.OnJobDone()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
