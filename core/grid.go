package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/churnlab/schema"
)

// ExpandGrid builds the cartesian product of the hyperparameter axes.
// When includePruned is set, every combination appears twice: once grown
// directly at cp and once grown at cp=0 and pruned back. Ordering is
// deterministic so grid indices are stable across runs.
func ExpandGrid(cps []float64, minsplits, maxdepths []int, includePruned bool) []schema.Hyperparams {
	variants := []bool{false}
	if includePruned {
		variants = []bool{false, true}
	}
	grid := make([]schema.Hyperparams, 0, len(cps)*len(minsplits)*len(maxdepths)*len(variants))
	for _, cp := range cps {
		for _, ms := range minsplits {
			for _, md := range maxdepths {
				for _, pruned := range variants {
					grid = append(grid, schema.Hyperparams{
						CP:       cp,
						MinSplit: ms,
						MaxDepth: md,
						Prune:    pruned,
					})
				}
			}
		}
	}
	return grid
}

// RunGrid trains and evaluates every grid point in parallel using a
// fixed-size worker pool. Each point works on the shared immutable
// partitions and produces an independent model, so no synchronization is
// needed beyond the pool itself. A failing point records its error and
// never aborts its siblings. Results come back in grid order.
func RunGrid(ctx context.Context, part schema.Partition, grid []schema.Hyperparams, workers int) []schema.GridResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]schema.GridResult, len(grid))
	pointCh := make(chan int, len(grid))
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for idx := range pointCh {
				// Each goroutine writes to a unique index, which is safe.
				results[idx] = runGridPoint(ctx, part, grid[idx])
			}
		})
	}

	for idx := range grid {
		pointCh <- idx
	}
	close(pointCh)
	wg.Wait()

	return results
}

// runGridPoint trains one (cp, minsplit, maxdepth, pruned) combination and
// scores it against the test partition.
func runGridPoint(ctx context.Context, part schema.Partition, hp schema.Hyperparams) schema.GridResult {
	start := time.Now()
	result := schema.GridResult{Params: hp}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	model, err := Train(part.Train, hp)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.Model = model
	result.Report = Evaluate(model, part.Test)
	result.Duration = time.Since(start)
	return result
}
