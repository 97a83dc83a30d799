package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// RunBounded runs task over items with at most concurrency tasks in flight.
//
// Results are positional: result[i] belongs to items[i]. onProgress, when
// set, is called after every finished task. The first task error cancels
// the context handed to the remaining tasks, stops further claims and is
// returned without results.
func RunBounded[T, U any](
	ctx context.Context,
	items []T,
	task func(ctx context.Context, item T, index int) (U, error),
	concurrency int,
	onProgress func(domain.Progress),
) ([]U, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("%w: concurrency must be positive, got %d", domain.ErrInvalidInput, concurrency)
	}

	results := make([]U, len(items))
	if len(items) == 0 {
		return results, nil
	}

	workers := min(concurrency, len(items))
	total := len(items)

	var (
		next      atomic.Int64
		completed int
		progMu    sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				i := int(next.Add(1) - 1)
				if i >= total {
					return nil
				}

				res, err := task(gctx, items[i], i)
				if err != nil {
					return err
				}
				results[i] = res

				if onProgress != nil {
					progMu.Lock()
					completed++
					onProgress(domain.Progress{Completed: completed, Total: total})
					progMu.Unlock()
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
