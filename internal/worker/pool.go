package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Outcome is the result of processing one unit of work. A failed unit keeps
// its error here; failures never abort the other units.
type Outcome[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc processes a single unit of work.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs independent units of work with bounded parallelism. Workers
// share nothing; all synchronization belongs to whatever the process
// function appends into.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, process: fn}
}

// Run processes all inputs and returns one outcome per input, in input
// order. Returning is a join point: every worker has finished by then.
// Cancelling the context stops dispatch; in-flight units still complete.
func (p *Pool[T, R]) Run(ctx context.Context, inputs []T) []Outcome[T, R] {
	outcomes := make([]Outcome[T, R], len(inputs))
	indexes := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-indexes:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					outcomes[idx] = Outcome[T, R]{Input: inputs[idx], Result: result, Err: err}
					if err != nil {
						log.Error().Err(err).Int("index", idx).Msg("Unit failed")
					}
				}
			}
		}()
	}

	for i := range inputs {
		select {
		case <-ctx.Done():
		case indexes <- i:
			continue
		}
		break
	}
	close(indexes)

	wg.Wait()
	return outcomes
}

// FailureCount reports how many outcomes carry an error.
func FailureCount[T any, R any](outcomes []Outcome[T, R]) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}

// Batch splits items into batches of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
