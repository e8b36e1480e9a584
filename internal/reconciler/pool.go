package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NissesSenap/interest-sync/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// workPool runs the items of one phase concurrently with a cap on
// in-flight calls and a shared rate limit.
type workPool struct {
	semaphore chan struct{}
	limiter   *rate.Limiter
	attempts  int
	backoff   time.Duration
	logger    *zap.Logger
}

func newWorkPool(maxConcurrent int, limiter *rate.Limiter, attempts int, backoff time.Duration, logger *zap.Logger) *workPool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &workPool{
		semaphore: make(chan struct{}, maxConcurrent),
		limiter:   limiter,
		attempts:  attempts,
		backoff:   backoff,
		logger:    logger,
	}
}

// run launches one goroutine per target and returns once every target has
// either succeeded or recorded a failure in acc.
//
// A failing target never stops the others. Targets that could not start
// before ctx ended are recorded as timeouts.
func (p *workPool) run(ctx context.Context, op Operation, targets []string, fn func(ctx context.Context, target string) error, acc *accumulator) {
	var wg sync.WaitGroup
	mark := acc.mark()

	for _, target := range targets {
		wg.Add(1)

		go func(target string) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				p.record(op, target, asTimeout(err), acc)
				return
			}

			select {
			case p.semaphore <- struct{}{}:
			case <-ctx.Done():
				p.record(op, target, asTimeout(ctx.Err()), acc)
				return
			}
			defer func() { <-p.semaphore }()

			if err := p.limiter.Wait(ctx); err != nil {
				p.record(op, target, fmt.Errorf("%w: rate limiter: %w", ErrTimeout, err), acc)
				return
			}

			err := retryWithBackoff(ctx, p.attemptsFor(op), p.backoff, func() error {
				return fn(ctx, target)
			})
			if err != nil {
				if ctx.Err() != nil && KindOf(err) == KindTimeout {
					err = asTimeout(err)
				}
				p.record(op, target, err, acc)
				return
			}

			metrics.ObserveOperation(string(op), "")
			acc.succeed(op)
		}(target)
	}

	wg.Wait()
	acc.sortFrom(mark)
}

// attemptsFor returns how often a transient failure of op is attempted.
// A create that landed remotely but reported a transient error would be
// duplicated by a retry, so creates get exactly one attempt. A repeated
// delete at worst reports NotFound.
func (p *workPool) attemptsFor(op Operation) int {
	if op == OpCreate {
		return 1
	}
	return p.attempts
}

func (p *workPool) record(op Operation, target string, err error, acc *accumulator) {
	kind := KindOf(err)
	metrics.ObserveOperation(string(op), string(kind))
	p.logger.Warn("subscription operation failed",
		zap.String("operation", string(op)),
		zap.String("target", target),
		zap.String("kind", string(kind)),
		zap.Error(err))
	acc.fail(op, target, err)
}

// asTimeout wraps a context error so it matches ErrTimeout
func asTimeout(err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}
