// Package reconciler re-registers remote notification subscriptions so that
// they match a desired set of interests.
//
// A pass lists every subscription the store holds, deletes all of them,
// then creates one subscription per desired interest. Deletes and creates
// run concurrently within their phase but the delete phase always finishes
// before the first create is issued. Per-item failures are collected in the
// Result; only a failed list call aborts the pass.
package reconciler

import (
	"context"
	"math"
	"time"

	"github.com/NissesSenap/interest-sync/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxConcurrent = 5
	DefaultMaxAttempts   = 3
	DefaultRetryBackoff  = 1 * time.Second
)

// Reconciler drives a SubscriptionStore towards a desired interest set
type Reconciler struct {
	store         SubscriptionStore
	template      *NotificationTemplate
	logger        *zap.Logger
	limiter       *rate.Limiter
	timeout       time.Duration
	maxConcurrent int
	attempts      int
	backoff       time.Duration
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithTemplate sets the notification template used for new subscriptions
func WithTemplate(t *NotificationTemplate) Option {
	return func(r *Reconciler) {
		if t != nil {
			r.template = t
		}
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTimeout bounds a whole pass, list call included. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		r.timeout = d
	}
}

// WithMaxConcurrent caps the number of in-flight store calls per phase
func WithMaxConcurrent(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxConcurrent = n
		}
	}
}

// WithRateLimit throttles store calls to rps requests per second with a
// burst of 2*rps. Zero or negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(r *Reconciler) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(math.Max(1, rps*2))
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets how many times a transient list or delete failure is
// attempted and the initial backoff between attempts. Creates are never
// retried.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(r *Reconciler) {
		if attempts > 0 {
			r.attempts = attempts
		}
		if backoff >= 0 {
			r.backoff = backoff
		}
	}
}

// New creates a Reconciler for the given store
func New(store SubscriptionStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:         store,
		template:      DefaultTemplate(),
		logger:        zap.NewNop(),
		limiter:       rate.NewLimiter(rate.Inf, 0),
		maxConcurrent: DefaultMaxConcurrent,
		attempts:      DefaultMaxAttempts,
		backoff:       DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs a single pass against store. See Reconciler.Reconcile.
func Reconcile(ctx context.Context, desired InterestSet, store SubscriptionStore, opts ...Option) Result {
	return New(store, opts...).Reconcile(ctx, desired)
}

// Reconcile runs one delete-then-recreate pass. It never returns an error:
// every problem ends up in Result.Failures.
func (r *Reconciler) Reconcile(ctx context.Context, desired InterestSet) Result {
	start := time.Now()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	acc := &accumulator{}
	pool := newWorkPool(r.maxConcurrent, r.limiter, r.attempts, r.backoff, r.logger)

	existing, err := r.list(ctx)
	if err != nil {
		pool.record(OpList, "", err, acc)
		return r.finish(acc, desired, start, "aborted")
	}

	ids := make([]string, 0, len(existing))
	for _, sub := range existing {
		ids = append(ids, sub.ID)
	}
	r.logger.Debug("deleting existing subscriptions", zap.Int("count", len(ids)))
	pool.run(ctx, OpDelete, ids, func(ctx context.Context, id string) error {
		return r.store.DeleteSubscription(ctx, id)
	}, acc)

	interests := desired.Sorted()
	targets := make([]string, 0, len(interests))
	for _, i := range interests {
		targets = append(targets, string(i))
	}
	r.logger.Debug("creating subscriptions", zap.Int("count", len(targets)))
	pool.run(ctx, OpCreate, targets, func(ctx context.Context, target string) error {
		interest := Interest(target)
		n, err := r.template.Render(interest)
		if err != nil {
			return err
		}
		_, err = r.store.CreateSubscription(ctx, CreateRequest{Interest: interest, Notification: n})
		return err
	}, acc)

	status := "ok"
	if acc.mark() > 0 {
		status = "partial"
	}
	return r.finish(acc, desired, start, status)
}

func (r *Reconciler) list(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	err := retryWithBackoff(ctx, r.attempts, r.backoff, func() error {
		var listErr error
		subs, listErr = r.store.ListSubscriptions(ctx)
		return listErr
	})
	if err != nil {
		if ctx.Err() != nil && KindOf(err) == KindTimeout {
			err = asTimeout(err)
		}
		return nil, err
	}
	metrics.ObserveOperation(string(OpList), "")
	return subs, nil
}

func (r *Reconciler) finish(acc *accumulator, desired InterestSet, start time.Time, status string) Result {
	res := acc.result(time.Since(start))
	metrics.ObservePass(status, desired.Len(), res.Duration)
	r.logger.Info("reconciliation pass finished",
		zap.String("status", status),
		zap.Int("desired", desired.Len()),
		zap.Int("deleted", res.Deleted),
		zap.Int("created", res.Created),
		zap.Int("failures", len(res.Failures)),
		zap.Duration("duration", res.Duration))
	return res
}
