package storage

import (
	"context"
	"time"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
)

// Store defines the interface for all storage operations.
// Besides the selection and the run history it doubles as the local
// subscription backend, so it satisfies reconciler.SubscriptionStore.
type Store interface {
	// Interest selection
	AddInterests(ctx context.Context, interests []string) error
	GetInterests(ctx context.Context) ([]string, error)
	ClearInterests(ctx context.Context) error

	// Reconciliation history
	SaveRun(ctx context.Context, run *Run) error
	GetRuns(ctx context.Context, limit int) ([]*Run, error)

	// Local subscription backend
	reconciler.SubscriptionStore

	// Lifecycle
	Close() error
}

// Run is one recorded reconciliation pass
type Run struct {
	ID        int64
	Backend   string
	StartedAt time.Time
	Duration  time.Duration
	Desired   int
	Deleted   int
	Created   int
	Failures  []RunFailure
}

// RunFailure is a flattened reconciler.Failure
type RunFailure struct {
	Operation string
	Target    string
	Kind      string
	Message   string
}

// NewRun converts a reconciliation result into a history record
func NewRun(backend string, startedAt time.Time, desired int, res reconciler.Result) *Run {
	run := &Run{
		Backend:   backend,
		StartedAt: startedAt,
		Duration:  res.Duration,
		Desired:   desired,
		Deleted:   res.Deleted,
		Created:   res.Created,
	}
	for _, f := range res.Failures {
		run.Failures = append(run.Failures, RunFailure{
			Operation: string(f.Operation),
			Target:    f.Target,
			Kind:      string(f.Kind()),
			Message:   f.Err.Error(),
		})
	}
	return run
}
