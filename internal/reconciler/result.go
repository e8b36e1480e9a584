package reconciler

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Operation names the store call a failure belongs to
type Operation string

const (
	OpList   Operation = "list"
	OpDelete Operation = "delete"
	OpCreate Operation = "create"
)

// Failure records one store call that did not succeed
type Failure struct {
	Operation Operation
	// Target is the subscription ID for deletes, the interest for creates,
	// and empty for the list call.
	Target string
	Err    error
}

// Kind classifies the failure into the error taxonomy
func (f Failure) Kind() ErrorKind {
	return KindOf(f.Err)
}

func (f Failure) String() string {
	if f.Target == "" {
		return fmt.Sprintf("%s: %v", f.Operation, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Operation, f.Target, f.Err)
}

// Result is the outcome of one reconciliation pass
type Result struct {
	Deleted  int
	Created  int
	Failures []Failure
	Duration time.Duration
}

// OK reports whether the pass finished without any failure
func (r Result) OK() bool {
	return len(r.Failures) == 0
}

// FailuresFor returns the failures recorded for one operation
func (r Result) FailuresFor(op Operation) []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if f.Operation == op {
			out = append(out, f)
		}
	}
	return out
}

// accumulator collects counters and failures from concurrent workers
type accumulator struct {
	mu       sync.Mutex
	deleted  int
	created  int
	failures []Failure
}

func (a *accumulator) succeed(op Operation) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch op {
	case OpDelete:
		a.deleted++
	case OpCreate:
		a.created++
	}
}

func (a *accumulator) fail(op Operation, target string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failures = append(a.failures, Failure{Operation: op, Target: target, Err: err})
}

// mark returns the current failure count, used as the start of a phase
func (a *accumulator) mark() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.failures)
}

// sortFrom orders the failures recorded since mark by target
func (a *accumulator) sortFrom(mark int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tail := a.failures[mark:]
	sort.SliceStable(tail, func(i, j int) bool { return tail[i].Target < tail[j].Target })
}

func (a *accumulator) result(elapsed time.Duration) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	failures := make([]Failure, len(a.failures))
	copy(failures, a.failures)
	return Result{
		Deleted:  a.deleted,
		Created:  a.created,
		Failures: failures,
		Duration: elapsed,
	}
}
