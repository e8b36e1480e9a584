// Package memory is an in-process SubscriptionStore for tests. Faults can be
// injected per call and every call is appended to an operation log.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/google/uuid"
)

// Call is one entry in the operation log
type Call struct {
	Operation reconciler.Operation
	Target    string
	At        time.Time
	Err       error
}

// Faults lets tests make individual calls fail. A nil hook never fails.
type Faults struct {
	OnList   func() error
	OnDelete func(id string) error
	OnCreate func(interest reconciler.Interest) error
}

// Store keeps subscriptions in a map keyed by ID
type Store struct {
	mu      sync.Mutex
	subs    map[string]reconciler.Subscription
	created map[string]time.Time
	calls   []Call
	faults  Faults
	latency time.Duration
}

// New creates an empty Store
func New() *Store {
	return &Store{
		subs:    make(map[string]reconciler.Subscription),
		created: make(map[string]time.Time),
	}
}

// SetFaults replaces the fault hooks
func (s *Store) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// SetLatency makes every call sleep before doing its work. The sleep is
// cut short when the call's context ends.
func (s *Store) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Seed inserts subscriptions for the given interests, bypassing faults and
// the operation log
func (s *Store) Seed(interests ...reconciler.Interest) []reconciler.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]reconciler.Subscription, 0, len(interests))
	for _, i := range interests {
		sub := reconciler.Subscription{ID: uuid.NewString(), Interest: i}
		s.subs[sub.ID] = sub
		s.created[sub.ID] = time.Now()
		out = append(out, sub)
	}
	return out
}

// Calls returns a copy of the operation log
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Interests returns the interest of every stored subscription, sorted,
// duplicates included
func (s *Store) Interests() []reconciler.Interest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]reconciler.Interest, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.Interest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListSubscriptions returns all subscriptions ordered by creation time
func (s *Store) ListSubscriptions(ctx context.Context) ([]reconciler.Subscription, error) {
	if err := s.wait(ctx); err != nil {
		return nil, s.log(reconciler.OpList, "", err)
	}

	s.mu.Lock()
	hook := s.faults.OnList
	s.mu.Unlock()
	if hook != nil {
		if err := hook(); err != nil {
			return nil, s.log(reconciler.OpList, "", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]reconciler.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := s.created[out[i].ID], s.created[out[j].ID]
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		return ti.Before(tj)
	})
	s.calls = append(s.calls, Call{Operation: reconciler.OpList, At: time.Now()})
	return out, nil
}

// DeleteSubscription removes a subscription; a missing ID is ErrNotFound
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return s.log(reconciler.OpDelete, id, err)
	}

	s.mu.Lock()
	hook := s.faults.OnDelete
	s.mu.Unlock()
	if hook != nil {
		if err := hook(id); err != nil {
			return s.log(reconciler.OpDelete, id, err)
		}
	}

	s.mu.Lock()
	if _, ok := s.subs[id]; !ok {
		s.mu.Unlock()
		return s.log(reconciler.OpDelete, id, fmt.Errorf("%w: %s", reconciler.ErrNotFound, id))
	}
	delete(s.subs, id)
	delete(s.created, id)
	s.mu.Unlock()

	return s.log(reconciler.OpDelete, id, nil)
}

// CreateSubscription stores a new subscription under a fresh UUID
func (s *Store) CreateSubscription(ctx context.Context, req reconciler.CreateRequest) (reconciler.Subscription, error) {
	target := string(req.Interest)
	if err := s.wait(ctx); err != nil {
		return reconciler.Subscription{}, s.log(reconciler.OpCreate, target, err)
	}
	if err := reconciler.ValidateInterest(req.Interest); err != nil {
		return reconciler.Subscription{}, s.log(reconciler.OpCreate, target, err)
	}

	s.mu.Lock()
	hook := s.faults.OnCreate
	s.mu.Unlock()
	if hook != nil {
		if err := hook(req.Interest); err != nil {
			return reconciler.Subscription{}, s.log(reconciler.OpCreate, target, err)
		}
	}

	sub := reconciler.Subscription{
		ID:           uuid.NewString(),
		Interest:     req.Interest,
		Notification: req.Notification,
	}
	s.mu.Lock()
	s.subs[sub.ID] = sub
	s.created[sub.ID] = time.Now()
	s.mu.Unlock()

	return sub, s.log(reconciler.OpCreate, target, nil)
}

func (s *Store) wait(ctx context.Context) error {
	s.mu.Lock()
	d := s.latency
	s.mu.Unlock()

	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) log(op reconciler.Operation, target string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Operation: op, Target: target, At: time.Now(), Err: err})
	return err
}
