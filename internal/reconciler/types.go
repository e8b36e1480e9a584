package reconciler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInterestLength is the longest interest identifier stores accept, in bytes.
const MaxInterestLength = 128

// Interest is an opaque topic identifier a user wants notifications for
type Interest string

// InterestSet holds the desired interests. Only membership matters.
type InterestSet map[Interest]struct{}

// NewInterestSet builds a set from the given interests, dropping duplicates
func NewInterestSet(interests ...Interest) InterestSet {
	s := make(InterestSet, len(interests))
	for _, i := range interests {
		s.Add(i)
	}
	return s
}

// InterestSetFromStrings is a convenience for callers holding plain strings
func InterestSetFromStrings(values []string) InterestSet {
	s := make(InterestSet, len(values))
	for _, v := range values {
		s.Add(Interest(v))
	}
	return s
}

func (s InterestSet) Add(i Interest) {
	s[i] = struct{}{}
}

func (s InterestSet) Has(i Interest) bool {
	_, ok := s[i]
	return ok
}

func (s InterestSet) Len() int {
	return len(s)
}

// Sorted returns the interests in lexicographic order. The create phase
// walks the set in this order so passes are reproducible.
func (s InterestSet) Sorted() []Interest {
	out := make([]Interest, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Notification is what the push backend shows when a subscription fires
type Notification struct {
	AlertBody string
	SoundName string
}

// Subscription is a remote record binding one interest to a notification rule
type Subscription struct {
	ID           string
	Interest     Interest
	Notification Notification
}

// CreateRequest describes a subscription to be created by a store
type CreateRequest struct {
	Interest     Interest
	Notification Notification
}

// SubscriptionStore is the remote capability driven by a reconciliation pass.
//
// Implementations wrap ErrRemoteUnavailable, ErrNotFound and
// ErrInvalidInterest so callers can classify failures with errors.Is.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
	CreateSubscription(ctx context.Context, req CreateRequest) (Subscription, error)
}

// ValidateInterest reports whether an interest identifier is acceptable to
// a store. The returned error wraps ErrInvalidInterest.
func ValidateInterest(i Interest) error {
	s := string(i)
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("%w: empty interest", ErrInvalidInterest)
	case len(s) > MaxInterestLength:
		return fmt.Errorf("%w: interest longer than %d bytes", ErrInvalidInterest, MaxInterestLength)
	case !utf8.ValidString(s):
		return fmt.Errorf("%w: interest is not valid UTF-8", ErrInvalidInterest)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: interest %q contains control characters", ErrInvalidInterest, s)
		}
	}
	return nil
}
