// Package gcppubsub implements reconciler.SubscriptionStore on top of Google
// Cloud Pub/Sub. Every interest becomes one subscription on a shared topic,
// filtered on a message attribute:
//
//	projects/{project}/subscriptions/{prefix}-{uuid}
//	    topic:  projects/{project}/topics/{topic}
//	    filter: attributes.genre = "Jazz"
//	    labels: managed-by={managedBy}, interest=jazz
//
// Listing walks the subscriptions attached to the configured topic and keeps
// those carrying the managed-by label, so a pass never touches subscriptions
// owned by anything else.
package gcppubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const (
	LabelManagedBy = "managed-by"
	LabelInterest  = "interest"

	DefaultManagedBy    = "interest-sync"
	DefaultAttributeKey = "genre"
	DefaultPrefix       = "interest"
)

// Config selects where subscriptions live
type Config struct {
	ProjectID          string
	Topic              string // short topic ID or full resource name
	SubscriptionPrefix string
	AttributeKey       string
	ManagedBy          string
	AckDeadlineSeconds int32
}

// NameIterator is the subset of the generated string iterator the store uses
type NameIterator interface {
	Next() (string, error)
}

// Admin is the slice of the Pub/Sub admin APIs the store needs
type Admin interface {
	ListTopicSubscriptions(ctx context.Context, req *pubsubpb.ListTopicSubscriptionsRequest) NameIterator
	GetSubscription(ctx context.Context, req *pubsubpb.GetSubscriptionRequest) (*pubsubpb.Subscription, error)
	CreateSubscription(ctx context.Context, sub *pubsubpb.Subscription) (*pubsubpb.Subscription, error)
	DeleteSubscription(ctx context.Context, req *pubsubpb.DeleteSubscriptionRequest) error
}

type clientAdmin struct {
	client *pubsub.Client
}

// NewAdmin adapts a Pub/Sub client to Admin
func NewAdmin(client *pubsub.Client) Admin {
	return &clientAdmin{client: client}
}

func (a *clientAdmin) ListTopicSubscriptions(ctx context.Context, req *pubsubpb.ListTopicSubscriptionsRequest) NameIterator {
	return a.client.TopicAdminClient.ListTopicSubscriptions(ctx, req)
}

func (a *clientAdmin) GetSubscription(ctx context.Context, req *pubsubpb.GetSubscriptionRequest) (*pubsubpb.Subscription, error) {
	return a.client.SubscriptionAdminClient.GetSubscription(ctx, req)
}

func (a *clientAdmin) CreateSubscription(ctx context.Context, sub *pubsubpb.Subscription) (*pubsubpb.Subscription, error) {
	return a.client.SubscriptionAdminClient.CreateSubscription(ctx, sub)
}

func (a *clientAdmin) DeleteSubscription(ctx context.Context, req *pubsubpb.DeleteSubscriptionRequest) error {
	return a.client.SubscriptionAdminClient.DeleteSubscription(ctx, req)
}

// Store is a Pub/Sub backed SubscriptionStore
type Store struct {
	admin Admin
	cfg   Config
}

// New creates a Store. Empty optional fields get their defaults.
func New(admin Admin, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("pubsub store: project ID is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("pubsub store: topic is required")
	}
	if cfg.SubscriptionPrefix == "" {
		cfg.SubscriptionPrefix = DefaultPrefix
	}
	if cfg.AttributeKey == "" {
		cfg.AttributeKey = DefaultAttributeKey
	}
	if cfg.ManagedBy == "" {
		cfg.ManagedBy = DefaultManagedBy
	}
	return &Store{admin: admin, cfg: cfg}, nil
}

func (s *Store) topicName() string {
	if strings.HasPrefix(s.cfg.Topic, "projects/") {
		return s.cfg.Topic
	}
	return fmt.Sprintf("projects/%s/topics/%s", s.cfg.ProjectID, s.cfg.Topic)
}

// ListSubscriptions returns the managed subscriptions on the configured
// topic. A failure mid-iteration fails the whole call so a retry starts from
// a fresh iterator.
func (s *Store) ListSubscriptions(ctx context.Context) ([]reconciler.Subscription, error) {
	it := s.admin.ListTopicSubscriptions(ctx, &pubsubpb.ListTopicSubscriptionsRequest{
		Topic: s.topicName(),
	})

	var out []reconciler.Subscription
	for {
		name, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate subscriptions: %w", classifyError(err))
		}

		sub, err := s.admin.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: name})
		if err != nil {
			err = classifyError(err)
			if errors.Is(err, reconciler.ErrNotFound) {
				// Deleted between the listing and the lookup
				continue
			}
			return nil, fmt.Errorf("failed to get subscription %s: %w", name, err)
		}

		if sub.Labels[LabelManagedBy] != s.cfg.ManagedBy {
			continue
		}

		interest, ok := parseFilter(sub.Filter, s.cfg.AttributeKey)
		if !ok {
			// Hand-edited filter; the label still identifies the interest
			interest = reconciler.Interest(sub.Labels[LabelInterest])
		}
		out = append(out, reconciler.Subscription{
			ID:       sub.Name,
			Interest: interest,
		})
	}
	return out, nil
}

// DeleteSubscription deletes by full subscription resource name
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	err := s.admin.DeleteSubscription(ctx, &pubsubpb.DeleteSubscriptionRequest{Subscription: id})
	if err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", id, classifyError(err))
	}
	return nil
}

// CreateSubscription creates a filtered subscription for one interest. The
// notification is not stored remotely; whoever consumes the subscription
// renders it.
func (s *Store) CreateSubscription(ctx context.Context, req reconciler.CreateRequest) (reconciler.Subscription, error) {
	if err := reconciler.ValidateInterest(req.Interest); err != nil {
		return reconciler.Subscription{}, err
	}

	name := fmt.Sprintf("projects/%s/subscriptions/%s-%s", s.cfg.ProjectID, s.cfg.SubscriptionPrefix, uuid.NewString())
	sub := &pubsubpb.Subscription{
		Name:   name,
		Topic:  s.topicName(),
		Filter: buildFilter(s.cfg.AttributeKey, req.Interest),
		Labels: map[string]string{
			LabelManagedBy: s.cfg.ManagedBy,
			LabelInterest:  labelValue(string(req.Interest)),
		},
		AckDeadlineSeconds: s.cfg.AckDeadlineSeconds,
	}

	created, err := s.admin.CreateSubscription(ctx, sub)
	if err != nil {
		return reconciler.Subscription{}, fmt.Errorf("failed to create subscription for %q: %w", req.Interest, classifyError(err))
	}
	return reconciler.Subscription{
		ID:           created.Name,
		Interest:     req.Interest,
		Notification: req.Notification,
	}, nil
}
