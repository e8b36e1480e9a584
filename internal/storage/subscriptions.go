package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/google/uuid"
)

// ListSubscriptions returns every locally stored subscription, oldest first
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context) ([]reconciler.Subscription, error) {
	query := `SELECT id, interest, alert_body, sound_name
              FROM subscriptions
              ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable(ctx, err)
	}
	defer rows.Close()

	subs, err := scanSubscriptions(rows)
	if err != nil {
		return nil, unavailable(ctx, err)
	}
	return subs, nil
}

// DeleteSubscription removes one subscription by ID
func (s *SQLiteStorage) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return unavailable(ctx, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(ctx, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", reconciler.ErrNotFound, id)
	}
	return nil
}

// CreateSubscription stores a subscription under a fresh UUID
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, req reconciler.CreateRequest) (reconciler.Subscription, error) {
	if err := reconciler.ValidateInterest(req.Interest); err != nil {
		return reconciler.Subscription{}, err
	}

	sub := reconciler.Subscription{
		ID:           uuid.NewString(),
		Interest:     req.Interest,
		Notification: req.Notification,
	}
	query := `
        INSERT INTO subscriptions (id, interest, alert_body, sound_name, created_at)
        VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		sub.ID,
		string(sub.Interest),
		sub.Notification.AlertBody,
		sub.Notification.SoundName,
		time.Now().UnixNano()); err != nil {
		return reconciler.Subscription{}, unavailable(ctx, err)
	}
	return sub, nil
}

// unavailable maps database errors onto the reconciler taxonomy. Context
// errors are passed through so the reconciler reports them as timeouts.
func unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return fmt.Errorf("%w: %w", reconciler.ErrRemoteUnavailable, err)
}

// Helper function to scan subscriptions from rows
func scanSubscriptions(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]reconciler.Subscription, error) {
	var subs []reconciler.Subscription
	for rows.Next() {
		var sub reconciler.Subscription
		var interest string
		if err := rows.Scan(&sub.ID, &interest, &sub.Notification.AlertBody, &sub.Notification.SoundName); err != nil {
			return nil, err
		}
		sub.Interest = reconciler.Interest(interest)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
