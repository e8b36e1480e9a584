package cli

import (
	"context"
	"fmt"

	"github.com/NissesSenap/interest-sync/internal/auth"
	"github.com/NissesSenap/interest-sync/internal/config"
	"github.com/NissesSenap/interest-sync/internal/logging"
	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/NissesSenap/interest-sync/internal/storage"
	"github.com/NissesSenap/interest-sync/internal/store/gcppubsub"
	"go.uber.org/zap"
)

// environment holds what commands share: configuration, the local
// database and the logger. It is built on first use so commands like
// "version" never touch the disk.
type environment struct {
	cfg     *config.Config
	db      *storage.SQLiteStorage
	logger  *zap.Logger
	closers []func() error
}

func (c *CLI) environment() (*environment, error) {
	if c.env != nil {
		return c.env, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	db, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}

	c.env = &environment{cfg: cfg, db: db, logger: logger}
	return c.env, nil
}

func (c *CLI) closeEnvironment() {
	if c.env == nil {
		return
	}
	for _, closeFn := range c.env.closers {
		if err := closeFn(); err != nil {
			c.env.logger.Warn("failed to close backend", zap.Error(err))
		}
	}
	if err := c.env.db.Close(); err != nil {
		c.env.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = c.env.logger.Sync()
	c.env = nil
}

// backend returns the SubscriptionStore selected by the configuration
func (e *environment) backend(ctx context.Context) (reconciler.SubscriptionStore, error) {
	switch e.cfg.Backend {
	case config.BackendSQLite:
		return e.db, nil
	case config.BackendPubSub:
		ps := e.cfg.PubSub
		client, err := auth.NewPubSubClient(ctx, ps.ProjectID, auth.Options{
			CredentialsFile: ps.CredentialsFile,
			Endpoint:        ps.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client for project %s: %w", ps.ProjectID, err)
		}
		e.closers = append(e.closers, client.Close)

		store, err := gcppubsub.New(gcppubsub.NewAdmin(client), gcppubsub.Config{
			ProjectID:          ps.ProjectID,
			Topic:              ps.Topic,
			SubscriptionPrefix: ps.SubscriptionPrefix,
			AttributeKey:       ps.AttributeKey,
			ManagedBy:          ps.ManagedBy,
			AckDeadlineSeconds: ps.AckDeadlineSeconds,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", e.cfg.Backend)
	}
}

// reconciler builds a Reconciler for store from the configuration
func (e *environment) reconciler(store reconciler.SubscriptionStore) (*reconciler.Reconciler, error) {
	tmpl, err := reconciler.ParseTemplate(e.cfg.Notification.AlertTemplate, e.cfg.Notification.SoundName)
	if err != nil {
		return nil, err
	}
	rc := e.cfg.Reconcile
	return reconciler.New(store,
		reconciler.WithTemplate(tmpl),
		reconciler.WithLogger(e.logger.Named("reconciler")),
		reconciler.WithTimeout(rc.Timeout()),
		reconciler.WithMaxConcurrent(rc.MaxConcurrent),
		reconciler.WithRateLimit(rc.RequestsPerSecond),
		reconciler.WithRetry(rc.MaxAttempts, reconciler.DefaultRetryBackoff),
	), nil
}
