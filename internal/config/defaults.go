package config

import (
	"path/filepath"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
)

func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendSQLite,
		DatabasePath: filepath.Join("/tmp", "interest-sync", "state.db"),
		Notification: Notification{
			AlertTemplate: reconciler.DefaultAlertTemplate,
			SoundName:     reconciler.DefaultSoundName,
		},
		PubSub: PubSub{
			Topic:              "whistles",
			SubscriptionPrefix: "interest",
			AttributeKey:       "genre",
			ManagedBy:          "interest-sync",
			AckDeadlineSeconds: 10,
		},
		Reconcile: Reconcile{
			RequestsPerSecond: 10,
			MaxConcurrent:     5,
			TimeoutSeconds:    30,
			MaxAttempts:       3,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}
