package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendPubSub = "pubsub"
)

type Config struct {
	Backend      string       `yaml:"backend" envconfig:"BACKEND"`
	DatabasePath string       `yaml:"database_path" envconfig:"DATABASE_PATH"`
	Notification Notification `yaml:"notification"`
	PubSub       PubSub       `yaml:"pubsub"`
	Reconcile    Reconcile    `yaml:"reconcile"`
	Logging      Logging      `yaml:"logging"`
}

type Notification struct {
	AlertTemplate string `yaml:"alert_template" envconfig:"ALERT_TEMPLATE"`
	SoundName     string `yaml:"sound_name" envconfig:"SOUND_NAME"`
}

type PubSub struct {
	ProjectID          string `yaml:"project_id" envconfig:"PROJECT_ID"`
	Topic              string `yaml:"topic" envconfig:"TOPIC"`
	SubscriptionPrefix string `yaml:"subscription_prefix" envconfig:"SUBSCRIPTION_PREFIX"`
	AttributeKey       string `yaml:"attribute_key" envconfig:"ATTRIBUTE_KEY"`
	ManagedBy          string `yaml:"managed_by" envconfig:"MANAGED_BY"`
	AckDeadlineSeconds int32  `yaml:"ack_deadline_seconds" envconfig:"ACK_DEADLINE_SECONDS"`
	CredentialsFile    string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Endpoint           string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

type Reconcile struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	MaxConcurrent     int     `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	MaxAttempts       int     `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
}

// Timeout returns the pass timeout, zero meaning unbounded
func (r Reconcile) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type Logging struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Development bool   `yaml:"development" envconfig:"LOG_DEVELOPMENT"`
}

// ConfigPath returns the configuration file path
// Default: ~/.config/interest-sync/config.yaml
func ConfigPath() string {
	if path := os.Getenv("INTEREST_SYNC_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "interest-sync", "config.yaml")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from YAML file if exists
	configPath := ConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	// Override with environment variables
	// Process top-level fields
	if err := envconfig.Process("INTEREST_SYNC", cfg); err != nil {
		return nil, err
	}

	// Process nested structs with the same prefix to support flat env var names
	for _, nested := range []interface{}{&cfg.Notification, &cfg.PubSub, &cfg.Reconcile, &cfg.Logging} {
		if err := envconfig.Process("INTEREST_SYNC", nested); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the CLI cannot act on
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendSQLite:
	case BackendPubSub:
		if c.PubSub.ProjectID == "" {
			errs = append(errs, errors.New("pubsub.project_id is required for the pubsub backend"))
		}
		if c.PubSub.Topic == "" {
			errs = append(errs, errors.New("pubsub.topic is required for the pubsub backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want sqlite or pubsub)", c.Backend))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path must not be empty"))
	}
	if c.Reconcile.MaxConcurrent < 1 {
		errs = append(errs, errors.New("reconcile.max_concurrent must be at least 1"))
	}
	if c.Reconcile.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("reconcile.requests_per_second must not be negative"))
	}
	if c.Reconcile.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("reconcile.timeout_seconds must not be negative"))
	}
	if c.Reconcile.MaxAttempts < 1 {
		errs = append(errs, errors.New("reconcile.max_attempts must be at least 1"))
	}
	if c.PubSub.AckDeadlineSeconds < 0 {
		errs = append(errs, errors.New("pubsub.ack_deadline_seconds must not be negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) Save() error {
	configPath := ConfigPath()

	// Create directory if not exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
