package auth

import (
	"context"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// Options tweak how the Pub/Sub client authenticates and where it connects
type Options struct {
	// CredentialsFile points at a service account key. Empty means
	// Application Default Credentials.
	CredentialsFile string
	// Endpoint overrides the API endpoint. The PUBSUB_EMULATOR_HOST
	// environment variable is honoured by the client library on its own.
	Endpoint string
}

// ClientOptions translates Options into client library options
func (o Options) ClientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if o.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	return opts
}

// NewPubSubClient creates a Pub/Sub client.
// Without a credentials file users must run: gcloud auth application-default login
func NewPubSubClient(ctx context.Context, projectID string, opts Options) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID, opts.ClientOptions()...)
}
