package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NissesSenap/interest-sync/internal/metrics"
	"github.com/alecthomas/kong"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "dev"

// CLI is the main CLI structure with embedded context
type CLI struct {
	ctx context.Context // Store context for commands to use
	out io.Writer
	env *environment

	MetricsTextfile string `help:"Write Prometheus metrics to this file when the command finishes" type:"path" placeholder:"PATH"`

	Genres        GenresCmd        `cmd:"genres" help:"List genres, marking the selected ones"`
	Select        SelectCmd        `cmd:"select" help:"Add genres to the selection"`
	Clear         ClearCmd         `cmd:"clear" help:"Drop the whole selection"`
	Save          SaveCmd          `cmd:"save" help:"Re-register remote subscriptions for the selected genres"`
	Subscriptions SubscriptionsCmd `cmd:"subscriptions" help:"List subscriptions held by the configured backend"`
	History       HistoryCmd       `cmd:"history" help:"Show recent reconciliation passes"`
	Config        ConfigCmd        `cmd:"config" help:"Manage configuration"`
	Version       VersionCmd       `cmd:"version" help:"Show version"`
}

// Context returns the CLI's context for use by commands.
// This allows commands to access the context without directly accessing
// the unexported ctx field.
func (c *CLI) Context() context.Context {
	return c.ctx
}

// Run parses args and executes the selected command, writing command
// output to stdout
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	cli := &CLI{ctx: ctx, out: stdout}
	parser, err := kong.New(cli,
		kong.Name("interest-sync"),
		kong.Description("Keep push notification subscriptions in line with the genres you follow."),
		kong.Writers(stdout, os.Stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer cli.closeEnvironment()

	// Bind CLI instance so commands can access the context
	runErr := kongCtx.Run(cli)

	if cli.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cli.MetricsTextfile); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return runErr
}

// ExecuteWithContext executes the CLI with a context that can be cancelled
func ExecuteWithContext(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout)
}

// Execute executes the CLI with a background context (for backwards compatibility)
func Execute() error {
	return ExecuteWithContext(context.Background())
}
