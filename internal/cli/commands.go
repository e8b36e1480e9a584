package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NissesSenap/interest-sync/internal/config"
	"github.com/NissesSenap/interest-sync/internal/genres"
	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/NissesSenap/interest-sync/internal/storage"
	"gopkg.in/yaml.v3"
)

type GenresCmd struct{}

type SelectCmd struct {
	Genres []string `arg:"" help:"Genres to add to the selection"`
	Custom bool     `help:"Accept interests that are not in the genre catalogue"`
}

type ClearCmd struct{}

type SaveCmd struct {
	DryRun bool `help:"Show what a pass would do without touching the backend"`
}

type SubscriptionsCmd struct{}

type HistoryCmd struct {
	Limit int `help:"Number of passes to show (-1 for all)" default:"10"`
}

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration"`
	Init ConfigInitCmd `cmd:"" help:"Write the default configuration file"`
}

type ConfigShowCmd struct{}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

type VersionCmd struct{}

func (c *GenresCmd) Run(cli *CLI) error {
	env, err := cli.environment()
	if err != nil {
		return err
	}
	selected, err := env.db.GetInterests(cli.Context())
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}
	set := reconciler.InterestSetFromStrings(selected)

	for _, g := range genres.All {
		fmt.Fprintf(cli.out, "%s %s\n", mark(set.Has(reconciler.Interest(g))), g)
	}
	// Custom interests come after the catalogue
	for _, s := range selected {
		if _, ok := genres.Lookup(s); !ok {
			fmt.Fprintf(cli.out, "%s %s (custom)\n", mark(true), s)
		}
	}
	return nil
}

func mark(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func (c *SelectCmd) Run(cli *CLI) error {
	interests := make([]string, 0, len(c.Genres))
	for _, name := range c.Genres {
		interest, ok := genres.Lookup(name)
		if !ok {
			if !c.Custom {
				return fmt.Errorf("unknown genre %q (use --custom to add it anyway)", name)
			}
			interest = strings.TrimSpace(name)
		}
		if err := reconciler.ValidateInterest(reconciler.Interest(interest)); err != nil {
			return err
		}
		interests = append(interests, interest)
	}

	env, err := cli.environment()
	if err != nil {
		return err
	}
	if err := env.db.AddInterests(cli.Context(), interests); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	fmt.Fprintf(cli.out, "Selected: %s\n", strings.Join(interests, ", "))
	return nil
}

func (c *ClearCmd) Run(cli *CLI) error {
	env, err := cli.environment()
	if err != nil {
		return err
	}
	if err := env.db.ClearInterests(cli.Context()); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	fmt.Fprintln(cli.out, "Selection cleared")
	return nil
}

func (c *SaveCmd) Run(cli *CLI) error {
	ctx := cli.Context()
	env, err := cli.environment()
	if err != nil {
		return err
	}

	selected, err := env.db.GetInterests(ctx)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}
	desired := reconciler.InterestSetFromStrings(selected)

	store, err := env.backend(ctx)
	if err != nil {
		return err
	}

	if c.DryRun {
		existing, err := store.ListSubscriptions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list subscriptions: %w", err)
		}
		fmt.Fprintf(cli.out, "Would delete %d subscriptions and create %d (backend %s)\n",
			len(existing), desired.Len(), env.cfg.Backend)
		for _, interest := range desired.Sorted() {
			fmt.Fprintf(cli.out, "  + %s\n", interest)
		}
		return nil
	}

	rec, err := env.reconciler(store)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	res := rec.Reconcile(ctx, desired)

	// Record the pass even when the caller's context is gone
	if err := env.db.SaveRun(context.WithoutCancel(ctx), storage.NewRun(env.cfg.Backend, startedAt, desired.Len(), res)); err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}

	fmt.Fprintf(cli.out, "Deleted %d, created %d in %s\n", res.Deleted, res.Created, res.Duration.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Fprintf(cli.out, "  ! %s (%s)\n", f, f.Kind())
	}
	if !res.OK() {
		return fmt.Errorf("reconciliation finished with %d failures", len(res.Failures))
	}
	return nil
}

func (c *SubscriptionsCmd) Run(cli *CLI) error {
	ctx := cli.Context()
	env, err := cli.environment()
	if err != nil {
		return err
	}
	store, err := env.backend(ctx)
	if err != nil {
		return err
	}
	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		fmt.Fprintln(cli.out, "No subscriptions")
		return nil
	}
	for _, sub := range subs {
		fmt.Fprintf(cli.out, "%s\t%s", sub.ID, sub.Interest)
		if sub.Notification.AlertBody != "" {
			fmt.Fprintf(cli.out, "\t%q", sub.Notification.AlertBody)
		}
		fmt.Fprintln(cli.out)
	}
	return nil
}

func (c *HistoryCmd) Run(cli *CLI) error {
	env, err := cli.environment()
	if err != nil {
		return err
	}
	runs, err := env.db.GetRuns(cli.Context(), c.Limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cli.out, "No passes recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(cli.out, "#%d %s %s desired=%d deleted=%d created=%d failures=%d\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Backend,
			run.Desired, run.Deleted, run.Created, len(run.Failures))
		for _, f := range run.Failures {
			fmt.Fprintf(cli.out, "    %s %s: %s\n", f.Operation, f.Target, f.Kind)
		}
	}
	return nil
}

func (c *ConfigShowCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintf(cli.out, "# %s\n%s", config.ConfigPath(), data)
	return nil
}

func (c *ConfigInitCmd) Run(cli *CLI) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := config.DefaultConfig().Save(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Wrote %s\n", path)
	return nil
}

func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Fprintf(cli.out, "interest-sync version: %s\n", Version)
	return nil
}
