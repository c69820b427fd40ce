package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"idchain/internal/app"
	"idchain/internal/telemetry"
)

// validFormats are the accepted --format values.
var validFormats = []string{"text", "json", "yaml"}

// rootOptions holds the global flags and what PersistentPreRunE builds from them.
type rootOptions struct {
	Home       string
	ConfigPath string
	Format     string
	Verbose    bool

	wire     *app.Wire
	shutdown func(context.Context) error
}

// Execute runs the CLI with args and releases everything it opened.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	root := newRootCommand(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, opts.close(context.WithoutCancel(ctx)))
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "idchain",
		Short:         "Create, rotate, export and verify self-certifying identities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return usageError(fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats), nil)
			}
			return opts.open(cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("flags", err)
	})

	cmd.PersistentFlags().StringVar(&opts.Home, "home", "", "state directory (default ~/.idchain)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default <home>/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		createCmd(opts),
		listCmd(opts),
		showCmd(opts),
		exportCmd(opts),
		importCmd(opts),
		verifyCmd(opts),
		rotateCmd(opts),
	)
	return cmd
}

// open loads the configuration and builds the dependency graph.
func (o *rootOptions) open(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(o.Home, o.ConfigPath)
	if err != nil {
		return usageError("configuration", err)
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	log, err := app.NewLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return usageError("configuration", err)
	}
	slog.SetDefault(log)

	o.shutdown, err = telemetry.Setup(cmd.Context(), "idchain", cfg.OTelEndpoint)
	if err != nil {
		return usageError("telemetry", err)
	}

	o.wire, err = app.NewWire(cfg, log)
	if err != nil {
		return err
	}
	log.Debug("wired",
		slog.String("home", cfg.Home),
		slog.String("repository", cfg.Repository),
		slog.String("vault", cfg.Vault),
	)
	return nil
}

func (o *rootOptions) close(ctx context.Context) error {
	var errs []error
	if o.wire != nil {
		errs = append(errs, o.wire.Close())
		o.wire = nil
	}
	if o.shutdown != nil {
		errs = append(errs, o.shutdown(ctx))
		o.shutdown = nil
	}
	return errors.Join(errs...)
}
