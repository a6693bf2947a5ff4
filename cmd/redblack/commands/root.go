// Package commands implements CLI command handlers for redblack.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/redblack/pkg/config"
	"github.com/Sumatoshi-tech/redblack/pkg/observability"
	"github.com/Sumatoshi-tech/redblack/pkg/render"
	"github.com/Sumatoshi-tech/redblack/pkg/version"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.TreeMetrics
}

// NewRootCommand creates the redblack command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "redblack",
		Short: "Build, inspect and persist red-black trees",
		Long: `redblack builds red-black trees from integer keys and inspects them.

Keys are given as arguments or, with "-", read from standard input.
Commands that accept --from start from a saved snapshot instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default .redblack.yaml in . or $HOME)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		a.insertCmd(),
		a.printCmd(),
		a.traverseCmd(),
		a.checkCmd(),
		a.statsCmd(),
		a.dumpCmd(),
		a.saveCmd(),
		a.loadCmd(),
		a.diffCmd(),
		a.renderCmd(),
		a.benchCmd(),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// runFunc is the body of a command, run inside its span.
type runFunc func(ctx context.Context, cmd *cobra.Command, args []string) error

// run wraps a command body with configuration, telemetry setup, a span and
// telemetry shutdown.
func (a *app) run(name string, mode observability.AppMode, body runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		shutdown, setupErr := a.setup(cmd, mode)
		if setupErr != nil {
			return setupErr
		}

		defer func() {
			err = errors.Join(err, shutdown(context.WithoutCancel(cmd.Context())))
		}()

		ctx, span := a.tracer.Start(cmd.Context(), "redblack."+name,
			trace.WithAttributes(attribute.Int("args", len(args))))
		defer span.End()

		started := time.Now()

		a.logger.DebugContext(ctx, "command started", "command", name)

		err = body(ctx, cmd, args)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			a.logger.ErrorContext(ctx, "command failed", "command", name, "error", err)

			return err
		}

		a.logger.DebugContext(ctx, "command finished", "command", name, "elapsed", time.Since(started))

		return nil
	}
}

func (a *app) setup(cmd *cobra.Command, mode observability.AppMode) (func(context.Context) error, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}

	a.cfg = cfg

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.LogLevel = cfg.SlogLevel()
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.LogOutput = cmd.ErrOrStderr()

	switch {
	case a.quiet:
		obsCfg.LogLevel = slog.LevelError
	case a.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(cmd.Context(), obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	a.logger = providers.Logger
	a.tracer = providers.Tracer

	a.metrics, err = observability.NewTreeMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(cmd.Context()))
	}

	return providers.Shutdown, nil
}

func (a *app) painter() *render.Painter {
	return render.NewPainter(a.cfg.Output.Color && !a.noColor && !color.NoColor)
}
