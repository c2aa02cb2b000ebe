package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/de-tools/sales-atlas/pkg/runtime/app"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry   app.Registry
	reporter   *export.Reporter
	logger     zerolog.Logger
	configPath string
	verbose    bool
	factory    commands.AppFactory
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry app.Registry
	Output   io.Writer
	// Factory overrides how the application is built, e.g. in tests.
	Factory commands.AppFactory
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = app.DefaultRegistry()
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
		logger:   zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
	cli.factory = opts.Factory
	if cli.factory == nil {
		cli.factory = cli.buildApp
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mirroring cobra.Command.SetArgs.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cli.registry, cfg, cli.logger)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sales-atlas",
		Short:         "Year-over-year product sales analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			cli.logger = cli.logger.Level(level)
			cmd.SetContext(cli.logger.WithContext(cmd.Context()))
		},
	}

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the config file")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.factory, cli.reporter))
	cmd.AddCommand(commands.NewOptionsCmd(cli.factory, cli.reporter))
	cmd.AddCommand(commands.NewImportCmd(cli.factory))
	cmd.AddCommand(commands.NewExportCmd(cli.factory))
	cmd.AddCommand(commands.NewClearCacheCmd(cli.factory))

	return cmd
}
