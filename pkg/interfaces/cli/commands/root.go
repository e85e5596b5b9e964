package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandrabronsvoort/mint/pkg/infrastructure/config"
)

// app carries the state shared by the root command and its subcommands
type app struct {
	cfg    *config.Config
	closer io.Closer
}

// NewRootCmd creates the mint root command. Configuration is resolved once per
// run: defaults, then the YAML file, then environment, then flags.
func NewRootCmd(version string) *cobra.Command {
	a := &app{cfg: config.Default()}
	var (
		configPath string
		logLevel   string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "mint",
		Short:         "Minimum-emissions production and distribution planner",
		Long:          "mint finds the production and shipping plan that meets all customer demand with the least CO2.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Solve a scenario directory of CSV tables
  mint solve ./scenario

  # Solve a workbook and write CSV reports
  mint solve supply_chain.xlsx --format csv --output results

  # Check a dataset without solving
  mint validate ./scenario

  # Generate a reproducible random scenario
  mint generate --factories 3 --products 4 --customers 10 --seed 42 --output ./scenario`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if debug {
				cfg.Logging.Level = "debug"
			}

			logger, closer, err := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			a.cfg = cfg
			a.closer = closer

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.closer == nil {
				return nil
			}
			return a.closer.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.AddCommand(a.newSolveCmd(), a.newValidateCmd(), newGenerateCmd())

	return cmd
}

func (a *app) newSolveCmd() *cobra.Command {
	var (
		format            string
		outputDir         string
		verbose           bool
		restrictLaneModes bool
		timeLimit         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "solve <input>",
		Short: "Compute the minimum-emissions plan for a dataset",
		Long: `Loads a scenario directory of CSV tables or an .xlsx workbook, builds the
linear program and prints emissions, unit costs, production and shipments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Dir = outputDir
			}
			if cmd.Flags().Changed("restrict-lane-modes") {
				cfg.Solver.RestrictLaneModes = restrictLaneModes
			}
			if cmd.Flags().Changed("time-limit") {
				cfg.Solver.TimeLimit = timeLimit
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return NewSolveCommand(Config{
				Input:             args[0],
				OutputDir:         cfg.Output.Dir,
				Format:            cfg.Output.Format,
				Verbose:           verbose,
				RestrictLaneModes: cfg.Solver.RestrictLaneModes,
				Tolerance:         cfg.Solver.Tolerance,
				TimeLimit:         cfg.Solver.TimeLimit,
			}, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", config.FormatText, "output format: text, json, csv")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for csv reports")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every shipment")
	cmd.Flags().BoolVar(&restrictLaneModes, "restrict-lane-modes", false, "only allow modes listed for a lane")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "bound on solve time (0 = none)")

	return cmd
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Check a dataset and list every issue without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewValidateCommand(ValidateConfig{Input: args[0]}, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var gc GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random, reproducible scenario",
		Long: `Generates a feasible random dataset: every demanded product has enough capacity
and every customer with demand can be reached. An --output ending in .xlsx
writes a workbook, anything else a directory of CSV tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return NewGenerateCommand(gc, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&gc.Suppliers, "suppliers", 2, "number of suppliers")
	cmd.Flags().IntVar(&gc.Factories, "factories", 3, "number of factories")
	cmd.Flags().IntVar(&gc.Products, "products", 4, "number of products")
	cmd.Flags().IntVar(&gc.Customers, "customers", 10, "number of customers")
	cmd.Flags().IntVar(&gc.Modes, "modes", 3, "number of transport modes")
	cmd.Flags().Float64Var(&gc.LaneDensity, "lane-density", 0.5, "share of factory-customer pairs with a lane")
	cmd.Flags().StringVarP(&gc.Output, "output", "o", "scenario", "scenario directory or .xlsx path")
	cmd.Flags().Int64Var(&gc.Seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().BoolVarP(&gc.Verbose, "verbose", "v", false, "verbose output")

	return cmd
}
