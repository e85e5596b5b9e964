package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandrabronsvoort/mint/pkg/application/services"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/solvers/simplex"
	"github.com/sandrabronsvoort/mint/pkg/interfaces/cli/output"
)

// Config holds configuration for the solve command
type Config struct {
	Input             string // scenario directory or .xlsx workbook
	OutputDir         string
	Format            string
	Verbose           bool
	RestrictLaneModes bool
	Tolerance         float64
	TimeLimit         time.Duration
}

// SolveCommand loads a dataset, computes the minimum-emissions plan and renders it
type SolveCommand struct {
	config Config
	out    io.Writer
}

// NewSolveCommand creates a new solve command writing its report to out
func NewSolveCommand(config Config, out io.Writer) *SolveCommand {
	return &SolveCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the solve command. A run that ends without a solution still
// renders its report and then returns the solver failure.
func (c *SolveCommand) Execute(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	ds, err := loadDataset(ctx, c.config.Input)
	if err != nil {
		return err
	}
	log.Info().Str("input", c.config.Input).Interface("summary", ds.Summary()).Msg("dataset loaded")

	solver := simplex.New(simplex.Options{
		Tolerance: c.config.Tolerance,
		TimeLimit: c.config.TimeLimit,
	})
	planner := services.NewPlannerService(solver, services.BuildOptions{
		RestrictLaneModes: c.config.RestrictLaneModes,
	})

	start := time.Now()
	report, err := planner.SolveModel(ctx, ds)
	if err != nil {
		return err
	}
	solveTime := time.Since(start)

	if err := output.Generate(c.out, report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		SolveTime: solveTime,
		Source:    c.config.Input,
	}); err != nil {
		return fmt.Errorf("failed to generate output: %w", err)
	}

	return report.Err()
}
