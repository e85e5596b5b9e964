package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandrabronsvoort/mint/pkg/application/dto"
	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

// PlannerService runs the build, solve and extract pipeline
type PlannerService struct {
	solver  lp.Solver
	builder *ModelBuilder
}

// NewPlannerService creates a planner backed by the given solver
func NewPlannerService(solver lp.Solver, options BuildOptions) *PlannerService {
	return &PlannerService{
		solver:  solver,
		builder: NewModelBuilder(options),
	}
}

// SolveModel computes the minimum-emissions plan for a dataset. Dataset
// problems are returned as errors before the solver is called. A solve that
// ends without a solution returns a report whose Err() is non-nil and a nil error.
func (s *PlannerService) SolveModel(ctx context.Context, ds *entities.Dataset) (*dto.Report, error) {
	log := zerolog.Ctx(ctx)

	// Step 1: Validate and build the LP
	model, err := s.builder.Build(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	summary := ds.Summary()
	log.Info().
		Int("factories", summary.Factories).
		Int("products", summary.Products).
		Int("customers", summary.Customers).
		Int("transport_modes", summary.TransportModes).
		Int("variables", model.LP.NumVariables()).
		Int("constraints", model.LP.NumConstraints()).
		Int("nonzeros", model.LP.NumNonzeros()).
		Msg("model built")
	for _, w := range model.Warnings {
		log.Warn().Msg(w)
	}

	// Step 2: Solve
	start := time.Now()
	sol, err := s.solver.Solve(ctx, model.LP)
	if err != nil {
		return nil, fmt.Errorf("failed to solve model: %w", err)
	}
	log.Info().
		Stringer("status", sol.Status).
		Dur("duration", time.Since(start)).
		Msg("solve finished")

	// Step 3: Extract metrics
	report, err := ExtractReport(model, sol)
	if err != nil {
		return nil, fmt.Errorf("failed to extract report: %w", err)
	}
	if report.Solved() {
		log.Debug().
			Float64("total_emissions", report.TotalEmissions).
			Int("shipments", len(report.Shipments)).
			Msg("report extracted")
	}
	return report, nil
}
