package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/solvers/simplex"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

const tolerance = 1e-6

type countingSolver struct {
	calls  int
	result *lp.Solution
	err    error
}

func (s *countingSolver) Solve(_ context.Context, _ *lp.Model) (*lp.Solution, error) {
	s.calls++
	return s.result, s.err
}

func newTestPlanner(options BuildOptions) *PlannerService {
	return NewPlannerService(simplex.New(simplex.Options{}), options)
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func TestPlannerService_Example(t *testing.T) {
	report, err := newTestPlanner(BuildOptions{}).SolveModel(testContext(), buildDataset(t, exampleTables()))
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, lp.StatusOptimal, report.Status)
	assert.InDelta(t, 100250.0, report.Objective, tolerance)
	assert.InDelta(t, 100250.0, report.TotalEmissions, tolerance)

	require.Len(t, report.Production, 1)
	assert.InDelta(t, 50.0, report.Production[0].Quantity, tolerance)
	require.Len(t, report.Shipments, 1)
	assert.InDelta(t, 50.0, report.Shipments[0].Quantity, tolerance)
	require.Len(t, report.UnitCosts, 1)
	assert.InDelta(t, 2.1, report.UnitCosts[0].UnitCost, tolerance)
}

func TestPlannerService_TwoFactories(t *testing.T) {
	ds := buildDataset(t, twoFactoryTables())
	report, err := newTestPlanner(BuildOptions{}).SolveModel(testContext(), ds)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	// F1 produces cleaner up to its capacity, F2 covers the rest; all flow
	// uses the shorter F2 lane since production and transport are not linked.
	produced := map[entities.FactoryID]float64{}
	for _, p := range report.Production {
		produced[p.Factory] += p.Quantity
	}
	assert.InDelta(t, 30.0, produced["F1"], tolerance)
	assert.InDelta(t, 20.0, produced["F2"], tolerance)

	require.Len(t, report.Shipments, 1)
	assert.Equal(t, entities.FactoryID("F2"), report.Shipments[0].Factory)
	assert.InDelta(t, 50.0, report.Shipments[0].Quantity, tolerance)

	assert.InDelta(t, 5*30+8*20+20*50*50.0, report.TotalEmissions, tolerance)
}

func TestPlannerService_SolutionProperties(t *testing.T) {
	tables := twoFactoryTables()
	tables.Customers = append(tables.Customers, "C2")
	tables.Products = append(tables.Products, entities.Product{ID: "P2", WeightKg: 2})
	tables.Modes = append(tables.Modes, entities.TransportMode{ID: "M2", CostPerTonKm: 0.02, EmissionsPerTonKm: 35})
	tables.Demand[entities.CustomerProduct{Customer: "C2", Product: "P1"}] = 15
	tables.Demand[entities.CustomerProduct{Customer: "C2", Product: "P2"}] = 40
	tables.Distances[entities.LaneKey{From: "F1", To: "C2"}] = 80
	f2p2 := entities.FactoryProduct{Factory: "F2", Product: "P2"}
	tables.Capacity[f2p2] = 60
	tables.ProductionCost[f2p2] = 4
	tables.ProductionEmissions[f2p2] = 2
	ds := buildDataset(t, tables)

	model, err := BuildModel(ds, BuildOptions{})
	require.NoError(t, err)
	sol, err := simplex.New(simplex.Options{}).Solve(testContext(), model.LP)
	require.NoError(t, err)
	require.Equal(t, lp.StatusOptimal, sol.Status)

	assert.LessOrEqual(t, model.LP.Violation(sol.Values), tolerance)
	for _, v := range sol.Values {
		assert.GreaterOrEqual(t, v, -tolerance)
	}
	assert.InDelta(t, model.LP.ObjectiveValue(sol.Values), sol.Objective, tolerance)

	report, err := ExtractReport(model, sol)
	require.NoError(t, err)

	delivered := map[entities.CustomerProduct]float64{}
	for _, s := range report.Shipments {
		delivered[entities.CustomerProduct{Customer: s.Customer, Product: s.Product}] += s.Quantity
	}
	for _, d := range ds.DemandEntries() {
		assert.GreaterOrEqual(t, delivered[entities.CustomerProduct{Customer: d.Customer, Product: d.Product}], d.Quantity-tolerance)
	}
	for _, p := range report.Production {
		capacity, _ := ds.Capacity(p.Factory, p.Product)
		assert.LessOrEqual(t, p.Quantity, capacity+tolerance)
	}
	assert.InDelta(t, report.Objective, report.TotalEmissions, 1e-3)
}

func TestPlannerService_InfeasibleWithoutLane(t *testing.T) {
	tables := exampleTables()
	tables.Distances = map[entities.LaneKey]float64{}

	report, err := newTestPlanner(BuildOptions{}).SolveModel(testContext(), buildDataset(t, tables))
	require.NoError(t, err)
	assert.Equal(t, lp.StatusInfeasible, report.Status)
	assert.ErrorIs(t, report.Err(), entities.ErrSolverFailure)
	assert.NotEmpty(t, report.Warnings)
}

func TestPlannerService_InfeasibleOverCapacity(t *testing.T) {
	tables := exampleTables()
	tables.Demand[entities.CustomerProduct{Customer: "C1", Product: "P1"}] = 150

	report, err := newTestPlanner(BuildOptions{}).SolveModel(testContext(), buildDataset(t, tables))
	require.NoError(t, err)
	assert.Equal(t, lp.StatusInfeasible, report.Status)

	var failure *entities.SolverFailureError
	require.True(t, errors.As(report.Err(), &failure))
	assert.Equal(t, "infeasible", failure.Status)
}

func TestPlannerService_InvalidDatasetSkipsSolver(t *testing.T) {
	tables := exampleTables()
	tables.Products[0].WeightKg = 0

	solver := &countingSolver{}
	_, err := NewPlannerService(solver, BuildOptions{}).SolveModel(testContext(), buildDataset(t, tables))
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInvalidDataset)
	assert.Equal(t, 0, solver.calls)
}

func TestPlannerService_SolverError(t *testing.T) {
	solver := &countingSolver{err: errors.New("backend unavailable")}
	_, err := NewPlannerService(solver, BuildOptions{}).SolveModel(testContext(), buildDataset(t, exampleTables()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Equal(t, 1, solver.calls)
}

func TestPlannerService_Deterministic(t *testing.T) {
	planner := newTestPlanner(BuildOptions{})
	first, err := planner.SolveModel(testContext(), buildDataset(t, twoFactoryTables()))
	require.NoError(t, err)
	second, err := planner.SolveModel(testContext(), buildDataset(t, twoFactoryTables()))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
