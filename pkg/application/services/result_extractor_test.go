package services

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrabronsvoort/mint/pkg/application/dto"
	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

func solutionFor(t *testing.T, model *EmissionsModel, production map[entities.FactoryProduct]float64, transport map[TransportKey]float64) *lp.Solution {
	t.Helper()
	x := make([]float64, model.LP.NumVariables())
	for key, v := range production {
		j, ok := model.ProductionVar(key.Factory, key.Product)
		require.True(t, ok, "production %v", key)
		x[j] = v
	}
	for key, v := range transport {
		j, ok := model.TransportVar(key)
		require.True(t, ok, "transport %v", key)
		x[j] = v
	}
	return &lp.Solution{Status: lp.StatusOptimal, Values: x, Objective: model.LP.ObjectiveValue(x)}
}

func TestExtractReport_Example(t *testing.T) {
	model, err := BuildModel(buildDataset(t, exampleTables()), BuildOptions{})
	require.NoError(t, err)

	sol := solutionFor(t, model,
		map[entities.FactoryProduct]float64{{Factory: "F1", Product: "P1"}: 50},
		map[TransportKey]float64{{Factory: "F1", Customer: "C1", Mode: "M1", Product: "P1"}: 50},
	)

	report, err := ExtractReport(model, sol)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.InDelta(t, 100250.0, report.Objective, 1e-9)
	assert.InDelta(t, 250.0, report.ProductionEmissions, 1e-9)
	assert.InDelta(t, 100000.0, report.TransportEmissions, 1e-9)
	assert.InDelta(t, report.Objective, report.TotalEmissions, 1e-9)

	want := []dto.ProductUnitCost{{
		Product:        "P1",
		ProductionCost: 100,
		TransportCost:  5,
		TotalProduced:  50,
		TotalDemand:    50,
		UnitCost:       2.1,
	}}
	if diff := cmp.Diff(want, report.UnitCosts, approxFloat()); diff != "" {
		t.Errorf("unit costs mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []dto.ProductionQuantity{{Factory: "F1", Product: "P1", Quantity: 50}}, report.Production)
	assert.Equal(t, []dto.Shipment{{Factory: "F1", Customer: "C1", Mode: "M1", Product: "P1", Quantity: 50}}, report.Shipments)
	assert.Equal(t, 1, report.Summary.Factories)
}

func TestExtractReport_UnproducedSentinel(t *testing.T) {
	tables := exampleTables()
	tables.Products = append(tables.Products, entities.Product{ID: "P2", WeightKg: 3})
	model, err := BuildModel(buildDataset(t, tables), BuildOptions{})
	require.NoError(t, err)

	sol := solutionFor(t, model,
		map[entities.FactoryProduct]float64{{Factory: "F1", Product: "P1"}: 50},
		map[TransportKey]float64{{Factory: "F1", Customer: "C1", Mode: "M1", Product: "P1"}: 50},
	)
	report, err := ExtractReport(model, sol)
	require.NoError(t, err)

	require.Len(t, report.UnitCosts, 2)
	p2 := report.UnitCosts[1]
	assert.Equal(t, entities.ProductID("P2"), p2.Product)
	assert.True(t, math.IsInf(p2.UnitCost, 1))
	assert.False(t, p2.Produced())
	assert.True(t, report.UnitCosts[0].Produced())
}

func TestExtractReport_RoundOffIsZero(t *testing.T) {
	tables := exampleTables()
	tables.Demand[entities.CustomerProduct{Customer: "C1", Product: "P1"}] = 0
	model, err := BuildModel(buildDataset(t, tables), BuildOptions{})
	require.NoError(t, err)

	sol := solutionFor(t, model,
		map[entities.FactoryProduct]float64{{Factory: "F1", Product: "P1"}: 1e-12},
		map[TransportKey]float64{{Factory: "F1", Customer: "C1", Mode: "M1", Product: "P1"}: -1e-12},
	)
	report, err := ExtractReport(model, sol)
	require.NoError(t, err)

	assert.Empty(t, report.Shipments)
	assert.Equal(t, 0.0, report.Production[0].Quantity)
	assert.True(t, math.IsInf(report.UnitCosts[0].UnitCost, 1))
}

func TestExtractReport_NoSolution(t *testing.T) {
	model, err := BuildModel(buildDataset(t, exampleTables()), BuildOptions{})
	require.NoError(t, err)

	for _, status := range []lp.Status{lp.StatusInfeasible, lp.StatusUnbounded, lp.StatusNotSolved} {
		report, err := ExtractReport(model, &lp.Solution{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, report.Status)
		assert.ErrorIs(t, report.Err(), entities.ErrSolverFailure)
		assert.Nil(t, report.UnitCosts)
		assert.Nil(t, report.Production)
		assert.Equal(t, 1, report.Summary.Customers)
	}
}

func TestExtractReport_Errors(t *testing.T) {
	model, err := BuildModel(buildDataset(t, exampleTables()), BuildOptions{})
	require.NoError(t, err)

	_, err = ExtractReport(nil, &lp.Solution{})
	assert.Error(t, err)
	_, err = ExtractReport(model, nil)
	assert.Error(t, err)
	_, err = ExtractReport(model, &lp.Solution{Status: lp.StatusOptimal, Values: []float64{1}})
	assert.Error(t, err)
}

func approxFloat() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return a == b
		}
		return math.Abs(a-b) <= 1e-9
	})
}
