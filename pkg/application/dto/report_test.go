package dto

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

func TestProductUnitCost_JSONSentinel(t *testing.T) {
	unproduced := ProductUnitCost{Product: "P2", TotalDemand: 0, UnitCost: math.Inf(1)}
	assert.False(t, unproduced.Produced())

	data, err := json.Marshal(unproduced)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product": "P2",
		"production_cost": 0,
		"transport_cost": 0,
		"total_produced": 0,
		"total_demand": 0,
		"unit_cost": null,
		"produced": false
	}`, string(data))

	var back ProductUnitCost
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(back.UnitCost, 1))
}

func TestProductUnitCost_JSONProduced(t *testing.T) {
	produced := ProductUnitCost{Product: "P1", ProductionCost: 100, TransportCost: 5, TotalProduced: 50, TotalDemand: 50, UnitCost: 2.1}

	data, err := json.Marshal(produced)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 2.1, raw["unit_cost"])
	assert.Equal(t, true, raw["produced"])
}

func TestReport_Err(t *testing.T) {
	solved := &Report{Status: lp.StatusOptimal}
	assert.NoError(t, solved.Err())
	assert.True(t, solved.Solved())

	failed := &Report{Status: lp.StatusInfeasible}
	err := failed.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrSolverFailure)
	assert.Contains(t, err.Error(), "infeasible")

	data, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"infeasible"`)
}
