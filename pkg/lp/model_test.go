package lp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Build(t *testing.T) {
	m := NewModel("test", Minimize)
	x := m.AddVariable("x", 0, 2, 1)
	y := m.AddVariable("y", 0, 1, 0)
	row := m.AddGreaterEqual("ct", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}, {Var: y, Coef: 0}}, 2.2)

	want := Constraint{
		Name:  "ct",
		Lower: 2.2,
		Upper: math.Inf(1),
		Terms: []Term{{Var: 0, Coef: 1}, {Var: 1, Coef: 1}},
	}
	if diff := cmp.Diff(want, m.Constraints[row]); diff != "" {
		t.Errorf("AddGreaterEqual() row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, m.NumVariables())
	assert.Equal(t, 1, m.NumConstraints())
	assert.Equal(t, 2, m.NumNonzeros())
	require.NoError(t, m.Validate())
}

func TestModel_Evaluate(t *testing.T) {
	m := NewModel("test", Minimize)
	x := m.AddVariable("x", 0, math.Inf(1), 3)
	y := m.AddVariable("y", 0, math.Inf(1), 2)
	m.AddLessEqual("cap", []Term{{Var: x, Coef: 1}}, 4)
	m.AddGreaterEqual("cover", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, 6)

	values := []float64{4, 2}
	assert.Equal(t, 16.0, m.ObjectiveValue(values))
	assert.Equal(t, 6.0, m.Activity(1, values))
	assert.Equal(t, 0.0, m.Violation(values))

	assert.InDelta(t, 1.0, m.Violation([]float64{5, 2}), 1e-12, "capacity exceeded by 1")
	assert.InDelta(t, 3.0, m.Violation([]float64{1, 2}), 1e-12, "coverage short by 3")
	assert.InDelta(t, 2.5, m.Violation([]float64{4, -0.5}), 1e-12, "coverage short by 2.5 outweighs the bound")

	bounded := NewModel("bounded", Minimize)
	bounded.AddVariable("z", 0, 1, 1)
	assert.InDelta(t, 0.5, bounded.Violation([]float64{-0.5}), 1e-12, "below lower bound")
	assert.InDelta(t, 2.0, bounded.Violation([]float64{3}), 1e-12, "above upper bound")
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Model)
	}{
		{
			name:  "nan objective",
			build: func(m *Model) { m.AddVariable("x", 0, 1, math.NaN()) },
		},
		{
			name:  "crossed variable bounds",
			build: func(m *Model) { m.AddVariable("x", 2, 1, 0) },
		},
		{
			name: "crossed row bounds",
			build: func(m *Model) {
				x := m.AddVariable("x", 0, 1, 0)
				m.AddConstraint("r", 3, []Term{{Var: x, Coef: 1}}, 2)
			},
		},
		{
			name: "index out of range",
			build: func(m *Model) {
				m.AddVariable("x", 0, 1, 0)
				m.AddLessEqual("r", []Term{{Var: 4, Coef: 1}}, 1)
			},
		},
		{
			name: "infinite coefficient",
			build: func(m *Model) {
				x := m.AddVariable("x", 0, 1, 0)
				m.AddLessEqual("r", []Term{{Var: x, Coef: math.Inf(1)}}, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel("bad", Minimize)
			tt.build(m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status      Status
		name        string
		hasSolution bool
	}{
		{StatusNotSolved, "not-solved", false},
		{StatusOptimal, "optimal", true},
		{StatusFeasible, "feasible", true},
		{StatusInfeasible, "infeasible", false},
		{StatusUnbounded, "unbounded", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.status.String())
		assert.Equal(t, tt.hasSolution, tt.status.HasSolution())
		text, err := tt.status.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, tt.name, string(text))
	}
}

func TestSolution_Value(t *testing.T) {
	sol := &Solution{Status: StatusOptimal, Values: []float64{1.5, 2}}
	assert.Equal(t, 1.5, sol.Value(0))
	assert.Equal(t, 0.0, sol.Value(7))
	assert.Equal(t, 0.0, (&Solution{}).Value(0))
}
