package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/services"
)

var singleLaneScenario = map[string]string{
	"factories.csv":       "Factory\nF1\n",
	"products.csv":        "Product,Weight (kg)\nP1,10\n",
	"customers.csv":       "Customer\nC1\n",
	"transport_modes.csv": "Mode,Cost (USD/tkm),CO2 emissions (g/tkm)\nM1,0.1,20\n",
	"product_demand.csv":  "Customer,Product,Demand\nC1,P1,50\n",
	"transport_lanes.csv": "From,To,Distance (km),Mode\nF1,C1,100,M1\n",
	"production_data.csv": "Factory,Product,Capacity,Cost (USD),CO2 emissions (kg/unit)\nF1,P1,100,2,5\n",
}

func writeScenario(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range singleLaneScenario {
		if o, ok := overrides[name]; ok {
			content = o
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func decodeReport(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	return report
}

func TestSolveCommand_JSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewSolveCommand(Config{Input: writeScenario(t, nil), Format: "json"}, &buf)
	require.NoError(t, cmd.Execute(testContext()))

	report := decodeReport(t, buf.Bytes())
	assert.Equal(t, "optimal", report["status"])
	assert.InDelta(t, 100250.0, report["objective"], 1e-6)

	unitCosts := report["unit_costs"].([]any)
	require.Len(t, unitCosts, 1)
	first := unitCosts[0].(map[string]any)
	assert.Equal(t, "P1", first["product"])
	assert.InDelta(t, 2.1, first["unit_cost"], 1e-9)
	assert.Equal(t, true, first["produced"])
}

func TestSolveCommand_Text(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewSolveCommand(Config{Input: writeScenario(t, nil), Verbose: true}, &buf)
	require.NoError(t, cmd.Execute(testContext()))

	assert.Contains(t, buf.String(), "SUPPLY CHAIN SUMMARY:")
	assert.Contains(t, buf.String(), "2.1000")
	assert.Contains(t, buf.String(), "Solve Time: ")
	assert.NotContains(t, buf.String(), "Solve Time: 0s")
}

func TestSolveCommand_InfeasibleStillReports(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		"production_data.csv": "Factory,Product,Capacity,Cost (USD),CO2 emissions (kg/unit)\nF1,P1,10,2,5\n",
	})

	var buf bytes.Buffer
	err := NewSolveCommand(Config{Input: dir, Format: "json"}, &buf).Execute(testContext())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrSolverFailure))

	report := decodeReport(t, buf.Bytes())
	assert.Equal(t, "infeasible", report["status"])
}

func TestSolveCommand_LoadErrors(t *testing.T) {
	err := NewSolveCommand(Config{}, &bytes.Buffer{}).Execute(testContext())
	assert.EqualError(t, err, "input path is required")

	err = NewSolveCommand(Config{Input: filepath.Join(t.TempDir(), "missing")}, &bytes.Buffer{}).Execute(testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading dataset")
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewValidateCommand(ValidateConfig{Input: writeScenario(t, nil)}, &buf).Execute(testContext())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Dataset: 1 factories, 1 products, 1 customers, 1 transport modes, 1 lanes")
		assert.Contains(t, buf.String(), "Dataset is valid (0 warning(s))")
	})

	t.Run("invalid", func(t *testing.T) {
		dir := writeScenario(t, map[string]string{
			"products.csv":       "Product,Weight (kg)\nP1,0\n",
			"product_demand.csv": "Customer,Product,Demand\nC1,P1,-5\n",
		})

		var buf bytes.Buffer
		err := NewValidateCommand(ValidateConfig{Input: dir}, &buf).Execute(testContext())
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrInvalidDataset))
		assert.Contains(t, err.Error(), "dataset has 2 error(s)")
		assert.Contains(t, buf.String(), "ERROR   ")
	})
}

func TestGenerateCommand(t *testing.T) {
	generate := func(t *testing.T, output string) {
		t.Helper()
		cmd := NewGenerateCommand(GenerateConfig{
			Suppliers:   1,
			Factories:   2,
			Products:    2,
			Customers:   4,
			Modes:       2,
			LaneDensity: 0.4,
			Output:      output,
			Seed:        7,
		}, &bytes.Buffer{})
		require.NoError(t, cmd.Execute(testContext()))
	}

	t.Run("csv scenario is valid and solvable", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "scenario")
		generate(t, dir)

		ds, err := loadDataset(testContext(), dir)
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Summary().Factories)
		assert.Equal(t, 1, ds.Summary().Suppliers)
		assert.True(t, services.NewDatasetValidator().Validate(ds).Valid())

		var buf bytes.Buffer
		require.NoError(t, NewSolveCommand(Config{Input: dir, Format: "json"}, &buf).Execute(testContext()))
		assert.Equal(t, "optimal", decodeReport(t, buf.Bytes())["status"])
	})

	t.Run("same seed gives the same dataset", func(t *testing.T) {
		dirA := filepath.Join(t.TempDir(), "a")
		path := filepath.Join(t.TempDir(), "b.xlsx")
		generate(t, dirA)
		generate(t, path)

		a, err := loadDataset(testContext(), dirA)
		require.NoError(t, err)
		b, err := loadDataset(testContext(), path)
		require.NoError(t, err)
		if diff := cmp.Diff(a, b, cmp.AllowUnexported(entities.Dataset{})); diff != "" {
			t.Errorf("generated datasets differ (-csv +xlsx):\n%s", diff)
		}
	})

	t.Run("rejects empty sizes", func(t *testing.T) {
		err := NewGenerateCommand(GenerateConfig{Output: t.TempDir()}, &bytes.Buffer{}).Execute(testContext())
		assert.Error(t, err)
	})
}

func TestRootCmd_Solve(t *testing.T) {
	t.Setenv("MINT_LOG_LEVEL", "error")
	dir := writeScenario(t, nil)

	var out, errOut bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"solve", dir, "--format", "json"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "optimal", decodeReport(t, out.Bytes())["status"])
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := writeScenario(t, nil)
	cfgPath := filepath.Join(t.TempDir(), "mint.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: json\nlogging:\n  level: error\n"), 0o644))

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "solve", dir})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "optimal", decodeReport(t, out.Bytes())["status"])
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input", args: []string{"solve"}},
		{name: "bad format", args: []string{"solve", ".", "--format", "xml"}},
		{name: "missing config", args: []string{"--config", "does-not-exist.yaml", "validate", "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCmd("test")
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(tt.args)
			assert.Error(t, root.ExecuteContext(context.Background()))
		})
	}
}
