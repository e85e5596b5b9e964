package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrabronsvoort/mint/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	SolveTime time.Duration
	Source    string
}

// Generate renders the report in the configured format. Text and JSON go to w;
// CSV writes one file per section into OutputDir.
func Generate(w io.Writer, report *dto.Report, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(w, report, config)
	case "json":
		return generateJSONOutput(w, report)
	case "csv":
		return generateCSVOutput(w, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, report *dto.Report, config Config) error {
	s := report.Summary
	fmt.Fprintf(w, "SUPPLY CHAIN SUMMARY:\n\n")
	fmt.Fprintf(w, "- %d suppliers\n", s.Suppliers)
	fmt.Fprintf(w, "- %d factories\n", s.Factories)
	fmt.Fprintf(w, "- %d products\n", s.Products)
	fmt.Fprintf(w, "- %d customers\n", s.Customers)
	fmt.Fprintf(w, "- %d transport modes\n\n", s.TransportModes)

	if config.Verbose && config.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", config.Source)
		fmt.Fprintf(w, "Solve Time: %v\n\n", config.SolveTime)
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	if err := report.Err(); err != nil {
		fmt.Fprintf(w, "Status: %s\n", report.Status)
		fmt.Fprintf(w, "No solution found.\n")
		return nil
	}
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	fmt.Fprintf(w, "Emissions:\n")
	fmt.Fprintf(w, "  Production: %s\n", Amount(report.ProductionEmissions))
	fmt.Fprintf(w, "  Transport:  %s\n", Amount(report.TransportEmissions))
	fmt.Fprintf(w, "  Total:      %s\n\n", Amount(report.TotalEmissions))

	fmt.Fprintf(w, "Unit Costs:\n")
	fmt.Fprintf(w, "%-12s %-10s %-10s %-14s %-14s %-18s\n",
		"Product", "Produced", "Demand", "Prod. Cost", "Transp. Cost", "Unit Cost")
	fmt.Fprintf(w, "%-12s %-10s %-10s %-14s %-14s %-18s\n",
		"------------", "----------", "----------", "--------------", "--------------", "------------------")
	for _, u := range report.UnitCosts {
		fmt.Fprintf(w, "%-12s %-10s %-10s %-14s %-14s %-18s\n",
			u.Product,
			Quantity(u.TotalProduced),
			Quantity(u.TotalDemand),
			Amount(u.ProductionCost),
			Amount(u.TransportCost),
			UnitCost(u.UnitCost))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Production:\n")
	fmt.Fprintf(w, "%-12s %-12s %-10s\n", "Factory", "Product", "Quantity")
	fmt.Fprintf(w, "%-12s %-12s %-10s\n", "------------", "------------", "----------")
	for _, p := range report.Production {
		fmt.Fprintf(w, "%-12s %-12s %-10s\n", p.Factory, p.Product, Quantity(p.Quantity))
	}

	if config.Verbose && len(report.Shipments) > 0 {
		fmt.Fprintf(w, "\nShipments:\n")
		fmt.Fprintf(w, "%-12s %-12s %-10s %-12s %-10s\n", "Factory", "Customer", "Mode", "Product", "Quantity")
		fmt.Fprintf(w, "%-12s %-12s %-10s %-12s %-10s\n", "------------", "------------", "----------", "------------", "----------")
		for _, sh := range report.Shipments {
			fmt.Fprintf(w, "%-12s %-12s %-10s %-12s %-10s\n", sh.Factory, sh.Customer, sh.Mode, sh.Product, Quantity(sh.Quantity))
		}
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, report *dto.Report) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// generateCSVOutput creates CSV output
func generateCSVOutput(w io.Writer, report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name    string
		records [][]string
	}{
		{"summary.csv", summaryRecords(report)},
		{"unit_costs.csv", unitCostRecords(report)},
		{"production.csv", productionRecords(report)},
		{"shipments.csv", shipmentRecords(report)},
	}
	for _, f := range files {
		filename := filepath.Join(config.OutputDir, f.name)
		if err := writeCSV(filename, f.records); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		if config.Verbose {
			fmt.Fprintf(w, "Saved: %s\n", filename)
		}
	}
	return nil
}

func summaryRecords(report *dto.Report) [][]string {
	records := [][]string{
		{"metric", "value"},
		{"status", report.Status.String()},
	}
	if report.Solved() {
		records = append(records,
			[]string{"production_emissions", formatFloat(report.ProductionEmissions)},
			[]string{"transport_emissions", formatFloat(report.TransportEmissions)},
			[]string{"total_emissions", formatFloat(report.TotalEmissions)},
		)
	}
	return records
}

func unitCostRecords(report *dto.Report) [][]string {
	records := [][]string{{"product", "total_produced", "total_demand", "production_cost", "transport_cost", "unit_cost"}}
	for _, u := range report.UnitCosts {
		unit := ""
		if u.Produced() {
			unit = formatFloat(u.UnitCost)
		}
		records = append(records, []string{
			string(u.Product),
			formatFloat(u.TotalProduced),
			formatFloat(u.TotalDemand),
			formatFloat(u.ProductionCost),
			formatFloat(u.TransportCost),
			unit,
		})
	}
	return records
}

func productionRecords(report *dto.Report) [][]string {
	records := [][]string{{"factory", "product", "quantity"}}
	for _, p := range report.Production {
		records = append(records, []string{string(p.Factory), string(p.Product), formatFloat(p.Quantity)})
	}
	return records
}

func shipmentRecords(report *dto.Report) [][]string {
	records := [][]string{{"factory", "customer", "mode", "product", "quantity"}}
	for _, s := range report.Shipments {
		records = append(records, []string{
			string(s.Factory), string(s.Customer), string(s.Mode), string(s.Product), formatFloat(s.Quantity),
		})
	}
	return records
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := csv.NewWriter(file).WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

// Quantity rounds a quantity to the nearest whole unit, half away from zero
func Quantity(v float64) string {
	return decimal.NewFromFloat(v).Round(0).String()
}

// Amount rounds a cost or emission figure to two decimals
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// UnitCost renders a unit cost, or a marker when nothing was produced
func UnitCost(v float64) string {
	if math.IsInf(v, 1) {
		return "n/a (not produced)"
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}

// formatFloat keeps full precision for machine-readable files
func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}
