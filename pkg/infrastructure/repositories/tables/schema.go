// Package tables describes the input tables shared by the CSV and workbook loaders
package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/repositories"
)

// Column is one named column of a table. Headers match Name or any alias,
// ignoring case and surrounding spaces.
type Column struct {
	Name    string
	Aliases []string
	// Optional columns may be absent from the header
	Optional bool
	Numeric  bool
}

// Table is the schema of one input table
type Table struct {
	// Name is the workbook sheet name
	Name string
	// File is the file name inside a scenario directory
	File string
	// Optional tables may be missing from the source
	Optional bool
	Columns  []Column

	apply func(repo repositories.TableRepository, row Row) error
}

// Header returns the canonical column names
func (t Table) Header() []string {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	return header
}

// Column names as they appear in the workbook headers
const (
	ColSupplier           = "Supplier"
	ColFactory            = "Factory"
	ColProduct            = "Product"
	ColWeight             = "Weight (kg)"
	ColCustomer           = "Customer"
	ColMode               = "Mode"
	ColModeCost           = "Cost (USD/tkm)"
	ColModeEmissions      = "CO2 emissions (g/tkm)"
	ColDemand             = "Demand"
	ColFrom               = "From"
	ColTo                 = "To"
	ColDistance           = "Distance (km)"
	ColCapacity           = "Capacity"
	ColProductionCost     = "Cost (USD)"
	ColProductionEmission = "CO2 emissions (kg/unit)"
)

// Suppliers and the other table schemas, in the order they are applied
var (
	Suppliers = Table{
		Name: "Suppliers", File: "suppliers.csv", Optional: true,
		Columns: []Column{{Name: ColSupplier}},
		apply: func(repo repositories.TableRepository, row Row) error {
			return repo.AddSupplier(entities.SupplierID(row.String(ColSupplier)))
		},
	}
	Factories = Table{
		Name: "Factories", File: "factories.csv",
		Columns: []Column{{Name: ColFactory}},
		apply: func(repo repositories.TableRepository, row Row) error {
			return repo.AddFactory(entities.FactoryID(row.String(ColFactory)))
		},
	}
	Products = Table{
		Name: "Products", File: "products.csv",
		Columns: []Column{{Name: ColProduct}, {Name: ColWeight, Aliases: []string{"weight_kg", "weight"}, Numeric: true}},
		apply: func(repo repositories.TableRepository, row Row) error {
			weight, err := row.Float(ColWeight)
			if err != nil {
				return err
			}
			return repo.AddProduct(entities.Product{ID: entities.ProductID(row.String(ColProduct)), WeightKg: weight})
		},
	}
	Customers = Table{
		Name: "Customers", File: "customers.csv",
		Columns: []Column{{Name: ColCustomer}},
		apply: func(repo repositories.TableRepository, row Row) error {
			return repo.AddCustomer(entities.CustomerID(row.String(ColCustomer)))
		},
	}
	TransportModes = Table{
		Name: "TransportModes", File: "transport_modes.csv",
		Columns: []Column{
			{Name: ColMode},
			{Name: ColModeCost, Aliases: []string{"cost_usd_per_tkm", "cost"}, Numeric: true},
			{Name: ColModeEmissions, Aliases: []string{"co2_g_per_tkm", "emissions"}, Numeric: true},
		},
		apply: func(repo repositories.TableRepository, row Row) error {
			cost, err := row.Float(ColModeCost)
			if err != nil {
				return err
			}
			emissions, err := row.Float(ColModeEmissions)
			if err != nil {
				return err
			}
			return repo.AddTransportMode(entities.TransportMode{
				ID:                entities.ModeID(row.String(ColMode)),
				CostPerTonKm:      cost,
				EmissionsPerTonKm: emissions,
			})
		},
	}
	ProductDemand = Table{
		Name: "ProductDemand", File: "product_demand.csv",
		Columns: []Column{{Name: ColCustomer}, {Name: ColProduct}, {Name: ColDemand, Aliases: []string{"quantity"}, Numeric: true}},
		apply: func(repo repositories.TableRepository, row Row) error {
			qty, err := row.Float(ColDemand)
			if err != nil {
				return err
			}
			return repo.AddDemand(entities.Demand{
				Customer: entities.CustomerID(row.String(ColCustomer)),
				Product:  entities.ProductID(row.String(ColProduct)),
				Quantity: qty,
			})
		},
	}
	TransportLanes = Table{
		Name: "TransportLanes", File: "transport_lanes.csv",
		Columns: []Column{
			{Name: ColFrom},
			{Name: ColTo},
			{Name: ColDistance, Aliases: []string{"distance_km", "distance"}, Numeric: true},
			{Name: ColMode, Optional: true},
		},
		apply: func(repo repositories.TableRepository, row Row) error {
			km, err := row.Float(ColDistance)
			if err != nil {
				return err
			}
			return repo.AddLane(entities.Lane{
				From:       entities.LocationID(row.String(ColFrom)),
				To:         entities.LocationID(row.String(ColTo)),
				DistanceKm: km,
				Mode:       entities.ModeID(row.String(ColMode)),
			})
		},
	}
	ProductionData = Table{
		Name: "ProductionData", File: "production_data.csv",
		Columns: []Column{
			{Name: ColFactory},
			{Name: ColProduct},
			{Name: ColCapacity, Numeric: true},
			{Name: ColProductionCost, Aliases: []string{"cost_usd", "cost"}, Numeric: true},
			{Name: ColProductionEmission, Aliases: []string{"co2_kg_per_unit", "emissions"}, Numeric: true},
		},
		apply: applyProduction,
	}
)

// All lists every table in application order
func All() []Table {
	return []Table{Suppliers, Factories, Products, Customers, TransportModes, ProductDemand, TransportLanes, ProductionData}
}

// applyProduction leaves blank coefficient cells undefined
func applyProduction(repo repositories.TableRepository, row Row) error {
	key := entities.FactoryProduct{
		Factory: entities.FactoryID(row.String(ColFactory)),
		Product: entities.ProductID(row.String(ColProduct)),
	}
	setters := []struct {
		column string
		set    func(entities.FactoryProduct, float64) error
	}{
		{ColCapacity, repo.SetCapacity},
		{ColProductionCost, repo.SetProductionCost},
		{ColProductionEmission, repo.SetProductionEmissions},
	}
	for _, s := range setters {
		if row.Blank(s.column) {
			continue
		}
		v, err := row.Float(s.column)
		if err != nil {
			return err
		}
		if err := s.set(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Row is one data row addressed by canonical column name
type Row struct {
	values map[string]string
}

// String returns the trimmed cell, empty when the column is absent
func (r Row) String(column string) string {
	return r.values[column]
}

// Blank reports whether the cell is empty
func (r Row) Blank(column string) bool {
	return r.values[column] == ""
}

// Float parses the cell as a number
func (r Row) Float(column string) (float64, error) {
	s := r.values[column]
	if s == "" {
		return 0, fmt.Errorf("%s: value is required", column)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", column, s)
	}
	return v, nil
}

// Binding maps a table's columns onto the positions of a concrete header
type Binding struct {
	table   Table
	indices map[string]int
}

// Bind resolves the header of a source against the table schema
func (t Table) Bind(header []string) (*Binding, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize(h)
		if key == "" {
			continue
		}
		if _, dup := positions[key]; dup {
			return nil, fmt.Errorf("%s: duplicate column %q", t.Name, h)
		}
		positions[key] = i
	}

	b := &Binding{table: t, indices: make(map[string]int, len(t.Columns))}
	for _, c := range t.Columns {
		found := false
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if i, ok := positions[normalize(name)]; ok {
				b.indices[c.Name] = i
				found = true
				break
			}
		}
		if !found && !c.Optional {
			return nil, fmt.Errorf("%s: missing column %q (header %v)", t.Name, c.Name, header)
		}
	}
	return b, nil
}

// Row extracts the bound cells of a record. Short records read as blank cells.
func (b *Binding) Row(record []string) Row {
	values := make(map[string]string, len(b.indices))
	for name, i := range b.indices {
		if i < len(record) {
			values[name] = strings.TrimSpace(record[i])
		}
	}
	return Row{values: values}
}

// Apply adds every non-blank record to the repository. Row numbers in errors
// count from firstRow, the source position of records[0].
func (b *Binding) Apply(repo repositories.TableRepository, records [][]string, firstRow int) error {
	for i, record := range records {
		if blankRecord(record) {
			continue
		}
		if err := b.table.apply(repo, b.Row(record)); err != nil {
			return fmt.Errorf("%s row %d: %w", b.table.Name, firstRow+i, err)
		}
	}
	return nil
}

// Load binds the header (records[0]) and applies the data rows
func (t Table) Load(repo repositories.TableRepository, records [][]string) error {
	if len(records) == 0 {
		return fmt.Errorf("%s: missing header row", t.Name)
	}
	b, err := t.Bind(records[0])
	if err != nil {
		return err
	}
	return b.Apply(repo, records[1:], 2)
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
