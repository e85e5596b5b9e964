package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
)

// DatasetValidator checks the cross-table completeness and magnitude
// invariants a Dataset must satisfy before a model is built from it
type DatasetValidator struct{}

// NewDatasetValidator creates a new dataset validator
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{}
}

// ValidationResult contains the results of dataset validation
type ValidationResult struct {
	// Issues holds *entities.InvalidDatasetError and *entities.MissingCoefficientError values
	Issues []error
	// UnservedDemand lists positive demand that no producing factory has a lane to.
	// It does not invalidate the dataset; the solver reports it as infeasible.
	UnservedDemand []entities.CustomerProduct
	Errors         []string
	Warnings       []string
}

// Valid reports whether no issue was found
func (r *ValidationResult) Valid() bool {
	return len(r.Issues) == 0
}

// Err joins all issues into one error, nil when valid
func (r *ValidationResult) Err() error {
	return errors.Join(r.Issues...)
}

func (r *ValidationResult) add(err error) {
	r.Issues = append(r.Issues, err)
	r.Errors = append(r.Errors, err.Error())
}

// Validate performs every check on the dataset. Issues are reported in a
// stable order: products, modes, demand, lanes, production.
func (v *DatasetValidator) Validate(ds *entities.Dataset) *ValidationResult {
	result := &ValidationResult{
		Issues:   make([]error, 0),
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	for _, p := range ds.Products() {
		if !isFinite(p.WeightKg) || p.WeightKg <= 0 {
			result.add(invalid("Products", string(p.ID), "Weight (kg)", p.WeightKg, "must be positive"))
		}
	}

	for _, m := range ds.Modes() {
		if !isNonNegative(m.CostPerTonKm) {
			result.add(invalid("TransportModes", string(m.ID), "Cost (USD/tkm)", m.CostPerTonKm, "must be non-negative"))
		}
		if !isNonNegative(m.EmissionsPerTonKm) {
			result.add(invalid("TransportModes", string(m.ID), "CO2 emissions (g/tkm)", m.EmissionsPerTonKm, "must be non-negative"))
		}
	}

	for _, d := range ds.DemandEntries() {
		if !isNonNegative(d.Quantity) {
			result.add(invalid("ProductDemand", fmt.Sprintf("%s,%s", d.Customer, d.Product), "Demand", d.Quantity, "must be non-negative"))
		}
	}

	for _, l := range ds.Lanes() {
		if !isNonNegative(l.DistanceKm) {
			result.add(invalid("TransportLanes", fmt.Sprintf("%s->%s", l.From, l.To), "Distance (km)", l.DistanceKm, "must be non-negative"))
		}
	}

	for _, key := range ds.ProductionKeys() {
		v.validateProduction(ds, key, result)
	}

	v.detectUnservedDemand(ds, result)

	return result
}

// validateProduction requires a producing pair to define all three coefficients
func (v *DatasetValidator) validateProduction(ds *entities.Dataset, key entities.FactoryProduct, result *ValidationResult) {
	rowKey := fmt.Sprintf("%s,%s", key.Factory, key.Product)
	coefficients := []struct {
		name   string
		column string
		lookup func(entities.FactoryID, entities.ProductID) (float64, bool)
	}{
		{"capacity", "Capacity", ds.Capacity},
		{"cost", "Cost (USD)", ds.ProductionCost},
		{"emissions", "CO2 emissions (kg/unit)", ds.ProductionEmissions},
	}

	for _, c := range coefficients {
		value, ok := c.lookup(key.Factory, key.Product)
		if !ok {
			result.add(&entities.MissingCoefficientError{
				Factory:     key.Factory,
				Product:     key.Product,
				Coefficient: c.name,
			})
			continue
		}
		if !isNonNegative(value) {
			result.add(invalid("ProductionData", rowKey, c.column, value, "must be non-negative"))
		}
	}
}

// detectUnservedDemand flags demand with no lane into the customer from any
// factory. Transport is not tied to where a product is made, so one inbound
// lane is enough for the demand to be met.
func (v *DatasetValidator) detectUnservedDemand(ds *entities.Dataset, result *ValidationResult) {
	factories := ds.Factories()
	for _, d := range ds.DemandEntries() {
		if d.Quantity <= 0 {
			continue
		}
		served := false
		for _, f := range factories {
			if _, ok := ds.Distance(entities.LocationID(f), entities.LocationID(d.Customer)); ok {
				served = true
				break
			}
		}
		if !served {
			key := entities.CustomerProduct{Customer: d.Customer, Product: d.Product}
			result.UnservedDemand = append(result.UnservedDemand, key)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("demand of %s for %s cannot be reached: no lane from any factory", d.Customer, d.Product))
		}
	}
}

func invalid(entity, key, field string, value float64, reason string) *entities.InvalidDatasetError {
	return &entities.InvalidDatasetError{
		Entity: entity,
		Key:    key,
		Field:  field,
		Reason: fmt.Sprintf("%s, got %v", reason, value),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isNonNegative(v float64) bool {
	return isFinite(v) && v >= 0
}
