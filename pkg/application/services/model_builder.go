package services

import (
	"fmt"
	"math"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/services"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

// BuildOptions tunes model construction
type BuildOptions struct {
	// RestrictLaneModes closes transport variables for modes a lane does not
	// list. Lanes that list no mode stay open to every mode.
	RestrictLaneModes bool
}

// TransportKey identifies one transport decision variable
type TransportKey struct {
	Factory  entities.FactoryID
	Customer entities.CustomerID
	Mode     entities.ModeID
	Product  entities.ProductID
}

// EmissionsModel is the LP built from a dataset together with the mapping
// from domain keys to variable indices
type EmissionsModel struct {
	LP      *lp.Model
	Dataset *entities.Dataset
	// Warnings carries non-fatal validation findings
	Warnings []string

	production     map[entities.FactoryProduct]int
	transport      map[TransportKey]int
	productionKeys []entities.FactoryProduct
	transportKeys  []TransportKey
}

// ProductionVar returns the index of production[f,p]
func (m *EmissionsModel) ProductionVar(factory entities.FactoryID, product entities.ProductID) (int, bool) {
	j, ok := m.production[entities.FactoryProduct{Factory: factory, Product: product}]
	return j, ok
}

// TransportVar returns the index of transport[f,c,m,p]
func (m *EmissionsModel) TransportVar(key TransportKey) (int, bool) {
	j, ok := m.transport[key]
	return j, ok
}

// ProductionKeys lists the production variables in creation order
func (m *EmissionsModel) ProductionKeys() []entities.FactoryProduct {
	return append([]entities.FactoryProduct(nil), m.productionKeys...)
}

// TransportKeys lists the transport variables in creation order
func (m *EmissionsModel) TransportKeys() []TransportKey {
	return append([]TransportKey(nil), m.transportKeys...)
}

// ModelBuilder turns a validated dataset into a minimum-emissions LP
type ModelBuilder struct {
	validator *services.DatasetValidator
	options   BuildOptions
}

// NewModelBuilder creates a model builder
func NewModelBuilder(options BuildOptions) *ModelBuilder {
	return &ModelBuilder{
		validator: services.NewDatasetValidator(),
		options:   options,
	}
}

// BuildModel is shorthand for NewModelBuilder(options).Build(ds)
func BuildModel(ds *entities.Dataset, options BuildOptions) (*EmissionsModel, error) {
	return NewModelBuilder(options).Build(ds)
}

// Build validates the dataset and builds the LP. Every validation issue is
// returned at once; nothing is built from a malformed dataset.
func (b *ModelBuilder) Build(ds *entities.Dataset) (*EmissionsModel, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	result := b.validator.Validate(ds)
	if !result.Valid() {
		return nil, result.Err()
	}

	factories := ds.Factories()
	customers := ds.Customers()
	modes := ds.Modes()
	products := ds.Products()

	model := &EmissionsModel{
		LP:             lp.NewModel("minimum_emissions", lp.Minimize),
		Dataset:        ds,
		Warnings:       result.Warnings,
		production:     make(map[entities.FactoryProduct]int, len(factories)*len(products)),
		transport:      make(map[TransportKey]int, len(factories)*len(customers)*len(modes)*len(products)),
		productionKeys: make([]entities.FactoryProduct, 0, len(factories)*len(products)),
		transportKeys:  make([]TransportKey, 0, len(factories)*len(customers)*len(modes)*len(products)),
	}
	m := model.LP

	// production[f,p]
	for _, f := range factories {
		for _, p := range products {
			emissions, _ := ds.ProductionEmissions(f, p.ID)
			key := entities.FactoryProduct{Factory: f, Product: p.ID}
			j := m.AddVariable(fmt.Sprintf("production[%s,%s]", f, p.ID), 0, math.Inf(1), emissions)
			model.production[key] = j
			model.productionKeys = append(model.productionKeys, key)
		}
	}

	// transport[f,c,m,p]
	for _, f := range factories {
		for _, c := range customers {
			distance, laneDefined := ds.Distance(entities.LocationID(f), entities.LocationID(c))
			listed := ds.LaneModes(entities.LocationID(f), entities.LocationID(c))
			for _, mode := range modes {
				open := laneDefined
				if open && b.options.RestrictLaneModes && len(listed) > 0 {
					open = containsMode(listed, mode.ID)
				}
				upper, objective := 0.0, 0.0
				if open {
					upper = math.Inf(1)
				}
				if laneDefined {
					objective = mode.EmissionsPerTonKm * distance
				}
				for _, p := range products {
					key := TransportKey{Factory: f, Customer: c, Mode: mode.ID, Product: p.ID}
					name := fmt.Sprintf("transport[%s,%s,%s,%s]", f, c, mode.ID, p.ID)
					j := m.AddVariable(name, 0, upper, objective)
					model.transport[key] = j
					model.transportKeys = append(model.transportKeys, key)
				}
			}
		}
	}

	// coverage[p]: total production covers total demand
	for _, p := range products {
		terms := make([]lp.Term, 0, len(factories))
		for _, f := range factories {
			j, _ := model.ProductionVar(f, p.ID)
			terms = append(terms, lp.Term{Var: j, Coef: 1})
		}
		m.AddGreaterEqual(fmt.Sprintf("coverage[%s]", p.ID), terms, ds.TotalDemand(p.ID))
	}

	// capacity[f,p]: undefined capacity is zero
	for _, f := range factories {
		for _, p := range products {
			capacity, _ := ds.Capacity(f, p.ID)
			j, _ := model.ProductionVar(f, p.ID)
			m.AddLessEqual(fmt.Sprintf("capacity[%s,%s]", f, p.ID), []lp.Term{{Var: j, Coef: 1}}, capacity)
		}
	}

	// demand[c,p]: inbound transport meets each customer's demand
	for _, c := range customers {
		for _, p := range products {
			terms := make([]lp.Term, 0, len(factories)*len(modes))
			for _, f := range factories {
				for _, mode := range modes {
					j, _ := model.TransportVar(TransportKey{Factory: f, Customer: c, Mode: mode.ID, Product: p.ID})
					terms = append(terms, lp.Term{Var: j, Coef: 1})
				}
			}
			m.AddGreaterEqual(fmt.Sprintf("demand[%s,%s]", c, p.ID), terms, ds.Demand(c, p.ID))
		}
	}

	return model, nil
}

func containsMode(modes []entities.ModeID, id entities.ModeID) bool {
	for _, m := range modes {
		if m == id {
			return true
		}
	}
	return false
}
