package memory

import (
	"fmt"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/repositories"
)

// TableRepository provides in-memory storage for the input table rows
type TableRepository struct {
	tables entities.Tables

	suppliers map[entities.SupplierID]bool
	factories map[entities.FactoryID]bool
	products  map[entities.ProductID]bool
	customers map[entities.CustomerID]bool
	modes     map[entities.ModeID]bool
}

// NewTableRepository creates a new in-memory table repository
func NewTableRepository() *TableRepository {
	return &TableRepository{
		tables: entities.Tables{
			Demand:              make(map[entities.CustomerProduct]float64),
			Distances:           make(map[entities.LaneKey]float64),
			LaneModes:           make(map[entities.LaneKey][]entities.ModeID),
			Capacity:            make(map[entities.FactoryProduct]float64),
			ProductionCost:      make(map[entities.FactoryProduct]float64),
			ProductionEmissions: make(map[entities.FactoryProduct]float64),
		},
		suppliers: make(map[entities.SupplierID]bool),
		factories: make(map[entities.FactoryID]bool),
		products:  make(map[entities.ProductID]bool),
		customers: make(map[entities.CustomerID]bool),
		modes:     make(map[entities.ModeID]bool),
	}
}

// Verify interface compliance
var _ repositories.TableRepository = (*TableRepository)(nil)

// AddSupplier adds a supplier identifier
func (r *TableRepository) AddSupplier(id entities.SupplierID) error {
	if err := addID(r.suppliers, id, "supplier"); err != nil {
		return err
	}
	r.tables.Suppliers = append(r.tables.Suppliers, id)
	return nil
}

// AddFactory adds a factory identifier
func (r *TableRepository) AddFactory(id entities.FactoryID) error {
	if err := addID(r.factories, id, "factory"); err != nil {
		return err
	}
	r.tables.Factories = append(r.tables.Factories, id)
	return nil
}

// AddProduct adds a product with its weight
func (r *TableRepository) AddProduct(product entities.Product) error {
	if err := addID(r.products, product.ID, "product"); err != nil {
		return err
	}
	r.tables.Products = append(r.tables.Products, product)
	return nil
}

// AddCustomer adds a customer identifier
func (r *TableRepository) AddCustomer(id entities.CustomerID) error {
	if err := addID(r.customers, id, "customer"); err != nil {
		return err
	}
	r.tables.Customers = append(r.tables.Customers, id)
	return nil
}

// AddTransportMode adds a transport mode with its rate and emission factor
func (r *TableRepository) AddTransportMode(mode entities.TransportMode) error {
	if err := addID(r.modes, mode.ID, "transport mode"); err != nil {
		return err
	}
	r.tables.Modes = append(r.tables.Modes, mode)
	return nil
}

// AddDemand records the demand of a customer for a product
func (r *TableRepository) AddDemand(demand entities.Demand) error {
	key := entities.CustomerProduct{Customer: demand.Customer, Product: demand.Product}
	if _, exists := r.tables.Demand[key]; exists {
		return fmt.Errorf("duplicate demand for customer %s, product %s", demand.Customer, demand.Product)
	}
	r.tables.Demand[key] = demand.Quantity
	return nil
}

// AddLane records a lane distance. Repeated rows for the same lane must agree
// on the distance; their modes are merged.
func (r *TableRepository) AddLane(lane entities.Lane) error {
	if lane.From == "" || lane.To == "" {
		return fmt.Errorf("lane endpoints must not be empty")
	}
	key := entities.LaneKey{From: lane.From, To: lane.To}
	if existing, exists := r.tables.Distances[key]; exists && existing != lane.DistanceKm {
		return fmt.Errorf("conflicting distances for lane %s->%s: %v and %v",
			lane.From, lane.To, existing, lane.DistanceKm)
	}
	r.tables.Distances[key] = lane.DistanceKm
	if lane.Mode != "" {
		r.tables.LaneModes[key] = append(r.tables.LaneModes[key], lane.Mode)
	}
	return nil
}

// SetCapacity sets the production capacity of a factory for a product
func (r *TableRepository) SetCapacity(key entities.FactoryProduct, capacity float64) error {
	return setOnce(r.tables.Capacity, key, capacity, "capacity")
}

// SetProductionCost sets the per-unit production cost
func (r *TableRepository) SetProductionCost(key entities.FactoryProduct, cost float64) error {
	return setOnce(r.tables.ProductionCost, key, cost, "cost")
}

// SetProductionEmissions sets the per-unit production emissions
func (r *TableRepository) SetProductionEmissions(key entities.FactoryProduct, emissions float64) error {
	return setOnce(r.tables.ProductionEmissions, key, emissions, "emissions")
}

// AddProductionData sets all three production coefficients of a row
func (r *TableRepository) AddProductionData(data entities.ProductionData) error {
	key := entities.FactoryProduct{Factory: data.Factory, Product: data.Product}
	if err := r.SetCapacity(key, data.Capacity); err != nil {
		return err
	}
	if err := r.SetProductionCost(key, data.Cost); err != nil {
		return err
	}
	return r.SetProductionEmissions(key, data.Emissions)
}

// Dataset builds an immutable dataset from the rows added so far
func (r *TableRepository) Dataset() (*entities.Dataset, error) {
	return entities.NewDataset(r.tables)
}

func addID[T ~string](seen map[T]bool, id T, kind string) error {
	if id == "" {
		return fmt.Errorf("%s identifier must not be empty", kind)
	}
	if seen[id] {
		return fmt.Errorf("duplicate %s: %s", kind, id)
	}
	seen[id] = true
	return nil
}

func setOnce(m map[entities.FactoryProduct]float64, key entities.FactoryProduct, v float64, coefficient string) error {
	if _, exists := m[key]; exists {
		return fmt.Errorf("duplicate production %s for factory %s, product %s", coefficient, key.Factory, key.Product)
	}
	m[key] = v
	return nil
}
