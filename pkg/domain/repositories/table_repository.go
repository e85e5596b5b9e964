package repositories

import (
	"context"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
)

// TableRepository accumulates the rows of the input tables and assembles them
// into a Dataset
type TableRepository interface {
	AddSupplier(id entities.SupplierID) error
	AddFactory(id entities.FactoryID) error
	AddProduct(product entities.Product) error
	AddCustomer(id entities.CustomerID) error
	AddTransportMode(mode entities.TransportMode) error
	AddDemand(demand entities.Demand) error
	AddLane(lane entities.Lane) error

	// Production coefficients are set one at a time so a blank cell stays undefined
	SetCapacity(key entities.FactoryProduct, capacity float64) error
	SetProductionCost(key entities.FactoryProduct, cost float64) error
	SetProductionEmissions(key entities.FactoryProduct, emissions float64) error

	Dataset() (*entities.Dataset, error)
}

// DatasetLoader reads a complete dataset from a source such as a directory or workbook path
type DatasetLoader interface {
	Load(ctx context.Context, source string) (*entities.Dataset, error)
}
