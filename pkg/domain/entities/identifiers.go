package entities

// FactoryID identifies a production site
type FactoryID string

// ProductID identifies a product
type ProductID string

// CustomerID identifies a demand location
type CustomerID string

// ModeID identifies a transport mode
type ModeID string

// SupplierID identifies a supplier
type SupplierID string

// LocationID is either end of a transport lane. Factories and customers share
// the lane namespace, so a lane's From is usually a FactoryID and its To a CustomerID.
type LocationID string

// FactoryProduct keys production data
type FactoryProduct struct {
	Factory FactoryID
	Product ProductID
}

// CustomerProduct keys demand
type CustomerProduct struct {
	Customer CustomerID
	Product  ProductID
}

// LaneKey is a directed (origin, destination) pair. The reverse lane is a different key.
type LaneKey struct {
	From LocationID
	To   LocationID
}

// NewLaneKey returns the lane from a factory to a customer
func NewLaneKey(factory FactoryID, customer CustomerID) LaneKey {
	return LaneKey{From: LocationID(factory), To: LocationID(customer)}
}
