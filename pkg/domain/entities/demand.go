package entities

// Demand is the quantity of a product a customer requires
type Demand struct {
	Customer CustomerID
	Product  ProductID
	Quantity float64
}

// Lane is one row of the transport lane table
type Lane struct {
	From       LocationID
	To         LocationID
	DistanceKm float64
	Mode       ModeID // empty = no mode listed
}

// ProductionData is one row of the production table
type ProductionData struct {
	Factory   FactoryID
	Product   ProductID
	Capacity  float64
	Cost      float64
	Emissions float64 // kg CO2 per unit
}
