package entities

// Product is a manufactured good with a per-unit shipping weight
type Product struct {
	ID       ProductID
	WeightKg float64
}

// TransportMode is a shipping method with its own rate and emission factor
type TransportMode struct {
	ID ModeID
	// CostPerTonKm is the shipping cost in currency per tonne-kilometre
	CostPerTonKm float64
	// EmissionsPerTonKm is in grams of CO2 per tonne-kilometre
	EmissionsPerTonKm float64
}
