package entities

import (
	"fmt"
	"sort"
)

// Tables is the raw, keyed form of the input tables as produced by a loader.
// Partial functions are plain maps: a missing key means "undefined".
type Tables struct {
	Suppliers []SupplierID
	Factories []FactoryID
	Products  []Product
	Customers []CustomerID
	Modes     []TransportMode

	Demand    map[CustomerProduct]float64
	Distances map[LaneKey]float64
	LaneModes map[LaneKey][]ModeID

	Capacity            map[FactoryProduct]float64
	ProductionCost      map[FactoryProduct]float64
	ProductionEmissions map[FactoryProduct]float64
}

// DatasetSummary counts the entities of a dataset
type DatasetSummary struct {
	Suppliers         int `json:"suppliers"`
	Factories         int `json:"factories"`
	Products          int `json:"products"`
	Customers         int `json:"customers"`
	TransportModes    int `json:"transport_modes"`
	Lanes             int `json:"lanes"`
	DemandEntries     int `json:"demand_entries"`
	ProductionEntries int `json:"production_entries"`
}

// Dataset is the immutable, normalized supply-chain input. Sets are kept sorted
// by identifier so every consumer iterates in the same order.
type Dataset struct {
	suppliers []SupplierID
	factories []FactoryID
	products  []Product
	customers []CustomerID
	modes     []TransportMode

	productIndex map[ProductID]int
	modeIndex    map[ModeID]int

	demand    map[CustomerProduct]float64
	distances map[LaneKey]float64
	laneModes map[LaneKey][]ModeID

	capacity  map[FactoryProduct]float64
	cost      map[FactoryProduct]float64
	emissions map[FactoryProduct]float64
}

// NewDataset validates the shape of the tables and returns an immutable copy.
// Identifiers must be non-empty and unique, and every demand, production and
// lane-mode entry must reference known entities. Magnitudes are not checked here.
func NewDataset(t Tables) (*Dataset, error) {
	ds := &Dataset{
		productIndex: make(map[ProductID]int, len(t.Products)),
		modeIndex:    make(map[ModeID]int, len(t.Modes)),
		demand:       make(map[CustomerProduct]float64, len(t.Demand)),
		distances:    make(map[LaneKey]float64, len(t.Distances)),
		laneModes:    make(map[LaneKey][]ModeID, len(t.LaneModes)),
		capacity:     make(map[FactoryProduct]float64, len(t.Capacity)),
		cost:         make(map[FactoryProduct]float64, len(t.ProductionCost)),
		emissions:    make(map[FactoryProduct]float64, len(t.ProductionEmissions)),
	}

	var err error
	if ds.suppliers, err = uniqueSorted("Suppliers", "Supplier", t.Suppliers); err != nil {
		return nil, err
	}
	if ds.factories, err = uniqueSorted("Factories", "Factory", t.Factories); err != nil {
		return nil, err
	}
	if ds.customers, err = uniqueSorted("Customers", "Customer", t.Customers); err != nil {
		return nil, err
	}

	ds.products = append([]Product(nil), t.Products...)
	sort.Slice(ds.products, func(i, j int) bool { return ds.products[i].ID < ds.products[j].ID })
	for i, p := range ds.products {
		if p.ID == "" {
			return nil, &InvalidDatasetError{Entity: "Products", Field: "Product", Reason: "empty identifier"}
		}
		if _, dup := ds.productIndex[p.ID]; dup {
			return nil, &InvalidDatasetError{Entity: "Products", Key: string(p.ID), Field: "Product", Reason: "duplicate identifier"}
		}
		ds.productIndex[p.ID] = i
	}

	ds.modes = append([]TransportMode(nil), t.Modes...)
	sort.Slice(ds.modes, func(i, j int) bool { return ds.modes[i].ID < ds.modes[j].ID })
	for i, m := range ds.modes {
		if m.ID == "" {
			return nil, &InvalidDatasetError{Entity: "TransportModes", Field: "Mode", Reason: "empty identifier"}
		}
		if _, dup := ds.modeIndex[m.ID]; dup {
			return nil, &InvalidDatasetError{Entity: "TransportModes", Key: string(m.ID), Field: "Mode", Reason: "duplicate identifier"}
		}
		ds.modeIndex[m.ID] = i
	}

	customers := toSet(ds.customers)
	for key, qty := range t.Demand {
		if !customers[key.Customer] {
			return nil, &InvalidDatasetError{Entity: "ProductDemand", Key: demandKey(key), Field: "Customer", Reason: "unknown customer"}
		}
		if _, ok := ds.productIndex[key.Product]; !ok {
			return nil, &InvalidDatasetError{Entity: "ProductDemand", Key: demandKey(key), Field: "Product", Reason: "unknown product"}
		}
		ds.demand[key] = qty
	}

	factories := toSet(ds.factories)
	copyProduction := func(src, dst map[FactoryProduct]float64) error {
		for key, v := range src {
			if !factories[key.Factory] {
				return &InvalidDatasetError{Entity: "ProductionData", Key: productionKey(key), Field: "Factory", Reason: "unknown factory"}
			}
			if _, ok := ds.productIndex[key.Product]; !ok {
				return &InvalidDatasetError{Entity: "ProductionData", Key: productionKey(key), Field: "Product", Reason: "unknown product"}
			}
			dst[key] = v
		}
		return nil
	}
	if err := copyProduction(t.Capacity, ds.capacity); err != nil {
		return nil, err
	}
	if err := copyProduction(t.ProductionCost, ds.cost); err != nil {
		return nil, err
	}
	if err := copyProduction(t.ProductionEmissions, ds.emissions); err != nil {
		return nil, err
	}

	for key, d := range t.Distances {
		ds.distances[key] = d
	}
	for key, modes := range t.LaneModes {
		if _, ok := ds.distances[key]; !ok {
			return nil, &InvalidDatasetError{Entity: "TransportLanes", Key: laneKey(key), Field: "Mode", Reason: "modes listed for a lane without distance"}
		}
		seen := make(map[ModeID]bool, len(modes))
		var cp []ModeID
		for _, m := range modes {
			if _, ok := ds.modeIndex[m]; !ok {
				return nil, &InvalidDatasetError{Entity: "TransportLanes", Key: laneKey(key), Field: "Mode", Reason: fmt.Sprintf("unknown transport mode %q", m)}
			}
			if !seen[m] {
				seen[m] = true
				cp = append(cp, m)
			}
		}
		sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
		ds.laneModes[key] = cp
	}

	return ds, nil
}

// Suppliers returns the supplier identifiers in sorted order
func (d *Dataset) Suppliers() []SupplierID {
	return append([]SupplierID(nil), d.suppliers...)
}

// Factories returns the factory identifiers in sorted order
func (d *Dataset) Factories() []FactoryID {
	return append([]FactoryID(nil), d.factories...)
}

// Products returns the products sorted by identifier
func (d *Dataset) Products() []Product {
	return append([]Product(nil), d.products...)
}

// Customers returns the customer identifiers in sorted order
func (d *Dataset) Customers() []CustomerID {
	return append([]CustomerID(nil), d.customers...)
}

// Modes returns the transport modes sorted by identifier
func (d *Dataset) Modes() []TransportMode {
	return append([]TransportMode(nil), d.modes...)
}

// Product looks up a product by identifier
func (d *Dataset) Product(id ProductID) (Product, bool) {
	i, ok := d.productIndex[id]
	if !ok {
		return Product{}, false
	}
	return d.products[i], true
}

// Mode looks up a transport mode by identifier
func (d *Dataset) Mode(id ModeID) (TransportMode, bool) {
	i, ok := d.modeIndex[id]
	if !ok {
		return TransportMode{}, false
	}
	return d.modes[i], true
}

// Demand returns the demand of a customer for a product; absent pairs are zero
func (d *Dataset) Demand(customer CustomerID, product ProductID) float64 {
	return d.demand[CustomerProduct{Customer: customer, Product: product}]
}

// HasDemand reports whether the pair is present in the demand table
func (d *Dataset) HasDemand(customer CustomerID, product ProductID) bool {
	_, ok := d.demand[CustomerProduct{Customer: customer, Product: product}]
	return ok
}

// TotalDemand sums the demand for a product over all customers
func (d *Dataset) TotalDemand(product ProductID) float64 {
	total := 0.0
	for _, c := range d.customers {
		total += d.Demand(c, product)
	}
	return total
}

// Distance returns the length of the directed lane, if defined
func (d *Dataset) Distance(from, to LocationID) (float64, bool) {
	km, ok := d.distances[LaneKey{From: from, To: to}]
	return km, ok
}

// LaneModes returns the modes listed for a lane, sorted. An empty result means the
// lane table lists no mode for it.
func (d *Dataset) LaneModes(from, to LocationID) []ModeID {
	return append([]ModeID(nil), d.laneModes[LaneKey{From: from, To: to}]...)
}

// Capacity returns the production capacity of a factory for a product, if defined
func (d *Dataset) Capacity(factory FactoryID, product ProductID) (float64, bool) {
	v, ok := d.capacity[FactoryProduct{Factory: factory, Product: product}]
	return v, ok
}

// ProductionCost returns the per-unit production cost, if defined
func (d *Dataset) ProductionCost(factory FactoryID, product ProductID) (float64, bool) {
	v, ok := d.cost[FactoryProduct{Factory: factory, Product: product}]
	return v, ok
}

// ProductionEmissions returns the per-unit production emissions in kg CO2, if defined
func (d *Dataset) ProductionEmissions(factory FactoryID, product ProductID) (float64, bool) {
	v, ok := d.emissions[FactoryProduct{Factory: factory, Product: product}]
	return v, ok
}

// Producing reports whether any production coefficient is defined for the pair.
// Pairs with no coefficient at all cannot produce.
func (d *Dataset) Producing(factory FactoryID, product ProductID) bool {
	key := FactoryProduct{Factory: factory, Product: product}
	_, c := d.capacity[key]
	_, k := d.cost[key]
	_, e := d.emissions[key]
	return c || k || e
}

// DemandEntries returns the demand table in (customer, product) order
func (d *Dataset) DemandEntries() []Demand {
	out := make([]Demand, 0, len(d.demand))
	for key, q := range d.demand {
		out = append(out, Demand{Customer: key.Customer, Product: key.Product, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Customer != out[j].Customer {
			return out[i].Customer < out[j].Customer
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// Lanes returns the lane distances in (from, to) order, one entry per lane
func (d *Dataset) Lanes() []Lane {
	out := make([]Lane, 0, len(d.distances))
	for key, km := range d.distances {
		out = append(out, Lane{From: key.From, To: key.To, DistanceKm: km})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// ProductionKeys returns every (factory, product) pair with at least one
// production coefficient, in factory then product order
func (d *Dataset) ProductionKeys() []FactoryProduct {
	seen := make(map[FactoryProduct]bool)
	for _, m := range []map[FactoryProduct]float64{d.capacity, d.cost, d.emissions} {
		for key := range m {
			seen[key] = true
		}
	}
	out := make([]FactoryProduct, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Factory != out[j].Factory {
			return out[i].Factory < out[j].Factory
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// Summary counts the dataset's entities
func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		Suppliers:         len(d.suppliers),
		Factories:         len(d.factories),
		Products:          len(d.products),
		Customers:         len(d.customers),
		TransportModes:    len(d.modes),
		Lanes:             len(d.distances),
		DemandEntries:     len(d.demand),
		ProductionEntries: len(d.ProductionKeys()),
	}
}

func uniqueSorted[T ~string](entity, field string, ids []T) ([]T, error) {
	out := append([]T(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	for i, id := range out {
		if id == "" {
			return nil, &InvalidDatasetError{Entity: entity, Field: field, Reason: "empty identifier"}
		}
		if i > 0 && out[i-1] == id {
			return nil, &InvalidDatasetError{Entity: entity, Key: string(id), Field: field, Reason: "duplicate identifier"}
		}
	}
	return out, nil
}

func toSet[T comparable](ids []T) map[T]bool {
	set := make(map[T]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func demandKey(k CustomerProduct) string {
	return fmt.Sprintf("%s,%s", k.Customer, k.Product)
}

func productionKey(k FactoryProduct) string {
	return fmt.Sprintf("%s,%s", k.Factory, k.Product)
}

func laneKey(k LaneKey) string {
	return fmt.Sprintf("%s->%s", k.From, k.To)
}
