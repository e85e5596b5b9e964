package dto

import (
	"encoding/json"
	"math"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

// Report contains the complete output of a planning run. When the solver found
// no solution only Status, Summary and Warnings are populated.
type Report struct {
	Status lp.Status `json:"status"`

	// Objective is the value reported by the solver
	Objective           float64 `json:"objective"`
	TotalEmissions      float64 `json:"total_emissions"`
	ProductionEmissions float64 `json:"production_emissions"`
	TransportEmissions  float64 `json:"transport_emissions"`

	UnitCosts  []ProductUnitCost    `json:"unit_costs"`
	Production []ProductionQuantity `json:"production"`
	Shipments  []Shipment           `json:"shipments"`

	Summary  entities.DatasetSummary `json:"summary"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Solved reports whether the metrics are available
func (r *Report) Solved() bool {
	return r.Status.HasSolution()
}

// Err returns a *entities.SolverFailureError when the run ended without a solution
func (r *Report) Err() error {
	if r.Solved() {
		return nil
	}
	return &entities.SolverFailureError{Status: r.Status.String()}
}

// ProductUnitCost breaks down the cost of one product across all factories
type ProductUnitCost struct {
	Product        entities.ProductID
	ProductionCost float64
	TransportCost  float64
	TotalProduced  float64
	TotalDemand    float64
	// UnitCost is +Inf when nothing of the product is produced
	UnitCost float64
}

// Produced reports whether the unit cost is defined
func (u ProductUnitCost) Produced() bool {
	return !math.IsInf(u.UnitCost, 1)
}

type productUnitCostJSON struct {
	Product        entities.ProductID `json:"product"`
	ProductionCost float64            `json:"production_cost"`
	TransportCost  float64            `json:"transport_cost"`
	TotalProduced  float64            `json:"total_produced"`
	TotalDemand    float64            `json:"total_demand"`
	UnitCost       *float64           `json:"unit_cost"`
	Produced       bool               `json:"produced"`
}

// MarshalJSON renders the +Inf sentinel as a null unit cost
func (u ProductUnitCost) MarshalJSON() ([]byte, error) {
	out := productUnitCostJSON{
		Product:        u.Product,
		ProductionCost: u.ProductionCost,
		TransportCost:  u.TransportCost,
		TotalProduced:  u.TotalProduced,
		TotalDemand:    u.TotalDemand,
		Produced:       u.Produced(),
	}
	if out.Produced {
		cost := u.UnitCost
		out.UnitCost = &cost
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the sentinel from a null unit cost
func (u *ProductUnitCost) UnmarshalJSON(data []byte) error {
	var in productUnitCostJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*u = ProductUnitCost{
		Product:        in.Product,
		ProductionCost: in.ProductionCost,
		TransportCost:  in.TransportCost,
		TotalProduced:  in.TotalProduced,
		TotalDemand:    in.TotalDemand,
		UnitCost:       math.Inf(1),
	}
	if in.UnitCost != nil {
		u.UnitCost = *in.UnitCost
	}
	return nil
}

// ProductionQuantity is the optimal output of one factory for one product
type ProductionQuantity struct {
	Factory  entities.FactoryID `json:"factory"`
	Product  entities.ProductID `json:"product"`
	Quantity float64            `json:"quantity"`
}

// Shipment is a non-zero transport flow
type Shipment struct {
	Factory  entities.FactoryID  `json:"factory"`
	Customer entities.CustomerID `json:"customer"`
	Mode     entities.ModeID     `json:"mode"`
	Product  entities.ProductID  `json:"product"`
	Quantity float64             `json:"quantity"`
}
