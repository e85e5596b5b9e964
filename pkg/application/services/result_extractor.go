package services

import (
	"fmt"
	"math"

	"github.com/sandrabronsvoort/mint/pkg/application/dto"
	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/lp"
)

// zeroTolerance absorbs simplex round-off around zero-valued variables
const zeroTolerance = 1e-9

// ExtractReport turns a solution of the emissions model into business metrics.
// A solution without values yields a report carrying only the status; the
// caller checks Report.Err() for it.
func ExtractReport(model *EmissionsModel, sol *lp.Solution) (*dto.Report, error) {
	if model == nil || sol == nil {
		return nil, fmt.Errorf("model and solution are required")
	}
	ds := model.Dataset

	report := &dto.Report{
		Status:   sol.Status,
		Summary:  ds.Summary(),
		Warnings: model.Warnings,
	}
	if !sol.Status.HasSolution() {
		return report, nil
	}
	if len(sol.Values) != model.LP.NumVariables() {
		return nil, fmt.Errorf("solution has %d values, model has %d variables",
			len(sol.Values), model.LP.NumVariables())
	}
	value := func(j int) float64 {
		v := sol.Values[j]
		if math.Abs(v) <= zeroTolerance {
			return 0
		}
		return v
	}

	report.Objective = sol.Objective
	products := ds.Products()
	modes := ds.Modes()

	report.Production = make([]dto.ProductionQuantity, 0, len(model.productionKeys))
	produced := make(map[entities.ProductID]float64, len(products))
	productionCost := make(map[entities.ProductID]float64, len(products))
	for _, key := range model.productionKeys {
		qty := value(model.production[key])
		report.Production = append(report.Production, dto.ProductionQuantity{
			Factory:  key.Factory,
			Product:  key.Product,
			Quantity: qty,
		})
		cost, _ := ds.ProductionCost(key.Factory, key.Product)
		emissions, _ := ds.ProductionEmissions(key.Factory, key.Product)
		produced[key.Product] += qty
		productionCost[key.Product] += cost * qty
		report.ProductionEmissions += emissions * qty
	}

	modeIndex := make(map[entities.ModeID]entities.TransportMode, len(modes))
	for _, m := range modes {
		modeIndex[m.ID] = m
	}

	// tonne-kilometre-weighted mode cost per product, before the weight factor
	transportRate := make(map[entities.ProductID]float64, len(products))
	report.Shipments = make([]dto.Shipment, 0)
	for _, key := range model.transportKeys {
		qty := value(model.transport[key])
		if qty == 0 {
			continue
		}
		distance, ok := ds.Distance(entities.LocationID(key.Factory), entities.LocationID(key.Customer))
		if !ok {
			distance = 0
		}
		mode := modeIndex[key.Mode]
		transportRate[key.Product] += mode.CostPerTonKm * distance * qty
		report.TransportEmissions += mode.EmissionsPerTonKm * distance * qty
		report.Shipments = append(report.Shipments, dto.Shipment{
			Factory:  key.Factory,
			Customer: key.Customer,
			Mode:     key.Mode,
			Product:  key.Product,
			Quantity: qty,
		})
	}
	report.TotalEmissions = report.ProductionEmissions + report.TransportEmissions

	report.UnitCosts = make([]dto.ProductUnitCost, 0, len(products))
	for _, p := range products {
		transportCost := transportRate[p.ID] * p.WeightKg / 1000
		unit := dto.ProductUnitCost{
			Product:        p.ID,
			ProductionCost: productionCost[p.ID],
			TransportCost:  transportCost,
			TotalProduced:  produced[p.ID],
			TotalDemand:    ds.TotalDemand(p.ID),
			UnitCost:       math.Inf(1),
		}
		if unit.TotalProduced > 0 {
			unit.UnitCost = (unit.ProductionCost + unit.TransportCost) / unit.TotalProduced
		}
		report.UnitCosts = append(report.UnitCosts, unit)
	}

	return report, nil
}
