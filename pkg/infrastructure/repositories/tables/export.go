package tables

import (
	"strconv"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
)

// Records renders the table's rows of a dataset, header first. Rows follow the
// dataset's identifier order, so the output is stable.
func (t Table) Records(ds *entities.Dataset) [][]string {
	records := [][]string{t.Header()}
	switch t.Name {
	case Suppliers.Name:
		for _, id := range ds.Suppliers() {
			records = append(records, []string{string(id)})
		}
	case Factories.Name:
		for _, id := range ds.Factories() {
			records = append(records, []string{string(id)})
		}
	case Products.Name:
		for _, p := range ds.Products() {
			records = append(records, []string{string(p.ID), formatFloat(p.WeightKg)})
		}
	case Customers.Name:
		for _, id := range ds.Customers() {
			records = append(records, []string{string(id)})
		}
	case TransportModes.Name:
		for _, m := range ds.Modes() {
			records = append(records, []string{string(m.ID), formatFloat(m.CostPerTonKm), formatFloat(m.EmissionsPerTonKm)})
		}
	case ProductDemand.Name:
		for _, d := range ds.DemandEntries() {
			records = append(records, []string{string(d.Customer), string(d.Product), formatFloat(d.Quantity)})
		}
	case TransportLanes.Name:
		for _, l := range ds.Lanes() {
			km := formatFloat(l.DistanceKm)
			modes := ds.LaneModes(l.From, l.To)
			if len(modes) == 0 {
				records = append(records, []string{string(l.From), string(l.To), km, ""})
				continue
			}
			for _, m := range modes {
				records = append(records, []string{string(l.From), string(l.To), km, string(m)})
			}
		}
	case ProductionData.Name:
		for _, key := range ds.ProductionKeys() {
			records = append(records, []string{
				string(key.Factory),
				string(key.Product),
				optionalFloat(ds.Capacity(key.Factory, key.Product)),
				optionalFloat(ds.ProductionCost(key.Factory, key.Product)),
				optionalFloat(ds.ProductionEmissions(key.Factory, key.Product)),
			})
		}
	}
	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalFloat(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return formatFloat(v)
}
