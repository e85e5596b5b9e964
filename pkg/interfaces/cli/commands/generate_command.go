package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/csv"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/memory"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/xlsx"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Suppliers   int     // Number of suppliers (summary only)
	Factories   int     // Number of factories
	Products    int     // Number of products
	Customers   int     // Number of customers
	Modes       int     // Number of transport modes
	LaneDensity float64 // Share of factory-customer pairs connected by a lane
	Output      string  // Scenario directory, or a .xlsx workbook path
	Seed        int64   // Random seed for reproducible generation
	Verbose     bool    // Verbose output
}

// GenerateCommand handles scenario generation
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.LaneDensity <= 0 || config.LaneDensity > 1 {
		config.LaneDensity = 0.5
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// knownModes are used before falling back to numbered modes
var knownModes = []entities.TransportMode{
	{ID: "TRUCK", CostPerTonKm: 0.12, EmissionsPerTonKm: 62},
	{ID: "RAIL", CostPerTonKm: 0.05, EmissionsPerTonKm: 22},
	{ID: "SHIP", CostPerTonKm: 0.02, EmissionsPerTonKm: 8},
	{ID: "BARGE", CostPerTonKm: 0.03, EmissionsPerTonKm: 31},
	{ID: "AIR", CostPerTonKm: 0.9, EmissionsPerTonKm: 602},
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	c := cmd.config
	if c.Factories < 1 || c.Products < 1 || c.Customers < 1 || c.Modes < 1 {
		return fmt.Errorf("factories, products, customers and modes must each be at least 1")
	}
	if c.Output == "" {
		return fmt.Errorf("output path is required")
	}

	if c.Verbose {
		fmt.Fprintf(cmd.out, "Generating scenario with %d factories, %d products, %d customers, %d modes\n",
			c.Factories, c.Products, c.Customers, c.Modes)
		fmt.Fprintf(cmd.out, "Output: %s\n", c.Output)
	}

	ds, err := cmd.generateDataset()
	if err != nil {
		return fmt.Errorf("failed to generate dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(c.Output), ".xlsx") {
		err = xlsx.WriteDataset(c.Output, ds)
	} else {
		err = csv.WriteDataset(c.Output, ds)
	}
	if err != nil {
		return err
	}

	if c.Verbose {
		s := ds.Summary()
		fmt.Fprintf(cmd.out, "Scenario generated: %d lanes, %d demand entries, %d production entries\n",
			s.Lanes, s.DemandEntries, s.ProductionEntries)
	}
	return nil
}

// generateDataset builds a random dataset in which every demanded product has
// enough total capacity and every demanding customer has an inbound lane
func (cmd *GenerateCommand) generateDataset() (*entities.Dataset, error) {
	c := cmd.config
	repo := memory.NewTableRepository()

	for i := 0; i < c.Suppliers; i++ {
		if err := repo.AddSupplier(entities.SupplierID(fmt.Sprintf("S%03d", i+1))); err != nil {
			return nil, err
		}
	}
	factories := make([]entities.FactoryID, c.Factories)
	for i := range factories {
		factories[i] = entities.FactoryID(fmt.Sprintf("F%03d", i+1))
		if err := repo.AddFactory(factories[i]); err != nil {
			return nil, err
		}
	}
	products := make([]entities.ProductID, c.Products)
	for i := range products {
		products[i] = entities.ProductID(fmt.Sprintf("P%03d", i+1))
		weight := round1(0.5 + cmd.rand.Float64()*49.5)
		if err := repo.AddProduct(entities.Product{ID: products[i], WeightKg: weight}); err != nil {
			return nil, err
		}
	}
	customers := make([]entities.CustomerID, c.Customers)
	for i := range customers {
		customers[i] = entities.CustomerID(fmt.Sprintf("C%03d", i+1))
		if err := repo.AddCustomer(customers[i]); err != nil {
			return nil, err
		}
	}
	modes := cmd.generateModes()
	for _, m := range modes {
		if err := repo.AddTransportMode(m); err != nil {
			return nil, err
		}
	}

	// Demand: roughly 70% of customer-product pairs
	totalDemand := make(map[entities.ProductID]float64, len(products))
	demanding := make(map[entities.CustomerID]bool, len(customers))
	for _, cust := range customers {
		for _, p := range products {
			if cmd.rand.Float64() >= 0.7 {
				continue
			}
			qty := float64(10 + cmd.rand.Intn(191))
			if err := repo.AddDemand(entities.Demand{Customer: cust, Product: p, Quantity: qty}); err != nil {
				return nil, err
			}
			totalDemand[p] += qty
			demanding[cust] = true
		}
	}

	// Production: each product is made by at least one factory, with total
	// capacity of at least 120% of its demand
	for _, p := range products {
		var makers []entities.FactoryID
		for _, f := range factories {
			if cmd.rand.Float64() < 0.6 {
				makers = append(makers, f)
			}
		}
		if len(makers) == 0 {
			makers = append(makers, factories[cmd.rand.Intn(len(factories))])
		}
		share := math.Ceil(1.2 * totalDemand[p] / float64(len(makers)))
		for _, f := range makers {
			capacity := share + float64(cmd.rand.Intn(100))
			err := repo.AddProductionData(entities.ProductionData{
				Factory:   f,
				Product:   p,
				Capacity:  capacity,
				Cost:      round1(1 + cmd.rand.Float64()*19),
				Emissions: round1(0.5 + cmd.rand.Float64()*9.5),
			})
			if err != nil {
				return nil, err
			}
		}
	}

	// Lanes: a share of factory-customer pairs, at least one into each demanding customer
	for _, cust := range customers {
		connected := false
		for i, f := range factories {
			last := i == len(factories)-1
			if cmd.rand.Float64() >= c.LaneDensity && !(last && !connected && demanding[cust]) {
				continue
			}
			if err := cmd.addLane(repo, f, cust, modes); err != nil {
				return nil, err
			}
			connected = true
		}
	}

	return repo.Dataset()
}

// generateModes takes known modes first, then numbered ones
func (cmd *GenerateCommand) generateModes() []entities.TransportMode {
	modes := make([]entities.TransportMode, 0, cmd.config.Modes)
	for i := 0; i < cmd.config.Modes; i++ {
		if i < len(knownModes) {
			modes = append(modes, knownModes[i])
			continue
		}
		modes = append(modes, entities.TransportMode{
			ID:                entities.ModeID(fmt.Sprintf("MODE_%02d", i+1)),
			CostPerTonKm:      round1(cmd.rand.Float64()) + 0.01,
			EmissionsPerTonKm: float64(5 + cmd.rand.Intn(600)),
		})
	}
	return modes
}

// addLane writes one lane row per listed mode; one or two modes per lane
func (cmd *GenerateCommand) addLane(repo *memory.TableRepository, f entities.FactoryID, c entities.CustomerID, modes []entities.TransportMode) error {
	distance := float64(50 + cmd.rand.Intn(1951))
	count := 1 + cmd.rand.Intn(min(2, len(modes)))
	for _, idx := range cmd.rand.Perm(len(modes))[:count] {
		err := repo.AddLane(entities.Lane{
			From:       entities.LocationID(f),
			To:         entities.LocationID(c),
			DistanceKm: distance,
			Mode:       modes[idx].ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
