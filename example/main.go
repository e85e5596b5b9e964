package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandrabronsvoort/mint/pkg/application/services"
	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/memory"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/solvers/simplex"
	"github.com/sandrabronsvoort/mint/pkg/interfaces/cli/output"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	// One factory serving one customer over a single truck lane
	repo := memory.NewTableRepository()
	steps := []error{
		repo.AddFactory("F1"),
		repo.AddProduct(entities.Product{ID: "P1", WeightKg: 10}),
		repo.AddCustomer("C1"),
		repo.AddTransportMode(entities.TransportMode{ID: "M1", CostPerTonKm: 0.1, EmissionsPerTonKm: 20}),
		repo.AddDemand(entities.Demand{Customer: "C1", Product: "P1", Quantity: 50}),
		repo.AddLane(entities.Lane{From: "F1", To: "C1", DistanceKm: 100, Mode: "M1"}),
		repo.AddProductionData(entities.ProductionData{
			Factory:   "F1",
			Product:   "P1",
			Capacity:  100,
			Cost:      2,
			Emissions: 5,
		}),
	}
	for _, err := range steps {
		if err != nil {
			fmt.Printf("Failed to build dataset: %v\n", err)
			os.Exit(1)
		}
	}

	ds, err := repo.Dataset()
	if err != nil {
		fmt.Printf("Failed to build dataset: %v\n", err)
		os.Exit(1)
	}

	planner := services.NewPlannerService(simplex.New(simplex.Options{}), services.BuildOptions{})
	start := time.Now()
	report, err := planner.SolveModel(ctx, ds)
	solveTime := time.Since(start)
	if err != nil {
		fmt.Printf("Planning failed: %v\n", err)
		os.Exit(1)
	}

	if err := output.Generate(os.Stdout, report, output.Config{
		Verbose:   true,
		SolveTime: solveTime,
		Source:    "in-memory example",
	}); err != nil {
		fmt.Printf("Failed to print report: %v\n", err)
		os.Exit(1)
	}
}
