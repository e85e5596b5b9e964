package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/repositories"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/csv"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/xlsx"
)

// loaderFor picks the workbook loader for .xlsx paths and the CSV scenario loader otherwise
func loaderFor(path string) repositories.DatasetLoader {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.NewLoader()
	}
	return csv.NewLoader()
}

// loadDataset reads a scenario directory or workbook
func loadDataset(ctx context.Context, path string) (*entities.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("input path is required")
	}
	ds, err := loaderFor(path).Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error loading dataset: %w", err)
	}
	return ds, nil
}
