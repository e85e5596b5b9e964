package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/tables"
)

// WriteDataset writes the dataset as a scenario directory, one file per table
func WriteDataset(dir string, ds *entities.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scenario directory %s: %w", dir, err)
	}
	for _, table := range tables.All() {
		if err := WriteRecords(filepath.Join(dir, table.File), table.Records(ds)); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecords writes records to a CSV file, replacing it
func WriteRecords(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}
