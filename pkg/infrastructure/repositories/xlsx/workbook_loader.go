// Package xlsx reads and writes the scenario workbook, one sheet per table
package xlsx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/repositories"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/memory"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/tables"
)

// Loader loads a scenario workbook
type Loader struct{}

// NewLoader creates a new workbook loader
func NewLoader() *Loader {
	return &Loader{}
}

// Verify interface compliance
var _ repositories.DatasetLoader = (*Loader)(nil)

// Load reads one sheet per table. Sheets other than the known tables are ignored.
func (l *Loader) Load(ctx context.Context, path string) (*entities.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	repo := memory.NewTableRepository()
	for _, table := range tables.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !sheets[table.Name] {
			if table.Optional {
				zerolog.Ctx(ctx).Debug().Str("sheet", table.Name).Msg("optional sheet not found")
				continue
			}
			return nil, fmt.Errorf("workbook %s: missing sheet %q", path, table.Name)
		}
		rows, err := f.GetRows(table.Name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", table.Name, err)
		}
		if err := table.Load(repo, rows); err != nil {
			return nil, fmt.Errorf("workbook %s: %w", path, err)
		}
	}

	ds, err := repo.Dataset()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble dataset from %s: %w", path, err)
	}
	return ds, nil
}

// WriteDataset saves the dataset as a workbook with one sheet per table
func WriteDataset(path string, ds *entities.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables.All() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", table.Name, err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table.Name, err)
		}

		for r, record := range table.Records(ds) {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := cellValues(table, record, r == 0)
			if err := f.SetSheetRow(table.Name, cell, &values); err != nil {
				return fmt.Errorf("failed to write sheet %s row %d: %w", table.Name, r+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// cellValues stores numeric columns as numbers
func cellValues(table tables.Table, record []string, header bool) []interface{} {
	values := make([]interface{}, len(record))
	for i, s := range record {
		values[i] = s
		if header || i >= len(table.Columns) || !table.Columns[i].Numeric || s == "" {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			values[i] = v
		}
	}
	return values
}
