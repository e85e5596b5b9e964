package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sandrabronsvoort/mint/pkg/domain/entities"
	"github.com/sandrabronsvoort/mint/pkg/domain/repositories"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/memory"
	"github.com/sandrabronsvoort/mint/pkg/infrastructure/repositories/tables"
)

// Loader loads a scenario directory holding one CSV file per table
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// Verify interface compliance
var _ repositories.DatasetLoader = (*Loader)(nil)

// Load reads every table file of dir concurrently, then applies them to a
// table repository in schema order
func (l *Loader) Load(ctx context.Context, dir string) (*entities.Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path %s is not a directory", dir)
	}

	all := tables.All()
	records := make([][][]string, len(all))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range all {
		i, table := i, table // per-iteration copies (Go < 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := readFile(filepath.Join(dir, table.File))
			if errors.Is(err, fs.ErrNotExist) && table.Optional {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", table.Name, err)
			}
			records[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	repo := memory.NewTableRepository()
	for i, table := range all {
		if records[i] == nil {
			zerolog.Ctx(ctx).Debug().Str("table", table.Name).Msg("optional table not found")
			continue
		}
		if err := table.Load(repo, records[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", table.File, err)
		}
	}

	ds, err := repo.Dataset()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble dataset from %s: %w", dir, err)
	}
	return ds, nil
}

func readFile(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if records == nil {
		records = [][]string{}
	}
	return records, nil
}
