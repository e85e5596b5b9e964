package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/sandrabronsvoort/mint/pkg/domain/services"
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Input string
}

// ValidateCommand reports every dataset issue without solving
type ValidateCommand struct {
	config ValidateConfig
	out    io.Writer
}

// NewValidateCommand creates a new validate command
func NewValidateCommand(config ValidateConfig, out io.Writer) *ValidateCommand {
	return &ValidateCommand{config: config, out: out}
}

// Execute loads the dataset, lists errors and warnings and fails when any error was found
func (c *ValidateCommand) Execute(ctx context.Context) error {
	ds, err := loadDataset(ctx, c.config.Input)
	if err != nil {
		return err
	}

	result := services.NewDatasetValidator().Validate(ds)
	s := ds.Summary()
	fmt.Fprintf(c.out, "Dataset: %d factories, %d products, %d customers, %d transport modes, %d lanes\n",
		s.Factories, s.Products, s.Customers, s.TransportModes, s.Lanes)

	for _, msg := range result.Errors {
		fmt.Fprintf(c.out, "ERROR   %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(c.out, "WARNING %s\n", msg)
	}

	if !result.Valid() {
		return fmt.Errorf("dataset has %d error(s): %w", len(result.Issues), result.Err())
	}
	fmt.Fprintf(c.out, "Dataset is valid (%d warning(s))\n", len(result.Warnings))
	return nil
}
