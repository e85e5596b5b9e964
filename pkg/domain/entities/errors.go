package entities

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrInvalidDataset indicates a negative magnitude or a dangling cross-table reference.
	ErrInvalidDataset = constError("invalid dataset")

	// ErrMissingCoefficient indicates a producing (factory, product) pair without
	// a capacity, cost or emissions value.
	ErrMissingCoefficient = constError("missing coefficient")

	// ErrSolverFailure indicates the solver finished without an optimal or feasible solution.
	ErrSolverFailure = constError("solver failure")
)

// InvalidDatasetError identifies the offending entity and field
type InvalidDatasetError struct {
	Entity string // table name, e.g. "Products"
	Key    string // business key of the offending row
	Field  string
	Reason string
}

func (e *InvalidDatasetError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid dataset: %s.%s: %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid dataset: %s[%s].%s: %s", e.Entity, e.Key, e.Field, e.Reason)
}

// Is matches ErrInvalidDataset
func (e *InvalidDatasetError) Is(target error) bool {
	return target == ErrInvalidDataset
}

// MissingCoefficientError names the (factory, product) pair and the absent coefficient
type MissingCoefficientError struct {
	Factory     FactoryID
	Product     ProductID
	Coefficient string // "capacity", "cost" or "emissions"
}

func (e *MissingCoefficientError) Error() string {
	return fmt.Sprintf("missing coefficient: production %s for factory %s, product %s",
		e.Coefficient, e.Factory, e.Product)
}

// Is matches ErrMissingCoefficient
func (e *MissingCoefficientError) Is(target error) bool {
	return target == ErrMissingCoefficient
}

// SolverFailureError carries the terminal solver status of a failed solve
type SolverFailureError struct {
	Status string
}

func (e *SolverFailureError) Error() string {
	return fmt.Sprintf("solver failure: no solution found (status %s)", e.Status)
}

// Is matches ErrSolverFailure
func (e *SolverFailureError) Is(target error) bool {
	return target == ErrSolverFailure
}
