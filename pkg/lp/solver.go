package lp

import "context"

// Status is the terminal classification of a solve attempt
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "not-solved"
	}
}

// HasSolution reports whether variable values are available
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// MarshalText renders the status as its name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Solution is the result of solving a Model. Values holds one entry per model
// variable when Status.HasSolution(), and is nil otherwise.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}

// Value returns the solution value of variable j. Returns 0 if unavailable.
func (s *Solution) Value(j int) float64 {
	if j < 0 || j >= len(s.Values) {
		return 0
	}
	return s.Values[j]
}

// Solver solves a Model. It blocks until a terminal status is reached or ctx
// is done. Infeasible and unbounded models are reported through the status;
// the error is reserved for models the backend cannot process.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
