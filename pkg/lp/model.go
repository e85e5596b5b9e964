// Package lp holds an explicit, solver-independent linear program description.
//
// A model has the row form
//
//	Minimize (or Maximize): Σ Objective_j · x_j
//	Subject to:             Lower_i ≤ Σ_j a_ij · x_j ≤ Upper_i
//	And:                    Lower_j ≤ x_j ≤ Upper_j
//
// Infinite bounds are expressed with math.Inf. Any backend that can read this
// form implements Solver.
package lp

import (
	"errors"
	"fmt"
	"math"
)

// Sense is the optimization direction
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Variable is a continuous decision variable
type Variable struct {
	Name      string
	Lower     float64
	Upper     float64
	Objective float64
}

// Term is one non-zero coefficient of a constraint row
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a ranged linear row. Lower == Upper makes it an equality.
type Constraint struct {
	Name  string
	Lower float64
	Upper float64
	Terms []Term
}

// Model is the complete LP description. Variables and constraints are
// addressed by their insertion index.
type Model struct {
	Name        string
	Sense       Sense
	Variables   []Variable
	Constraints []Constraint
}

// NewModel creates an empty model
func NewModel(name string, sense Sense) *Model {
	return &Model{Name: name, Sense: sense}
}

// AddVariable appends a variable and returns its index
func (m *Model) AddVariable(name string, lower, upper, objective float64) int {
	m.Variables = append(m.Variables, Variable{
		Name:      name,
		Lower:     lower,
		Upper:     upper,
		Objective: objective,
	})
	return len(m.Variables) - 1
}

// AddConstraint appends the row lower ≤ Σ terms ≤ upper and returns its index.
// Zero coefficients are dropped.
func (m *Model) AddConstraint(name string, lower float64, terms []Term, upper float64) int {
	row := Constraint{Name: name, Lower: lower, Upper: upper}
	for _, t := range terms {
		if t.Coef != 0 {
			row.Terms = append(row.Terms, t)
		}
	}
	m.Constraints = append(m.Constraints, row)
	return len(m.Constraints) - 1
}

// AddGreaterEqual adds Σ terms ≥ rhs
func (m *Model) AddGreaterEqual(name string, terms []Term, rhs float64) int {
	return m.AddConstraint(name, rhs, terms, math.Inf(1))
}

// AddLessEqual adds Σ terms ≤ rhs
func (m *Model) AddLessEqual(name string, terms []Term, rhs float64) int {
	return m.AddConstraint(name, math.Inf(-1), terms, rhs)
}

// NumVariables returns the number of variables
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// NumConstraints returns the number of constraints
func (m *Model) NumConstraints() int {
	return len(m.Constraints)
}

// NumNonzeros returns the number of constraint coefficients
func (m *Model) NumNonzeros() int {
	n := 0
	for _, c := range m.Constraints {
		n += len(c.Terms)
	}
	return n
}

// Validate checks that the model is well formed: finite coefficients, ordered
// bounds and term indices in range.
func (m *Model) Validate() error {
	var errs []error
	for j, v := range m.Variables {
		if math.IsNaN(v.Objective) || math.IsInf(v.Objective, 0) {
			errs = append(errs, fmt.Errorf("variable %d (%s): objective coefficient %v is not finite", j, v.Name, v.Objective))
		}
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			errs = append(errs, fmt.Errorf("variable %d (%s): invalid bounds [%v, %v]", j, v.Name, v.Lower, v.Upper))
		}
	}
	for i, c := range m.Constraints {
		if math.IsNaN(c.Lower) || math.IsNaN(c.Upper) || c.Lower > c.Upper {
			errs = append(errs, fmt.Errorf("constraint %d (%s): invalid bounds [%v, %v]", i, c.Name, c.Lower, c.Upper))
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(m.Variables) {
				errs = append(errs, fmt.Errorf("constraint %d (%s): variable index %d out of range", i, c.Name, t.Var))
				continue
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				errs = append(errs, fmt.Errorf("constraint %d (%s): coefficient of %s is not finite", i, c.Name, m.Variables[t.Var].Name))
			}
		}
	}
	return errors.Join(errs...)
}

// ObjectiveValue evaluates the objective at x
func (m *Model) ObjectiveValue(x []float64) float64 {
	total := 0.0
	for j, v := range m.Variables {
		if j < len(x) {
			total += v.Objective * x[j]
		}
	}
	return total
}

// Activity evaluates the left-hand side of constraint row at x
func (m *Model) Activity(row int, x []float64) float64 {
	total := 0.0
	for _, t := range m.Constraints[row].Terms {
		total += t.Coef * x[t.Var]
	}
	return total
}

// Violation returns the largest bound or row violation of x, 0 when x is feasible
func (m *Model) Violation(x []float64) float64 {
	worst := 0.0
	for j, v := range m.Variables {
		worst = math.Max(worst, v.Lower-x[j])
		worst = math.Max(worst, x[j]-v.Upper)
	}
	for i, c := range m.Constraints {
		a := m.Activity(i, x)
		worst = math.Max(worst, c.Lower-a)
		worst = math.Max(worst, a-c.Upper)
	}
	return worst
}
