// Package simplex solves lp.Model values with gonum's dense simplex.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/sandrabronsvoort/mint/pkg/lp"
)

// DefaultTolerance is the reduced-cost tolerance passed to the simplex
const DefaultTolerance = 1e-10

// feasibilityTolerance bounds the residual accepted on empty rows
const feasibilityTolerance = 1e-9

// Options configures the solver
type Options struct {
	// Tolerance is the reduced-cost optimality tolerance (0 = DefaultTolerance)
	Tolerance float64
	// TimeLimit bounds a single solve; 0 means no limit
	TimeLimit time.Duration
}

// Solver is a pure-Go lp.Solver backed by gonum/optimize/convex/lp
type Solver struct {
	opts Options
}

// Verify interface compliance
var _ lp.Solver = (*Solver)(nil)

// New creates a simplex solver
func New(opts Options) *Solver {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return &Solver{opts: opts}
}

type simplexResult struct {
	x   []float64
	err error
}

// Solve converts the model to standard form and runs the simplex. The call
// blocks until the simplex returns, ctx is done or the time limit expires; in
// the latter two cases the status is not-solved. gonum's simplex cannot be
// interrupted, so an abandoned computation keeps running in the background
// until it returns on its own.
func (s *Solver) Solve(ctx context.Context, m *lp.Model) (*lp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %q: %w", m.Name, err)
	}
	log := zerolog.Ctx(ctx)

	sf, status := toStandardForm(m)
	if status != lp.StatusNotSolved {
		log.Debug().Str("model", m.Name).Stringer("status", status).Msg("resolved during presolve")
		return &lp.Solution{Status: status}, nil
	}

	log.Debug().
		Str("model", m.Name).
		Int("rows", sf.rows).
		Int("columns", len(sf.c)).
		Msg("standard form built")

	var y []float64
	if sf.rows == 0 {
		y = make([]float64, sf.numStructural)
	} else {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Str("model", m.Name).Msg("solve not started")
			return &lp.Solution{Status: lp.StatusNotSolved}, nil
		}
		if s.opts.TimeLimit > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
			defer cancel()
		}

		done := make(chan simplexResult, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- simplexResult{err: fmt.Errorf("simplex panic: %v", r)}
				}
			}()
			_, x, err := gonumlp.Simplex(sf.c, sf.a, sf.b, s.opts.Tolerance, nil)
			done <- simplexResult{x: x, err: err}
		}()

		var res simplexResult
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Str("model", m.Name).Msg("solve interrupted")
			return &lp.Solution{Status: lp.StatusNotSolved}, nil
		case res = <-done:
		}

		switch {
		case errors.Is(res.err, gonumlp.ErrInfeasible):
			return &lp.Solution{Status: lp.StatusInfeasible}, nil
		case errors.Is(res.err, gonumlp.ErrUnbounded):
			return &lp.Solution{Status: lp.StatusUnbounded}, nil
		case res.err != nil:
			log.Error().Err(res.err).Str("model", m.Name).Msg("simplex failed")
			return &lp.Solution{Status: lp.StatusNotSolved}, nil
		}
		y = res.x[:sf.numStructural]
	}

	x := sf.recover(y)
	sol := &lp.Solution{
		Status:    lp.StatusOptimal,
		Values:    x,
		Objective: m.ObjectiveValue(x),
	}
	log.Debug().
		Str("model", m.Name).
		Float64("objective", sol.Objective).
		Float64("max_violation", m.Violation(x)).
		Msg("simplex finished")
	return sol, nil
}

// part maps a standard-form column back onto a model variable: x_j += sign·y
type part struct {
	col  int
	sign float64
}

type standardForm struct {
	c             []float64
	a             *mat.Dense
	b             []float64
	rows          int
	numStructural int

	offsets []float64
	parts   [][]part
}

func (sf *standardForm) recover(y []float64) []float64 {
	x := make([]float64, len(sf.offsets))
	for j := range x {
		x[j] = sf.offsets[j]
		for _, p := range sf.parts[j] {
			if p.col >= 0 {
				x[j] += p.sign * y[p.col]
			}
		}
	}
	return x
}

type row struct {
	cols  map[int]float64
	lower float64
	upper float64
}

// toStandardForm rewrites the model as min cᵀy s.t. Ay = b, y ≥ 0. A status other
// than not-solved means presolve already decided the model.
func toStandardForm(m *lp.Model) (*standardForm, lp.Status) {
	sign := 1.0
	if m.Sense == lp.Maximize {
		sign = -1
	}

	sf := &standardForm{
		offsets: make([]float64, len(m.Variables)),
		parts:   make([][]part, len(m.Variables)),
	}
	var cost []float64
	var rows []row
	newCol := func(objective float64) int {
		cost = append(cost, objective)
		return len(cost) - 1
	}

	// Fix variables with equal bounds, shift finite lower bounds to zero, mirror
	// upper-bounded-only variables and split free ones.
	for j, v := range m.Variables {
		obj := sign * v.Objective
		switch {
		case v.Lower == v.Upper && !math.IsInf(v.Lower, 0):
			sf.offsets[j] = v.Lower
		case !math.IsInf(v.Lower, -1):
			sf.offsets[j] = v.Lower
			col := newCol(obj)
			sf.parts[j] = []part{{col: col, sign: 1}}
			if !math.IsInf(v.Upper, 1) {
				rows = append(rows, row{cols: map[int]float64{col: 1}, lower: math.Inf(-1), upper: v.Upper - v.Lower})
			}
		case !math.IsInf(v.Upper, 1):
			sf.offsets[j] = v.Upper
			col := newCol(-obj)
			sf.parts[j] = []part{{col: col, sign: -1}}
		default:
			pos := newCol(obj)
			neg := newCol(-obj)
			sf.parts[j] = []part{{col: pos, sign: 1}, {col: neg, sign: -1}}
		}
	}

	for _, c := range m.Constraints {
		r := row{cols: make(map[int]float64, len(c.Terms)), lower: c.Lower, upper: c.Upper}
		shift := 0.0
		for _, t := range c.Terms {
			shift += t.Coef * sf.offsets[t.Var]
			for _, p := range sf.parts[t.Var] {
				r.cols[p.col] += t.Coef * p.sign
			}
		}
		r.lower -= shift
		r.upper -= shift
		for col, v := range r.cols {
			if v == 0 {
				delete(r.cols, col)
			}
		}
		rows = append(rows, r)
	}

	// Empty rows either hold trivially or make the model infeasible.
	kept := rows[:0]
	for _, r := range rows {
		if len(r.cols) == 0 {
			if r.lower > feasibilityTolerance || r.upper < -feasibilityTolerance {
				return nil, lp.StatusInfeasible
			}
			continue
		}
		if math.IsInf(r.lower, -1) && math.IsInf(r.upper, 1) {
			continue
		}
		kept = append(kept, r)
	}
	rows = kept

	// Columns that appear in no row sit at zero, unless that lets the objective
	// decrease without bound.
	used := make([]bool, len(cost))
	for _, r := range rows {
		for col := range r.cols {
			used[col] = true
		}
	}
	remap := make([]int, len(cost))
	for col := range cost {
		if !used[col] {
			if cost[col] < 0 {
				return nil, lp.StatusUnbounded
			}
			remap[col] = -1
			continue
		}
		remap[col] = sf.numStructural
		sf.c = append(sf.c, cost[col])
		sf.numStructural++
	}
	for j := range sf.parts {
		for k := range sf.parts[j] {
			sf.parts[j][k].col = remap[sf.parts[j][k].col]
		}
	}

	// One standard-form row per finite side; each inequality gets its own slack.
	type stdRow struct {
		cols  map[int]float64
		rhs   float64
		slack float64 // +1 for ≤, -1 for ≥, 0 for =
	}
	var std []stdRow
	for _, r := range rows {
		cols := make(map[int]float64, len(r.cols))
		for col, v := range r.cols {
			cols[remap[col]] = v
		}
		switch {
		case r.lower == r.upper:
			std = append(std, stdRow{cols: cols, rhs: r.upper})
		default:
			if !math.IsInf(r.upper, 1) {
				std = append(std, stdRow{cols: cols, rhs: r.upper, slack: 1})
			}
			if !math.IsInf(r.lower, -1) {
				std = append(std, stdRow{cols: cols, rhs: r.lower, slack: -1})
			}
		}
	}

	numSlack := 0
	for _, r := range std {
		if r.slack != 0 {
			numSlack++
		}
	}
	width := sf.numStructural + numSlack
	sf.rows = len(std)
	if sf.rows == 0 {
		return sf, lp.StatusNotSolved
	}
	sf.a = mat.NewDense(sf.rows, width, nil)
	sf.b = make([]float64, sf.rows)
	for i := 0; i < numSlack; i++ {
		sf.c = append(sf.c, 0)
	}

	slackCol := sf.numStructural
	for i, r := range std {
		flip := 1.0
		if r.rhs < 0 {
			flip = -1
		}
		for col, v := range r.cols {
			sf.a.Set(i, col, flip*v)
		}
		if r.slack != 0 {
			sf.a.Set(i, slackCol, flip*r.slack)
			slackCol++
		}
		sf.b[i] = flip * r.rhs
	}

	return sf, lp.StatusNotSolved
}
