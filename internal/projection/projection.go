// Package projection assembles the per-period cash-flow series from the
// ordered document rows.
package projection

import (
	"errors"
	"fmt"

	"github.com/iwvelando/dcf-forecast/internal/document"
	"github.com/iwvelando/dcf-forecast/pkg/constants"
	"github.com/iwvelando/dcf-forecast/pkg/expression"
	"github.com/iwvelando/dcf-forecast/pkg/mathutil"
	"github.com/iwvelando/dcf-forecast/pkg/ode"
	"go.uber.org/zap"
)

// ErrPeriodOrder reports a row whose end period precedes the previous row's.
// The violation rejects the whole projection; there is never a partial
// series.
var ErrPeriodOrder = errors.New("segment end periods must be non-decreasing")

// Compute walks the document rows in order and produces the cash-flow
// series, one sample per period. The first row additionally contributes the
// sample at period 0. A row whose formula fails to compile, evaluate, or
// integrate is zero-filled for its full length and the walk continues; only
// an ordering violation aborts.
func Compute(logger *zap.Logger, doc *document.Document) ([]float64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stepSize := mathutil.ParseFloatOrDefault(doc.ODEStepSize, constants.StepFallback)

	output := []float64{}
	prev := constants.PeriodFallback
	for i, row := range doc.Rows {
		end := mathutil.ParsePeriodOrDefault(row.End, constants.PeriodFallback)
		if end < prev {
			logger.Warn("rejecting projection: row ends before previous boundary",
				zap.String("op", "projection.Compute"),
				zap.Int("row", i),
				zap.Uint("end", end),
				zap.Uint("previous", prev),
			)
			return nil, fmt.Errorf("%w: row %d ends at %d, previous boundary is %d", ErrPeriodOrder, i, end, prev)
		}

		length := end - prev
		kind := expression.Classify(row.Expr)
		samples, err := evaluate(kind, row.Expr, length, carryIn(output), len(output) == 0, stepSize)
		if err != nil {
			logger.Debug("zero-filling segment",
				zap.String("op", "projection.Compute"),
				zap.Int("row", i),
				zap.Stringer("kind", kind),
				zap.Error(err),
			)
			samples = make([]float64, length)
		}
		output = append(output, samples...)
		prev = end
	}

	return output, nil
}

// carryIn is the last sample already emitted, which seeds the next segment's
// initial condition. An empty series carries 0.
func carryIn(output []float64) float64 {
	if len(output) == 0 {
		return 0
	}
	return output[len(output)-1]
}

// evaluate dispatches one segment to its evaluation strategy. first reports
// whether the series is still empty, in which case the segment also emits
// the leading sample at t=0.
func evaluate(kind expression.Kind, src string, length uint, carryIn float64, first bool, stepSize float64) ([]float64, error) {
	switch kind {
	case expression.DifferentialEquation:
		return evaluateODE(src, length, carryIn, first, stepSize)
	case expression.TimeFunction:
		return evaluateTime(src, length, first)
	default:
		return evaluateConstant(src, length, first)
	}
}

func evaluateConstant(src string, length uint, first bool) ([]float64, error) {
	c, err := expression.CompileConstant(src)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, 0, length+1)
	if first {
		samples = append(samples, c)
	}
	for tau := uint(1); tau <= length; tau++ {
		samples = append(samples, c)
	}
	return samples, nil
}

func evaluateTime(src string, length uint, first bool) ([]float64, error) {
	f, err := expression.CompileTime(src)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, 0, length+1)
	if first {
		val, err := f(0)
		if err != nil {
			return nil, err
		}
		samples = append(samples, val)
	}
	// Local time within the segment, not the global period index.
	for tau := uint(1); tau <= length; tau++ {
		val, err := f(float64(tau))
		if err != nil {
			return nil, err
		}
		samples = append(samples, val)
	}
	return samples, nil
}

func evaluateODE(src string, length uint, carryIn float64, first bool, stepSize float64) ([]float64, error) {
	rhs, err := expression.CompileRHS(src)
	if err != nil {
		return nil, err
	}

	sol, err := ode.Solve(ode.Func(rhs), 0, float64(length), carryIn, ode.Config{
		OutputStep:        stepSize,
		AbsoluteTolerance: constants.ODETolerance,
		RelativeTolerance: constants.ODETolerance,
	})
	if err != nil {
		return nil, err
	}

	return resample(sol, length, first), nil
}

// resample snaps the solver trajectory onto integer period boundaries: for
// each advancing boundary n it takes the trajectory value at the first time
// x satisfying x - n > -step, where step is the spacing of the first two
// trajectory points.
func resample(sol *ode.Solution, length uint, first bool) []float64 {
	if len(sol.Times) < 2 {
		// Zero-length interval: at most the initial point survives.
		if first && len(sol.Values) == 1 {
			return []float64{sol.Values[0]}
		}
		return nil
	}

	step := sol.Times[1] - sol.Times[0]
	n := 1
	if first {
		n = 0
	}

	samples := make([]float64, 0, length+1)
	for i, x := range sol.Times {
		if x-float64(n) > -step {
			samples = append(samples, sol.Values[i])
			n++
		}
	}
	return samples
}
