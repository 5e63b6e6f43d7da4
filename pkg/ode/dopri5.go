// Package ode integrates scalar first-order initial value problems with the
// adaptive Dormand-Prince 5(4) method and a fifth-order continuous extension.
//
// The solver reports its trajectory as dense output on a uniform grid: the
// caller's OutputStep sets both the grid spacing and the initial step size
// hint, while the internal step size adapts freely to the error tolerances.
package ode

import (
	"errors"
	"fmt"
	"math"
)

// Func is the right-hand side of y'(t) = f(t, y).
type Func func(t, y float64) (float64, error)

// Config controls one integration run.
type Config struct {
	// OutputStep is the spacing of the reported trajectory and the initial
	// step size hint. Must be > 0.
	OutputStep float64

	// AbsoluteTolerance bounds the local error per step; <= 0 selects the
	// default of 1e-10.
	AbsoluteTolerance float64

	// RelativeTolerance bounds the local error relative to the solution
	// magnitude; <= 0 selects the default of 1e-10.
	RelativeTolerance float64

	// MaxStepCount aborts the run once exceeded; 0 selects the default.
	MaxStepCount uint
}

// Statistics reports the work performed by a run.
type Statistics struct {
	// StepCount is the number of accepted integration steps.
	StepCount uint
	// RejectedCount is the number of steps rejected by the error control.
	RejectedCount uint
	// EvaluationCount is the number of right-hand side evaluations.
	EvaluationCount uint
}

// Solution is the dense-output trajectory from t0 to tEnd inclusive.
type Solution struct {
	Times  []float64
	Values []float64
	Stats  Statistics
}

// Integration failures. All of them leave the caller with no partial
// trajectory.
var (
	// ErrStepUnderflow reports that the error control drove the step size
	// below what floating point can resolve.
	ErrStepUnderflow = errors.New("ode: step size underflow")

	// ErrMaxSteps reports that the step budget ran out before reaching the
	// end of the interval.
	ErrMaxSteps = errors.New("ode: maximum step count exceeded")
)

const (
	defaultTolerance    = 1e-10
	defaultMaxStepCount = 1000000

	safety = 0.9
	facMin = 0.2
	facMax = 10.0
)

// Dormand-Prince 5(4) tableau.
const (
	c2 = 1.0 / 5.0
	c3 = 3.0 / 10.0
	c4 = 4.0 / 5.0
	c5 = 8.0 / 9.0

	a21 = 1.0 / 5.0
	a31 = 3.0 / 40.0
	a32 = 9.0 / 40.0
	a41 = 44.0 / 45.0
	a42 = -56.0 / 15.0
	a43 = 32.0 / 9.0
	a51 = 19372.0 / 6561.0
	a52 = -25360.0 / 2187.0
	a53 = 64448.0 / 6561.0
	a54 = -212.0 / 729.0
	a61 = 9017.0 / 3168.0
	a62 = -355.0 / 33.0
	a63 = 46732.0 / 5247.0
	a64 = 49.0 / 176.0
	a65 = -5103.0 / 18656.0
	a71 = 35.0 / 384.0
	a73 = 500.0 / 1113.0
	a74 = 125.0 / 192.0
	a75 = -2187.0 / 6784.0
	a76 = 11.0 / 84.0

	// Difference between the fifth- and fourth-order weights.
	e1 = 71.0 / 57600.0
	e3 = -71.0 / 16695.0
	e4 = 71.0 / 1920.0
	e5 = -17253.0 / 339200.0
	e6 = 22.0 / 525.0
	e7 = -1.0 / 40.0

	// Continuous extension weights (Hairer, Norsett, Wanner).
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// Solve integrates y'(t) = f(t, y) over [t0, tEnd] with y(t0) = y0. The
// returned trajectory starts at t0, advances by cfg.OutputStep, and always
// ends exactly at tEnd.
func Solve(f Func, t0, tEnd, y0 float64, cfg Config) (*Solution, error) {
	if cfg.OutputStep <= 0 {
		return nil, fmt.Errorf("ode: output step must be positive, got %v", cfg.OutputStep)
	}
	if tEnd < t0 {
		return nil, fmt.Errorf("ode: integration interval is reversed: [%v, %v]", t0, tEnd)
	}

	atol := cfg.AbsoluteTolerance
	if atol <= 0 {
		atol = defaultTolerance
	}
	rtol := cfg.RelativeTolerance
	if rtol <= 0 {
		rtol = defaultTolerance
	}
	maxSteps := cfg.MaxStepCount
	if maxSteps == 0 {
		maxSteps = defaultMaxStepCount
	}

	sol := &Solution{Times: []float64{t0}, Values: []float64{y0}}
	if tEnd == t0 {
		return sol, nil
	}

	// Emission tolerance for grid points that land on a step boundary.
	eps := cfg.OutputStep * 1e-9

	var ferr error
	stage := func(ts, ys float64) float64 {
		if ferr != nil {
			return 0
		}
		sol.Stats.EvaluationCount++
		val, err := f(ts, ys)
		if err != nil {
			ferr = err
		}
		return val
	}

	t, y := t0, y0
	k1 := stage(t, y)
	if ferr != nil {
		return nil, fmt.Errorf("ode: right-hand side failed at t=%v: %w", t, ferr)
	}

	h := math.Min(cfg.OutputStep, tEnd-t0)
	next := 1 // index of the next dense-output grid point

	for t < tEnd {
		if sol.Stats.StepCount+sol.Stats.RejectedCount >= maxSteps {
			return nil, ErrMaxSteps
		}
		if h < 1e-14*math.Max(1, math.Abs(t)) {
			return nil, ErrStepUnderflow
		}
		lastStep := t+h >= tEnd
		if lastStep {
			h = tEnd - t
		}

		k2 := stage(t+c2*h, y+h*a21*k1)
		k3 := stage(t+c3*h, y+h*(a31*k1+a32*k2))
		k4 := stage(t+c4*h, y+h*(a41*k1+a42*k2+a43*k3))
		k5 := stage(t+c5*h, y+h*(a51*k1+a52*k2+a53*k3+a54*k4))
		k6 := stage(t+h, y+h*(a61*k1+a62*k2+a63*k3+a64*k4+a65*k5))
		yNew := y + h*(a71*k1+a73*k3+a74*k4+a75*k5+a76*k6)
		k7 := stage(t+h, yNew) // first-same-as-last
		if ferr != nil {
			return nil, fmt.Errorf("ode: right-hand side failed at t=%v: %w", t, ferr)
		}

		errEst := h * (e1*k1 + e3*k3 + e4*k4 + e5*k5 + e6*k6 + e7*k7)
		scale := atol + rtol*math.Max(math.Abs(y), math.Abs(yNew))
		errNorm := math.Abs(errEst / scale)
		if math.IsNaN(yNew) || math.IsInf(yNew, 0) || math.IsNaN(errNorm) {
			return nil, fmt.Errorf("ode: non-finite state at t=%v", t)
		}

		if errNorm > 1 {
			sol.Stats.RejectedCount++
			h *= math.Max(facMin, safety*math.Pow(errNorm, -0.2))
			continue
		}

		// Accepted step: emit the grid points covered by (t, t+h] using the
		// fifth-order continuous extension.
		tNew := t + h
		if lastStep {
			// Land exactly on the endpoint rather than a rounding sliver
			// short of it.
			tNew = tEnd
		}
		ydiff := yNew - y
		bspl := h*k1 - ydiff
		r4 := ydiff - h*k7 - bspl
		r5 := h * (d1*k1 + d3*k3 + d4*k4 + d5*k5 + d6*k6 + d7*k7)
		for {
			x := t0 + float64(next)*cfg.OutputStep
			if x > tNew+eps || x >= tEnd-eps {
				break
			}
			theta := (x - t) / h
			th1 := 1 - theta
			sol.Times = append(sol.Times, x)
			sol.Values = append(sol.Values, y+theta*(ydiff+th1*(bspl+theta*(r4+th1*r5))))
			next++
		}

		t, y, k1 = tNew, yNew, k7
		sol.Stats.StepCount++
		h *= math.Min(facMax, math.Max(facMin, safety*math.Pow(errNorm, -0.2)))
	}

	sol.Times = append(sol.Times, tEnd)
	sol.Values = append(sol.Values, y)
	return sol, nil
}
