// Package expression classifies and compiles segment formulas.
//
// A formula is classified by which of the reserved variable names it
// references: any occurrence of 'y' makes it the right-hand side of
// dy/dt = f(t, y); otherwise any occurrence of 't' makes it a function of
// time; otherwise it is a constant. Classification is purely textual and is
// not a validity check - a formula that fails to compile is caught when the
// evaluator compiles it.
package expression

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Kind identifies the evaluation model of a segment formula.
type Kind int

const (
	// Constant is a formula with no free variables, evaluated once.
	Constant Kind = iota

	// TimeFunction is a single-argument function of the time variable t.
	TimeFunction

	// DifferentialEquation is the right-hand side f(t, y) of dy/dt = f(t, y).
	DifferentialEquation
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case TimeFunction:
		return "time-function"
	case DifferentialEquation:
		return "differential-equation"
	default:
		return "unknown"
	}
}

// Classify tags a formula by inspecting which reserved variable names occur
// in it. 'y' takes precedence over 't'.
func Classify(src string) Kind {
	if strings.ContainsRune(src, 'y') {
		return DifferentialEquation
	}
	if strings.ContainsRune(src, 't') {
		return TimeFunction
	}
	return Constant
}

// baseEnv returns the math functions and constants available to every
// formula. Names that collide with expr builtins (abs, floor, ceil, round,
// min, max) are intentionally absent; the builtins cover them.
func baseEnv() map[string]interface{} {
	return map[string]interface{}{
		"pi":    math.Pi,
		"e":     math.E,
		"sqrt":  math.Sqrt,
		"exp":   math.Exp,
		"ln":    math.Log,
		"log10": math.Log10,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"pow":   math.Pow,
	}
}

// CompileConstant compiles a formula with no free variables and evaluates it
// once to a scalar.
func CompileConstant(src string) (float64, error) {
	env := baseEnv()
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return 0, err
	}
	out, err := vm.Run(program, env)
	if err != nil {
		return 0, err
	}
	return toFloat(out)
}

// TimeFunc is a compiled single-argument function of time. The returned
// closure reuses its environment and must not be called concurrently.
type TimeFunc func(t float64) (float64, error)

// CompileTime binds a formula as a function of the time variable t.
func CompileTime(src string) (TimeFunc, error) {
	env := baseEnv()
	env["t"] = float64(0)
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return func(t float64) (float64, error) {
		env["t"] = t
		out, err := vm.Run(program, env)
		if err != nil {
			return 0, err
		}
		return toFloat(out)
	}, nil
}

// RHSFunc is a compiled right-hand side f(t, y) of dy/dt = f(t, y). The
// returned closure reuses its environment and must not be called
// concurrently.
type RHSFunc func(t, y float64) (float64, error)

// CompileRHS binds a formula as a two-argument function of t and y.
func CompileRHS(src string) (RHSFunc, error) {
	env := baseEnv()
	env["t"] = float64(0)
	env["y"] = float64(0)
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return func(t, y float64) (float64, error) {
		env["t"] = t
		env["y"] = y
		out, err := vm.Run(program, env)
		if err != nil {
			return 0, err
		}
		return toFloat(out)
	}, nil
}

func toFloat(out interface{}) (float64, error) {
	switch val := out.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("expression result is %T, not a number", out)
	}
}
