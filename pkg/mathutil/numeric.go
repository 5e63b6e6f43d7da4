// Package mathutil provides numeric helpers shared by the projection engine.
package mathutil

import (
	"math"
	"strconv"
)

// ParseFloatOrDefault parses a free-text numeric field, substituting def when
// the text does not parse. Unparseable fields are a documented fallback, not
// an error surfaced to the user.
func ParseFloatOrDefault(text string, def float64) float64 {
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return def
	}
	return val
}

// ParsePeriodOrDefault parses a segment end period, substituting def when the
// text does not parse as an unsigned integer.
func ParsePeriodOrDefault(text string, def uint) uint {
	val, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return def
	}
	return uint(val)
}

// LogScale maps a sample onto the log10 display scale used by the chart.
// Samples at or below zero, NaN samples, and samples whose log is negative
// all clamp to zero.
func LogScale(val float64) float64 {
	if math.IsNaN(val) || val <= 0 {
		return 0
	}
	scaled := math.Log10(val)
	if scaled < 0 {
		return 0
	}
	return scaled
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
