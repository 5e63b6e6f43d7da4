package mathutil

import (
	"math"
	"testing"
)

func TestParseFloatOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		def      float64
		expected float64
	}{
		{
			name:     "Plain float",
			text:     "1.05",
			def:      1.0,
			expected: 1.05,
		},
		{
			name:     "Integer text",
			text:     "3",
			def:      1.0,
			expected: 3.0,
		},
		{
			name:     "Empty text falls back",
			text:     "",
			def:      1.0,
			expected: 1.0,
		},
		{
			name:     "Garbage falls back",
			text:     "abc",
			def:      1.0,
			expected: 1.0,
		},
		{
			name:     "Trailing garbage falls back",
			text:     "1.05x",
			def:      0.5,
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFloatOrDefault(tt.text, tt.def); got != tt.expected {
				t.Errorf("ParseFloatOrDefault(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestParsePeriodOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected uint
	}{
		{
			name:     "Plain period",
			text:     "12",
			expected: 12,
		},
		{
			name:     "Empty text falls back to zero",
			text:     "",
			expected: 0,
		},
		{
			name:     "Negative falls back to zero",
			text:     "-3",
			expected: 0,
		},
		{
			name:     "Float falls back to zero",
			text:     "2.5",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePeriodOrDefault(tt.text, 0); got != tt.expected {
				t.Errorf("ParsePeriodOrDefault(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestLogScale(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		expected float64
	}{
		{
			name:     "Power of ten",
			val:      100,
			expected: 2,
		},
		{
			name:     "One maps to zero",
			val:      1,
			expected: 0,
		},
		{
			name:     "Below one clamps to zero",
			val:      0.5,
			expected: 0,
		},
		{
			name:     "Zero clamps to zero",
			val:      0,
			expected: 0,
		},
		{
			name:     "Negative clamps to zero",
			val:      -42,
			expected: 0,
		},
		{
			name:     "NaN clamps to zero",
			val:      math.NaN(),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LogScale(tt.val); got != tt.expected {
				t.Errorf("LogScale(%v) = %v, expected %v", tt.val, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(1.0, 1.0+1e-12, 1e-9) {
		t.Errorf("expected values within tolerance")
	}
	if WithinTolerance(1.0, 1.1, 1e-9) {
		t.Errorf("expected values outside tolerance")
	}
}
