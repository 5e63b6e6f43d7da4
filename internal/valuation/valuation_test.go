package valuation

import (
	"math"
	"testing"
)

func TestReduceDiscountStartsAtPeriodOne(t *testing.T) {
	// Period 0 is undiscounted; the factor applies from period 1 on.
	result := Reduce([]float64{100, 100}, 1.1, 1.02)

	if len(result.Records) != 2 {
		t.Fatalf("len(Records) = %d, expected 2", len(result.Records))
	}
	if got := result.Records[0].DiscountedUnit; got != 100 {
		t.Errorf("DiscountedUnit[0] = %v, expected undiscounted 100", got)
	}
	want := 100 / 1.1
	if got := result.Records[1].DiscountedUnit; math.Abs(got-want) > 1e-12 {
		t.Errorf("DiscountedUnit[1] = %v, expected %v", got, want)
	}
}

func TestReduceCumulativeSumLaw(t *testing.T) {
	cashflow := []float64{10, -3, 7.5, 0, 42}
	result := Reduce(cashflow, 1.07, 1.01)

	if result.Records[0].CumulativeDiscounted != result.Records[0].DiscountedUnit {
		t.Errorf("base case violated: cumulative[0] = %v, unit[0] = %v",
			result.Records[0].CumulativeDiscounted, result.Records[0].DiscountedUnit)
	}
	for i := 1; i < len(result.Records); i++ {
		want := result.Records[i-1].CumulativeDiscounted + result.Records[i].DiscountedUnit
		if math.Abs(result.Records[i].CumulativeDiscounted-want) > 1e-12 {
			t.Errorf("cumulative[%d] = %v, expected %v", i, result.Records[i].CumulativeDiscounted, want)
		}
	}
}

func TestReduceRecordFields(t *testing.T) {
	cashflow := []float64{5, 6, 7}
	result := Reduce(cashflow, 1.05, 1.0)
	for i, record := range result.Records {
		if record.Period != uint(i) {
			t.Errorf("Period[%d] = %d, expected %d", i, record.Period, i)
		}
		if record.Cashflow != cashflow[i] {
			t.Errorf("Cashflow[%d] = %v, expected %v", i, record.Cashflow, cashflow[i])
		}
	}
}

func TestReduceTerminalValue(t *testing.T) {
	// Terminal value uses the last raw cash flow, not the discounted unit:
	// (C_last * growth) / (discount - growth).
	result := Reduce([]float64{100, 100}, 1.1, 1.02)

	want := (100 * 1.02) / (1.1 - 1.02)
	if math.Abs(result.TerminalValue-want) > 1e-9 {
		t.Errorf("TerminalValue = %v, expected %v", result.TerminalValue, want)
	}

	last := result.Records[len(result.Records)-1]
	wantTotal := want + last.CumulativeDiscounted
	if math.Abs(result.TotalValue-wantTotal) > 1e-9 {
		t.Errorf("TotalValue = %v, expected %v", result.TotalValue, wantTotal)
	}
}

func TestReduceTerminalValueUnguarded(t *testing.T) {
	// Growth equal to the discount rate divides by zero; the raw result
	// propagates as-is.
	result := Reduce([]float64{100}, 1.0, 1.0)
	if !math.IsInf(result.TerminalValue, 1) {
		t.Errorf("TerminalValue = %v, expected +Inf", result.TerminalValue)
	}
	if !math.IsInf(result.TotalValue, 1) {
		t.Errorf("TotalValue = %v, expected +Inf", result.TotalValue)
	}

	// A zero last cash flow makes it 0/0.
	result = Reduce([]float64{0}, 1.0, 1.0)
	if !math.IsNaN(result.TerminalValue) {
		t.Errorf("TerminalValue = %v, expected NaN", result.TerminalValue)
	}
}

func TestReduceEmptySeries(t *testing.T) {
	result := Reduce(nil, 1.03, 1.02)
	if len(result.Records) != 0 {
		t.Errorf("Records = %v, expected none", result.Records)
	}
	if result.TerminalValue != 0 || result.TotalValue != 0 {
		t.Errorf("empty series valuation = %v / %v, expected zeros", result.TerminalValue, result.TotalValue)
	}
}

func TestReduceUnitDiscountRate(t *testing.T) {
	// The 1.0 fallback discount leaves every period undiscounted.
	result := Reduce([]float64{4, 4, 4}, 1.0, 0.5)
	for i, record := range result.Records {
		if record.DiscountedUnit != 4 {
			t.Errorf("DiscountedUnit[%d] = %v, expected 4", i, record.DiscountedUnit)
		}
	}
	if got := result.Records[2].CumulativeDiscounted; got != 12 {
		t.Errorf("CumulativeDiscounted[2] = %v, expected 12", got)
	}
}
