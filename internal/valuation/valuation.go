// Package valuation reduces a cash-flow series into discounted values and a
// Gordon-growth terminal value.
package valuation

// Record is one period's discounted view of the cash-flow series.
type Record struct {
	Period               uint    `json:"period"`
	Cashflow             float64 `json:"cashflow"`
	DiscountedUnit       float64 `json:"discountedUnit"`
	CumulativeDiscounted float64 `json:"cumulativeDiscounted"`
}

// Result is the complete valuation of a cash-flow series.
type Result struct {
	Records       []Record `json:"records"`
	TerminalValue float64  `json:"terminalValue"`
	TotalValue    float64  `json:"totalValue"`
}

// Reduce folds the series into per-period discounted records plus the
// terminal value of the implicit infinite-horizon tail. The discount factor
// starts at 1.0 and is advanced after each period, so period 0 is
// undiscounted. The terminal value divides by discount - growth without a
// guard; a growth at or above the discount rate yields +/-Inf or NaN,
// propagated as-is.
func Reduce(cashflow []float64, discount, growth float64) Result {
	records := make([]Record, 0, len(cashflow))
	factor := 1.0
	sum := 0.0
	for i, c := range cashflow {
		unit := c / factor
		sum += unit
		factor *= discount
		records = append(records, Record{
			Period:               uint(i),
			Cashflow:             c,
			DiscountedUnit:       unit,
			CumulativeDiscounted: sum,
		})
	}

	result := Result{Records: records}
	if len(records) > 0 {
		last := records[len(records)-1]
		result.TerminalValue = (last.Cashflow * growth) / (discount - growth)
		result.TotalValue = result.TerminalValue + last.CumulativeDiscounted
	}
	return result
}
