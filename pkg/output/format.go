// Package output provides utilities for formatting and displaying valuation
// results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/dcf-forecast/internal/valuation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result valuation.Result) {
	p := message.NewPrinter(language.English)
	fmt.Printf("   t | Cashflow        | Unit DCF        | Sum of DCF\n")
	fmt.Printf("____ | _______________ | _______________ | __________\n")
	for _, record := range result.Records {
		_, _ = p.Printf("%4d | %15.4f | %15.4f | %.4f\n",
			record.Period, record.Cashflow, record.DiscountedUnit, record.CumulativeDiscounted)
	}
	_, _ = p.Printf("\nTerminal Value: %.4f\n", result.TerminalValue)
	_, _ = p.Printf("DCF Result: %.4f\n", result.TotalValue)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result valuation.Result) {
	fmt.Print(CsvString(result))
}

// CsvString renders the valuation as CSV.
func CsvString(result valuation.Result) string {
	var b strings.Builder
	b.WriteString(`"t","cashflow","unit dcf","sum of dcf"` + "\n")
	for _, record := range result.Records {
		fmt.Fprintf(&b, `"%d","%v","%v","%v"`+"\n",
			record.Period, record.Cashflow, record.DiscountedUnit, record.CumulativeDiscounted)
	}
	fmt.Fprintf(&b, `"terminal value","%v"`+"\n", result.TerminalValue)
	fmt.Fprintf(&b, `"total value","%v"`+"\n", result.TotalValue)
	return b.String()
}
