// Package document defines the user-edited input document and its JSON
// persistence. The serialized field names are stable for compatibility with
// previously saved documents.
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/dcf-forecast/pkg/constants"
	"github.com/iwvelando/dcf-forecast/pkg/mathutil"
)

// Row is one projection segment: the inclusive end of its period range and
// the formula governing it. Both fields are free text exactly as edited.
type Row struct {
	End  string `json:"end"`
	Expr string `json:"expr"`
}

// Document holds the full input state for one projection.
type Document struct {
	Rows        []Row  `json:"rows"`
	Growth      string `json:"growth"`
	Discount    string `json:"discount"`
	ODEStepSize string `json:"ode_step_size"`
	UseLogScale bool   `json:"use_log_scale"`
}

// Default returns a document with the standard starting parameters.
func Default() Document {
	return Document{
		Rows:        []Row{},
		Growth:      constants.DefaultGrowth,
		Discount:    constants.DefaultDiscount,
		ODEStepSize: constants.DefaultODEStepSize,
	}
}

// Load reads a JSON document from the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return LoadBytes(data)
}

// LoadReader decodes a JSON document from a reader.
func LoadReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes a JSON document. Absent fields keep their defaults.
func LoadBytes(data []byte) (*Document, error) {
	doc := Default()
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// Save writes the document as JSON to the given path.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Validate performs general validation of the document and returns warnings.
// Warnings never block a projection; the one fatal condition (a non-monotonic
// period boundary) is also reported here so it can be surfaced before the
// engine rejects the document.
func (d *Document) Validate() []string {
	var warnings []string

	prev := constants.PeriodFallback
	for i, row := range d.Rows {
		end := mathutil.ParsePeriodOrDefault(row.End, constants.PeriodFallback)
		if end < prev {
			warnings = append(warnings, fmt.Sprintf("Row %d ends at period %d, before the previous boundary %d - the projection will be rejected", i+1, end, prev))
		}
		if strings.TrimSpace(row.Expr) == "" {
			warnings = append(warnings, fmt.Sprintf("Row %d has an empty expression - its periods will be zero-filled", i+1))
		}
		prev = end
	}

	discount := mathutil.ParseFloatOrDefault(d.Discount, constants.RateFallback)
	growth := mathutil.ParseFloatOrDefault(d.Growth, constants.RateFallback)
	if len(d.Rows) > 0 && discount <= growth {
		warnings = append(warnings, "Terminal growth meets or exceeds the discount rate - the terminal value will not be finite")
	}

	return warnings
}
