package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/dcf-forecast/internal/document"
	"github.com/iwvelando/dcf-forecast/internal/projection"
	"go.uber.org/zap"
)

func testDoc() *document.Document {
	d := document.Default()
	d.Discount = "1.1"
	d.Rows = []document.Row{{End: "3", Expr: "5"}}
	return &d
}

func TestProjectComputesSeriesAndValuation(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	series, result, err := eng.Project(testDoc())
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	expected := []float64{5, 5, 5, 5}
	if !reflect.DeepEqual(series, expected) {
		t.Errorf("series = %v, expected %v", series, expected)
	}
	if len(result.Records) != 4 {
		t.Errorf("len(Records) = %d, expected 4", len(result.Records))
	}
	want := (5 * 1.02) / (1.1 - 1.02)
	if math.Abs(result.TerminalValue-want) > 1e-9 {
		t.Errorf("TerminalValue = %v, expected %v", result.TerminalValue, want)
	}
}

func TestProjectIdempotentThroughCache(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	doc := testDoc()

	series1, result1, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	series2, result2, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	// An unchanged document returns the identical cached pair.
	if &series1[0] != &series2[0] {
		t.Errorf("expected the cached series, got a recomputed one")
	}
	if result1 != result2 {
		t.Errorf("expected the cached valuation, got a recomputed one")
	}
}

func TestProjectRecomputesOnMutation(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	doc := testDoc()

	_, result1, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	doc.Rows[0].Expr = "6"
	_, result2, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if result1 == result2 {
		t.Errorf("expected a recompute after mutating the document")
	}
	if result2.Records[0].Cashflow != 6 {
		t.Errorf("Cashflow[0] = %v, expected 6", result2.Records[0].Cashflow)
	}
}

func TestInvalidateDropsCache(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	doc := testDoc()

	_, result1, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	eng.Invalidate()

	_, result2, err := eng.Project(doc)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if result1 == result2 {
		t.Errorf("expected fresh computation after Invalidate")
	}
	if !reflect.DeepEqual(*result1, *result2) {
		t.Errorf("recomputed valuation differs: %+v vs %+v", result1, result2)
	}
}

func TestProjectOrderingViolationLeavesCacheUnset(t *testing.T) {
	eng := NewEngine(zap.NewNop())

	good := testDoc()
	if _, _, err := eng.Project(good); err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	bad := testDoc()
	bad.Rows = []document.Row{{End: "1", Expr: "5"}, {End: "0", Expr: "1"}}
	_, result, err := eng.Project(bad)
	if !errors.Is(err, projection.ErrPeriodOrder) {
		t.Fatalf("Project() error = %v, expected ErrPeriodOrder", err)
	}
	if result != nil {
		t.Errorf("Project() result = %+v, expected none", result)
	}

	// The failed document also evicted the previous good pair.
	if eng.result != nil {
		t.Errorf("cache still set after a rejected projection")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := testDoc()
	fp := Fingerprint(base)

	mutations := []func(*document.Document){
		func(d *document.Document) { d.Rows[0].End = "4" },
		func(d *document.Document) { d.Rows[0].Expr = "5.0" },
		func(d *document.Document) { d.Growth = "1.03" },
		func(d *document.Document) { d.Discount = "1.2" },
		func(d *document.Document) { d.ODEStepSize = "0.1" },
		func(d *document.Document) { d.UseLogScale = true },
	}

	for i, mutate := range mutations {
		mutated := testDoc()
		mutate(mutated)
		if Fingerprint(mutated) == fp {
			t.Errorf("mutation %d did not change the fingerprint", i)
		}
	}

	if Fingerprint(testDoc()) != fp {
		t.Errorf("fingerprint not stable for identical documents")
	}
}

func TestChartPoints(t *testing.T) {
	doc := testDoc()
	series := []float64{100, 0.5, -3, 1000}

	raw := ChartPoints(doc, series)
	if !reflect.DeepEqual(raw, series) {
		t.Errorf("raw chart points = %v, expected %v", raw, series)
	}

	doc.UseLogScale = true
	scaled := ChartPoints(doc, series)
	expected := []float64{2, 0, 0, 3}
	if len(scaled) != len(expected) {
		t.Fatalf("log chart points = %v, expected %v", scaled, expected)
	}
	for i := range expected {
		if math.Abs(scaled[i]-expected[i]) > 1e-12 {
			t.Errorf("log chart point[%d] = %v, expected %v", i, scaled[i], expected[i])
		}
	}
}
