package payroll

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestComputeTaxZero(t *testing.T) {
	if got := ComputeTax(0, DefaultBands()); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestComputeTaxClampsNegative(t *testing.T) {
	if got := ComputeTax(-50000, DefaultBands()); got != 0 {
		t.Fatalf("expected 0 for negative taxable, got %v", got)
	}
	if charges := BandBreakdown(-1, DefaultBands()); len(charges) != 0 {
		t.Fatalf("expected no band charges, got %+v", charges)
	}
}

func TestComputeTaxReferenceAmount(t *testing.T) {
	got := ComputeTax(863200, DefaultBands())
	if !approxEqual(got, 93480) {
		t.Fatalf("expected 93480, got %v", got)
	}
	charges := BandBreakdown(863200, DefaultBands())
	if len(charges) != 3 {
		t.Fatalf("expected 3 bands touched, got %d", len(charges))
	}
	if charges[2].Consumed != 263200 {
		t.Fatalf("expected third band to consume 263200, got %v", charges[2].Consumed)
	}
}

func TestComputeTaxTopBand(t *testing.T) {
	// 21000 + 33000 + 75000 + 95000 + 336000 on the finite bands
	want := 560000 + 0.24*1800000
	got := ComputeTax(5000000, DefaultBands())
	if !approxEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBandCoverage(t *testing.T) {
	amounts := []float64{0, 1, 299999.99, 300000, 450000, 1100000, 3200000, 3200001, 25000000}
	for _, amount := range amounts {
		var consumed float64
		for _, charge := range BandBreakdown(amount, DefaultBands()) {
			consumed += charge.Consumed
		}
		if !approxEqual(consumed, amount) {
			t.Fatalf("amount %v: consumed %v", amount, consumed)
		}
	}
}

func TestComputeTaxMonotonic(t *testing.T) {
	prev := -1.0
	for amount := 0.0; amount <= 6000000; amount += 25000 {
		got := ComputeTax(amount, DefaultBands())
		if got < prev {
			t.Fatalf("tax decreased at %v: %v < %v", amount, got, prev)
		}
		prev = got
	}
}

func TestComputeTaxLastBandUnbounded(t *testing.T) {
	bands := []Band{{Width: 100, Rate: 0.1}, {Width: 100, Rate: 0.2}}
	got := ComputeTax(1000, bands)
	if !approxEqual(got, 190) {
		t.Fatalf("expected 190, got %v", got)
	}
}

func TestComputeTaxNoBands(t *testing.T) {
	if got := ComputeTax(1000, nil); got != 0 {
		t.Fatalf("expected 0 without bands, got %v", got)
	}
}
