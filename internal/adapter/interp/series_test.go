package interp

import (
	"errors"
	"math"
	"testing"
)

// TestLinearInterpolate_Midpoint tests interpolation halfway along a segment
func TestLinearInterpolate_Midpoint(t *testing.T) {
	result, err := LinearInterpolate(Segment{X0: 0, X1: 2, Y0: 1, Y1: 5}, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-3) > 1e-9 {
		t.Errorf("Midpoint: expected 3, got %.10f", result)
	}
}

// TestLinearInterpolate_Endpoints tests that endpoints return exact values
func TestLinearInterpolate_Endpoints(t *testing.T) {
	seg := Segment{X0: 10, X1: 20, Y0: -4, Y1: 8}

	tests := []struct {
		x, expected float64
		name        string
	}{
		{10, -4, "left"},
		{20, 8, "right"},
	}
	for _, tt := range tests {
		result, err := LinearInterpolate(seg, tt.x)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s endpoint: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}
}

// TestLinearInterpolate_InvalidSegment tests error handling
func TestLinearInterpolate_InvalidSegment(t *testing.T) {
	if _, err := LinearInterpolate(Segment{X0: 1, X1: 1}, 1); err == nil {
		t.Error("Expected error for zero-width segment")
	}
	if _, err := LinearInterpolate(Segment{X0: 0, X1: 1}, 2); err == nil {
		t.Error("Expected error for x outside segment")
	}
}

// TestAngularInterpolate_WrapsThroughZero tests the shorter-arc rule
func TestAngularInterpolate_WrapsThroughZero(t *testing.T) {
	tests := []struct {
		seg      Segment
		x        float64
		expected float64
		name     string
	}{
		{Segment{X0: 0, X1: 1, Y0: 359, Y1: 1}, 0.5, 0, "forward across 0"},
		{Segment{X0: 0, X1: 1, Y0: 359, Y1: 1}, 0.25, 359.5, "forward before 0"},
		{Segment{X0: 0, X1: 1, Y0: 1, Y1: 359}, 0.75, 359.5, "backward across 0"},
		{Segment{X0: 0, X1: 1, Y0: 100, Y1: 110}, 0.5, 105, "no wrap"},
	}
	for _, tt := range tests {
		result, err := AngularInterpolate(tt.seg, tt.x)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}
}

// TestSeries_At tests lookups across several samples
func TestSeries_At(t *testing.T) {
	s, err := NewSeries([]float64{0, 1, 2, 3}, []float64{350, 5, 20, 35}, true)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	tests := []struct {
		x, expected float64
	}{
		{0, 350},
		{0.5, 357.5},
		{1, 5},
		{2.5, 27.5},
		{3, 35},
	}
	for _, tt := range tests {
		result, err := s.At(tt.x)
		if err != nil {
			t.Fatalf("At(%v): unexpected error: %v", tt.x, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At(%v): expected %.10f, got %.10f", tt.x, tt.expected, result)
		}
	}

	if _, err := s.At(3.5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("At(3.5): expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.At(-0.1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("At(-0.1): expected ErrOutOfRange, got %v", err)
	}
}

// TestSeries_Linear tests a non-angular series
func TestSeries_Linear(t *testing.T) {
	s, err := NewSeries([]float64{10, 20}, []float64{1.0, 0.9}, false)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	result, err := s.At(15)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if math.Abs(result-0.95) > 1e-9 {
		t.Errorf("expected 0.95, got %.10f", result)
	}
}

// TestNewSeries_Validation tests input validation
func TestNewSeries_Validation(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"too few samples", []float64{1}, []float64{1}},
		{"length mismatch", []float64{1, 2}, []float64{1}},
		{"not increasing", []float64{1, 1}, []float64{1, 2}},
		{"non-finite value", []float64{1, 2}, []float64{math.NaN(), 2}},
	}
	for _, tt := range tests {
		if _, err := NewSeries(tt.x, tt.y, false); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

// TestNewSeries_CopiesInput tests that the series is isolated from caller slices
func TestNewSeries_CopiesInput(t *testing.T) {
	x := []float64{0, 1}
	y := []float64{0, 10}
	s, err := NewSeries(x, y, false)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	y[1] = 1000

	result, _ := s.At(1)
	if result != 10 {
		t.Errorf("expected 10, got %v", result)
	}
}
