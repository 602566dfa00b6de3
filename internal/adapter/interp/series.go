package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrOutOfRange is returned when a lookup falls outside the sampled span.
var ErrOutOfRange = errors.New("outside sampled range")

// Segment is one interval of a sampled series.
type Segment struct {
	X0, X1 float64 // Interval boundaries (e.g., Julian Days).
	Y0, Y1 float64 // Values at X0 and X1.
}

// LinearInterpolate interpolates within a segment.
//
//	f(x) ≈ (1-t)·Y0 + t·Y1,  t = (x - X0) / (X1 - X0)
func LinearInterpolate(seg Segment, x float64) (float64, error) {
	if seg.X1 <= seg.X0 {
		return 0, fmt.Errorf("invalid segment: X1 must be > X0")
	}

	const epsilon = 1e-9
	if x < seg.X0-epsilon || x > seg.X1+epsilon {
		return 0, fmt.Errorf("x %.6f is outside segment [%.6f, %.6f]", x, seg.X0, seg.X1)
	}

	t := (x - seg.X0) / (seg.X1 - seg.X0)
	t = math.Max(0, math.Min(1, t))
	return (1-t)*seg.Y0 + t*seg.Y1, nil
}

// AngularInterpolate interpolates degrees along the shorter arc between Y0
// and Y1, so 359° → 1° passes through 0° rather than 180°. The result is in
// [0, 360).
func AngularInterpolate(seg Segment, x float64) (float64, error) {
	d := math.Mod(seg.Y1-seg.Y0, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}

	v, err := LinearInterpolate(Segment{X0: seg.X0, X1: seg.X1, Y0: seg.Y0, Y1: seg.Y0 + d}, x)
	if err != nil {
		return 0, err
	}
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	if v >= 360 {
		v = 0
	}
	return v, nil
}

// Series is a sampled function of one variable.
type Series struct {
	X       []float64 // Sample positions, strictly increasing.
	Y       []float64 // Values at X.
	Angular bool      // Y are angles in degrees.
}

// NewSeries validates the samples and returns a Series that owns copies of them.
func NewSeries(x, y []float64, angular bool) (*Series, error) {
	s := &Series{
		X:       append([]float64(nil), x...),
		Y:       append([]float64(nil), y...),
		Angular: angular,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the series is usable for interpolation.
func (s *Series) Validate() error {
	if len(s.X) < 2 {
		return fmt.Errorf("series must have at least 2 samples, got %d", len(s.X))
	}
	if len(s.Y) != len(s.X) {
		return fmt.Errorf("number of values (%d) must match sample positions (%d)", len(s.Y), len(s.X))
	}
	for i := 1; i < len(s.X); i++ {
		if s.X[i] <= s.X[i-1] {
			return fmt.Errorf("sample positions must be strictly increasing (index %d)", i)
		}
	}
	for i, v := range s.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %d is not finite", i)
		}
	}
	return nil
}

// Span returns the first and last sample positions.
func (s *Series) Span() (float64, float64) {
	return s.X[0], s.X[len(s.X)-1]
}

// At interpolates the series at x. Positions outside the sampled span
// return ErrOutOfRange.
func (s *Series) At(x float64) (float64, error) {
	first, last := s.Span()
	if math.IsNaN(x) || x < first || x > last {
		return 0, fmt.Errorf("%w: %.6f not in [%.6f, %.6f]", ErrOutOfRange, x, first, last)
	}

	// Index of the first sample >= x.
	i := sort.SearchFloat64s(s.X, x)
	if i == 0 {
		i = 1
	}

	seg := Segment{X0: s.X[i-1], X1: s.X[i], Y0: s.Y[i-1], Y1: s.Y[i]}
	if s.Angular {
		return AngularInterpolate(seg, x)
	}
	return LinearInterpolate(seg, x)
}
