package domain

import (
	"fmt"
	"math"
)

// MotionState is a body's motion class (avastha).
type MotionState int

// Motion states ordered from retrograde through very fast direct motion.
const (
	Retrograde MotionState = iota
	Stationary
	VerySlow
	Slow
	Normal
	Fast
	VeryFast
)

var motionStateNames = [...]string{"Retrograde", "Stationary", "VerySlow", "Slow", "Normal", "Fast", "VeryFast"}

var motionStateSanskrit = [...]string{"Vakra", "Vikala", "Mandatara", "Manda", "Sama", "Chara", "Atichara"}

// Chesta bala on the 0..60 shashtiamsa scale. Both extremes score high.
var motionStrength = [...]float64{60, 30, 7.5, 15, 30, 45, 60}

// String returns the state tag.
func (s MotionState) String() string {
	if s < Retrograde || s > VeryFast {
		return fmt.Sprintf("MotionState(%d)", int(s))
	}
	return motionStateNames[s]
}

// Sanskrit returns the classical avastha name.
func (s MotionState) Sanskrit() string {
	if s < Retrograde || s > VeryFast {
		return ""
	}
	return motionStateSanskrit[s]
}

// Strength returns the chesta bala for the state.
func (s MotionState) Strength() float64 {
	if s < Retrograde || s > VeryFast {
		return 0
	}
	return motionStrength[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s MotionState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MaxStrength is the top of the strength scale.
const MaxStrength = 60.0

// StrengthLevel labels a chesta bala value.
func StrengthLevel(strength float64) string {
	switch {
	case strength >= 45:
		return "Excellent"
	case strength >= 30:
		return "Good"
	case strength >= 15:
		return "Average"
	default:
		return "Weak"
	}
}

// SpeedBands are a body's speed thresholds in degrees per day, applied to |speed|.
type SpeedBands struct {
	StationaryBelow float64 `json:"stationary_below"`
	VerySlowBelow   float64 `json:"very_slow_below"`
	SlowBelow       float64 `json:"slow_below"`
	FastAbove       float64 `json:"fast_above"`
	VeryFastAbove   float64 `json:"very_fast_above"`
}

// Validate checks the thresholds are ordered.
func (b SpeedBands) Validate() error {
	if !(b.StationaryBelow >= 0 &&
		b.StationaryBelow <= b.VerySlowBelow &&
		b.VerySlowBelow <= b.SlowBelow &&
		b.SlowBelow <= b.FastAbove &&
		b.FastAbove <= b.VeryFastAbove) {
		return fmt.Errorf("speed bands out of order: %+v", b)
	}
	return nil
}

// DefaultSpeedBands returns the per-body thresholds used by the service.
func DefaultSpeedBands() map[Body]SpeedBands {
	nodes := SpeedBands{StationaryBelow: 0.002, VerySlowBelow: 0.01, SlowBelow: 0.03, FastAbove: 0.06, VeryFastAbove: 0.1}
	return map[Body]SpeedBands{
		Sun:     {StationaryBelow: 0.05, VerySlowBelow: 0.9, SlowBelow: 0.95, FastAbove: 1.05, VeryFastAbove: 1.1},
		Moon:    {StationaryBelow: 0.05, VerySlowBelow: 10.0, SlowBelow: 11.0, FastAbove: 15.0, VeryFastAbove: 16.0},
		Mercury: {StationaryBelow: 0.05, VerySlowBelow: 0.3, SlowBelow: 0.5, FastAbove: 2.0, VeryFastAbove: 2.5},
		Venus:   {StationaryBelow: 0.05, VerySlowBelow: 0.3, SlowBelow: 0.5, FastAbove: 1.5, VeryFastAbove: 2.0},
		Mars:    {StationaryBelow: 0.02, VerySlowBelow: 0.2, SlowBelow: 0.3, FastAbove: 0.8, VeryFastAbove: 1.0},
		Jupiter: {StationaryBelow: 0.005, VerySlowBelow: 0.03, SlowBelow: 0.05, FastAbove: 0.15, VeryFastAbove: 0.2},
		Saturn:  {StationaryBelow: 0.002, VerySlowBelow: 0.01, SlowBelow: 0.02, FastAbove: 0.08, VeryFastAbove: 0.1},
		Rahu:    nodes,
		Ketu:    nodes,
	}
}

// Motion is the classification of one body's speed.
type Motion struct {
	Body           Body        `json:"body"`
	SpeedDegPerDay float64     `json:"speed_deg_per_day"`
	State          MotionState `json:"state"`
	Avastha        string      `json:"avastha"`
	Strength       float64     `json:"strength"`
	Level          string      `json:"level"`
}

// MotionClassifier maps signed speeds to motion states using per-body bands.
type MotionClassifier struct {
	bands map[Body]SpeedBands
}

// NewMotionClassifier validates and copies the band table.
func NewMotionClassifier(bands map[Body]SpeedBands) (*MotionClassifier, error) {
	table := make(map[Body]SpeedBands, len(bands))
	for body, b := range bands {
		if !body.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownBody, int(body))
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", body, err)
		}
		table[body] = b
	}
	return &MotionClassifier{bands: table}, nil
}

// Bands returns the thresholds for body.
func (c *MotionClassifier) Bands(body Body) (SpeedBands, bool) {
	b, ok := c.bands[body]
	return b, ok
}

// Classify maps a signed speed in degrees per day to a motion state.
// Negative speed is always retrograde.
func (c *MotionClassifier) Classify(body Body, speedDegPerDay float64) (Motion, error) {
	b, ok := c.bands[body]
	if !ok {
		return Motion{}, fmt.Errorf("%w: no speed bands for %s", ErrUnknownBody, body)
	}
	if math.IsNaN(speedDegPerDay) || math.IsInf(speedDegPerDay, 0) {
		return Motion{}, fmt.Errorf("%w: non-finite speed for %s", ErrEphemerisUnavailable, body)
	}

	state := classifySpeed(b, speedDegPerDay)
	return Motion{
		Body:           body,
		SpeedDegPerDay: speedDegPerDay,
		State:          state,
		Avastha:        state.Sanskrit(),
		Strength:       state.Strength(),
		Level:          StrengthLevel(state.Strength()),
	}, nil
}

func classifySpeed(b SpeedBands, speed float64) MotionState {
	abs := math.Abs(speed)
	switch {
	case speed < 0:
		return Retrograde
	case abs < b.StationaryBelow:
		return Stationary
	case abs > b.VeryFastAbove:
		return VeryFast
	case abs > b.FastAbove:
		return Fast
	case abs < b.VerySlowBelow:
		return VerySlow
	case abs < b.SlowBelow:
		return Slow
	default:
		return Normal
	}
}

// Direction returns -1 for retrograde, 0 for no motion, 1 for direct motion.
// It is the sampled function used to locate stations.
func Direction(speedDegPerDay float64) int {
	switch {
	case speedDegPerDay < 0:
		return -1
	case speedDegPerDay > 0:
		return 1
	default:
		return 0
	}
}
