package domain

import (
	"errors"
	"fmt"
	"time"
)

// Boundary search defaults.
const (
	DefaultStep          = time.Hour
	DefaultPrecision     = 2 * time.Minute
	DefaultMaxIterations = 64
	DefaultWindow        = 24 * time.Hour

	// maxChangesPerStep bounds how many transitions are resolved inside one
	// coarse interval.
	maxChangesPerStep = 16
)

// ElementKind names the discrete quantity a boundary belongs to.
type ElementKind string

// Element kinds searched by the service.
const (
	KindTithi     ElementKind = "tithi"
	KindNakshatra ElementKind = "nakshatra"
	KindYoga      ElementKind = "yoga"
	KindKarana    ElementKind = "karana"
	KindDirection ElementKind = "direction"
	KindHorizon   ElementKind = "horizon"
)

// Sampler evaluates a discrete-valued function of time.
type Sampler func(t time.Time) (int, error)

// BoundaryEvent marks the instant a discrete value changes. The new value
// holds for [Instant, End). End is nil for the last event of a window.
type BoundaryEvent struct {
	Kind    ElementKind `json:"kind"`
	Before  int         `json:"before"`
	After   int         `json:"after"`
	Instant time.Time   `json:"start"`
	End     *time.Time  `json:"end"`
}

// Finder locates transitions of a discrete function by coarse sampling
// followed by bisection. The zero value is not usable; see NewFinder.
type Finder struct {
	Step          time.Duration
	Precision     time.Duration
	MaxIterations int
	Window        time.Duration
}

// NewFinder returns a Finder with the default step, precision, iteration cap
// and a 24 hour window.
func NewFinder() Finder {
	return Finder{
		Step:          DefaultStep,
		Precision:     DefaultPrecision,
		MaxIterations: DefaultMaxIterations,
		Window:        DefaultWindow,
	}
}

// WithPrecision returns a copy of f using precision p.
func (f Finder) WithPrecision(p time.Duration) Finder {
	f.Precision = p
	return f
}

// WithWindow returns a copy of f searching a window of length w.
func (f Finder) WithWindow(w time.Duration) Finder {
	f.Window = w
	return f
}

// WithStep returns a copy of f sampling every s.
func (f Finder) WithStep(s time.Duration) Finder {
	f.Step = s
	return f
}

// Validate checks the finder configuration.
func (f Finder) Validate() error {
	if f.Step <= 0 {
		return fmt.Errorf("boundary step must be positive, got %s", f.Step)
	}
	if f.Precision < 0 {
		return fmt.Errorf("boundary precision must not be negative, got %s", f.Precision)
	}
	if f.MaxIterations <= 0 {
		return fmt.Errorf("boundary max iterations must be positive, got %d", f.MaxIterations)
	}
	if f.Window <= 0 {
		return fmt.Errorf("boundary window must be positive, got %s", f.Window)
	}
	return nil
}

// FindTransitions returns the ordered transitions of sample within
// [start, start+Window). A function that never changes yields no events.
// Intervals whose bisection does not converge are skipped. Only sampler
// errors are returned.
func (f Finder) FindTransitions(kind ElementKind, start time.Time, sample Sampler) ([]BoundaryEvent, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	end := start.Add(f.Window)
	events := make([]BoundaryEvent, 0)

	prevT := start
	prevV, err := sample(start)
	if err != nil {
		return nil, err
	}

	for t := start.Add(f.Step); ; t = t.Add(f.Step) {
		if t.After(end) {
			t = end
		}

		v, err := sample(t)
		if err != nil {
			return nil, err
		}

		if v != prevV {
			found, err := f.resolve(kind, prevT, prevV, t, v, sample)
			if err != nil {
				return nil, err
			}
			events = append(events, found...)
		}

		prevT, prevV = t, v
		if !t.Before(end) {
			break
		}
	}

	// The window is half-open.
	kept := events[:0]
	for _, e := range events {
		if e.Instant.Before(end) {
			kept = append(kept, e)
		}
	}

	return StitchEvents(kept), nil
}

// resolve bisects one coarse interval, continuing past each boundary until
// the value at hi is reached.
func (f Finder) resolve(kind ElementKind, lo time.Time, vLo int, hi time.Time, vHi int, sample Sampler) ([]BoundaryEvent, error) {
	var out []BoundaryEvent

	for i := 0; i < maxChangesPerStep; i++ {
		at, after, err := Bisect(lo, hi, vLo, sample, f.Precision, f.MaxIterations)
		if errors.Is(err, ErrBoundaryNonConvergent) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		out = append(out, BoundaryEvent{
			Kind:    kind,
			Before:  vLo,
			After:   after,
			Instant: at,
		})

		if after == vHi || !at.Before(hi) {
			break
		}
		lo, vLo = at, after
	}

	return out, nil
}

// Bisect narrows [lo, hi] around the first change away from vLo, where
// sample(lo) == vLo and sample(hi) != vLo. It returns the right edge of the
// final interval and the value there. When the interval cannot be narrowed
// below precision within maxIter steps it returns ErrBoundaryNonConvergent.
func Bisect(lo, hi time.Time, vLo int, sample Sampler, precision time.Duration, maxIter int) (time.Time, int, error) {
	vHi, err := sample(hi)
	if err != nil {
		return time.Time{}, 0, err
	}
	if vHi == vLo {
		return time.Time{}, 0, fmt.Errorf("%w: no change between %s and %s", ErrBoundaryNonConvergent,
			lo.Format(time.RFC3339), hi.Format(time.RFC3339))
	}

	for iter := 0; hi.Sub(lo) > precision; iter++ {
		if iter >= maxIter {
			return time.Time{}, 0, fmt.Errorf("%w after %d iterations", ErrBoundaryNonConvergent, maxIter)
		}

		mid := lo.Add(hi.Sub(lo) / 2)
		v, err := sample(mid)
		if err != nil {
			return time.Time{}, 0, err
		}
		if v == vLo {
			lo = mid
		} else {
			hi, vHi = mid, v
		}
	}

	return hi, vHi, nil
}

// StitchEvents sets each event's End to the next event's start. The last
// event keeps an open end.
func StitchEvents(events []BoundaryEvent) []BoundaryEvent {
	for i := range events {
		events[i].End = nil
		if i+1 < len(events) {
			next := events[i+1].Instant
			events[i].End = &next
		}
	}
	return events
}
