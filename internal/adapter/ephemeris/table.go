package ephemeris

import (
	"context"
	"fmt"
	"time"

	"go.ngs.io/panchanga-api/internal/adapter/interp"
	"go.ngs.io/panchanga-api/internal/domain"
)

// TabulatedBodies are the bodies stored in ephemeris tables. Ketu is derived.
var TabulatedBodies = []domain.Body{
	domain.Sun, domain.Moon, domain.Mercury, domain.Venus,
	domain.Mars, domain.Jupiter, domain.Saturn, domain.Rahu,
}

// Table is a sampled ephemeris.
type Table struct {
	Times  []float64 // Julian Days (UTC), strictly increasing.
	Bodies map[domain.Body][]Coordinates
	Attrs  map[string]string
}

// Tabulate samples src every step over [start, end].
func Tabulate(ctx context.Context, src Source, start, end time.Time, step time.Duration) (*Table, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %s", step)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	n := int(end.Sub(start)/step) + 1
	table := &Table{
		Times:  make([]float64, 0, n),
		Bodies: make(map[domain.Body][]Coordinates, len(TabulatedBodies)),
		Attrs:  map[string]string{"source": src.Name()},
	}
	for _, body := range TabulatedBodies {
		table.Bodies[body] = make([]Coordinates, 0, n)
	}

	for t := start; !t.After(end); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		jd := domain.MustInstant(t).JulianDay()
		table.Times = append(table.Times, jd)
		for _, body := range TabulatedBodies {
			c, err := src.Position(ctx, jd, body)
			if err != nil {
				return nil, fmt.Errorf("tabulate %s at %s: %w", body, t.Format(time.RFC3339), err)
			}
			table.Bodies[body] = append(table.Bodies[body], c)
		}
	}
	return table, nil
}

// BodySeries interpolates one body's tabulated coordinates.
type BodySeries struct {
	Longitude *interp.Series
	Latitude  *interp.Series
	Distance  *interp.Series
}

// NewBodySeries builds interpolators from parallel sample arrays.
func NewBodySeries(times []float64, coords []Coordinates) (*BodySeries, error) {
	if len(coords) != len(times) {
		return nil, fmt.Errorf("%d samples for %d times", len(coords), len(times))
	}
	lon := make([]float64, len(coords))
	lat := make([]float64, len(coords))
	dist := make([]float64, len(coords))
	for i, c := range coords {
		lon[i], lat[i], dist[i] = c.Longitude, c.Latitude, c.Distance
	}

	var s BodySeries
	var err error
	if s.Longitude, err = interp.NewSeries(times, lon, true); err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if s.Latitude, err = interp.NewSeries(times, lat, false); err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	if s.Distance, err = interp.NewSeries(times, dist, false); err != nil {
		return nil, fmt.Errorf("distance: %w", err)
	}
	return &s, nil
}

// At interpolates all three coordinates at jd. Instants outside the table
// return ErrEphemerisUnavailable.
func (s *BodySeries) At(jd float64) (Coordinates, error) {
	lon, err := s.Longitude.At(jd)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %w", domain.ErrEphemerisUnavailable, err)
	}
	lat, err := s.Latitude.At(jd)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %w", domain.ErrEphemerisUnavailable, err)
	}
	dist, err := s.Distance.At(jd)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %w", domain.ErrEphemerisUnavailable, err)
	}
	return Coordinates{Longitude: lon, Latitude: lat, Distance: dist}, nil
}
