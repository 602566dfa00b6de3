// Package analytic computes positions from closed-form series: a
// low-precision solar theory, the principal terms of the lunar theory,
// Keplerian elements for the planets and the lunar node. Accuracy is of the
// order of 0.01° for the Sun and Moon and a few arcminutes for the planets,
// which is well inside the span of any panchanga element.
package analytic

import (
	"context"
	"fmt"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/domain"
)

// Source is an in-process ephemeris. It is stateless and safe for concurrent use.
type Source struct {
	ayanamsa Ayanamsa
	node     NodeMode
}

// Option configures a Source.
type Option func(*Source)

// WithAyanamsa selects the sidereal offset model.
func WithAyanamsa(a Ayanamsa) Option {
	return func(s *Source) { s.ayanamsa = a }
}

// WithNodeMode selects the true or mean lunar node.
func WithNodeMode(m NodeMode) Option {
	return func(s *Source) { s.node = m }
}

// New creates an analytic source. Defaults are Lahiri and the true node.
func New(opts ...Option) *Source {
	s := &Source{ayanamsa: Lahiri, node: TrueNode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements ephemeris.Source.
func (s *Source) Name() string {
	return fmt.Sprintf("analytic(%s,%s)", s.ayanamsa, s.node)
}

// Ayanamsa returns the configured sidereal model.
func (s *Source) Ayanamsa() Ayanamsa { return s.ayanamsa }

// NodeMode returns the configured node mode.
func (s *Source) NodeMode() NodeMode { return s.node }

// Position implements ephemeris.Source. Longitudes are sidereal.
func (s *Source) Position(ctx context.Context, jd float64, body domain.Body) (ephemeris.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return ephemeris.Coordinates{}, err
	}

	c, err := s.Tropical(jd, body)
	if err != nil {
		return ephemeris.Coordinates{}, err
	}
	c.Longitude = domain.Normalize(c.Longitude - s.ayanamsa.Degrees(jd))
	return c, nil
}

// Tropical returns coordinates referred to the equinox of date.
func (s *Source) Tropical(jd float64, body domain.Body) (ephemeris.Coordinates, error) {
	T := domain.JulianCenturies(jd)

	switch body {
	case domain.Sun:
		sun := domain.SolarPosition(jd)
		return ephemeris.Coordinates{Longitude: sun.Longitude, Distance: sun.Distance}, nil
	case domain.Moon:
		lon, lat, dist := moonPosition(T)
		return ephemeris.Coordinates{Longitude: lon, Latitude: lat, Distance: dist}, nil
	case domain.Rahu:
		return ephemeris.Coordinates{Longitude: nodeLongitude(T, s.node)}, nil
	}

	lon, lat, dist, ok := planetPosition(body, T)
	if !ok {
		return ephemeris.Coordinates{}, fmt.Errorf("%w: %s", domain.ErrUnknownBody, body)
	}
	return ephemeris.Coordinates{Longitude: lon, Latitude: lat, Distance: dist}, nil
}
