// Package ephemeris turns an ephemeris source into per-body angular
// positions with speeds.
package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/panchanga-api/internal/domain"
)

const tracerName = "go.ngs.io/panchanga-api/internal/adapter/ephemeris"

// DefaultSpeedStep is the half-width of the central difference used for speeds.
const DefaultSpeedStep = time.Hour

// Coordinates is a source's answer for one body at one instant:
// sidereal geocentric ecliptic coordinates in degrees, distance in AU.
type Coordinates struct {
	Longitude float64
	Latitude  float64
	Distance  float64
}

// Source provides positions. Implementations are not asked for Ketu.
type Source interface {
	// Name identifies the source in logs and responses.
	Name() string

	// Position returns coordinates of body at Julian Day jd (UTC).
	Position(ctx context.Context, jd float64, body domain.Body) (Coordinates, error)
}

// Adapter wraps a Source with Ketu derivation, speeds and error mapping.
// It is safe for concurrent use if the Source is.
type Adapter struct {
	source    Source
	speedStep time.Duration
	tracer    trace.Tracer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSpeedStep sets the central-difference half-width.
func WithSpeedStep(d time.Duration) Option {
	return func(a *Adapter) { a.speedStep = d }
}

// New creates an Adapter around src.
func New(src Source, opts ...Option) (*Adapter, error) {
	if src == nil {
		return nil, fmt.Errorf("ephemeris source is required")
	}
	a := &Adapter{
		source:    src,
		speedStep: DefaultSpeedStep,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.speedStep <= 0 {
		return nil, fmt.Errorf("speed step must be positive, got %s", a.speedStep)
	}
	return a, nil
}

// SourceName returns the name of the underlying source.
func (a *Adapter) SourceName() string { return a.source.Name() }

// Longitude returns only the sidereal longitude of body at t. It skips the
// speed computation and is what boundary samplers call.
func (a *Adapter) Longitude(ctx context.Context, t time.Time, body domain.Body) (float64, error) {
	c, err := a.coordinates(ctx, t, body)
	if err != nil {
		return 0, err
	}
	return c.Longitude, nil
}

// PositionOf returns the position and speed of body at t.
func (a *Adapter) PositionOf(ctx context.Context, t time.Time, body domain.Body) (domain.AngularPosition, error) {
	if body == domain.Ketu {
		rahu, err := a.PositionOf(ctx, t, domain.Rahu)
		if err != nil {
			return domain.AngularPosition{}, err
		}
		return domain.MirrorNode(rahu), nil
	}

	now, err := a.coordinates(ctx, t, body)
	if err != nil {
		return domain.AngularPosition{}, err
	}
	speed, err := a.speed(ctx, t, body)
	if err != nil {
		return domain.AngularPosition{}, err
	}

	return domain.AngularPosition{
		Body:           body,
		Longitude:      now.Longitude,
		Latitude:       now.Latitude,
		Distance:       now.Distance,
		SpeedDegPerDay: speed,
	}, nil
}

// Speed returns the signed longitudinal speed of body at t in degrees per day.
func (a *Adapter) Speed(ctx context.Context, t time.Time, body domain.Body) (float64, error) {
	if body == domain.Ketu {
		body = domain.Rahu
	}
	return a.speed(ctx, t, body)
}

// Positions looks up several bodies concurrently. Results keep the order of
// bodies; an empty list means every body.
func (a *Adapter) Positions(ctx context.Context, t time.Time, bodies ...domain.Body) ([]domain.AngularPosition, error) {
	if len(bodies) == 0 {
		bodies = domain.AllBodies()
	}

	ctx, span := a.tracer.Start(ctx, "ephemeris.Positions", trace.WithAttributes(
		attribute.String("ephemeris.source", a.source.Name()),
		attribute.Int("ephemeris.bodies", len(bodies)),
		attribute.String("ephemeris.time", t.UTC().Format(time.RFC3339)),
	))
	defer span.End()

	out := make([]domain.AngularPosition, len(bodies))
	g, gctx := errgroup.WithContext(ctx)
	for i, body := range bodies {
		g.Go(func() error {
			p, err := a.PositionOf(gctx, t, body)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

func (a *Adapter) speed(ctx context.Context, t time.Time, body domain.Body) (float64, error) {
	before, err := a.coordinates(ctx, t.Add(-a.speedStep), body)
	if err != nil {
		return 0, err
	}
	after, err := a.coordinates(ctx, t.Add(a.speedStep), body)
	if err != nil {
		return 0, err
	}
	days := (2 * a.speedStep).Hours() / 24
	return domain.SignedDelta(before.Longitude, after.Longitude) / days, nil
}

// coordinates queries the source and normalizes its answer. Ketu is derived
// from Rahu.
func (a *Adapter) coordinates(ctx context.Context, t time.Time, body domain.Body) (Coordinates, error) {
	if !body.Valid() {
		return Coordinates{}, fmt.Errorf("%w: %d", domain.ErrUnknownBody, int(body))
	}
	if t.IsZero() {
		return Coordinates{}, fmt.Errorf("%w: zero time", domain.ErrInvalidTimestamp)
	}
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	mirror := body == domain.Ketu
	if mirror {
		body = domain.Rahu
	}

	jd := domain.MustInstant(t).JulianDay()
	c, err := a.source.Position(ctx, jd, body)
	if err != nil {
		return Coordinates{}, mapSourceError(ctx, err, body, t)
	}
	if !finite(c.Longitude) || !finite(c.Latitude) || !finite(c.Distance) {
		return Coordinates{}, fmt.Errorf("%w: %s returned non-finite coordinates for %s",
			domain.ErrEphemerisUnavailable, a.source.Name(), body)
	}

	c.Longitude = domain.Normalize(c.Longitude)
	if mirror {
		m := domain.MirrorNode(domain.AngularPosition{Longitude: c.Longitude, Latitude: c.Latitude, Distance: c.Distance})
		c = Coordinates{Longitude: m.Longitude, Latitude: m.Latitude, Distance: m.Distance}
	}
	return c, nil
}

// mapSourceError keeps cancellation and taxonomy errors intact and files
// everything else under ErrEphemerisUnavailable.
func mapSourceError(ctx context.Context, err error, body domain.Body, t time.Time) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	if errors.Is(err, domain.ErrEphemerisUnavailable) || errors.Is(err, domain.ErrUnknownBody) {
		return err
	}
	return fmt.Errorf("%w: %s at %s: %w", domain.ErrEphemerisUnavailable, body, t.UTC().Format(time.RFC3339), err)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
