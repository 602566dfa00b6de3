// Package usecase validates requests and orchestrates the panchanga
// calculations over an ephemeris.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go.ngs.io/panchanga-api/internal/domain"
	"go.ngs.io/panchanga-api/internal/logging"
	"go.ngs.io/panchanga-api/internal/observability"
)

const tracerName = "go.ngs.io/panchanga-api/internal/usecase"

// ErrInvalidRequest marks a request rejected by validation.
var ErrInvalidRequest = errors.New("invalid request")

// Ephemeris is the position lookup the use cases run on.
// *ephemeris.Adapter implements it.
type Ephemeris interface {
	SourceName() string
	Longitude(ctx context.Context, t time.Time, body domain.Body) (float64, error)
	Speed(ctx context.Context, t time.Time, body domain.Body) (float64, error)
	PositionOf(ctx context.Context, t time.Time, body domain.Body) (domain.AngularPosition, error)
	Positions(ctx context.Context, t time.Time, bodies ...domain.Body) ([]domain.AngularPosition, error)
}

// Service implements every panchanga use case.
type Service struct {
	eph        Ephemeris
	finder     domain.Finder
	classifier *domain.MotionClassifier
	yogas      *domain.YogaEngine
	meanNodes  bool
	logger     *zap.Logger
	metrics    *observability.Collector
	tracer     trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// WithMetrics records boundary searches and ephemeris failures.
func WithMetrics(c *observability.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithFinder sets the boundary search used for day windows.
func WithFinder(f domain.Finder) Option {
	return func(s *Service) { s.finder = f }
}

// WithMeanNodes tells the service the ephemeris reports the mean lunar node,
// which never changes direction.
func WithMeanNodes(mean bool) Option {
	return func(s *Service) { s.meanNodes = mean }
}

// NewService creates the use case service.
func NewService(eph Ephemeris, rules *domain.RuleTable, opts ...Option) (*Service, error) {
	if eph == nil {
		return nil, fmt.Errorf("ephemeris is required")
	}
	if rules == nil {
		return nil, fmt.Errorf("rule table is required")
	}
	classifier, err := domain.NewMotionClassifier(domain.DefaultSpeedBands())
	if err != nil {
		return nil, err
	}

	s := &Service{
		eph:        eph,
		finder:     domain.NewFinder(),
		classifier: classifier,
		yogas:      domain.NewYogaEngine(rules),
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.finder.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Source names the ephemeris in use.
func (s *Service) Source() string { return s.eph.SourceName() }

// RuleTable returns the loaded yoga rules.
func (s *Service) RuleTable() *domain.RuleTable { return s.yogas.Table() }

// PointRequest asks for values at one instant and place.
type PointRequest struct {
	Time     time.Time
	Location domain.Location
	// Zone sets the civil day; nil means UTC.
	Zone *time.Location
}

// Validate checks the instant and coordinates.
func (r PointRequest) Validate() error {
	if r.Time.IsZero() {
		return fmt.Errorf("%w: time is required", domain.ErrInvalidTimestamp)
	}
	return r.Location.Validate()
}

func (r PointRequest) zone() *time.Location {
	if r.Zone == nil {
		return time.UTC
	}
	return r.Zone
}

// invalid wraps a validation failure. Errors that already carry a domain
// sentinel keep it.
func invalid(err error) error {
	for _, sentinel := range []error{domain.ErrInvalidTimestamp, domain.ErrCoordinateOutOfRange, domain.ErrUnknownBody} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

// start opens a span for a use case.
func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "usecase."+name)
}

// fail records err on the span and counts ephemeris failures.
func (s *Service) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, domain.ErrEphemerisUnavailable) {
		s.metrics.ObserveEphemerisFailure(operation)
		s.logger.Warn("ephemeris failure", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// sunMoon returns the sidereal Sun and Moon longitudes at t.
func (s *Service) sunMoon(ctx context.Context, t time.Time) (float64, float64, error) {
	sun, err := s.eph.Longitude(ctx, t, domain.Sun)
	if err != nil {
		return 0, 0, err
	}
	moon, err := s.eph.Longitude(ctx, t, domain.Moon)
	if err != nil {
		return 0, 0, err
	}
	return sun, moon, nil
}
