package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/panchanga-api/internal/domain"
)

// trendOffset is how far either side of the instant speed is sampled to
// judge acceleration.
const trendOffset = 24 * time.Hour

// Station search settings. Retrograde loops last weeks, so half-day samples
// cannot skip one.
const (
	stationStep      = 12 * time.Hour
	stationPrecision = time.Minute
	maxStationSpan   = 366 * 24 * time.Hour
)

// Speed trends.
const (
	TrendAccelerating = "accelerating"
	TrendDecelerating = "decelerating"
	TrendSteady       = "steady"
)

// MotionRequest asks for the motion state of bodies at one instant.
type MotionRequest = PositionsRequest

// BodyMotion is a motion classification with the speed trend around it.
type BodyMotion struct {
	domain.Motion
	Longitude   float64 `json:"longitude"`
	SpeedBefore float64 `json:"speed_before"`
	SpeedAfter  float64 `json:"speed_after"`
	Trend       string  `json:"trend"`
}

// MotionResponse lists motion states.
type MotionResponse struct {
	Source string       `json:"source"`
	Time   time.Time    `json:"time"`
	Bodies []BodyMotion `json:"bodies"`
}

// trend compares |speed| a day after the instant with a day before.
func trend(before, after float64) string {
	b, a := math.Abs(before), math.Abs(after)
	switch {
	case a > b:
		return TrendAccelerating
	case a < b:
		return TrendDecelerating
	default:
		return TrendSteady
	}
}

// Motion classifies every requested body. Bodies are processed in parallel.
func (s *Service) Motion(ctx context.Context, req MotionRequest) (*MotionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "Motion")
	defer span.End()

	bodies := req.Bodies
	if len(bodies) == 0 {
		bodies = domain.AllBodies()
	}

	out := make([]BodyMotion, len(bodies))
	g, gctx := errgroup.WithContext(ctx)
	for i, body := range bodies {
		g.Go(func() error {
			m, err := s.classify(gctx, req.Time, body)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(span, "motion", err)
	}
	return &MotionResponse{Source: s.eph.SourceName(), Time: req.Time, Bodies: out}, nil
}

func (s *Service) classify(ctx context.Context, t time.Time, body domain.Body) (BodyMotion, error) {
	p, err := s.eph.PositionOf(ctx, t, body)
	if err != nil {
		return BodyMotion{}, err
	}
	before, err := s.eph.Speed(ctx, t.Add(-trendOffset), body)
	if err != nil {
		return BodyMotion{}, err
	}
	after, err := s.eph.Speed(ctx, t.Add(trendOffset), body)
	if err != nil {
		return BodyMotion{}, err
	}
	m, err := s.classifier.Classify(body, p.SpeedDegPerDay)
	if err != nil {
		return BodyMotion{}, err
	}
	return BodyMotion{
		Motion:      m,
		Longitude:   p.Longitude,
		SpeedBefore: before,
		SpeedAfter:  after,
		Trend:       trend(before, after),
	}, nil
}

// StationsRequest asks for direction changes of one body in [From, To).
type StationsRequest struct {
	Body domain.Body
	From time.Time
	To   time.Time
}

// Validate checks the body and range.
func (r StationsRequest) Validate() error {
	if !r.Body.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownBody, int(r.Body))
	}
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", domain.ErrInvalidTimestamp)
	}
	if !r.From.Before(r.To) {
		return fmt.Errorf("from must be before to")
	}
	if r.To.Sub(r.From) > maxStationSpan {
		return fmt.Errorf("range must be at most 366 days")
	}
	return nil
}

// Station is a change of direction.
type Station struct {
	Time time.Time `json:"time"`
	// Kind is "retrograde" when the body turns backwards and "direct" when it
	// resumes forward motion.
	Kind      string  `json:"kind"`
	Longitude float64 `json:"longitude"`
	DMS       string  `json:"dms"`
}

// StationsResponse lists stations in time order.
type StationsResponse struct {
	Source   string      `json:"source"`
	Body     domain.Body `json:"body"`
	From     time.Time   `json:"from"`
	To       time.Time   `json:"to"`
	Stations []Station   `json:"stations"`
}

// Stations finds the instants the body's longitudinal speed changes sign.
// The Sun and Moon never station; neither does the mean node.
func (s *Service) Stations(ctx context.Context, req StationsRequest) (*StationsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "Stations")
	defer span.End()

	resp := &StationsResponse{
		Source:   s.eph.SourceName(),
		Body:     req.Body,
		From:     req.From,
		To:       req.To,
		Stations: make([]Station, 0),
	}
	if req.Body == domain.Sun || req.Body == domain.Moon || (req.Body.IsNode() && s.meanNodes) {
		return resp, nil
	}

	finder := domain.NewFinder().
		WithStep(stationStep).
		WithPrecision(stationPrecision).
		WithWindow(req.To.Sub(req.From))
	sample := func(t time.Time) (int, error) {
		v, err := s.eph.Speed(ctx, t, req.Body)
		if err != nil {
			return 0, err
		}
		return domain.Direction(v), nil
	}

	events, err := finder.FindTransitions(domain.KindDirection, req.From, sample)
	s.metrics.ObserveBoundarySearch(string(domain.KindDirection), len(events), err)
	if err != nil {
		return nil, s.fail(span, "stations", err)
	}

	for _, e := range events {
		lon, err := s.eph.Longitude(ctx, e.Instant, req.Body)
		if err != nil {
			return nil, s.fail(span, "stations", err)
		}
		kind := "direct"
		if e.After < 0 {
			kind = "retrograde"
		}
		resp.Stations = append(resp.Stations, Station{
			Time:      e.Instant,
			Kind:      kind,
			Longitude: lon,
			DMS:       domain.FormatDMS(lon),
		})
	}
	s.logger.Debug("station search",
		zap.Stringer("body", req.Body),
		zap.Int("stations", len(resp.Stations)))
	return resp, nil
}
