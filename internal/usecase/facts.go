package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"go.ngs.io/panchanga-api/internal/domain"
)

// FactsResponse is the panchanga at one instant.
type FactsResponse struct {
	Source    string                   `json:"source"`
	Timezone  string                   `json:"timezone"`
	Location  domain.Location          `json:"location"`
	Panchanga domain.PanchangaFacts    `json:"panchanga"`
	Sun       domain.SunEvents         `json:"sun"`
	Positions []domain.AngularPosition `json:"positions"`
}

// Facts computes the five elements at the request instant, with sunrise and
// sunset of the local civil day.
func (s *Service) Facts(ctx context.Context, req PointRequest) (*FactsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "Facts")
	defer span.End()
	span.SetAttributes(attribute.String("request.time", req.Time.UTC().Format(time.RFC3339)))

	zone := req.zone()
	positions, err := s.eph.Positions(ctx, req.Time, domain.Sun, domain.Moon)
	if err != nil {
		return nil, s.fail(span, "facts", err)
	}
	facts := domain.Compute(positions[0].Longitude, positions[1].Longitude, req.Time.In(zone))

	sun, err := domain.SunriseSunset(domain.LocalDayStart(req.Time, zone), req.Location)
	if err != nil {
		return nil, s.fail(span, "facts", err)
	}

	return &FactsResponse{
		Source:    s.eph.SourceName(),
		Timezone:  zone.String(),
		Location:  req.Location,
		Panchanga: facts,
		Sun:       sun,
		Positions: positions,
	}, nil
}
