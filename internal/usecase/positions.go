package usecase

import (
	"context"
	"fmt"
	"time"

	"go.ngs.io/panchanga-api/internal/domain"
)

// PositionsRequest asks for body positions at one instant.
type PositionsRequest struct {
	Time time.Time
	// Bodies defaults to every body.
	Bodies []domain.Body
}

// Validate checks the instant and body list.
func (r PositionsRequest) Validate() error {
	if r.Time.IsZero() {
		return fmt.Errorf("%w: time is required", domain.ErrInvalidTimestamp)
	}
	for _, b := range r.Bodies {
		if !b.Valid() {
			return fmt.Errorf("%w: %d", domain.ErrUnknownBody, int(b))
		}
	}
	return nil
}

// BodyPosition adds sign and nakshatra placement to a position.
type BodyPosition struct {
	domain.AngularPosition
	DMS        string           `json:"dms"`
	Rashi      domain.Rashi     `json:"rashi"`
	Nakshatra  domain.Nakshatra `json:"nakshatra"`
	Retrograde bool             `json:"retrograde"`
}

// PositionsResponse lists sidereal positions.
type PositionsResponse struct {
	Source    string         `json:"source"`
	Time      time.Time      `json:"time"`
	Positions []BodyPosition `json:"positions"`
}

// Positions returns the sidereal positions of the requested bodies.
func (s *Service) Positions(ctx context.Context, req PositionsRequest) (*PositionsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "Positions")
	defer span.End()

	positions, err := s.eph.Positions(ctx, req.Time, req.Bodies...)
	if err != nil {
		return nil, s.fail(span, "positions", err)
	}

	out := make([]BodyPosition, len(positions))
	for i, p := range positions {
		out[i] = BodyPosition{
			AngularPosition: p,
			DMS:             domain.FormatDMS(p.Longitude),
			Rashi:           domain.RashiOf(p.Longitude),
			Nakshatra:       domain.NakshatraOf(p.Longitude),
			Retrograde:      p.Retrograde(),
		}
	}
	return &PositionsResponse{Source: s.eph.SourceName(), Time: req.Time, Positions: out}, nil
}
