package usecase

import (
	"context"
	"fmt"
	"time"

	"go.ngs.io/panchanga-api/internal/domain"
)

// NavataraRequest asks for the tara cycle of a birth nakshatra.
type NavataraRequest struct {
	// Birth is a nakshatra name.
	Birth string
	// Time selects the Moon's current nakshatra; zero skips today's tara.
	Time time.Time
}

// NavataraResponse is the tara chakra of a birth nakshatra.
type NavataraResponse struct {
	Birth domain.Nakshatra `json:"birth"`
	Taras []domain.Tara    `json:"taras"`
	Today *domain.Tara     `json:"today,omitempty"`
}

// Navatara returns the 27 taras counted from the birth nakshatra and, when a
// time is given, the tara of the Moon's nakshatra at that time.
func (s *Service) Navatara(ctx context.Context, req NavataraRequest) (*NavataraResponse, error) {
	birth, err := domain.NakshatraIndex(req.Birth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	ctx, span := s.start(ctx, "Navatara")
	defer span.End()

	resp := &NavataraResponse{
		Birth: domain.Nakshatra{Index: birth, Name: domain.NakshatraNames[birth]},
		Taras: domain.Navatara(birth),
	}
	if req.Time.IsZero() {
		return resp, nil
	}

	moon, err := s.eph.Longitude(ctx, req.Time, domain.Moon)
	if err != nil {
		return nil, s.fail(span, "navatara", err)
	}
	today := domain.TaraOf(birth, domain.NakshatraOf(moon).Index)
	resp.Today = &today
	return resp, nil
}
