package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"go.ngs.io/panchanga-api/internal/domain"
)

// Range scan limits.
const (
	maxYogaRangeDays = 92
	yogaRangeWorkers = 4
)

// YogasResponse lists the yogas active at one instant.
type YogasResponse struct {
	Source       string             `json:"source"`
	RulesVersion string             `json:"rules_version"`
	Time         time.Time          `json:"time"`
	Facts        domain.FactSet     `json:"facts"`
	Vara         string             `json:"vara"`
	Tithi        domain.Tithi       `json:"tithi"`
	Nakshatra    domain.Nakshatra   `json:"nakshatra"`
	SunNakshatra domain.Nakshatra   `json:"sun_nakshatra"`
	Yogas        []domain.YogaMatch `json:"yogas"`
	Summary      domain.YogaSummary `json:"summary"`
}

// Yogas evaluates the rule table at the request instant.
func (s *Service) Yogas(ctx context.Context, req PointRequest) (*YogasResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "Yogas")
	defer span.End()

	resp, err := s.yogasAt(ctx, req.Time.In(req.zone()))
	if err != nil {
		return nil, s.fail(span, "yogas", err)
	}
	return resp, nil
}

func (s *Service) yogasAt(ctx context.Context, at time.Time) (*YogasResponse, error) {
	sun, moon, err := s.sunMoon(ctx, at)
	if err != nil {
		return nil, err
	}
	facts := domain.Compute(sun, moon, at)
	matches := s.yogas.Evaluate(facts.FactSet())
	return &YogasResponse{
		Source:       s.eph.SourceName(),
		RulesVersion: s.yogas.Table().Version(),
		Time:         at,
		Facts:        facts.FactSet(),
		Vara:         facts.Vara.Name,
		Tithi:        facts.Tithi,
		Nakshatra:    facts.Nakshatra,
		SunNakshatra: facts.SunNakshatra,
		Yogas:        matches,
		Summary:      domain.Summarize(matches),
	}, nil
}

// RangeRequest asks for one evaluation per local civil day, From to To inclusive.
type RangeRequest struct {
	From     time.Time
	To       time.Time
	Location domain.Location
	Zone     *time.Location
}

// Validate checks the range and coordinates.
func (r RangeRequest) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", domain.ErrInvalidTimestamp)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("from must not be after to")
	}
	if err := r.Location.Validate(); err != nil {
		return err
	}
	if n := len(r.days()); n > maxYogaRangeDays {
		return fmt.Errorf("range covers %d days, at most %d allowed", n, maxYogaRangeDays)
	}
	return nil
}

// days returns local noon of every civil day in the range.
func (r RangeRequest) days() []time.Time {
	zone := r.Zone
	if zone == nil {
		zone = time.UTC
	}
	first := domain.LocalDayStart(r.From, zone)
	last := domain.LocalDayStart(r.To, zone)

	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		y, m, day := d.Date()
		out = append(out, time.Date(y, m, day, 12, 0, 0, 0, zone))
		if len(out) > maxYogaRangeDays {
			break
		}
	}
	return out
}

// DayYogas is the evaluation for one civil day.
type DayYogas struct {
	Date string `json:"date"`
	*YogasResponse
}

// RangeResponse lists per-day evaluations in date order.
type RangeResponse struct {
	Source       string     `json:"source"`
	RulesVersion string     `json:"rules_version"`
	Days         []DayYogas `json:"days"`
}

// YogasInRange evaluates each local civil day at local noon.
func (s *Service) YogasInRange(ctx context.Context, req RangeRequest) (*RangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "YogasInRange")
	defer span.End()

	days := req.days()
	out := make([]DayYogas, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(yogaRangeWorkers)
	for i, noon := range days {
		g.Go(func() error {
			r, err := s.yogasAt(gctx, noon)
			if err != nil {
				return err
			}
			out[i] = DayYogas{Date: noon.Format(time.DateOnly), YogasResponse: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(span, "yogas_range", err)
	}

	return &RangeResponse{
		Source:       s.eph.SourceName(),
		RulesVersion: s.yogas.Table().Version(),
		Days:         out,
	}, nil
}

// RulesResponse exposes the loaded rule table.
type RulesResponse struct {
	Version string            `json:"version"`
	Count   int               `json:"count"`
	Rules   []domain.RuleSpec `json:"rules"`
}

// Rules returns the loaded rule table.
func (s *Service) Rules() *RulesResponse {
	t := s.yogas.Table()
	return &RulesResponse{Version: t.Version(), Count: t.Len(), Rules: t.Rules()}
}
