package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/panchanga-api/internal/domain"
)

// WindowKinds are the elements DayWindows searches, in response order.
var WindowKinds = []domain.ElementKind{
	domain.KindTithi, domain.KindNakshatra, domain.KindYoga, domain.KindKarana,
}

// ElementValue is one value of a panchanga element.
type ElementValue struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Window is the span during which one value holds. End is nil when the value
// outlasts the day.
type Window struct {
	ElementValue
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
}

// ElementWindows lists an element's transitions during the day. AtStart is
// the value in force at local midnight.
type ElementWindows struct {
	Kind    domain.ElementKind `json:"kind"`
	AtStart ElementValue       `json:"at_start"`
	Windows []Window           `json:"windows"`
}

// WindowsResponse holds the transitions of every element for one civil day.
type WindowsResponse struct {
	Source   string           `json:"source"`
	Date     string           `json:"date"`
	Timezone string           `json:"timezone"`
	DayStart time.Time        `json:"day_start"`
	DayEnd   time.Time        `json:"day_end"`
	Sun      domain.SunEvents `json:"sun"`
	Elements []ElementWindows `json:"elements"`
}

// elementValue reduces Sun and Moon longitudes to the index of one element.
// Tithis are numbered by lunar day so every transition is visible.
func elementValue(kind domain.ElementKind, sun, moon float64) int {
	switch kind {
	case domain.KindTithi:
		return domain.TithiOf(sun, moon).LunarDay()
	case domain.KindNakshatra:
		return domain.NakshatraOf(moon).Index
	case domain.KindYoga:
		return domain.YogaOf(sun, moon).Index
	case domain.KindKarana:
		return domain.KaranaOf(domain.TithiOf(sun, moon).LunarDay()).Index
	}
	return 0
}

func elementName(kind domain.ElementKind, index int) string {
	switch kind {
	case domain.KindTithi:
		t := domain.TithiForLunarDay(index)
		return t.Display + " " + t.Name
	case domain.KindNakshatra:
		return domain.NakshatraNames[index]
	case domain.KindYoga:
		return domain.YogaNames[index]
	case domain.KindKarana:
		return domain.KaranaNames[index]
	}
	return ""
}

// DayWindows finds the tithi, nakshatra, yoga and karana transitions during
// the local civil day containing req.Time. Elements are searched in parallel.
func (s *Service) DayWindows(ctx context.Context, req PointRequest) (*WindowsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	ctx, span := s.start(ctx, "DayWindows")
	defer span.End()

	zone := req.zone()
	dayStart := domain.LocalDayStart(req.Time, zone)
	finder := s.finder.WithWindow(dayStart.AddDate(0, 0, 1).Sub(dayStart))

	elements := make([]ElementWindows, len(WindowKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range WindowKinds {
		g.Go(func() error {
			sample := func(t time.Time) (int, error) {
				sun, moon, err := s.sunMoon(gctx, t)
				if err != nil {
					return 0, err
				}
				return elementValue(kind, sun, moon), nil
			}

			initial, err := sample(dayStart)
			if err != nil {
				return err
			}
			events, err := finder.FindTransitions(kind, dayStart, sample)
			s.metrics.ObserveBoundarySearch(string(kind), len(events), err)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				s.logger.Debug("no transitions in window",
					zap.String("kind", string(kind)),
					zap.Time("day_start", dayStart))
			}

			ew := ElementWindows{
				Kind:    kind,
				AtStart: ElementValue{Index: initial, Name: elementName(kind, initial)},
				Windows: make([]Window, 0, len(events)),
			}
			for _, e := range events {
				ew.Windows = append(ew.Windows, Window{
					ElementValue: ElementValue{Index: e.After, Name: elementName(kind, e.After)},
					Start:        e.Instant.In(zone),
					End:          inZone(e.End, zone),
				})
			}
			elements[i] = ew
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(span, "windows", err)
	}

	sun, err := domain.SunriseSunset(dayStart, req.Location)
	if err != nil {
		return nil, s.fail(span, "windows", err)
	}

	return &WindowsResponse{
		Source:   s.eph.SourceName(),
		Date:     dayStart.Format(time.DateOnly),
		Timezone: zone.String(),
		DayStart: dayStart,
		DayEnd:   dayStart.AddDate(0, 0, 1),
		Sun:      sun,
		Elements: elements,
	}, nil
}

func inZone(t *time.Time, zone *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(zone)
	return &v
}
