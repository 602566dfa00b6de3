package ephemeris_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/analytic"
	"go.ngs.io/panchanga-api/internal/domain"
)

// linearSource moves every body at a fixed rate from a fixed epoch.
type linearSource struct {
	epoch float64
	base  map[domain.Body]float64
	rate  map[domain.Body]float64 // degrees per day
	err   error
	calls atomic.Int64
	ketu  atomic.Int64
}

func (s *linearSource) Name() string { return "linear" }

func (s *linearSource) Position(_ context.Context, jd float64, body domain.Body) (ephemeris.Coordinates, error) {
	s.calls.Add(1)
	if body == domain.Ketu {
		s.ketu.Add(1)
	}
	if s.err != nil {
		return ephemeris.Coordinates{}, s.err
	}
	return ephemeris.Coordinates{
		Longitude: s.base[body] + s.rate[body]*(jd-s.epoch),
		Latitude:  0.5,
		Distance:  1,
	}, nil
}

var testTime = time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)

func newLinearSource() *linearSource {
	return &linearSource{
		epoch: domain.MustInstant(testTime).JulianDay(),
		base: map[domain.Body]float64{
			domain.Sun: 263.2, domain.Moon: 359.9, domain.Mercury: 240, domain.Venus: 220,
			domain.Mars: 250, domain.Jupiter: 11, domain.Saturn: 307, domain.Rahu: 200,
		},
		rate: map[domain.Body]float64{
			domain.Sun: 1.0, domain.Moon: 13.2, domain.Mercury: -0.4, domain.Venus: 1.2,
			domain.Mars: 0.75, domain.Jupiter: 0.02, domain.Saturn: 0.08, domain.Rahu: -0.053,
		},
	}
}

func TestPositionOf_SpeedFromCentralDifference(t *testing.T) {
	src := newLinearSource()
	a, err := ephemeris.New(src)
	require.NoError(t, err)

	moon, err := a.PositionOf(context.Background(), testTime, domain.Moon)
	require.NoError(t, err)
	assert.Equal(t, domain.Moon, moon.Body)
	assert.InDelta(t, 359.9, moon.Longitude, 1e-6)
	assert.InDelta(t, 13.2, moon.SpeedDegPerDay, 1e-6, "speed across the 0° wrap")

	mercury, err := a.PositionOf(context.Background(), testTime, domain.Mercury)
	require.NoError(t, err)
	assert.InDelta(t, -0.4, mercury.SpeedDegPerDay, 1e-6)
	assert.True(t, mercury.Retrograde())
}

func TestPositionOf_KetuMirrorsRahu(t *testing.T) {
	src := newLinearSource()
	a, err := ephemeris.New(src)
	require.NoError(t, err)

	rahu, err := a.PositionOf(context.Background(), testTime, domain.Rahu)
	require.NoError(t, err)
	ketu, err := a.PositionOf(context.Background(), testTime, domain.Ketu)
	require.NoError(t, err)

	assert.Equal(t, domain.Ketu, ketu.Body)
	assert.InDelta(t, 20, ketu.Longitude, 1e-6)
	assert.Equal(t, math.Mod(rahu.Longitude+180, 360), ketu.Longitude)
	assert.Equal(t, -rahu.Latitude, ketu.Latitude)
	assert.Equal(t, rahu.SpeedDegPerDay, ketu.SpeedDegPerDay)

	lon, err := a.Longitude(context.Background(), testTime, domain.Ketu)
	require.NoError(t, err)
	assert.InDelta(t, ketu.Longitude, lon, 1e-9)

	assert.Zero(t, src.ketu.Load(), "the source is never asked for Ketu")
}

func TestPositions_AllBodiesInOrder(t *testing.T) {
	a, err := ephemeris.New(newLinearSource())
	require.NoError(t, err)

	got, err := a.Positions(context.Background(), testTime)
	require.NoError(t, err)
	require.Len(t, got, 9)
	for i, body := range domain.AllBodies() {
		assert.Equal(t, body, got[i].Body)
	}

	some, err := a.Positions(context.Background(), testTime, domain.Saturn, domain.Sun)
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, domain.Saturn, some[0].Body)
	assert.Equal(t, domain.Sun, some[1].Body)
}

func TestAdapter_ErrorMapping(t *testing.T) {
	src := newLinearSource()
	src.err = errors.New("file truncated")
	a, err := ephemeris.New(src)
	require.NoError(t, err)

	_, err = a.PositionOf(context.Background(), testTime, domain.Sun)
	assert.ErrorIs(t, err, domain.ErrEphemerisUnavailable)
	assert.ErrorContains(t, err, "file truncated")

	_, err = a.Positions(context.Background(), testTime)
	assert.ErrorIs(t, err, domain.ErrEphemerisUnavailable)

	ok, err := ephemeris.New(newLinearSource())
	require.NoError(t, err)

	_, err = ok.PositionOf(context.Background(), testTime, domain.Body(12))
	assert.ErrorIs(t, err, domain.ErrUnknownBody)

	_, err = ok.PositionOf(context.Background(), time.Time{}, domain.Sun)
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestAdapter_NonFiniteIsUnavailable(t *testing.T) {
	src := newLinearSource()
	src.base[domain.Mars] = math.NaN()
	a, err := ephemeris.New(src)
	require.NoError(t, err)

	_, err = a.PositionOf(context.Background(), testTime, domain.Mars)
	assert.ErrorIs(t, err, domain.ErrEphemerisUnavailable)
}

func TestAdapter_CancelledContext(t *testing.T) {
	src := newLinearSource()
	a, err := ephemeris.New(src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.PositionOf(ctx, testTime, domain.Moon)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.calls.Load())
}

func TestNew_Validation(t *testing.T) {
	_, err := ephemeris.New(nil)
	assert.Error(t, err)

	_, err = ephemeris.New(newLinearSource(), ephemeris.WithSpeedStep(0))
	assert.Error(t, err)

	a, err := ephemeris.New(newLinearSource(), ephemeris.WithSpeedStep(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "linear", a.SourceName())
}

func TestAdapter_WithAnalyticSource(t *testing.T) {
	a, err := ephemeris.New(analytic.New())
	require.NoError(t, err)

	got, err := a.Positions(context.Background(), testTime)
	require.NoError(t, err)

	byBody := make(map[domain.Body]domain.AngularPosition, len(got))
	for _, p := range got {
		byBody[p.Body] = p
		assert.GreaterOrEqual(t, p.Longitude, 0.0)
		assert.Less(t, p.Longitude, 360.0)
	}

	assert.InDelta(t, 1.0, byBody[domain.Sun].SpeedDegPerDay, 0.05)
	assert.Greater(t, byBody[domain.Moon].SpeedDegPerDay, 11.0)
	assert.Less(t, byBody[domain.Moon].SpeedDegPerDay, 16.0)
	assert.Equal(t, domain.Normalize(byBody[domain.Rahu].Longitude+180), byBody[domain.Ketu].Longitude)

	mean, err := ephemeris.New(analytic.New(analytic.WithNodeMode(analytic.MeanNode)))
	require.NoError(t, err)
	rahu, err := mean.PositionOf(context.Background(), testTime, domain.Rahu)
	require.NoError(t, err)
	assert.InDelta(t, -0.05295, rahu.SpeedDegPerDay, 1e-4)
}
