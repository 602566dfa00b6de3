package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolarPosition_Equinox(t *testing.T) {
	// 2024-03-20 03:06 UTC, March equinox.
	jd := MustInstant(time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)).JulianDay()
	sun := SolarPosition(jd)

	assert.InDelta(t, 0, SignedDelta(0, sun.Longitude), 0.03)
	assert.InDelta(t, 0, sun.Declination, 0.03)
	assert.InDelta(t, 0.996, sun.Distance, 0.002)
}

func TestSunriseSunset_London(t *testing.T) {
	london := Location{Latitude: 51.5074, Longitude: -0.1278}
	day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	events, err := SunriseSunset(day, london)
	require.NoError(t, err)
	require.NotNil(t, events.Sunrise)
	require.NotNil(t, events.Sunset)

	assert.WithinDuration(t, time.Date(2024, 6, 21, 3, 43, 0, 0, time.UTC), *events.Sunrise, 3*time.Minute)
	assert.WithinDuration(t, time.Date(2024, 6, 21, 20, 21, 0, 0, time.UTC), *events.Sunset, 3*time.Minute)
}

func TestSunriseSunset_MidnightSun(t *testing.T) {
	tromso := Location{Latitude: 69.65, Longitude: 18.96}
	day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	events, err := SunriseSunset(day, tromso)
	require.NoError(t, err)
	assert.Nil(t, events.Sunrise)
	assert.Nil(t, events.Sunset)
}

func TestSunriseSunset_InvalidLocation(t *testing.T) {
	_, err := SunriseSunset(time.Now(), Location{Latitude: 95})
	assert.ErrorIs(t, err, ErrCoordinateOutOfRange)
}
