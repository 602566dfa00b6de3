package domain

import (
	"fmt"
	"time"
)

const (
	// J2000 is the Julian Day of 2000-01-01 12:00 TT (used here as UTC).
	J2000 = 2451545.0

	// unixEpochJD is the Julian Day of 1970-01-01 00:00 UTC.
	unixEpochJD = 2440587.5

	secondsPerDay = 86400.0
)

// Instant is a UTC point in time.
type Instant struct {
	t time.Time
}

// NewInstant wraps t, converting it to UTC. A zero time is rejected.
func NewInstant(t time.Time) (Instant, error) {
	if t.IsZero() {
		return Instant{}, fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
	}
	return Instant{t: t.UTC()}, nil
}

// MustInstant wraps t without validation. Intended for constants and tests.
func MustInstant(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

// ParseInstant parses an RFC3339 timestamp.
func ParseInstant(s string) (Instant, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Instant{}, fmt.Errorf("%w: %q (expected RFC3339): %v", ErrInvalidTimestamp, s, err)
	}
	return NewInstant(t)
}

// InstantFromJulianDay converts a Julian Day number back into an Instant.
func InstantFromJulianDay(jd float64) Instant {
	nanos := (jd - unixEpochJD) * secondsPerDay * 1e9
	return Instant{t: time.Unix(0, int64(nanos)).UTC()}
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time { return i.t }

// JulianDay returns the continuous Julian Day number.
func (i Instant) JulianDay() float64 {
	return unixEpochJD + float64(i.t.UnixNano())/1e9/secondsPerDay
}

// Add returns the instant shifted by d.
func (i Instant) Add(d time.Duration) Instant { return Instant{t: i.t.Add(d)} }

// Sub returns the duration i - j.
func (i Instant) Sub(j Instant) time.Duration { return i.t.Sub(j.t) }

// Before reports whether i is before j.
func (i Instant) Before(j Instant) bool { return i.t.Before(j.t) }

// IsZero reports whether the instant is unset.
func (i Instant) IsZero() bool { return i.t.IsZero() }

// String formats the instant as RFC3339.
func (i Instant) String() string { return i.t.Format(time.RFC3339) }

// JulianCenturies returns Julian centuries since J2000 for a Julian Day.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// DaysSinceJ2000 returns fractional days since J2000 for a Julian Day.
func DaysSinceJ2000(jd float64) float64 {
	return jd - J2000
}

// LocalDayStart returns local civil midnight of the date containing t in loc.
func LocalDayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
