package domain

import (
	"fmt"
	"math"
)

// FullCircle is the number of degrees in a full revolution.
const FullCircle = 360.0

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Normalize maps an arbitrary angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, FullCircle)
	if deg < 0 {
		deg += FullCircle
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if deg >= FullCircle {
		deg = 0
	}
	return deg
}

// Elongation returns (to - from) mod 360. The result is always in [0, 360).
func Elongation(from, to float64) float64 {
	return Normalize(to - from)
}

// SignedDelta returns the shortest signed difference b - a in (-180, 180].
func SignedDelta(a, b float64) float64 {
	d := Normalize(b - a)
	if d > 180 {
		d -= FullCircle
	}
	return d
}

// DMS is an angle split into degrees, minutes and seconds.
type DMS struct {
	Degrees int
	Minutes int
	Seconds float64
}

// ToDMS splits a non-negative angle into degrees, minutes and seconds.
// Seconds are rounded to one decimal place with carries propagated.
func ToDMS(deg float64) DMS {
	deg = math.Abs(deg)
	d := math.Floor(deg)
	remMin := (deg - d) * 60
	m := math.Floor(remMin)
	s := math.Round((remMin-m)*600) / 10

	if s >= 60 {
		s -= 60
		m++
	}
	if m >= 60 {
		m -= 60
		d++
	}
	return DMS{Degrees: int(d), Minutes: int(m), Seconds: s}
}

// String formats the angle as 30°30'00.0".
func (d DMS) String() string {
	return fmt.Sprintf("%d°%02d'%04.1f\"", d.Degrees, d.Minutes, d.Seconds)
}

// FormatDMS formats an angle in degrees as degrees, minutes and seconds.
func FormatDMS(deg float64) string {
	return ToDMS(deg).String()
}
