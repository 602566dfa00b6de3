package domain

import (
	"math"
	"time"
)

// HorizonAltitude is the altitude of the Sun's centre at apparent sunrise
// and sunset: refraction plus the solar semi-diameter.
const HorizonAltitude = -0.833

// SolarCoordinates is the Sun's apparent geocentric position of date.
type SolarCoordinates struct {
	Longitude      float64 // Tropical ecliptic longitude, degrees.
	Distance       float64 // AU.
	RightAscension float64 // Degrees.
	Declination    float64 // Degrees.
}

// SolarPosition computes the Sun's apparent position with the low-precision
// Meeus series (about 0.01° in longitude).
func SolarPosition(jd float64) SolarCoordinates {
	T := JulianCenturies(jd)

	L0 := Normalize(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := Normalize(357.52911 + 35999.05029*T - 0.0001537*T*T)
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T
	Mr := Deg2Rad(M)

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mr) +
		(0.019993-0.000101*T)*math.Sin(2*Mr) +
		0.000289*math.Sin(3*Mr)

	trueLon := L0 + C
	v := Deg2Rad(M + C)
	dist := 1.000001018 * (1 - e*e) / (1 + e*math.Cos(v))

	omega := Deg2Rad(125.04 - 1934.136*T)
	lambda := trueLon - 0.00569 - 0.00478*math.Sin(omega)

	eps := Deg2Rad(MeanObliquity(T) + 0.00256*math.Cos(omega))
	lr := Deg2Rad(lambda)
	ra := math.Atan2(math.Cos(eps)*math.Sin(lr), math.Cos(lr))
	dec := math.Asin(math.Sin(eps) * math.Sin(lr))

	return SolarCoordinates{
		Longitude:      Normalize(lambda),
		Distance:       dist,
		RightAscension: Normalize(Rad2Deg(ra)),
		Declination:    Rad2Deg(dec),
	}
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees.
func MeanObliquity(T float64) float64 {
	return 23.439291111 - 0.013004167*T - 0.00000164*T*T + 0.000000504*T*T*T
}

// GreenwichSiderealTime returns mean sidereal time at Greenwich in degrees.
func GreenwichSiderealTime(jd float64) float64 {
	d := DaysSinceJ2000(jd)
	T := JulianCenturies(jd)
	return Normalize(280.46061837 + 360.98564736629*d + 0.000387933*T*T - T*T*T/38710000)
}

// SolarAltitude returns the Sun's geometric altitude in degrees at loc.
func SolarAltitude(t time.Time, loc Location) float64 {
	jd := MustInstant(t).JulianDay()
	sun := SolarPosition(jd)

	lst := Normalize(GreenwichSiderealTime(jd) + loc.Longitude)
	H := Deg2Rad(SignedDelta(sun.RightAscension, lst))
	lat := Deg2Rad(loc.Latitude)
	dec := Deg2Rad(sun.Declination)

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(H)
	return Rad2Deg(math.Asin(sinAlt))
}

// SunEvents holds the rise and set of one civil day. Nil means the event
// does not occur (polar day or night).
type SunEvents struct {
	Sunrise *time.Time `json:"sunrise"`
	Sunset  *time.Time `json:"sunset"`
}

// SunriseSunset finds the horizon crossings of the Sun during the civil day
// starting at dayStart. It samples every 30 minutes and refines to 30 seconds.
func SunriseSunset(dayStart time.Time, loc Location) (SunEvents, error) {
	if err := loc.Validate(); err != nil {
		return SunEvents{}, err
	}

	finder := NewFinder().WithStep(30 * time.Minute).WithPrecision(30 * time.Second)
	above := func(t time.Time) (int, error) {
		if SolarAltitude(t, loc) > HorizonAltitude {
			return 1, nil
		}
		return 0, nil
	}

	events, err := finder.FindTransitions(KindHorizon, dayStart, above)
	if err != nil {
		return SunEvents{}, err
	}

	var out SunEvents
	for _, e := range events {
		at := e.Instant
		if e.After == 1 && out.Sunrise == nil {
			out.Sunrise = &at
		}
		if e.After == 0 && out.Sunset == nil {
			out.Sunset = &at
		}
	}
	return out, nil
}
