package domain

import (
	"fmt"
	"math"
	"strings"
)

// Body identifies a graha.
type Body int

// Supported bodies. Ketu is always derived from Rahu.
const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Rahu
	Ketu
)

var bodyNames = [...]string{"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Rahu", "Ketu"}

// AllBodies lists every supported body in canonical order.
func AllBodies() []Body {
	return []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Rahu, Ketu}
}

// String returns the English name of the body.
func (b Body) String() string {
	if b < Sun || b > Ketu {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// Valid reports whether b is a supported body.
func (b Body) Valid() bool { return b >= Sun && b <= Ketu }

// IsNode reports whether b is one of the lunar nodes.
func (b Body) IsNode() bool { return b == Rahu || b == Ketu }

// MarshalText implements encoding.TextMarshaler.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, int(b))
	}
	return []byte(b.String()), nil
}

// ParseBody resolves a case-insensitive body name. The traditional names
// Surya, Chandra, Budha, Shukra, Mangala, Guru and Shani are accepted too.
func ParseBody(name string) (Body, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range bodyNames {
		if strings.ToLower(n) == key {
			return Body(i), nil
		}
	}
	switch key {
	case "surya":
		return Sun, nil
	case "chandra":
		return Moon, nil
	case "budha":
		return Mercury, nil
	case "shukra":
		return Venus, nil
	case "mangala":
		return Mars, nil
	case "guru", "brihaspati":
		return Jupiter, nil
	case "shani":
		return Saturn, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// ParseBodies resolves a comma-separated body list. An empty list yields all bodies.
func ParseBodies(list string) ([]Body, error) {
	if strings.TrimSpace(list) == "" {
		return AllBodies(), nil
	}
	parts := strings.Split(list, ",")
	out := make([]Body, 0, len(parts))
	for _, p := range parts {
		b, err := ParseBody(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// AngularPosition is a body's sidereal position at one instant.
// Longitude is always normalized to [0, 360).
type AngularPosition struct {
	Body           Body    `json:"body"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Distance       float64 `json:"distance_au"`
	SpeedDegPerDay float64 `json:"speed_deg_per_day"`
}

// Retrograde reports whether the body is moving backwards along the ecliptic.
func (p AngularPosition) Retrograde() bool { return p.SpeedDegPerDay < 0 }

// MirrorNode derives Ketu from Rahu: longitude opposite, latitude negated,
// distance and speed unchanged.
func MirrorNode(rahu AngularPosition) AngularPosition {
	return AngularPosition{
		Body:           Ketu,
		Longitude:      Normalize(rahu.Longitude + 180),
		Latitude:       -rahu.Latitude,
		Distance:       rahu.Distance,
		SpeedDegPerDay: rahu.SpeedDegPerDay,
	}
}

// Location is an observer on the Earth's surface.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate checks latitude and longitude ranges. NaN is out of range.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.6f must be between -90 and 90", ErrCoordinateOutOfRange, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.6f must be between -180 and 180", ErrCoordinateOutOfRange, l.Longitude)
	}
	return nil
}
