package analytic

import (
	"fmt"
	"strings"

	"go.ngs.io/panchanga-api/internal/domain"
)

// Ayanamsa selects the tropical-to-sidereal offset model.
type Ayanamsa string

// Supported ayanamsas.
const (
	Lahiri       Ayanamsa = "lahiri"
	FaganBradley Ayanamsa = "fagan_bradley"
	Raman        Ayanamsa = "raman"
)

// precessionRate is general precession in longitude, degrees per Julian century.
const precessionRate = 1.396971

// ayanamsaAtJ2000 anchors each model at J2000.0 in degrees.
var ayanamsaAtJ2000 = map[Ayanamsa]float64{
	Lahiri:       23.85306,
	FaganBradley: 24.74036,
	Raman:        22.41046,
}

// ParseAyanamsa resolves a case-insensitive ayanamsa name. Empty means Lahiri.
func ParseAyanamsa(name string) (Ayanamsa, error) {
	key := Ayanamsa(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "":
		return Lahiri, nil
	case "fagan-bradley", "faganbradley":
		return FaganBradley, nil
	}
	if _, ok := ayanamsaAtJ2000[key]; !ok {
		return "", fmt.Errorf("unknown ayanamsa %q (use lahiri, fagan_bradley or raman)", name)
	}
	return key, nil
}

// Degrees returns the ayanamsa at Julian Day jd.
func (a Ayanamsa) Degrees(jd float64) float64 {
	base, ok := ayanamsaAtJ2000[a]
	if !ok {
		base = ayanamsaAtJ2000[Lahiri]
	}
	T := domain.JulianCenturies(jd)
	return base + precessionRate*T + 0.000308*T*T
}

// NodeMode selects how Rahu is computed.
type NodeMode string

// Node modes.
const (
	TrueNode NodeMode = "true"
	MeanNode NodeMode = "mean"
)

// ParseNodeMode resolves "true" or "mean". Empty means true.
func ParseNodeMode(name string) (NodeMode, error) {
	switch NodeMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", TrueNode:
		return TrueNode, nil
	case MeanNode:
		return MeanNode, nil
	}
	return "", fmt.Errorf("unknown node mode %q (use true or mean)", name)
}
