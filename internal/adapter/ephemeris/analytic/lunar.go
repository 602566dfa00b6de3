package analytic

import (
	"math"

	"go.ngs.io/panchanga-api/internal/domain"
)

// kmPerAU converts kilometres to astronomical units.
const kmPerAU = 149597870.7

// lunarArguments are the fundamental arguments of the lunar theory, degrees.
type lunarArguments struct {
	Lp    float64 // Moon's mean longitude.
	D     float64 // Mean elongation of the Moon.
	M     float64 // Sun's mean anomaly.
	Mp    float64 // Moon's mean anomaly.
	F     float64 // Moon's argument of latitude.
	Omega float64 // Mean longitude of the ascending node.
	E     float64 // Eccentricity factor for terms in M.
}

func computeLunarArguments(T float64) lunarArguments {
	T2, T3, T4 := T*T, T*T*T, T*T*T*T
	return lunarArguments{
		Lp:    domain.Normalize(218.3164477 + 481267.88123421*T - 0.0015786*T2 + T3/538841 - T4/65194000),
		D:     domain.Normalize(297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000),
		M:     domain.Normalize(357.5291092 + 35999.0502909*T - 0.0001536*T2 + T3/24490000),
		Mp:    domain.Normalize(134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000),
		F:     domain.Normalize(93.2720950 + 483202.0175233*T - 0.0036539*T2 - T3/3526000 + T4/863310000),
		Omega: domain.Normalize(125.04452 - 1934.136261*T + 0.0020708*T2 + T3/450000),
		E:     1 - 0.002516*T - 0.0000074*T2,
	}
}

// periodicTerm multiplies D, M, Mp and F; coefficients are in 1e-6 degrees
// (longitude, latitude) or metres (distance).
type periodicTerm struct {
	d, m, mp, f int
	l, r        float64
}

// Principal terms of the Moon's longitude and distance.
var lonDistTerms = []periodicTerm{
	{0, 0, 1, 0, 6288774, -20905355},
	{2, 0, -1, 0, 1274027, -3699111},
	{2, 0, 0, 0, 658314, -2955968},
	{0, 0, 2, 0, 213618, -569925},
	{0, 1, 0, 0, -185116, 48888},
	{0, 0, 0, 2, -114332, -3149},
	{2, 0, -2, 0, 58793, 246158},
	{2, -1, -1, 0, 57066, -152138},
	{2, 0, 1, 0, 53322, -170733},
	{2, -1, 0, 0, 45758, -204586},
	{0, 1, -1, 0, -40923, -129620},
	{1, 0, 0, 0, -34720, 108743},
	{0, 1, 1, 0, -30383, 104755},
	{2, 0, 0, -2, 15327, 10321},
	{0, 0, 1, 2, -12528, 0},
	{0, 0, 1, -2, 10980, 79661},
	{4, 0, -1, 0, 10675, -34782},
	{0, 0, 3, 0, 10034, -23210},
	{4, 0, -2, 0, 8548, -21636},
	{2, 1, -1, 0, -7888, 24208},
	{2, 1, 0, 0, -6766, 30824},
	{1, 0, -1, 0, -5163, -8379},
	{1, 1, 0, 0, 4987, -16675},
	{2, -1, 1, 0, 4036, -12831},
	{2, 0, 2, 0, 3994, -10445},
	{4, 0, 0, 0, 3861, -11650},
	{2, 0, -3, 0, 3665, 14403},
	{0, 1, -2, 0, -2689, -7003},
	{2, 0, -1, 2, -2602, 0},
	{2, -1, -2, 0, 2390, 10056},
	{1, 0, 1, 0, -2348, 6322},
	{2, -2, 0, 0, 2236, -9884},
}

// Principal terms of the Moon's latitude; only l is used.
var latTerms = []periodicTerm{
	{0, 0, 0, 1, 5128122, 0},
	{0, 0, 1, 1, 280602, 0},
	{0, 0, 1, -1, 277693, 0},
	{2, 0, 0, -1, 173237, 0},
	{2, 0, -1, 1, 55413, 0},
	{2, 0, -1, -1, 46271, 0},
	{2, 0, 0, 1, 32573, 0},
	{0, 0, 2, 1, 17198, 0},
	{2, 0, 1, -1, 9266, 0},
	{0, 0, 2, -1, 8822, 0},
	{2, -1, 0, -1, 8216, 0},
	{2, 0, -2, -1, 4324, 0},
	{2, 0, 1, 1, 4200, 0},
	{2, 1, 0, -1, -3359, 0},
	{2, -1, -1, 1, 2463, 0},
	{2, -1, 0, 1, 2211, 0},
	{2, -1, -1, -1, 2065, 0},
	{0, 1, -1, -1, -1870, 0},
	{4, 0, -1, -1, 1828, 0},
	{0, 1, 0, 1, -1794, 0},
}

func (a lunarArguments) argument(t periodicTerm) (float64, float64) {
	arg := domain.Deg2Rad(float64(t.d)*a.D + float64(t.m)*a.M + float64(t.mp)*a.Mp + float64(t.f)*a.F)
	scale := 1.0
	switch t.m {
	case 1, -1:
		scale = a.E
	case 2, -2:
		scale = a.E * a.E
	}
	return arg, scale
}

// moonPosition returns the Moon's apparent tropical ecliptic longitude and
// latitude in degrees and its distance in AU.
func moonPosition(T float64) (lon, lat, dist float64) {
	a := computeLunarArguments(T)

	var sumL, sumR, sumB float64
	for _, t := range lonDistTerms {
		arg, scale := a.argument(t)
		sumL += t.l * scale * math.Sin(arg)
		sumR += t.r * scale * math.Cos(arg)
	}
	for _, t := range latTerms {
		arg, scale := a.argument(t)
		sumB += t.l * scale * math.Sin(arg)
	}

	A1 := domain.Deg2Rad(119.75 + 131.849*T)
	A2 := domain.Deg2Rad(53.09 + 479264.290*T)
	A3 := domain.Deg2Rad(313.45 + 481266.484*T)
	Lp := domain.Deg2Rad(a.Lp)
	Mp := domain.Deg2Rad(a.Mp)
	F := domain.Deg2Rad(a.F)

	sumL += 3958*math.Sin(A1) + 1962*math.Sin(Lp-F) + 318*math.Sin(A2)
	sumB += -2235*math.Sin(Lp) + 382*math.Sin(A3) + 175*math.Sin(A1-F) +
		175*math.Sin(A1+F) + 127*math.Sin(Lp-Mp) - 115*math.Sin(Lp+Mp)

	lon = domain.Normalize(a.Lp + sumL/1e6 + nutationInLongitude(a.Omega))
	lat = sumB / 1e6
	dist = (385000.56 + sumR/1000) / kmPerAU
	return lon, lat, dist
}

// nodeLongitude returns the tropical longitude of the Moon's ascending node.
// The true node adds the principal periodic terms to the mean node.
func nodeLongitude(T float64, mode NodeMode) float64 {
	a := computeLunarArguments(T)
	omega := a.Omega
	if mode == MeanNode {
		return omega
	}

	D := domain.Deg2Rad(a.D)
	M := domain.Deg2Rad(a.M)
	Mp := domain.Deg2Rad(a.Mp)
	F := domain.Deg2Rad(a.F)
	omega += -1.4979*math.Sin(2*(D-F)) -
		0.1500*math.Sin(M) -
		0.1226*math.Sin(2*D) +
		0.1176*math.Sin(2*F) -
		0.0801*math.Sin(2*(Mp-F))
	return domain.Normalize(omega)
}

// nutationInLongitude is the leading term of nutation, degrees.
func nutationInLongitude(omega float64) float64 {
	return -0.00478 * math.Sin(domain.Deg2Rad(omega))
}
