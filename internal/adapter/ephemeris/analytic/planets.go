package analytic

import (
	"math"

	"go.ngs.io/panchanga-api/internal/domain"
)

// orbitalElements are mean Keplerian elements referred to the J2000 ecliptic
// and equinox, with their rates per Julian century. Valid 1800-2050.
type orbitalElements struct {
	a, e, i, L, peri, node                   float64 // AU, -, deg, deg, deg, deg
	aDot, eDot, iDot, LDot, periDot, nodeDot float64
}

var planetElements = map[domain.Body]orbitalElements{
	domain.Mercury: {
		0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081,
	},
	domain.Venus: {
		0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418,
	},
	domain.Mars: {
		1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343,
	},
	domain.Jupiter: {
		5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106,
	},
	domain.Saturn: {
		9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794,
	},
}

// earthMoonBarycenter stands in for the Earth.
var earthMoonBarycenter = orbitalElements{
	1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
	0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0,
}

type vec3 struct{ x, y, z float64 }

func (v vec3) sub(w vec3) vec3 { return vec3{v.x - w.x, v.y - w.y, v.z - w.z} }

// heliocentric returns the heliocentric ecliptic position in AU.
func (el orbitalElements) heliocentric(T float64) vec3 {
	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	inc := domain.Deg2Rad(el.i + el.iDot*T)
	L := el.L + el.LDot*T
	peri := el.peri + el.periDot*T
	node := el.node + el.nodeDot*T

	M := domain.Deg2Rad(domain.SignedDelta(0, L-peri))
	w := domain.Deg2Rad(peri - node)
	O := domain.Deg2Rad(node)

	E := solveKepler(M, e)
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := math.Cos(w), math.Sin(w)
	cO, sO := math.Cos(O), math.Sin(O)
	ci, si := math.Cos(inc), math.Sin(inc)

	return vec3{
		x: (cw*cO-sw*sO*ci)*xp + (-sw*cO-cw*sO*ci)*yp,
		y: (cw*sO+sw*cO*ci)*xp + (-sw*sO+cw*cO*ci)*yp,
		z: (sw*si)*xp + (cw*si)*yp,
	}
}

// solveKepler solves M = E - e·sin E for E by Newton iteration. Angles in radians.
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)
	for i := 0; i < 30; i++ {
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-12 {
			break
		}
	}
	return E
}

// planetPosition returns the geocentric tropical longitude and latitude in
// degrees, referred to the equinox of date, and the distance in AU.
func planetPosition(body domain.Body, T float64) (lon, lat, dist float64, ok bool) {
	el, ok := planetElements[body]
	if !ok {
		return 0, 0, 0, false
	}

	g := el.heliocentric(T).sub(earthMoonBarycenter.heliocentric(T))
	dist = math.Sqrt(g.x*g.x + g.y*g.y + g.z*g.z)
	lon = domain.Rad2Deg(math.Atan2(g.y, g.x))
	lat = domain.Rad2Deg(math.Atan2(g.z, math.Hypot(g.x, g.y)))

	omega := computeLunarArguments(T).Omega
	lon = domain.Normalize(lon + precessionRate*T + nutationInLongitude(omega))
	return lon, lat, dist, true
}
