package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	// TithiSpan is the Sun-Moon elongation covered by one tithi.
	TithiSpan = 12.0

	// NakshatraSpan is 13°20', one 27th of the zodiac.
	NakshatraSpan = FullCircle / 27

	// PadaSpan is one quarter of a nakshatra.
	PadaSpan = NakshatraSpan / 4

	// RashiSpan is one sign.
	RashiSpan = 30.0
)

// Paksha is the lunar fortnight.
type Paksha int

// Fortnights.
const (
	Shukla Paksha = iota
	Krishna
)

// String returns the paksha name.
func (p Paksha) String() string {
	if p == Krishna {
		return "Krishna"
	}
	return "Shukla"
}

// Letter returns the one-letter display prefix.
func (p Paksha) Letter() string {
	if p == Krishna {
		return "K"
	}
	return "S"
}

// MarshalText implements encoding.TextMarshaler.
func (p Paksha) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Tithi is the lunar day. Number is folded into [1, 15] within its paksha.
type Tithi struct {
	Number     int     `json:"number"`
	Paksha     Paksha  `json:"paksha"`
	Name       string  `json:"name"`
	Display    string  `json:"display"`
	Elongation float64 `json:"elongation"`
}

// LunarDay re-expands the folded number to 1..30 across the lunar month.
func (t Tithi) LunarDay() int {
	if t.Paksha == Krishna {
		return t.Number + 15
	}
	return t.Number
}

// Group returns the tithi group index (Nanda=0 .. Purna=4).
func (t Tithi) Group() int {
	return TithiGroupOf(t.LunarDay())
}

// TithiGroupOf maps a lunar day 1..30 onto Nanda, Bhadra, Jaya, Rikta, Purna.
func TithiGroupOf(lunarDay int) int {
	return ((lunarDay-1)%5 + 5) % 5
}

// TithiOf computes the tithi from sidereal (or tropical) Sun and Moon
// longitudes. Only the elongation matters.
func TithiOf(sunLon, moonLon float64) Tithi {
	e := Elongation(sunLon, moonLon)
	raw := int(math.Floor(e/TithiSpan)) + 1
	if raw > 30 {
		raw = 30
	}

	paksha := Shukla
	number := raw
	if e >= 180 {
		paksha = Krishna
		number = raw - 15
		if number <= 0 {
			number = 15
		}
	}

	return Tithi{
		Number:     number,
		Paksha:     paksha,
		Name:       tithiName(number, paksha),
		Display:    fmt.Sprintf("%s%d", paksha.Letter(), number),
		Elongation: e,
	}
}

// TithiForLunarDay returns the tithi holding lunar day 1..30. Elongation is
// set to the start of that tithi.
func TithiForLunarDay(day int) Tithi {
	day = clampInt(day, 1, 30)
	return TithiOf(0, float64(day-1)*TithiSpan)
}

func tithiName(number int, paksha Paksha) string {
	if number == 15 {
		if paksha == Krishna {
			return "Amavasya"
		}
		return "Purnima"
	}
	return tithiNames[number-1]
}

// Nakshatra is a lunar mansion with its quarter.
type Nakshatra struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Pada  int    `json:"pada"`
}

// NakshatraOf computes the nakshatra and pada for a sidereal longitude.
func NakshatraOf(lon float64) Nakshatra {
	lon = Normalize(lon)
	idx := clampInt(int(math.Floor(lon/NakshatraSpan)), 0, 26)
	within := lon - float64(idx)*NakshatraSpan
	pada := clampInt(int(math.Floor(within/PadaSpan))+1, 1, 4)
	return Nakshatra{Index: idx, Name: NakshatraNames[idx], Pada: pada}
}

// Yoga is the nitya yoga (sum of Sun and Moon longitudes).
type Yoga struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// YogaOf computes the nitya yoga.
func YogaOf(sunLon, moonLon float64) Yoga {
	total := Normalize(sunLon + moonLon)
	idx := clampInt(int(math.Floor(total/NakshatraSpan)), 0, 26)
	return Yoga{Index: idx, Name: YogaNames[idx]}
}

// Karana is the half-tithi element.
type Karana struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

const vishti = 6

// KaranaOf maps a lunar day 1..30 onto the 11-state karana rotation.
// Days 15 and 30 are pinned to Vishti.
func KaranaOf(lunarDay int) Karana {
	if lunarDay == 15 || lunarDay == 30 {
		return Karana{Index: vishti, Name: KaranaNames[vishti]}
	}
	pos := ((lunarDay-1)%15 + 15) % 15
	idx := pos % len(KaranaNames)
	return Karana{Index: idx, Name: KaranaNames[idx]}
}

// Vara is the weekday, 0 = Sunday.
type Vara struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// VaraOf returns the weekday of t's calendar date in t's own location.
// The day begins at civil midnight.
func VaraOf(t time.Time) Vara {
	idx := int(t.Weekday())
	return Vara{Index: idx, Name: VaraNames[idx]}
}

// Rashi is a sidereal sign with the degree reached within it.
type Rashi struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Degree float64 `json:"degree"`
	DMS    string  `json:"dms"`
}

// RashiOf computes the sign for a sidereal longitude.
func RashiOf(lon float64) Rashi {
	lon = Normalize(lon)
	idx := clampInt(int(math.Floor(lon/RashiSpan)), 0, 11)
	deg := lon - float64(idx)*RashiSpan
	return Rashi{Index: idx, Name: RashiNames[idx], Degree: deg, DMS: FormatDMS(deg)}
}

// NakshatraOffset returns (moon - sun) mod 27 over nakshatra indices.
func NakshatraOffset(sunNakshatra, moonNakshatra int) int {
	return ((moonNakshatra-sunNakshatra)%27 + 27) % 27
}

// PanchangaFacts is the five-element panchanga at one instant, plus the
// derived values the yoga rules consume.
type PanchangaFacts struct {
	Time          time.Time `json:"time"`
	SunLongitude  float64   `json:"sun_longitude"`
	MoonLongitude float64   `json:"moon_longitude"`
	Tithi         Tithi     `json:"tithi"`
	TithiGroup    string    `json:"tithi_group"`
	Nakshatra     Nakshatra `json:"nakshatra"`
	Yoga          Yoga      `json:"yoga"`
	Karana        Karana    `json:"karana"`
	Vara          Vara      `json:"vara"`
	SunNakshatra  Nakshatra `json:"sun_nakshatra"`
	SunRashi      Rashi     `json:"sun_rashi"`
	MoonRashi     Rashi     `json:"moon_rashi"`
	SunMoonOffset int       `json:"sun_moon_nakshatra_offset"`
}

// Compute derives the panchanga from sidereal Sun and Moon longitudes.
// at should carry the observer's time zone; vara is taken from its civil date.
func Compute(sunLon, moonLon float64, at time.Time) PanchangaFacts {
	sunLon = Normalize(sunLon)
	moonLon = Normalize(moonLon)

	tithi := TithiOf(sunLon, moonLon)
	moonNak := NakshatraOf(moonLon)
	sunNak := NakshatraOf(sunLon)

	return PanchangaFacts{
		Time:          at,
		SunLongitude:  sunLon,
		MoonLongitude: moonLon,
		Tithi:         tithi,
		TithiGroup:    TithiGroupNames[tithi.Group()],
		Nakshatra:     moonNak,
		Yoga:          YogaOf(sunLon, moonLon),
		Karana:        KaranaOf(tithi.LunarDay()),
		Vara:          VaraOf(at),
		SunNakshatra:  sunNak,
		SunRashi:      RashiOf(sunLon),
		MoonRashi:     RashiOf(moonLon),
		SunMoonOffset: NakshatraOffset(sunNak.Index, moonNak.Index),
	}
}

// FactSet returns the inputs the yoga rule engine matches against.
func (f PanchangaFacts) FactSet() FactSet {
	return FactSet{
		Vara:          f.Vara.Index,
		TithiNumber:   f.Tithi.LunarDay(),
		TithiGroup:    f.Tithi.Group(),
		Nakshatra:     f.Nakshatra.Index,
		SunNakshatra:  f.SunNakshatra.Index,
		SunMoonOffset: f.SunMoonOffset,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
