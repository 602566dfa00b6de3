package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-30, 330},
		{720, 0},
		{359.5, 359.5},
		{-720.25, 359.75},
		{360, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestElongationAndSignedDelta(t *testing.T) {
	if got := Elongation(350, 10); math.Abs(got-20) > 1e-9 {
		t.Errorf("Elongation(350, 10): expected 20, got %v", got)
	}
	if got := Elongation(10, 350); math.Abs(got-340) > 1e-9 {
		t.Errorf("Elongation(10, 350): expected 340, got %v", got)
	}
	if got := SignedDelta(350, 10); math.Abs(got-20) > 1e-9 {
		t.Errorf("SignedDelta(350, 10): expected 20, got %v", got)
	}
	if got := SignedDelta(10, 350); math.Abs(got+20) > 1e-9 {
		t.Errorf("SignedDelta(10, 350): expected -20, got %v", got)
	}
	// The half-open range includes +180 and excludes -180.
	if got := SignedDelta(180, 0); got != 180 {
		t.Errorf("SignedDelta(180, 0): expected 180, got %v", got)
	}
}

func TestFormatDMS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30.5, "30°30'00.0\""},
		{15.2575, "15°15'27.0\""},
		{29.99999, "30°00'00.0\""},
		{0, "0°00'00.0\""},
	}
	for _, tt := range tests {
		if got := FormatDMS(tt.in); got != tt.want {
			t.Errorf("FormatDMS(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestTithiOf_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		sun     float64
		moon    float64
		number  int
		paksha  Paksha
		display string
		title   string
	}{
		{"twelve degrees", 0, 12, 2, Shukla, "S2", "Dwitiya"},
		{"full cycle wraps", 0, 360, 1, Shukla, "S1", "Pratipada"},
		{"shifted by ninety", 90, 102, 2, Shukla, "S2", "Dwitiya"},
		{"purnima", 0, 179, 15, Shukla, "S15", "Purnima"},
		{"first krishna", 0, 185, 1, Krishna, "K1", "Pratipada"},
		{"amavasya", 0, 359, 15, Krishna, "K15", "Amavasya"},
		{"moon behind sun", 100, 40, 11, Krishna, "K11", "Ekadashi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TithiOf(tt.sun, tt.moon)
			if got.Number != tt.number || got.Paksha != tt.paksha {
				t.Errorf("expected %d %s, got %d %s", tt.number, tt.paksha, got.Number, got.Paksha)
			}
			if got.Display != tt.display {
				t.Errorf("display: expected %s, got %s", tt.display, got.Display)
			}
			if got.Name != tt.title {
				t.Errorf("name: expected %s, got %s", tt.title, got.Name)
			}
		})
	}
}

func TestTithiOf_DependsOnlyOnElongation(t *testing.T) {
	pairs := [][2]float64{{10, 47.3}, {200, 13.7}, {123.4, 301.9}, {0, 6}, {359, 170}}
	shifts := []float64{0, 15, 90, 181.5, 359, 720}

	for _, p := range pairs {
		base := TithiOf(p[0], p[1])
		for _, k := range shifts {
			got := TithiOf(Normalize(p[0]+k), Normalize(p[1]+k))
			if got.Number != base.Number || got.Paksha != base.Paksha {
				t.Errorf("shift %v of (%v, %v): expected %s, got %s", k, p[0], p[1], base.Display, got.Display)
			}
		}
	}
}

func TestTithi_LunarDayAndGroup(t *testing.T) {
	k1 := TithiOf(0, 185)
	if k1.LunarDay() != 16 {
		t.Errorf("K1 lunar day: expected 16, got %d", k1.LunarDay())
	}
	if TithiGroupNames[k1.Group()] != "Nanda" {
		t.Errorf("K1 group: expected Nanda, got %s", TithiGroupNames[k1.Group()])
	}

	groups := map[int]string{1: "Nanda", 2: "Bhadra", 3: "Jaya", 4: "Rikta", 5: "Purna", 26: "Nanda", 30: "Purna"}
	for day, want := range groups {
		if got := TithiGroupNames[TithiGroupOf(day)]; got != want {
			t.Errorf("TithiGroupOf(%d): expected %s, got %s", day, want, got)
		}
	}
}

func TestNakshatraOf_Ranges(t *testing.T) {
	for l := 0.0; l < 360; l += 0.01 {
		n := NakshatraOf(l)
		if n.Index < 0 || n.Index > 26 {
			t.Fatalf("NakshatraOf(%v): index %d out of range", l, n.Index)
		}
		if n.Pada < 1 || n.Pada > 4 {
			t.Fatalf("NakshatraOf(%v): pada %d out of range", l, n.Pada)
		}
	}
}

func TestNakshatraOf_KnownValues(t *testing.T) {
	tests := []struct {
		lon   float64
		index int
		name  string
		pada  int
	}{
		{0, 0, "Ashwini", 1},
		{3.5, 0, "Ashwini", 2},
		{93.5, 7, "Pushya", 1},
		{102, 7, "Pushya", 3},
		{359.999, 26, "Revati", 4},
	}
	for _, tt := range tests {
		got := NakshatraOf(tt.lon)
		if got.Index != tt.index || got.Name != tt.name || got.Pada != tt.pada {
			t.Errorf("NakshatraOf(%v): expected %d %s pada %d, got %+v", tt.lon, tt.index, tt.name, tt.pada, got)
		}
	}
}

func TestYogaOf(t *testing.T) {
	if got := YogaOf(0, 0); got.Index != 0 || got.Name != "Vishkambha" {
		t.Errorf("YogaOf(0, 0): expected Vishkambha, got %+v", got)
	}
	// 200 + 210 = 410 -> 50 degrees -> index 3.
	if got := YogaOf(200, 210); got.Index != 3 || got.Name != "Saubhagya" {
		t.Errorf("YogaOf(200, 210): expected Saubhagya, got %+v", got)
	}
	if got := YogaOf(180, 179.9); got.Index != 26 {
		t.Errorf("YogaOf(180, 179.9): expected 26, got %d", got.Index)
	}
}

func TestKaranaOf(t *testing.T) {
	tests := map[int]string{
		1:  "Bava",
		7:  "Vishti",
		8:  "Shakuni",
		11: "Kimstughna",
		12: "Bava",
		13: "Balava",
		14: "Kaulava",
		15: "Vishti",
		16: "Bava",
		22: "Vishti",
		26: "Kimstughna",
		28: "Balava",
		29: "Kaulava",
		30: "Vishti",
	}
	for day, want := range tests {
		if got := KaranaOf(day); got.Name != want {
			t.Errorf("KaranaOf(%d): expected %s, got %s", day, want, got.Name)
		}
	}
}

func TestVaraOf_UsesLocalCivilDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	// 01:00 IST on Thursday is still Wednesday in UTC.
	local := time.Date(2024, 1, 4, 1, 0, 0, 0, ist)
	if got := VaraOf(local); got.Name != "Thursday" || got.Index != 4 {
		t.Errorf("local vara: expected Thursday, got %+v", got)
	}
	if got := VaraOf(local.UTC()); got.Name != "Wednesday" {
		t.Errorf("utc vara: expected Wednesday, got %+v", got)
	}
	if got := VaraOf(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)); got.Index != 0 {
		t.Errorf("2024-01-07: expected Sunday, got %+v", got)
	}
}

func TestRashiOf(t *testing.T) {
	if got := RashiOf(30); got.Name != "Vrishabha" || got.Degree != 0 {
		t.Errorf("RashiOf(30): expected Vrishabha 0, got %+v", got)
	}
	if got := RashiOf(29.999); got.Name != "Mesha" {
		t.Errorf("RashiOf(29.999): expected Mesha, got %+v", got)
	}
	if got := RashiOf(-15); got.Name != "Meena" || math.Abs(got.Degree-15) > 1e-9 {
		t.Errorf("RashiOf(-15): expected Meena 15, got %+v", got)
	}
}

func TestCompute_EndToEnd(t *testing.T) {
	at := time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)
	facts := Compute(90, 102, at)

	if facts.Tithi.Number != 2 || facts.Tithi.Paksha != Shukla {
		t.Errorf("tithi: expected 2 Shukla, got %d %s", facts.Tithi.Number, facts.Tithi.Paksha)
	}
	if facts.Nakshatra.Name != "Pushya" {
		t.Errorf("nakshatra: expected Pushya, got %s", facts.Nakshatra.Name)
	}
	if facts.SunNakshatra.Name != "Punarvasu" {
		t.Errorf("sun nakshatra: expected Punarvasu, got %s", facts.SunNakshatra.Name)
	}
	if facts.SunMoonOffset != 1 {
		t.Errorf("offset: expected 1, got %d", facts.SunMoonOffset)
	}
	if facts.Vara.Name != "Thursday" {
		t.Errorf("vara: expected Thursday, got %s", facts.Vara.Name)
	}
	if facts.Karana.Name != "Balava" {
		t.Errorf("karana: expected Balava, got %s", facts.Karana.Name)
	}
	if facts.TithiGroup != "Bhadra" {
		t.Errorf("tithi group: expected Bhadra, got %s", facts.TithiGroup)
	}

	fs := facts.FactSet()
	if fs.TithiNumber != 2 || fs.Nakshatra != 7 || fs.Vara != 4 {
		t.Errorf("fact set: unexpected %+v", fs)
	}
}

func TestMirrorNode(t *testing.T) {
	rahu := AngularPosition{Body: Rahu, Longitude: 200, Latitude: 0.25, Distance: 0.00257, SpeedDegPerDay: -0.053}
	ketu := MirrorNode(rahu)

	if ketu.Body != Ketu {
		t.Errorf("body: expected Ketu, got %s", ketu.Body)
	}
	if ketu.Longitude != 20 {
		t.Errorf("longitude: expected 20, got %v", ketu.Longitude)
	}
	if ketu.Latitude != -0.25 {
		t.Errorf("latitude: expected -0.25, got %v", ketu.Latitude)
	}
	if ketu.Distance != rahu.Distance || ketu.SpeedDegPerDay != rahu.SpeedDegPerDay {
		t.Errorf("distance/speed must match Rahu: got %+v", ketu)
	}

	for _, lon := range []float64{0, 90.5, 179.999, 180, 359.75} {
		got := MirrorNode(AngularPosition{Longitude: lon}).Longitude
		if want := math.Mod(lon+180, 360); got != want {
			t.Errorf("MirrorNode(%v): expected %v, got %v", lon, want, got)
		}
	}
}

func TestParseBody(t *testing.T) {
	for _, name := range []string{"moon", "MOON", " Moon ", "chandra"} {
		b, err := ParseBody(name)
		if err != nil || b != Moon {
			t.Errorf("ParseBody(%q): expected Moon, got %v, %v", name, b, err)
		}
	}
	if _, err := ParseBody("Pluto"); err == nil {
		t.Errorf("ParseBody(Pluto): expected error")
	}
}

func TestLocationValidate(t *testing.T) {
	if err := (Location{Latitude: 91}).Validate(); err == nil {
		t.Errorf("latitude 91: expected error")
	}
	if err := (Location{Longitude: -180.5}).Validate(); err == nil {
		t.Errorf("longitude -180.5: expected error")
	}
	if err := (Location{Latitude: math.NaN()}).Validate(); !errors.Is(err, ErrCoordinateOutOfRange) {
		t.Errorf("latitude NaN: expected ErrCoordinateOutOfRange, got %v", err)
	}
	if err := (Location{Longitude: math.NaN()}).Validate(); !errors.Is(err, ErrCoordinateOutOfRange) {
		t.Errorf("longitude NaN: expected ErrCoordinateOutOfRange, got %v", err)
	}
	if err := (Location{Latitude: -90, Longitude: 180}).Validate(); err != nil {
		t.Errorf("edge coordinates: unexpected error %v", err)
	}
}

func TestJulianDay(t *testing.T) {
	j2000 := MustInstant(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if got := j2000.JulianDay(); math.Abs(got-J2000) > 1e-9 {
		t.Errorf("J2000: expected %v, got %v", J2000, got)
	}

	back := InstantFromJulianDay(j2000.JulianDay() + 0.25)
	want := time.Date(2000, 1, 1, 18, 0, 0, 0, time.UTC)
	if d := back.Time().Sub(want); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("round trip: expected %v, got %v", want, back.Time())
	}

	if _, err := ParseInstant("not-a-time"); err == nil {
		t.Errorf("ParseInstant: expected error")
	}
}

func TestTithiForLunarDay(t *testing.T) {
	tests := []struct {
		day     int
		display string
		name    string
	}{
		{1, "S1", "Pratipada"},
		{15, "S15", "Purnima"},
		{16, "K1", "Pratipada"},
		{29, "K14", "Chaturdashi"},
		{30, "K15", "Amavasya"},
	}
	for _, tt := range tests {
		got := TithiForLunarDay(tt.day)
		if got.Display != tt.display || got.Name != tt.name {
			t.Errorf("TithiForLunarDay(%d): expected %s %s, got %s %s", tt.day, tt.display, tt.name, got.Display, got.Name)
		}
		if got.LunarDay() != tt.day {
			t.Errorf("TithiForLunarDay(%d).LunarDay(): expected %d, got %d", tt.day, tt.day, got.LunarDay())
		}
	}
}
