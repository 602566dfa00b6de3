package domain

// TaraNames lists the nine taras counted from the birth nakshatra.
var TaraNames = [9]string{
	"Janma", "Sampat", "Vipat", "Kshema", "Pratyari", "Sadhaka", "Vadha", "Mitra", "Ati-Mitra",
}

// favourableTara marks the taras traditionally considered supportive.
var favourableTara = [9]bool{false, true, false, true, false, true, false, true, true}

var lokaNames = [3]string{"Bhuloka", "Bhuvarloka", "Svarloka"}

// Tara is one nakshatra's place in the navatara chakra of a birth nakshatra.
type Tara struct {
	Nakshatra  Nakshatra `json:"nakshatra"`
	Count      int       `json:"count"`
	Index      int       `json:"tara_index"`
	Name       string    `json:"tara"`
	Round      int       `json:"round"`
	Loka       string    `json:"loka"`
	Favourable bool      `json:"favourable"`
}

// TaraOf places nakshatra in the tara cycle starting at birth.
// Both indices are 0..26.
func TaraOf(birth, nakshatra int) Tara {
	birth = ((birth % 27) + 27) % 27
	nakshatra = ((nakshatra % 27) + 27) % 27

	count := (nakshatra-birth+27)%27 + 1
	idx := (count - 1) % 9
	return Tara{
		Nakshatra:  Nakshatra{Index: nakshatra, Name: NakshatraNames[nakshatra]},
		Count:      count,
		Index:      idx,
		Name:       TaraNames[idx],
		Round:      (count-1)/9 + 1,
		Loka:       lokaNames[nakshatra/9],
		Favourable: favourableTara[idx],
	}
}

// Navatara returns the full 27-entry chakra for a birth nakshatra, in count order.
func Navatara(birth int) []Tara {
	out := make([]Tara, 27)
	for i := 0; i < 27; i++ {
		out[i] = TaraOf(birth, birth+i)
	}
	return out
}
