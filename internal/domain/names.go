package domain

import (
	"fmt"
	"strings"
)

// NakshatraNames lists the 27 lunar mansions starting at 0° sidereal.
var NakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta",
	"Shatabhisha", "Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// YogaNames lists the 27 nitya yogas.
var YogaNames = [27]string{
	"Vishkambha", "Priti", "Ayushman", "Saubhagya", "Shobhana", "Atiganda",
	"Sukarma", "Dhriti", "Shula", "Ganda", "Vriddhi", "Dhruva",
	"Vyaghata", "Harshana", "Vajra", "Siddhi", "Vyatipata", "Variyana",
	"Parigha", "Shiva", "Siddha", "Sadhya", "Shubha", "Shukla",
	"Brahma", "Indra", "Vaidhriti",
}

// KaranaNames lists the 11 karanas: 7 movable followed by 4 fixed.
var KaranaNames = [11]string{
	"Bava", "Balava", "Kaulava", "Taitila", "Garija", "Vanija", "Vishti",
	"Shakuni", "Chatushpada", "Naga", "Kimstughna",
}

// VaraNames lists weekdays with 0 = Sunday.
var VaraNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// RashiNames lists the 12 sidereal signs.
var RashiNames = [12]string{
	"Mesha", "Vrishabha", "Mithuna", "Karka", "Simha", "Kanya",
	"Tula", "Vrischika", "Dhanu", "Makara", "Kumbha", "Meena",
}

// tithiNames covers one paksha; index 14 is Purnima in Shukla and Amavasya in Krishna.
var tithiNames = [14]string{
	"Pratipada", "Dwitiya", "Tritiya", "Chaturthi", "Panchami", "Shashthi", "Saptami",
	"Ashtami", "Navami", "Dashami", "Ekadashi", "Dwadashi", "Trayodashi", "Chaturdashi",
}

// TithiGroupNames lists the five tithi groups in cycle order.
var TithiGroupNames = [5]string{"Nanda", "Bhadra", "Jaya", "Rikta", "Purna"}

// NakshatraIndex resolves a nakshatra name (case-insensitive, spaces and
// hyphens ignored). A few common spellings are accepted.
func NakshatraIndex(name string) (int, error) {
	key := foldName(name)
	for i, n := range NakshatraNames {
		if foldName(n) == key {
			return i, nil
		}
	}
	switch key {
	case "aswini", "asvini":
		return 0, nil
	case "mrigasira", "mrigashirsha":
		return 4, nil
	case "pusya", "pushyami":
		return 7, nil
	case "aslesha", "ashlesa":
		return 8, nil
	case "svati":
		return 14, nil
	case "visakha":
		return 15, nil
	case "jyestha":
		return 17, nil
	case "moola":
		return 18, nil
	case "sravana":
		return 21, nil
	case "dhanishtha":
		return 22, nil
	case "satabhisha", "shatabhishak":
		return 23, nil
	}
	return 0, fmt.Errorf("unknown nakshatra %q", name)
}

// VaraIndex resolves a weekday name (English or Sanskrit) to 0 = Sunday .. 6 = Saturday.
func VaraIndex(name string) (int, error) {
	key := foldName(name)
	for i, n := range VaraNames {
		if foldName(n) == key {
			return i, nil
		}
	}
	switch key {
	case "ravivara", "ravivar":
		return 0, nil
	case "somavara", "somvar":
		return 1, nil
	case "mangalavara", "mangalvar":
		return 2, nil
	case "budhavara", "budhvar":
		return 3, nil
	case "guruvara", "guruvar":
		return 4, nil
	case "shukravara", "shukravar":
		return 5, nil
	case "shanivara", "shanivar":
		return 6, nil
	}
	return 0, fmt.Errorf("unknown vara %q", name)
}

// TithiGroupIndex resolves a tithi group name.
func TithiGroupIndex(name string) (int, error) {
	key := foldName(name)
	for i, n := range TithiGroupNames {
		if foldName(n) == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown tithi group %q", name)
}

func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
