package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MatchKind selects which facts a yoga rule is matched against.
type MatchKind string

// Rule kinds.
const (
	MatchVaraNakshatra      MatchKind = "vara_nakshatra"
	MatchVaraTithi          MatchKind = "vara_tithi"
	MatchVaraTithiGroup     MatchKind = "vara_tithi_group"
	MatchSunNakshatra       MatchKind = "sun_nakshatra"
	MatchSunMoonOffset      MatchKind = "sun_moon_offset"
	MatchNakshatraVara      MatchKind = "nakshatra_vara"
	MatchVaraTithiNakshatra MatchKind = "vara_tithi_nakshatra"
)

// Polarity marks a yoga as auspicious or inauspicious.
type Polarity string

// Polarities.
const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// RuleCriteria is the typed payload of a rule. Which fields are required or
// allowed depends on the rule kind.
type RuleCriteria struct {
	Vara           []string          `yaml:"vara,omitempty" json:"vara,omitempty"`
	Tithi          []int             `yaml:"tithi,omitempty" json:"tithi,omitempty"`
	TithiGroup     []string          `yaml:"tithi_group,omitempty" json:"tithi_group,omitempty"`
	Nakshatra      []string          `yaml:"nakshatra,omitempty" json:"nakshatra,omitempty"`
	SunNakshatra   []string          `yaml:"sun_nakshatra,omitempty" json:"sun_nakshatra,omitempty"`
	Offsets        []int             `yaml:"offsets,omitempty" json:"offsets,omitempty"`
	Classification map[string]string `yaml:"classification,omitempty" json:"classification,omitempty"`
}

// RuleSpec is one entry of a rule table as written in data.
type RuleSpec struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Polarity    Polarity     `yaml:"polarity" json:"polarity"`
	Kind        MatchKind    `yaml:"kind" json:"kind"`
	Priority    int          `yaml:"priority" json:"priority"`
	Criteria    RuleCriteria `yaml:"criteria" json:"criteria"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Flags       []string     `yaml:"flags,omitempty" json:"flags,omitempty"`
}

// RuleDocument is a versioned rule table.
type RuleDocument struct {
	Version string     `yaml:"version" json:"version"`
	Rules   []RuleSpec `yaml:"rules" json:"rules"`
}

type field int

const (
	fieldVara field = 1 << iota
	fieldTithi
	fieldTithiGroup
	fieldNakshatra
	fieldSunNakshatra
	fieldOffsets
	fieldClassification
)

var fieldNames = map[field]string{
	fieldVara:           "vara",
	fieldTithi:          "tithi",
	fieldTithiGroup:     "tithi_group",
	fieldNakshatra:      "nakshatra",
	fieldSunNakshatra:   "sun_nakshatra",
	fieldOffsets:        "offsets",
	fieldClassification: "classification",
}

// kindSchema lists required and permitted criteria fields per kind.
// oneOf requires at least one of the listed fields.
var kindSchema = map[MatchKind]struct {
	required field
	oneOf    field
	allowed  field
}{
	MatchVaraNakshatra:  {required: fieldVara | fieldNakshatra, allowed: fieldVara | fieldNakshatra},
	MatchVaraTithi:      {required: fieldVara | fieldTithi, allowed: fieldVara | fieldTithi},
	MatchVaraTithiGroup: {required: fieldVara | fieldTithiGroup, allowed: fieldVara | fieldTithiGroup},
	MatchSunNakshatra:   {required: fieldSunNakshatra, allowed: fieldSunNakshatra},
	MatchSunMoonOffset:  {required: fieldOffsets, allowed: fieldOffsets},
	MatchNakshatraVara: {
		required: fieldNakshatra,
		allowed:  fieldNakshatra | fieldVara | fieldClassification,
	},
	MatchVaraTithiNakshatra: {
		required: fieldVara | fieldNakshatra,
		oneOf:    fieldTithi | fieldTithiGroup,
		allowed:  fieldVara | fieldTithi | fieldTithiGroup | fieldNakshatra,
	},
}

func (c RuleCriteria) present() field {
	var f field
	if len(c.Vara) > 0 {
		f |= fieldVara
	}
	if len(c.Tithi) > 0 {
		f |= fieldTithi
	}
	if len(c.TithiGroup) > 0 {
		f |= fieldTithiGroup
	}
	if len(c.Nakshatra) > 0 {
		f |= fieldNakshatra
	}
	if len(c.SunNakshatra) > 0 {
		f |= fieldSunNakshatra
	}
	if len(c.Offsets) > 0 {
		f |= fieldOffsets
	}
	if len(c.Classification) > 0 {
		f |= fieldClassification
	}
	return f
}

func describeFields(f field) string {
	names := make([]string, 0)
	for bit := fieldVara; bit <= fieldClassification; bit <<= 1 {
		if f&bit != 0 {
			names = append(names, fieldNames[bit])
		}
	}
	return strings.Join(names, ", ")
}

// compiledRule holds criteria as bit sets over indices.
type compiledRule struct {
	spec           RuleSpec
	vara           uint8  // bit i = vara i
	tithi          uint32 // bit n = lunar day n (1..30)
	group          uint8  // bit i = tithi group i
	nakshatra      uint32 // bit i = nakshatra i
	sunNakshatra   uint32
	offsets        uint32 // bit i = offset i (0..26)
	classification [7]string
}

// RuleTable is a validated, compiled rule table. It is immutable.
type RuleTable struct {
	version string
	rules   []compiledRule
}

// CompileRules validates a rule document and compiles it for matching.
func CompileRules(doc RuleDocument) (*RuleTable, error) {
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("rule table: version is required")
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rule table %s: no rules", doc.Version)
	}

	seen := make(map[string]bool, len(doc.Rules))
	rules := make([]compiledRule, 0, len(doc.Rules))
	for i, spec := range doc.Rules {
		cr, err := compileRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, spec.ID, err)
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("rule %d: duplicate id %q", i, spec.ID)
		}
		seen[spec.ID] = true
		rules = append(rules, cr)
	}

	return &RuleTable{version: doc.Version, rules: rules}, nil
}

func compileRule(spec RuleSpec) (compiledRule, error) {
	cr := compiledRule{spec: spec}

	if strings.TrimSpace(spec.ID) == "" {
		return cr, fmt.Errorf("id is required")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return cr, fmt.Errorf("name is required")
	}
	if spec.Polarity != Positive && spec.Polarity != Negative {
		return cr, fmt.Errorf("polarity must be %q or %q, got %q", Positive, Negative, spec.Polarity)
	}
	if spec.Priority < 0 {
		return cr, fmt.Errorf("priority must not be negative, got %d", spec.Priority)
	}

	schema, ok := kindSchema[spec.Kind]
	if !ok {
		return cr, fmt.Errorf("unknown kind %q", spec.Kind)
	}
	present := spec.Criteria.present()
	if missing := schema.required &^ present; missing != 0 {
		return cr, fmt.Errorf("kind %s requires criteria: %s", spec.Kind, describeFields(missing))
	}
	if schema.oneOf != 0 && present&schema.oneOf == 0 {
		return cr, fmt.Errorf("kind %s requires one of: %s", spec.Kind, describeFields(schema.oneOf))
	}
	if extra := present &^ schema.allowed; extra != 0 {
		return cr, fmt.Errorf("kind %s does not accept criteria: %s", spec.Kind, describeFields(extra))
	}

	c := spec.Criteria
	for _, name := range c.Vara {
		idx, err := VaraIndex(name)
		if err != nil {
			return cr, err
		}
		cr.vara |= 1 << uint(idx)
	}
	for _, n := range c.Tithi {
		if n < 1 || n > 30 {
			return cr, fmt.Errorf("tithi %d out of range 1..30", n)
		}
		cr.tithi |= 1 << uint(n)
	}
	for _, name := range c.TithiGroup {
		idx, err := TithiGroupIndex(name)
		if err != nil {
			return cr, err
		}
		cr.group |= 1 << uint(idx)
	}
	for _, name := range c.Nakshatra {
		idx, err := NakshatraIndex(name)
		if err != nil {
			return cr, err
		}
		cr.nakshatra |= 1 << uint(idx)
	}
	for _, name := range c.SunNakshatra {
		idx, err := NakshatraIndex(name)
		if err != nil {
			return cr, err
		}
		cr.sunNakshatra |= 1 << uint(idx)
	}
	for _, o := range c.Offsets {
		if o < 0 || o > 26 {
			return cr, fmt.Errorf("offset %d out of range 0..26", o)
		}
		cr.offsets |= 1 << uint(o)
	}
	for varaName, label := range c.Classification {
		idx, err := VaraIndex(varaName)
		if err != nil {
			return cr, fmt.Errorf("classification: %w", err)
		}
		cr.classification[idx] = label
	}

	return cr, nil
}

// Version returns the table version.
func (t *RuleTable) Version() string { return t.version }

// Len returns the number of rules.
func (t *RuleTable) Len() int { return len(t.rules) }

// Rules returns the rule specs in table order.
func (t *RuleTable) Rules() []RuleSpec {
	out := make([]RuleSpec, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.spec
	}
	return out
}

// FactSet is the input to yoga matching. TithiNumber is the lunar day 1..30.
type FactSet struct {
	Vara          int `json:"vara"`
	TithiNumber   int `json:"tithi_number"`
	TithiGroup    int `json:"tithi_group"`
	Nakshatra     int `json:"nakshatra"`
	SunNakshatra  int `json:"sun_nakshatra"`
	SunMoonOffset int `json:"sun_moon_offset"`
}

// NewFactSet derives the tithi group and the Sun-Moon nakshatra offset.
func NewFactSet(vara, tithiNumber, nakshatra, sunNakshatra int) FactSet {
	return FactSet{
		Vara:          vara,
		TithiNumber:   tithiNumber,
		TithiGroup:    TithiGroupOf(tithiNumber),
		Nakshatra:     nakshatra,
		SunNakshatra:  sunNakshatra,
		SunMoonOffset: NakshatraOffset(sunNakshatra, nakshatra),
	}
}

// YogaMatch is a rule bound to the facts that satisfied it.
type YogaMatch struct {
	RuleID         string    `json:"rule_id"`
	Name           string    `json:"name"`
	Polarity       Polarity  `json:"polarity"`
	Kind           MatchKind `json:"kind"`
	Priority       int       `json:"priority"`
	Description    string    `json:"description,omitempty"`
	Flags          []string  `json:"flags,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Vara           string    `json:"vara"`
	TithiNumber    int       `json:"tithi_number"`
	Nakshatra      string    `json:"nakshatra"`
	SunNakshatra   string    `json:"sun_nakshatra"`
}

func has8(set uint8, i int) bool   { return i >= 0 && i < 8 && set&(1<<uint(i)) != 0 }
func has32(set uint32, i int) bool { return i >= 0 && i < 32 && set&(1<<uint(i)) != 0 }

func (r compiledRule) matches(f FactSet) bool {
	switch r.spec.Kind {
	case MatchVaraNakshatra:
		return has8(r.vara, f.Vara) && has32(r.nakshatra, f.Nakshatra)
	case MatchVaraTithi:
		return has8(r.vara, f.Vara) && has32(r.tithi, f.TithiNumber)
	case MatchVaraTithiGroup:
		return has8(r.vara, f.Vara) && has8(r.group, f.TithiGroup)
	case MatchSunNakshatra:
		return has32(r.sunNakshatra, f.SunNakshatra)
	case MatchSunMoonOffset:
		return has32(r.offsets, f.SunMoonOffset)
	case MatchNakshatraVara:
		if r.vara != 0 && !has8(r.vara, f.Vara) {
			return false
		}
		return has32(r.nakshatra, f.Nakshatra)
	case MatchVaraTithiNakshatra:
		if !has8(r.vara, f.Vara) || !has32(r.nakshatra, f.Nakshatra) {
			return false
		}
		return has32(r.tithi, f.TithiNumber) || has8(r.group, f.TithiGroup)
	}
	return false
}

// YogaEngine evaluates a rule table against fact sets.
type YogaEngine struct {
	table *RuleTable
}

// NewYogaEngine binds an engine to a compiled table.
func NewYogaEngine(table *RuleTable) *YogaEngine {
	return &YogaEngine{table: table}
}

// Table returns the engine's rule table.
func (e *YogaEngine) Table() *RuleTable { return e.table }

// Evaluate returns every matching rule ordered by ascending priority.
// Rules of equal priority keep table order.
func (e *YogaEngine) Evaluate(f FactSet) []YogaMatch {
	matches := make([]YogaMatch, 0)
	if e == nil || e.table == nil {
		return matches
	}

	for _, r := range e.table.rules {
		if !r.matches(f) {
			continue
		}
		m := YogaMatch{
			RuleID:      r.spec.ID,
			Name:        r.spec.Name,
			Polarity:    r.spec.Polarity,
			Kind:        r.spec.Kind,
			Priority:    r.spec.Priority,
			Description: r.spec.Description,
			Flags:       r.spec.Flags,
			TithiNumber: f.TithiNumber,
		}
		if f.Vara >= 0 && f.Vara < 7 {
			m.Vara = VaraNames[f.Vara]
			m.Classification = r.classification[f.Vara]
		}
		if f.Nakshatra >= 0 && f.Nakshatra < 27 {
			m.Nakshatra = NakshatraNames[f.Nakshatra]
		}
		if f.SunNakshatra >= 0 && f.SunNakshatra < 27 {
			m.SunNakshatra = NakshatraNames[f.SunNakshatra]
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority < matches[j].Priority
	})
	return matches
}

// YogaSummary aggregates a match list.
type YogaSummary struct {
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Tone     string `json:"tone"`
}

// Summarize counts matches by polarity and labels the overall tone.
func Summarize(matches []YogaMatch) YogaSummary {
	var s YogaSummary
	for _, m := range matches {
		if m.Polarity == Positive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	switch {
	case s.Positive == 0 && s.Negative == 0:
		s.Tone = "neutral"
	case s.Negative == 0:
		s.Tone = "positive"
	case s.Positive == 0:
		s.Tone = "negative"
	case s.Positive > s.Negative:
		s.Tone = "mostly positive"
	case s.Negative > s.Positive:
		s.Tone = "mostly negative"
	default:
		s.Tone = "mixed"
	}
	return s
}
