// Package specs builds regex extractors for product specification values
// from criterion metadata at runtime. Each criterion's unit drives pattern
// generation; criteria whose values have no regular unit form (resolution,
// panel type, ...) use a hand-tuned special-case table.
package specs

import (
	"regexp"
	"sort"
	"strings"

	"github.com/maltedev/shopintel/internal/models"
)

// Pattern scans free text for the value of one criterion key. Group is the
// index of the capture group holding the value.
type Pattern struct {
	Re    *regexp.Regexp
	Key   string
	Group int
}

type template struct {
	expr  string
	group int
}

// Unit-based templates. The expression must contain at least one capturing
// group for the value.
var unitTemplates = map[string]template{
	"dB":     {`(\d+)\s*db\b`, 0},
	"L":      {`(\d+)\s*(?:liters?|litres?|L)\b`, 0},
	"kg":     {`(\d+(?:\.\d+)?)\s*kg\b`, 0},
	"g":      {`(\d+)\s*g\b`, 0},
	"W":      {`(\d+)\s*W\b`, 0},
	"BTU":    {`(\d[\d,]*)\s*BTU\b`, 0},
	"RPM":    {`(\d+)\s*RPM\b`, 0},
	"Hz":     {`(\d+)\s*Hz\b`, 0},
	"inches": {`(\d{2,3})\s*["″]|(\d{2,3})\s*inch`, 0},
	"GB":     {`(\d+)\s*GB\b`, 0},
	"TB":     {`(\d+)\s*TB\b`, 0},
	"mm":     {`(\d+)\s*mm\b`, 0},
	"cm":     {`(\d+)\s*cm\b`, 0},
	"hours":  {`(\d+)\s*(?:hours?|hrs?)\b`, 0},
	"min":    {`(\d+)\s*(?:minutes?|mins?)\b`, 0},
	"m²":     {`(\d+)\s*(?:m²|m2\b|sqm\b)`, 0},
	"years":  {`(\d+)\s*(?:years?|yrs?)\b`, 0},
	"°C":     {`(\d+)\s*°?C\b`, 0},
	"kW":     {`(\d[\d.]*)\s*kW\b`, 0},
}

// Criteria whose values cannot be matched by a unit alone.
var specialTemplates = map[string]template{
	"resolution":       {`\b(4K|8K|UHD|Full\s*HD|FHD|QHD|1080p|2160p)\b`, 0},
	"panel_type":       {`\b(OLED|QLED|Mini.?LED|Neo\s*QLED|LED|IPS|VA|TN)\b`, 0},
	"energy_rating":    {`\b(A\+{0,3}|[A-G])\s*energy\b`, 1},
	"processor":        {`\b(i[3579][-\s]?\d{4,5}\w*|Ryzen\s*\d\s*\d{4}\w*|M[1-4]\s*(?:Pro|Max|Ultra)?)\b`, 0},
	"ram":              {`(\d+)\s*GB\s*RAM\b`, 0},
	"storage":          {`(\d+)\s*(?:GB|TB)\s*(?:SSD|HDD|storage)\b`, 0},
	"noise_cancelling": {`\b(ANC|active\s*noise\s*cancell?(?:ing|ation))\b`, 0},
	"frost_free":       {`\b(frost[\s-]*free)\b`, 0},
	"inverter":         {`\b(inverter)\b`, 0},
	"filtration":       {`\b(HEPA|H1[0-4])\b`, 0},
}

// Default criteria used when no set is provided; covers common product
// specs across home appliance and electronics categories.
var defaultCriteria = map[string]models.CriterionSpec{
	"noise_level":      {Unit: "dB"},
	"capacity":         {Unit: "L"},
	"weight":           {Unit: "kg"},
	"power":            {Unit: "W"},
	"cooling_capacity": {Unit: "BTU"},
	"spin_speed":       {Unit: "RPM"},
	"screen_size":      {Unit: "inches"},
	"resolution":       {},
	"panel_type":       {},
	"refresh_rate":     {Unit: "Hz"},
	"energy_rating":    {},
	"processor":        {},
	"ram":              {Unit: "GB"},
	"storage":          {},
	"noise_cancelling": {},
	"frost_free":       {},
	"inverter":         {},
	"filtration":       {},
}

// orderedKeys keeps pattern output deterministic across calls; map
// iteration order would otherwise reshuffle equivalent inputs.
var orderedDefaultKeys = []string{
	"noise_level", "capacity", "weight", "power", "cooling_capacity",
	"spin_speed", "screen_size", "resolution", "panel_type", "refresh_rate",
	"energy_rating", "processor", "ram", "storage", "noise_cancelling",
	"frost_free", "inverter", "filtration",
}

// BuildExtractionPatterns compiles one pattern per criterion key. Keys are
// resolved against the special table first, then the unit template table.
// Keys with no match in either are skipped: pattern building is best
// effort, not a failure path. The "price" key is always excluded since
// price extraction has its own parser.
func BuildExtractionPatterns(criteria map[string]models.CriterionSpec) []Pattern {
	keys := orderedDefaultKeys
	source := defaultCriteria
	if criteria != nil {
		source = criteria
		keys = sortedKeys(criteria)
	}

	patterns := make([]Pattern, 0, len(keys))
	for _, key := range keys {
		if key == "price" {
			continue
		}
		tpl, ok := specialTemplates[key]
		if !ok {
			unit := source[key].Unit
			if unit == "" {
				continue
			}
			tpl, ok = unitTemplates[unit]
			if !ok {
				continue
			}
		}
		patterns = append(patterns, Pattern{
			Re:    regexp.MustCompile(`(?i)` + tpl.expr),
			Key:   key,
			Group: tpl.group,
		})
	}
	return patterns
}

// ExtractSpecsFromText scans free text with pre-built patterns. First match
// per key wins.
func ExtractSpecsFromText(text string, patterns []Pattern) map[string]string {
	found := make(map[string]string)
	if text == "" {
		return found
	}
	for _, p := range patterns {
		if _, ok := found[p.Key]; ok {
			continue
		}
		if value := p.Match(text); value != "" {
			found[p.Key] = value
		}
	}
	return found
}

// Match runs the pattern against text and returns the trimmed captured
// value, or "" when there is no match.
func (p Pattern) Match(text string) string {
	m := p.Re.FindStringSubmatch(text)
	if m == nil || p.Group >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[p.Group])
}

func sortedKeys(m map[string]models.CriterionSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
