package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shopintel/internal/models"
)

func TestBuildExtractionPatternsFromUnits(t *testing.T) {
	criteria := map[string]models.CriterionSpec{
		"noise_level": {Unit: "dB"},
		"capacity":    {Unit: "L"},
		"spin_speed":  {Unit: "RPM"},
	}

	patterns := BuildExtractionPatterns(criteria)
	require.Len(t, patterns, 3)

	specs := ExtractSpecsFromText("49 dB, 7 L drum at 1400 RPM", patterns)
	assert.Equal(t, "49 dB", specs["noise_level"])
	assert.Equal(t, "7 L", specs["capacity"])
	assert.Equal(t, "1400 RPM", specs["spin_speed"])
}

func TestBuildExtractionPatternsSpecialCases(t *testing.T) {
	criteria := map[string]models.CriterionSpec{
		"resolution":       {},
		"panel_type":       {},
		"noise_cancelling": {},
		"processor":        {},
	}

	patterns := BuildExtractionPatterns(criteria)
	require.Len(t, patterns, 4)

	specs := ExtractSpecsFromText("55in 4K OLED TV with ANC and i7-13700H", patterns)
	assert.Equal(t, "4K", specs["resolution"])
	assert.Equal(t, "OLED", specs["panel_type"])
	assert.Equal(t, "ANC", specs["noise_cancelling"])
	assert.Equal(t, "i7-13700H", specs["processor"])
}

func TestBuildExtractionPatternsSkipsUnknownAndPrice(t *testing.T) {
	criteria := map[string]models.CriterionSpec{
		"price":        {},
		"warranty_fee": {Unit: "shekels"},
		"weight":       {Unit: "kg"},
	}

	patterns := BuildExtractionPatterns(criteria)
	// price is always excluded; an unknown unit is skipped silently.
	require.Len(t, patterns, 1)
	assert.Equal(t, "weight", patterns[0].Key)
}

func TestBuildExtractionPatternsCaseInsensitive(t *testing.T) {
	patterns := BuildExtractionPatterns(map[string]models.CriterionSpec{
		"noise_level": {Unit: "dB"},
	})
	require.Len(t, patterns, 1)

	assert.Equal(t, "45 DB", patterns[0].Match("quiet at 45 DB"))
	assert.Equal(t, "45 db", patterns[0].Match("quiet at 45 db"))
}

func TestBuildExtractionPatternsIdempotent(t *testing.T) {
	criteria := map[string]models.CriterionSpec{
		"noise_level": {Unit: "dB"},
		"ram":         {},
		"capacity":    {Unit: "L"},
	}

	first := BuildExtractionPatterns(criteria)
	second := BuildExtractionPatterns(criteria)
	require.Len(t, second, len(first))

	text := "32 GB RAM, 55 L, runs at 40 dB"
	assert.Equal(t, ExtractSpecsFromText(text, first), ExtractSpecsFromText(text, second))
}

func TestBuildExtractionPatternsDefaults(t *testing.T) {
	patterns := BuildExtractionPatterns(nil)
	require.NotEmpty(t, patterns)

	specs := ExtractSpecsFromText("Full HD display, 1200 W motor, HEPA filter", patterns)
	assert.Equal(t, "Full HD", specs["resolution"])
	assert.Equal(t, "1200 W", specs["power"])
	assert.Equal(t, "HEPA", specs["filtration"])
}
