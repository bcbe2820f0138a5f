package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogResolvesAliases(t *testing.T) {
	c := NewCatalog()

	for _, alias := range []string{"washer", "washing machine", "Washing Machines"} {
		got := c.Criteria(alias)
		require.NotNil(t, got, "alias %q", alias)
		assert.Contains(t, got, "spin_speed")
	}

	assert.Equal(t, c.Criteria("fridge"), c.Criteria("refrigerator"))
}

func TestCatalogUnknownCategory(t *testing.T) {
	c := NewCatalog()
	assert.Nil(t, c.Criteria("spaceship"))
	assert.Nil(t, c.Criteria(""))
}

func TestEveryCategoryIncludesPrice(t *testing.T) {
	c := NewCatalog()

	for _, category := range []string{
		"refrigerator", "washing_machine", "tv", "laptop",
		"headphones", "air_conditioner", "vacuum",
	} {
		got := c.Criteria(category)
		require.NotNil(t, got, "category %q", category)
		assert.Contains(t, got, "price", "category %q", category)
	}
}
