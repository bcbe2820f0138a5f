// Package criteria supplies the specification keys to look for per product
// category. The engine consumes criteria, it does not research them; this
// static catalog stands in for the external research service and covers the
// common appliance and electronics categories.
package criteria

import (
	"strings"

	"github.com/maltedev/shopintel/internal/models"
)

// Supplier resolves a product category to its criterion set. Unknown
// categories yield nil, which the engine treats as "use defaults".
type Supplier interface {
	Criteria(category string) map[string]models.CriterionSpec
}

// Catalog is the built-in Supplier.
type Catalog struct{}

func NewCatalog() *Catalog {
	return &Catalog{}
}

var categoryAliases = map[string]string{
	"fridge":           "refrigerator",
	"fridges":          "refrigerator",
	"refrigerators":    "refrigerator",
	"washing machine":  "washing_machine",
	"washing machines": "washing_machine",
	"washer":           "washing_machine",
	"tvs":              "tv",
	"television":       "tv",
	"televisions":      "tv",
	"laptops":          "laptop",
	"notebook":         "laptop",
	"headphone":        "headphones",
	"earphones":        "headphones",
	"ac":               "air_conditioner",
	"air conditioner":  "air_conditioner",
	"air conditioners": "air_conditioner",
	"vacuum cleaner":   "vacuum",
	"vacuum cleaners":  "vacuum",
}

var catalog = map[string]map[string]models.CriterionSpec{
	"refrigerator": {
		"capacity":      {DisplayName: "Capacity", Unit: "L", Importance: "high"},
		"energy_rating": {DisplayName: "Energy rating", Importance: "high"},
		"noise_level":   {DisplayName: "Noise level", Unit: "dB", Importance: "medium"},
		"frost_free":    {DisplayName: "Frost free", Importance: "medium"},
		"inverter":      {DisplayName: "Inverter compressor", Importance: "low"},
		"price":         {DisplayName: "Price", Importance: "high"},
	},
	"washing_machine": {
		"capacity":      {DisplayName: "Load capacity", Unit: "kg", Importance: "high"},
		"spin_speed":    {DisplayName: "Spin speed", Unit: "RPM", Importance: "medium"},
		"noise_level":   {DisplayName: "Noise level", Unit: "dB", Importance: "medium"},
		"energy_rating": {DisplayName: "Energy rating", Importance: "high"},
		"price":         {DisplayName: "Price", Importance: "high"},
	},
	"tv": {
		"screen_size":  {DisplayName: "Screen size", Unit: "inches", Importance: "high"},
		"resolution":   {DisplayName: "Resolution", Importance: "high"},
		"panel_type":   {DisplayName: "Panel type", Importance: "medium"},
		"refresh_rate": {DisplayName: "Refresh rate", Unit: "Hz", Importance: "medium"},
		"price":        {DisplayName: "Price", Importance: "high"},
	},
	"laptop": {
		"processor":   {DisplayName: "Processor", Importance: "high"},
		"ram":         {DisplayName: "RAM", Unit: "GB", Importance: "high"},
		"storage":     {DisplayName: "Storage", Importance: "high"},
		"screen_size": {DisplayName: "Screen size", Unit: "inches", Importance: "medium"},
		"weight":      {DisplayName: "Weight", Unit: "kg", Importance: "low"},
		"price":       {DisplayName: "Price", Importance: "high"},
	},
	"headphones": {
		"noise_cancelling": {DisplayName: "Noise cancelling", Importance: "high"},
		"battery_life":     {DisplayName: "Battery life", Unit: "hours", Importance: "medium"},
		"weight":           {DisplayName: "Weight", Unit: "g", Importance: "low"},
		"price":            {DisplayName: "Price", Importance: "high"},
	},
	"air_conditioner": {
		"cooling_capacity": {DisplayName: "Cooling capacity", Unit: "BTU", Importance: "high"},
		"energy_rating":    {DisplayName: "Energy rating", Importance: "high"},
		"noise_level":      {DisplayName: "Noise level", Unit: "dB", Importance: "medium"},
		"inverter":         {DisplayName: "Inverter", Importance: "medium"},
		"price":            {DisplayName: "Price", Importance: "high"},
	},
	"vacuum": {
		"power":       {DisplayName: "Suction power", Unit: "W", Importance: "high"},
		"filtration":  {DisplayName: "Filtration", Importance: "medium"},
		"noise_level": {DisplayName: "Noise level", Unit: "dB", Importance: "medium"},
		"weight":      {DisplayName: "Weight", Unit: "kg", Importance: "low"},
		"price":       {DisplayName: "Price", Importance: "high"},
	},
}

// Criteria returns the criterion set for a category, resolving common
// aliases first. Nil for unknown categories.
func (c *Catalog) Criteria(category string) map[string]models.CriterionSpec {
	key := strings.ToLower(strings.TrimSpace(category))
	if canonical, ok := categoryAliases[key]; ok {
		key = canonical
	}
	return catalog[key]
}
