// Package strategy holds the learned per-domain scraping recipe, its
// persistence contract, and the discovery engine that infers a recipe from
// an unknown page.
package strategy

import (
	"encoding/json"
	"fmt"
)

// Discovery method tags recorded on a strategy.
const (
	MethodCSSCandidates = "css_candidates"
	MethodPricePattern  = "price_pattern"
)

// Strategy is the learned recipe for one domain: a container selector plus
// optional sub-selectors for each product field. It is immutable for the
// duration of a scrape and replaced wholesale on re-discovery.
type Strategy struct {
	ProductContainer  string            `json:"product_container"`
	NameSelector      string            `json:"name_selector,omitempty"`
	PriceSelector     string            `json:"price_selector,omitempty"`
	ImageSelector     string            `json:"image_selector,omitempty"`
	URLSelector       string            `json:"url_selector,omitempty"`
	BrandSelector     string            `json:"brand_selector,omitempty"`
	MPNSelector       string            `json:"mpn_selector,omitempty"`
	CurrencyHint      string            `json:"currency_hint,omitempty"`
	CriteriaSelectors map[string]string `json:"criteria_selectors,omitempty"`
	Version           int               `json:"version"`
	DiscoveryMethod   string            `json:"discovery_method"`
}

// Marshal serializes the strategy for persistence.
func (s *Strategy) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strategy: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a persisted strategy. Unknown fields from newer
// schema versions are ignored.
func Unmarshal(data []byte) (*Strategy, error) {
	var s Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}
	return &s, nil
}
