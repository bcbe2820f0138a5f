package scraper

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/shopintel/internal/dom"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/parser"
	"github.com/maltedev/shopintel/internal/specs"
	"github.com/maltedev/shopintel/internal/strategy"
)

// DefaultMaxProducts bounds records emitted per page.
const DefaultMaxProducts = 50

// maxCriterionTextLen mirrors the discovery-time bound: a criterion value
// longer than this is almost certainly a captured sub-tree.
const maxCriterionTextLen = 200

// Extractor applies a learned strategy to one page, producing zero or more
// product records. Every per-field failure (missing element, stale handle)
// is treated as field absence; only a missing name discards a container.
type Extractor struct {
	maxProducts int
	logger      *slog.Logger
}

func NewExtractor(maxProducts int, logger *slog.Logger) *Extractor {
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}
	return &Extractor{
		maxProducts: maxProducts,
		logger:      logger.With("component", "extractor"),
	}
}

// Extract runs the strategy's container selector and extracts one record
// per matched container. A selector mismatch yields an empty list, never
// an error: the caller decides whether that demotes the strategy.
func (e *Extractor) Extract(page dom.Page, strat *strategy.Strategy, pageURL string, criteria map[string]models.CriterionSpec) []models.ProductRecord {
	containers, err := page.QuerySelectorAll(strat.ProductContainer)
	if err != nil {
		e.logger.Warn("container selector failed",
			"selector", strat.ProductContainer, "error", err)
		return nil
	}

	if len(containers) > e.maxProducts {
		containers = containers[:e.maxProducts]
	}

	// Text-fallback patterns are shared across all containers on the page.
	patterns := specs.BuildExtractionPatterns(criteria)
	domain := parser.ExtractDomain(pageURL)

	var records []models.ProductRecord
	for _, container := range containers {
		if record, ok := e.extractOne(container, strat, pageURL, domain, patterns); ok {
			records = append(records, record)
		}
	}

	e.logger.Info("extracted products", "domain", domain, "count", len(records))
	return records
}

func (e *Extractor) extractOne(container dom.Element, strat *strategy.Strategy, pageURL, domain string, patterns []specs.Pattern) (models.ProductRecord, bool) {
	name := elementText(container, strat.NameSelector)
	if name == "" {
		return models.ProductRecord{}, false
	}

	var price *float64
	currency := strat.CurrencyHint
	if currency == "" {
		currency = "USD"
	}
	if priceText := elementText(container, strat.PriceSelector); priceText != "" {
		if value, ok := parser.ParsePrice(priceText); ok {
			price = &value
		}
		if detected := parser.DetectCurrency(priceText); detected != "" {
			currency = detected
		}
	}

	productURL := resolveURL(pageURL, elementAttr(container, strat.URLSelector, "href"))

	imageURL := ""
	if src := elementAttr(container, strat.ImageSelector, "src"); src != "" {
		imageURL = resolveURL(pageURL, src)
	} else if src := elementAttr(container, strat.ImageSelector, "data-src"); src != "" {
		imageURL = resolveURL(pageURL, src)
	}

	brand := elementText(container, strat.BrandSelector)
	modelID := elementText(container, strat.MPNSelector)
	if modelID == "" {
		modelID = placeholderID(brand, name)
	}

	criteriaData := e.extractCriteria(container, strat, patterns)

	return models.ProductRecord{
		Name:     name,
		ModelID:  modelID,
		Brand:    brand,
		ImageURL: imageURL,
		Criteria: criteriaData,
		Sellers: []models.Seller{{
			Name:     domain,
			Price:    price,
			Currency: currency,
			URL:      productURL,
		}},
	}, true
}

// extractCriteria fills criterion values in two phases: recorded CSS
// selectors first, then text-regex fallback over the container's full text.
// Neither phase overwrites a value the other already found.
func (e *Extractor) extractCriteria(container dom.Element, strat *strategy.Strategy, patterns []specs.Pattern) map[string]string {
	values := make(map[string]string)

	for key, sel := range strat.CriteriaSelectors {
		text := elementText(container, sel)
		if text != "" && len(text) < maxCriterionTextLen {
			values[key] = text
		}
	}

	if len(patterns) > 0 {
		fullText, err := container.Text()
		if err == nil && fullText != "" {
			for _, p := range patterns {
				if _, ok := values[p.Key]; ok {
					continue
				}
				if value := p.Match(fullText); value != "" {
					values[p.Key] = value
				}
			}
		}
	}

	if len(values) == 0 {
		return nil
	}
	return values
}

// placeholderID synthesizes a non-matching model id from brand+name. The
// 12-hex shape marks it as "not a real MPN" so reconciliation never groups
// on it.
func placeholderID(brand, name string) string {
	key := strings.ToLower(strings.TrimSpace(brand + name))
	if key == "" {
		return ""
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}

func elementText(container dom.Element, selector string) string {
	if selector == "" {
		return ""
	}
	el, err := container.QuerySelector(selector)
	if err != nil || el == nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func elementAttr(container dom.Element, selector, name string) string {
	if selector == "" {
		return ""
	}
	el, err := container.QuerySelector(selector)
	if err != nil || el == nil {
		return ""
	}
	value, err := el.Attribute(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}
