// Package reconcile deduplicates and merges product records collected
// across sites, validates them against requested criteria, and formats the
// final result set.
package reconcile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/parser"
)

// Format modes.
const (
	FormatSingleProduct   = "single_product"
	FormatMultiProduct    = "multi_product"
	FormatPriceComparison = "price_comparison"
)

// Options carries the tuned reconciliation constants. The defaults come
// from observed behavior, not from any structural requirement, so they stay
// adjustable.
type Options struct {
	// MaxResults caps the formatted output list.
	MaxResults int
	// FuzzyThreshold is the minimum token-overlap ratio (against the
	// shorter name) for two names to be considered the same product.
	FuzzyThreshold float64
	// MinTokens is the minimum token count both names need before fuzzy
	// matching applies; single-word names collide too easily.
	MinTokens int
}

func DefaultOptions() Options {
	return Options{
		MaxResults:     20,
		FuzzyThreshold: 0.6,
		MinTokens:      2,
	}
}

// Engine reconciles extracted records. Zero value is not usable; construct
// with New.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = 0.6
	}
	if opts.MinTokens <= 0 {
		opts.MinTokens = 2
	}
	return &Engine{opts: opts}
}

// placeholderIDRe recognizes the synthesized 12-hex model ids. Those must
// never participate in exact-id grouping: two unrelated products can only
// collide into the same hash by coincidence of brand+name text.
var placeholderIDRe = regexp.MustCompile(`^[0-9a-f]{12}$`)

// Aggregate merges records that appear to be the same physical product.
// Records with a real MPN group by exact id; the rest fall back to greedy
// fuzzy name matching.
func (e *Engine) Aggregate(records []models.ProductRecord) []models.ProductRecord {
	if len(records) == 0 {
		return nil
	}

	idGroups := make(map[string][]models.ProductRecord)
	var idOrder []string
	var ungrouped []models.ProductRecord

	for _, record := range records {
		id := record.ModelID
		if id != "" && !placeholderIDRe.MatchString(id) {
			if _, ok := idGroups[id]; !ok {
				idOrder = append(idOrder, id)
			}
			idGroups[id] = append(idGroups[id], record)
		} else {
			ungrouped = append(ungrouped, record)
		}
	}

	// Greedy fuzzy grouping: each record is compared against the first
	// member of each existing group only. An approximation, and an
	// accepted one.
	var fuzzyGroups [][]models.ProductRecord
	for _, record := range ungrouped {
		matched := false
		for i := range fuzzyGroups {
			if e.namesMatch(record.Name, fuzzyGroups[i][0].Name) {
				fuzzyGroups[i] = append(fuzzyGroups[i], record)
				matched = true
				break
			}
		}
		if !matched {
			fuzzyGroups = append(fuzzyGroups, []models.ProductRecord{record})
		}
	}

	merged := make([]models.ProductRecord, 0, len(idOrder)+len(fuzzyGroups))
	for _, id := range idOrder {
		merged = append(merged, mergeGroup(idGroups[id]))
	}
	for _, group := range fuzzyGroups {
		merged = append(merged, mergeGroup(group))
	}
	return merged
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

func normalizeName(name string) string {
	text := strings.ToLower(strings.TrimSpace(name))
	text = spaceRe.ReplaceAllString(text, " ")
	text = nonWordRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (e *Engine) namesMatch(a, b string) bool {
	normA := normalizeName(a)
	normB := normalizeName(b)

	if normA == normB {
		return true
	}

	tokensA := tokenSet(normA)
	tokensB := tokenSet(normB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	shorter, longer := tokensA, tokensB
	if len(tokensB) < len(tokensA) {
		shorter, longer = tokensB, tokensA
	}
	if len(shorter) < e.opts.MinTokens {
		return false
	}

	overlap := 0
	for token := range shorter {
		if _, ok := longer[token]; ok {
			overlap++
		}
	}
	return float64(overlap)/float64(len(shorter)) >= e.opts.FuzzyThreshold
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}

type sellerKey struct {
	domain   string
	price    float64
	unpriced bool
}

// mergeGroup unions sellers across a group (deduped by domain+price,
// price-ascending with unpriced sellers last) and fills brand, image, and
// criteria from the first member that has each value.
func mergeGroup(group []models.ProductRecord) models.ProductRecord {
	if len(group) == 1 {
		return group[0]
	}

	base := group[0]
	merged := models.ProductRecord{
		Name:     base.Name,
		ModelID:  base.ModelID,
		Brand:    base.Brand,
		Category: base.Category,
		ImageURL: base.ImageURL,
		Criteria: make(map[string]string, len(base.Criteria)),
	}
	for k, v := range base.Criteria {
		merged.Criteria[k] = v
	}

	seen := make(map[sellerKey]struct{})
	for _, record := range group {
		for _, seller := range record.Sellers {
			key := sellerKey{domain: sellerDomain(seller)}
			if seller.Price != nil {
				key.price = *seller.Price
			} else {
				key.unpriced = true
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged.Sellers = append(merged.Sellers, seller)
		}

		if merged.ImageURL == "" && record.ImageURL != "" {
			merged.ImageURL = record.ImageURL
		}
		if merged.Brand == "" && record.Brand != "" {
			merged.Brand = record.Brand
		}
		for k, v := range record.Criteria {
			if _, ok := merged.Criteria[k]; !ok && v != "" {
				merged.Criteria[k] = v
			}
		}
	}

	sort.SliceStable(merged.Sellers, func(i, j int) bool {
		pi, pj := merged.Sellers[i].Price, merged.Sellers[j].Price
		if (pi == nil) != (pj == nil) {
			return pj == nil
		}
		if pi == nil {
			return false
		}
		return *pi < *pj
	})

	if len(merged.Criteria) == 0 {
		merged.Criteria = nil
	}
	return merged
}

func sellerDomain(s models.Seller) string {
	if d := parser.ExtractDomain(s.URL); d != "" {
		return d
	}
	return s.Name
}

// Validation is the per-record result of Validate.
type Validation struct {
	Record       models.ProductRecord `json:"product"`
	Valid        bool                 `json:"valid"`
	Completeness float64              `json:"completeness"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Validate checks each record and scores how completely it covers the
// requested criteria. Only a missing name invalidates a record; missing
// price or seller URL just warn.
func (e *Engine) Validate(records []models.ProductRecord, criteria map[string]models.CriterionSpec) []Validation {
	results := make([]Validation, 0, len(records))
	for _, record := range records {
		v := Validation{Record: record, Valid: true}

		if record.Name == "" {
			v.Warnings = append(v.Warnings, "missing_name")
			v.Valid = false
		}

		hasPrice := record.BestPrice() != nil
		if !hasPrice {
			v.Warnings = append(v.Warnings, "no_price")
		}

		hasURL := false
		for _, s := range record.Sellers {
			if s.URL != "" {
				hasURL = true
				break
			}
		}
		if !hasURL {
			v.Warnings = append(v.Warnings, "no_seller_url")
		}

		if len(criteria) > 0 {
			matched := 0
			for key := range criteria {
				if key == "price" {
					if hasPrice {
						matched++
					}
				} else if record.Criteria[key] != "" {
					matched++
				}
			}
			v.Completeness = float64(matched) / float64(len(criteria))
		}

		results = append(results, v)
	}
	return results
}

// FormattedProduct is one display entry.
type FormattedProduct struct {
	Product      models.ProductRecord `json:"product"`
	SourceCount  int                  `json:"source_count"`
	BestPrice    *float64             `json:"best_price"`
	BestCurrency string               `json:"best_currency"`
}

// Formatted is the final display payload.
type Formatted struct {
	Products       []FormattedProduct `json:"products"`
	TotalCount     int                `json:"total_count"`
	DisplayedCount int                `json:"displayed_count"`
	SourceCount    int                `json:"source_count"`
	FormatType     string             `json:"format_type"`
}

// Format caps and sorts records for display. price_comparison and
// single_product sort by cheapest available price (unpriced records last);
// multi_product sorts by category, brand, then price.
func (e *Engine) Format(records []models.ProductRecord, formatType string) Formatted {
	allDomains := make(map[string]struct{})
	for _, record := range records {
		for _, s := range record.Sellers {
			if d := sellerDomain(s); d != "" {
				allDomains[d] = struct{}{}
			}
		}
	}

	capped := make([]models.ProductRecord, len(records))
	copy(capped, records)
	if len(capped) > e.opts.MaxResults {
		capped = capped[:e.opts.MaxResults]
	}

	switch formatType {
	case FormatMultiProduct:
		sort.SliceStable(capped, func(i, j int) bool {
			if capped[i].Category != capped[j].Category {
				return capped[i].Category < capped[j].Category
			}
			if capped[i].Brand != capped[j].Brand {
				return capped[i].Brand < capped[j].Brand
			}
			return lessByBestPrice(&capped[i], &capped[j])
		})
	default:
		// single_product and price_comparison both rank by best price.
		sort.SliceStable(capped, func(i, j int) bool {
			return lessByBestPrice(&capped[i], &capped[j])
		})
	}

	products := make([]FormattedProduct, 0, len(capped))
	for _, record := range capped {
		domains := make(map[string]struct{})
		for _, s := range record.Sellers {
			if d := sellerDomain(s); d != "" {
				domains[d] = struct{}{}
			}
		}
		products = append(products, FormattedProduct{
			Product:      record,
			SourceCount:  len(domains),
			BestPrice:    record.BestPrice(),
			BestCurrency: record.BestCurrency(),
		})
	}

	return Formatted{
		Products:       products,
		TotalCount:     len(records),
		DisplayedCount: len(capped),
		SourceCount:    len(allDomains),
		FormatType:     formatType,
	}
}

func lessByBestPrice(a, b *models.ProductRecord) bool {
	pa, pb := a.BestPrice(), b.BestPrice()
	if (pa == nil) != (pb == nil) {
		return pb == nil
	}
	if pa == nil {
		return false
	}
	return *pa < *pb
}
