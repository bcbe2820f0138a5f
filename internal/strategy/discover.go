package strategy

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/maltedev/shopintel/internal/dom"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/parser"
)

// DefaultProbeContainers bounds how many matched containers are probed for
// sub-selectors. The first container is sometimes a sponsored or otherwise
// irregular listing, so probing a few raises the hit rate. Tuned, not
// structural.
const DefaultProbeContainers = 3

// maxCriterionTextLen rejects criterion probes that capture a whole
// sub-tree instead of a single value.
const maxCriterionTextLen = 200

// Container selector candidates tried in order: attribute-based product
// markers first, class-name substrings next, generic tag+class patterns
// last.
var containerCandidates = []string{
	"[data-product-id]",
	"[data-item-id]",
	".product-card",
	".product-item",
	".product-tile",
	".product-listing",
	".product-box",
	".search-result",
	".s-result-item",
	".product",
	"li[class*='product']",
	"div[class*='product']",
	"article[class*='product']",
	"div[class*='Product']",
	"div[class*='item']",
	"div[class*='Item']",
}

var nameCandidates = []string{
	"h2 a", "h3 a", "h2", "h3",
	"[class*='title'] a", "[class*='name'] a",
	"[class*='Title'] a", "[class*='Name'] a",
	"[class*='title']", "[class*='name']",
	"[class*='Title']", "[class*='Name']",
	"a[class*='product']",
	"a[class*='Product']",
	"a[class*='Model']",
}

var priceCandidates = []string{
	"[class*='price']",
	"[class*='Price']",
	"[data-price]",
	"[data-min-price]",
	"span[class*='amount']",
	"[class*='cost']",
	"[class*='Cost']",
}

var imageCandidates = []string{
	"img[src*='product']", "img[data-src]",
	"img[class*='product']", "img[class*='Product']",
	"img[loading]", "img",
}

var urlCandidates = []string{
	"a[href*='/product']", "a[href*='/dp/']",
	"a[href*='/item']", "a[href*='/p/']",
	"a[href*='/model']", "a[href*='pid=']",
	"a[href]",
}

// pricePatternScript runs inside the page: it walks text nodes for
// currency-adjacent numbers, groups their parents by (tag, class), and
// returns the most frequent group with at least two occurrences.
const pricePatternScript = `() => {
	const currencyPattern = /[$₪€£¥]\s*[\d,.]+|[\d,.]+\s*[$₪€£¥]/;
	const priceElements = [];

	const walker = document.createTreeWalker(
		document.body, NodeFilter.SHOW_TEXT, null
	);

	while (walker.nextNode()) {
		const text = walker.currentNode.textContent.trim();
		if (currencyPattern.test(text)) {
			const parent = walker.currentNode.parentElement;
			if (parent) {
				priceElements.push({
					parentTag: parent.parentElement?.tagName.toLowerCase() || '',
					parentClass: parent.parentElement?.className || ''
				});
			}
		}
	}

	const groups = {};
	for (const el of priceElements) {
		const key = el.parentTag + '.' + el.parentClass;
		groups[key] = (groups[key] || 0) + 1;
	}

	let bestKey = null;
	let bestCount = 0;
	for (const [key, count] of Object.entries(groups)) {
		if (count >= 2 && count > bestCount) {
			bestKey = key;
			bestCount = count;
		}
	}

	if (!bestKey) return null;

	const dot = bestKey.indexOf('.');
	return { tag: bestKey.slice(0, dot), className: bestKey.slice(dot + 1), count: bestCount };
}`

// Discoverer infers a Strategy from a page with no prior knowledge of its
// markup.
type Discoverer struct {
	probeContainers int
	logger          *slog.Logger
}

func NewDiscoverer(probeContainers int, logger *slog.Logger) *Discoverer {
	if probeContainers <= 0 {
		probeContainers = DefaultProbeContainers
	}
	return &Discoverer{
		probeContainers: probeContainers,
		logger:          logger.With("component", "discovery"),
	}
}

// Discover runs the ordered heuristic search for a product container and
// its sub-fields, falling back to the in-page price-pattern walk when no
// CSS candidate fits. Returns nil when the page is unscrapable; that is a
// normal outcome, not an error. The product query is advisory and not yet
// used for ranking.
func (d *Discoverer) Discover(page dom.Page, productQuery string, criteria map[string]models.CriterionSpec) *Strategy {
	for _, containerSel := range containerCandidates {
		containers, err := page.QuerySelectorAll(containerSel)
		if err != nil {
			continue
		}
		// A single match is indistinguishable from incidental markup;
		// product listings repeat.
		if len(containers) < 2 {
			continue
		}

		d.logger.Info("container candidate matched",
			"selector", containerSel, "count", len(containers))

		strat := d.probeContainerSet(containers, containerSel)
		if strat == nil {
			continue
		}
		strat.CriteriaSelectors = d.probeCriteria(containers[0], criteria)
		return strat
	}

	if strat := d.discoverByPricePattern(page); strat != nil {
		return strat
	}

	d.logger.Warn("no scraping strategy discovered", "query", productQuery)
	return nil
}

// probeContainerSet probes up to probeContainers matched containers for
// field sub-selectors; the first hit per field wins. Name is the only
// mandatory field.
func (d *Discoverer) probeContainerSet(containers []dom.Element, containerSel string) *Strategy {
	probe := containers
	if len(probe) > d.probeContainers {
		probe = probe[:d.probeContainers]
	}

	var nameSel, priceSel, imageSel, urlSel string
	var priceEl dom.Element
	for _, container := range probe {
		if nameSel == "" {
			nameSel, _ = findSelector(container, nameCandidates)
		}
		if priceSel == "" {
			priceSel, priceEl = findPriceSelector(container)
		}
		if imageSel == "" {
			imageSel, _ = findSelector(container, imageCandidates)
		}
		if urlSel == "" {
			urlSel, _ = findSelector(container, urlCandidates)
		}
	}

	if nameSel == "" {
		return nil
	}

	currencyHint := ""
	if priceEl != nil {
		if text, err := priceEl.Text(); err == nil {
			currencyHint = parser.DetectCurrencyLoose(text)
		}
	}

	return &Strategy{
		ProductContainer: containerSel,
		NameSelector:     nameSel,
		PriceSelector:    priceSel,
		ImageSelector:    imageSel,
		URLSelector:      urlSel,
		CurrencyHint:     currencyHint,
		Version:          1,
		DiscoveryMethod:  MethodCSSCandidates,
	}
}

var criterionKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// probeCriteria tries a few generated selectors per criterion key and
// records the first one whose text looks like a single value.
func (d *Discoverer) probeCriteria(container dom.Element, criteria map[string]models.CriterionSpec) map[string]string {
	if len(criteria) == 0 {
		return nil
	}

	selectors := make(map[string]string)
	for key := range criteria {
		clean := criterionKeyChars.ReplaceAllString(key, "")
		if clean == "" {
			continue
		}
		candidates := []string{
			fmt.Sprintf("[class*='%s']", clean),
			fmt.Sprintf("[class*='%s']", strings.SplitN(clean, "_", 2)[0]),
			fmt.Sprintf("[data-spec='%s']", clean),
			fmt.Sprintf("[data-attribute='%s']", clean),
		}
		for _, sel := range candidates {
			el, err := container.QuerySelector(sel)
			if err != nil || el == nil {
				continue
			}
			text, err := el.Text()
			if err != nil || text == "" || len(text) >= maxCriterionTextLen {
				continue
			}
			selectors[key] = sel
			break
		}
	}

	if len(selectors) == 0 {
		return nil
	}
	return selectors
}

// discoverByPricePattern is the last-resort path: ask the page itself where
// currency-adjacent numbers cluster and treat the densest parent group as
// the product container.
func (d *Discoverer) discoverByPricePattern(page dom.Page) *Strategy {
	result, err := page.Evaluate(pricePatternScript)
	if err != nil || result == nil {
		return nil
	}

	group, ok := result.(map[string]any)
	if !ok {
		return nil
	}
	tag, _ := group["tag"].(string)
	className, _ := group["className"].(string)
	if tag == "" {
		tag = "div"
	}

	// className can be a whitespace-only string (class=" "); Fields then
	// yields nothing and the selector stays the bare tag.
	containerSel := tag
	if fields := strings.Fields(className); len(fields) > 0 {
		containerSel = tag + "." + fields[0]
	}

	// Re-verify outside the page script before trusting the group.
	containers, err := page.QuerySelectorAll(containerSel)
	if err != nil || len(containers) < 2 {
		return nil
	}

	nameSel, _ := findSelector(containers[0], nameCandidates)
	if nameSel == "" {
		nameSel = "a"
	}
	priceSel, _ := findPriceSelector(containers[0])
	if priceSel == "" {
		// The walked text node sat in a span more often than not.
		priceSel = "span"
	}

	d.logger.Info("price-pattern fallback matched",
		"selector", containerSel, "count", len(containers))

	return &Strategy{
		ProductContainer: containerSel,
		NameSelector:     nameSel,
		PriceSelector:    priceSel,
		Version:          1,
		DiscoveryMethod:  MethodPricePattern,
	}
}

// findPriceSelector is findSelector over the price candidates with an extra
// check that the matched element's text plausibly contains a price; class
// names like "price" also appear on labels and empty placeholders.
func findPriceSelector(container dom.Element) (string, dom.Element) {
	for _, sel := range priceCandidates {
		el, err := container.QuerySelector(sel)
		if err != nil || el == nil {
			continue
		}
		text, err := el.Text()
		if err != nil || !parser.LooksLikePrice(text) {
			continue
		}
		return sel, el
	}
	return "", nil
}

// findSelector tries candidates in priority order against a container and
// returns the first selector that matches, along with the matched element.
func findSelector(container dom.Element, candidates []string) (string, dom.Element) {
	for _, sel := range candidates {
		el, err := container.QuerySelector(sel)
		if err != nil || el == nil {
			continue
		}
		return sel, el
	}
	return "", nil
}
