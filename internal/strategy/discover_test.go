package strategy

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shopintel/internal/dom"
	"github.com/maltedev/shopintel/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const listingHTML = `
<html><body>
  <div class="product-card">
    <h2><a href="/products/100">Bosch Serie 6 Washing Machine</a></h2>
    <span class="price">€1.299,99</span>
    <img data-src="/img/100.jpg">
    <span class="noise_level-value">49 dB</span>
  </div>
  <div class="product-card">
    <h2><a href="/products/101">Samsung EcoBubble 9kg</a></h2>
    <span class="price">€849,00</span>
    <img data-src="/img/101.jpg">
    <span class="noise_level-value">52 dB</span>
  </div>
  <div class="product-card">
    <h2><a href="/products/102">LG TurboWash 360</a></h2>
    <span class="price">€999,00</span>
    <img data-src="/img/102.jpg">
    <span class="noise_level-value">47 dB</span>
  </div>
</body></html>`

func TestDiscoverCSSCandidates(t *testing.T) {
	page, err := dom.NewDocument(listingHTML)
	require.NoError(t, err)

	d := NewDiscoverer(0, testLogger())
	criteria := map[string]models.CriterionSpec{
		"noise_level": {DisplayName: "Noise Level", Unit: "dB"},
	}

	strat := d.Discover(page, "washing machine", criteria)
	require.NotNil(t, strat)

	assert.Equal(t, ".product-card", strat.ProductContainer)
	assert.Equal(t, "h2 a", strat.NameSelector)
	assert.Equal(t, "[class*='price']", strat.PriceSelector)
	assert.Equal(t, "img[data-src]", strat.ImageSelector)
	assert.Equal(t, "a[href*='/product']", strat.URLSelector)
	assert.Equal(t, "EUR", strat.CurrencyHint)
	assert.Equal(t, MethodCSSCandidates, strat.DiscoveryMethod)
	assert.Equal(t, "[class*='noise_level']", strat.CriteriaSelectors["noise_level"])
}

func TestDiscoverRejectsSingleContainer(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/products/1">Lonely Product</a></h2>
		    <span class="price">$10.00</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	d := NewDiscoverer(0, testLogger())
	assert.Nil(t, d.Discover(page, "anything", nil))
}

func TestDiscoverRequiresName(t *testing.T) {
	// Repeating containers with prices but nothing name-like must not
	// produce a strategy.
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card"><span class="price">$10.00</span></div>
		  <div class="product-card"><span class="price">$20.00</span></div>
		</body></html>`)
	require.NoError(t, err)

	d := NewDiscoverer(0, testLogger())
	assert.Nil(t, d.Discover(page, "anything", nil))
}

func TestDiscoverProbesLaterContainers(t *testing.T) {
	// The first container is a teaser with no price; a later probed one
	// still supplies the price selector and currency hint.
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/products/1">Sponsored Teaser</a></h2>
		  </div>
		  <div class="product-card">
		    <h2><a href="/products/2">Real Product</a></h2>
		    <span class="price">$299.99</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	d := NewDiscoverer(0, testLogger())
	strat := d.Discover(page, "anything", nil)
	require.NotNil(t, strat)
	assert.Equal(t, "[class*='price']", strat.PriceSelector)
	assert.Equal(t, "USD", strat.CurrencyHint)
}

func TestDiscoverSkipsPricelessPriceElements(t *testing.T) {
	// A "price" class on a bare label must not win over a candidate whose
	// text actually carries a number.
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/p/1">First</a></h2>
		    <span class="price-label">Price:</span>
		    <span class="cost">$49.00</span>
		  </div>
		  <div class="product-card">
		    <h2><a href="/p/2">Second</a></h2>
		    <span class="price-label">Price:</span>
		    <span class="cost">$59.00</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	d := NewDiscoverer(0, testLogger())
	strat := d.Discover(page, "anything", nil)
	require.NotNil(t, strat)
	assert.Equal(t, "[class*='cost']", strat.PriceSelector)
}

// scriptedPage wraps a static document but answers Evaluate with a canned
// result, standing in for a live page running the price-pattern walk.
type scriptedPage struct {
	dom.Page
	result any
}

func (p *scriptedPage) Evaluate(string) (any, error) {
	return p.result, nil
}

func TestDiscoverPricePatternFallback(t *testing.T) {
	// The offer rows match no container candidate, so discovery falls
	// through to the in-page price clustering result.
	doc, err := dom.NewDocument(`
		<html><body>
		  <div class="offer"><a href="/o/1">First</a><span>$12.00</span></div>
		  <div class="offer"><a href="/o/2">Second</a><span>$15.50</span></div>
		  <div class="offer"><a href="/o/3">Third</a><span>$9.99</span></div>
		</body></html>`)
	require.NoError(t, err)

	page := &scriptedPage{
		Page:   doc,
		result: map[string]any{"tag": "div", "className": "offer", "count": 3},
	}

	d := NewDiscoverer(0, testLogger())
	strat := d.Discover(page, "anything", nil)
	require.NotNil(t, strat)

	assert.Equal(t, "div.offer", strat.ProductContainer)
	assert.Equal(t, "a", strat.NameSelector)
	assert.Equal(t, "span", strat.PriceSelector)
	assert.Equal(t, MethodPricePattern, strat.DiscoveryMethod)
}

func TestDiscoverPricePatternWhitespaceClassName(t *testing.T) {
	// Pages can report a whitespace-only class for the clustered parent
	// (class=" " is truthy in the page script). The selector must fall
	// back to the bare tag instead of panicking on an empty token list.
	doc, err := dom.NewDocument(`
		<html><body>
		  <div class=" "><a href="/o/1">First</a><span>$12.00</span></div>
		  <div class=" "><a href="/o/2">Second</a><span>$15.50</span></div>
		</body></html>`)
	require.NoError(t, err)

	page := &scriptedPage{
		Page:   doc,
		result: map[string]any{"tag": "div", "className": " ", "count": 2},
	}

	d := NewDiscoverer(0, testLogger())
	strat := d.Discover(page, "anything", nil)
	require.NotNil(t, strat)
	assert.Equal(t, "div", strat.ProductContainer)
	assert.Equal(t, MethodPricePattern, strat.DiscoveryMethod)
}

func TestDiscoverPricePatternReverifies(t *testing.T) {
	// A group the page reports but the DOM cannot confirm twice is
	// discarded.
	doc, err := dom.NewDocument(`
		<html><body>
		  <div class="offer"><span>$12.00</span></div>
		</body></html>`)
	require.NoError(t, err)

	page := &scriptedPage{
		Page:   doc,
		result: map[string]any{"tag": "div", "className": "offer", "count": 2},
	}

	d := NewDiscoverer(0, testLogger())
	assert.Nil(t, d.Discover(page, "anything", nil))
}
