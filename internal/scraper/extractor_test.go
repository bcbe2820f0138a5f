package scraper

import (
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shopintel/internal/dom"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/strategy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listingStrategy() *strategy.Strategy {
	return &strategy.Strategy{
		ProductContainer: ".product-card",
		NameSelector:     "h2 a",
		PriceSelector:    ".price",
		ImageSelector:    "img",
		URLSelector:      "a[href]",
		BrandSelector:    ".brand",
		Version:          1,
		DiscoveryMethod:  strategy.MethodCSSCandidates,
	}
}

func TestExtractBasicListing(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/products/1">Bosch Serie 6</a></h2>
		    <span class="brand">Bosch</span>
		    <span class="price">$499.99</span>
		    <img src="/img/1.jpg">
		  </div>
		  <div class="product-card">
		    <h2><a href="https://other.example/p/2">Samsung EcoBubble</a></h2>
		    <span class="price">free</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, listingStrategy(), "https://www.shop.example/search", nil)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Bosch Serie 6", first.Name)
	assert.Equal(t, "Bosch", first.Brand)
	assert.Equal(t, "https://www.shop.example/img/1.jpg", first.ImageURL)
	require.Len(t, first.Sellers, 1)
	assert.Equal(t, "shop.example", first.Sellers[0].Name)
	require.NotNil(t, first.Sellers[0].Price)
	assert.Equal(t, 499.99, *first.Sellers[0].Price)
	assert.Equal(t, "USD", first.Sellers[0].Currency)
	assert.Equal(t, "https://www.shop.example/products/1", first.Sellers[0].URL)

	// Unparseable price text stays a null price; absolute hrefs pass
	// through unchanged.
	second := records[1]
	assert.Nil(t, second.Sellers[0].Price)
	assert.Equal(t, "https://other.example/p/2", second.Sellers[0].URL)
}

func TestExtractSkipsNamelessContainers(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card"><span class="price">$10.00</span></div>
		  <div class="product-card">
		    <h2><a href="/p/1">Named</a></h2>
		    <span class="price">$20.00</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, listingStrategy(), "https://shop.example", nil)
	require.Len(t, records, 1)
	assert.Equal(t, "Named", records[0].Name)
}

func TestExtractCurrencyHintAndDetection(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/p/1">Euro Priced</a></h2>
		    <span class="price">€1.299,99</span>
		  </div>
		  <div class="product-card">
		    <h2><a href="/p/2">Bare Number</a></h2>
		    <span class="price">1299</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	strat := listingStrategy()
	strat.CurrencyHint = "ILS"

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, strat, "https://shop.example", nil)
	require.Len(t, records, 2)

	// A currency symbol in the price text overrides the hint; a bare
	// number keeps it.
	assert.Equal(t, "EUR", records[0].Sellers[0].Currency)
	assert.Equal(t, 1299.99, *records[0].Sellers[0].Price)
	assert.Equal(t, "ILS", records[1].Sellers[0].Currency)
}

func TestExtractPlaceholderModelID(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/p/1">Galaxy S24 Ultra</a></h2>
		    <span class="brand">Samsung</span>
		    <span class="price">$1199.00</span>
		  </div>
		  <div class="product-card">
		    <h2><a href="/p/2">Galaxy S24 Ultra</a></h2>
		    <span class="brand">Samsung</span>
		    <span class="price">$1149.00</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, listingStrategy(), "https://shop.example", nil)
	require.Len(t, records, 2)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), records[0].ModelID)
	// Same brand+name hashes to the same placeholder.
	assert.Equal(t, records[0].ModelID, records[1].ModelID)
}

func TestExtractRealModelIDWins(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/p/1">Galaxy S24 Ultra</a></h2>
		    <span class="mpn">SM-S928B</span>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	strat := listingStrategy()
	strat.MPNSelector = ".mpn"

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, strat, "https://shop.example", nil)
	require.Len(t, records, 1)
	assert.Equal(t, "SM-S928B", records[0].ModelID)
}

func TestExtractCriteriaTwoPhase(t *testing.T) {
	page, err := dom.NewDocument(`
		<html><body>
		  <div class="product-card">
		    <h2><a href="/p/1">Quiet Washer</a></h2>
		    <span class="noise">48 dB certified quiet</span>
		    <p>Drum capacity 9 kg, spin speed 1400 RPM, noise 52 dB</p>
		  </div>
		</body></html>`)
	require.NoError(t, err)

	strat := listingStrategy()
	strat.CriteriaSelectors = map[string]string{"noise_level": ".noise"}

	criteria := map[string]models.CriterionSpec{
		"noise_level": {DisplayName: "Noise Level", Unit: "dB"},
		"spin_speed":  {DisplayName: "Spin Speed", Unit: "RPM"},
		"weight":      {DisplayName: "Weight", Unit: "kg"},
	}

	ex := NewExtractor(0, testLogger())
	records := ex.Extract(page, strat, "https://shop.example", criteria)
	require.Len(t, records, 1)

	got := records[0].Criteria
	// The CSS selector value wins over the regex fallback for noise_level.
	assert.Equal(t, "48 dB certified quiet", got["noise_level"])
	assert.Equal(t, "1400 RPM", got["spin_speed"])
	assert.Equal(t, "9 kg", got["weight"])
}

func TestExtractMaxProductsCap(t *testing.T) {
	html := `<html><body>`
	for i := 0; i < 5; i++ {
		html += `<div class="product-card"><h2><a href="/p">Item</a></h2></div>`
	}
	html += `</body></html>`

	page, err := dom.NewDocument(html)
	require.NoError(t, err)

	ex := NewExtractor(3, testLogger())
	records := ex.Extract(page, listingStrategy(), "https://shop.example", nil)
	assert.Len(t, records, 3)
}

func TestExtractBadContainerSelector(t *testing.T) {
	page, err := dom.NewDocument(`<html><body></body></html>`)
	require.NoError(t, err)

	strat := listingStrategy()
	strat.ProductContainer = "div[[["

	ex := NewExtractor(0, testLogger())
	assert.Empty(t, ex.Extract(page, strat, "https://shop.example", nil))
}
