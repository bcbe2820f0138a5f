package models

// Seller is one offer for a product on a specific site. Price is nil when
// the listing showed no parseable price.
type Seller struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency"`
	URL      string   `json:"url,omitempty"`
}

// ProductRecord is one extracted product listing. At extraction time it
// carries exactly one seller; reconciliation may merge several records into
// one record with multiple sellers.
type ProductRecord struct {
	Name     string            `json:"name"`
	ModelID  string            `json:"model_id,omitempty"`
	Brand    string            `json:"brand,omitempty"`
	Category string            `json:"category,omitempty"`
	Criteria map[string]string `json:"criteria,omitempty"`
	Sellers  []Seller          `json:"sellers"`
	ImageURL string            `json:"image_url,omitempty"`
}

// CriterionSpec describes one specification key to look for on a listing.
// Supplied per product category by the criteria catalog.
type CriterionSpec struct {
	DisplayName string `json:"display_name"`
	Unit        string `json:"unit"`
	Importance  string `json:"importance"`
	Description string `json:"description"`
}

// BestPrice returns the lowest non-nil seller price, or nil.
func (p *ProductRecord) BestPrice() *float64 {
	var best *float64
	for i := range p.Sellers {
		price := p.Sellers[i].Price
		if price == nil {
			continue
		}
		if best == nil || *price < *best {
			best = price
		}
	}
	return best
}

// BestCurrency returns the currency of the cheapest priced seller,
// defaulting to USD when no seller has a price.
func (p *ProductRecord) BestCurrency() string {
	var best *float64
	currency := "USD"
	for i := range p.Sellers {
		price := p.Sellers[i].Price
		if price == nil {
			continue
		}
		if best == nil || *price < *best {
			best = price
			currency = p.Sellers[i].Currency
		}
	}
	return currency
}

func FloatPtr(v float64) *float64 {
	return &v
}
