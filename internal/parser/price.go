package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// ParsePrice extracts a numeric price from free text. It handles both
// US-style ("1,299.99") and European-style ("1.299,99") separators: when
// both are present the later one is the decimal separator; a lone comma is
// treated as decimal only when exactly two digits follow it.
// Returns false when the text contains no parseable number.
func ParsePrice(text string) (float64, bool) {
	cleaned := nonPriceChars.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European format: 1.299,99
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// US format: 1,299.99
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		parts := strings.Split(cleaned, ",")
		if len(parts[len(parts)-1]) == 2 {
			// Likely decimal: 12,99
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// Likely thousands: 1,299
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// DetectCurrency maps the first recognized currency symbol in text to an
// ISO-like code. Returns "" when no symbol is present.
func DetectCurrency(text string) string {
	switch {
	case strings.Contains(text, "₪"):
		return "ILS"
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "$"):
		return "USD"
	}
	return ""
}

// DetectCurrencyLoose is DetectCurrency with an ISO-code text fallback
// ("NIS", "EUR", ...). Used during strategy discovery where price elements
// sometimes spell the currency out instead of using a symbol.
func DetectCurrencyLoose(text string) string {
	if code := DetectCurrency(text); code != "" {
		return code
	}
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "NIS"), strings.Contains(upper, "ILS"):
		return "ILS"
	case strings.Contains(upper, "EUR"):
		return "EUR"
	case strings.Contains(upper, "GBP"):
		return "GBP"
	case strings.Contains(upper, "USD"):
		return "USD"
	}
	return ""
}

// LooksLikePrice reports whether text plausibly contains a price: it must
// contain a digit plus either a currency symbol, a separator, or be purely
// numeric.
func LooksLikePrice(text string) bool {
	if text == "" {
		return false
	}
	hasDigit := strings.ContainsAny(text, "0123456789")
	if !hasDigit {
		return false
	}
	if strings.ContainsAny(text, "$₪€£¥") {
		return true
	}
	if strings.ContainsAny(text, ".,") {
		return true
	}
	stripped := strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(text))
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return stripped != ""
}

// ExtractDomain returns the hostname of a URL with any "www." prefix
// stripped. Returns "" for unparseable URLs.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	domain := parsed.Hostname()
	return strings.TrimPrefix(domain, "www.")
}
