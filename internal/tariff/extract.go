package tariff

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrPriceNotFound indicates the page text contained no price adjacent to the
// commodity's unit token. Callers treat it as "skip this commodity this run".
var ErrPriceNotFound = errors.New("tariff: price not found in page text")

// The published tariff pages render prices in several shapes: "0,1067 €/kWh",
// "€0.1067/kWh", and React-style splices like "0.1067<!-- -->€/kWh". Patterns
// are ordered by priority; within a pattern the first occurrence in document
// order wins. Matching runs on lowercased text.
var electricityPatterns = compilePatterns([]string{
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€\s*/?\s*k? ?wh`,
	`€\s*(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*/?\s*k? ?wh`,
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€/kwh`,
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€/kw`,
	`(\d+[.,]\d+)\s*€\s*/?\s*k? ?wh`,
	`€\s*(\d+[.,]\d+)\s*/?\s*k? ?wh`,
	`(\d+[.,]\d+)\s*€/kwh`,
	`(\d+[.,]\d+)\s*€/kw`,
})

var gasPatterns = compilePatterns([]string{
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€\s*/?\s*s?mc`,
	`€\s*(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*/?\s*s?mc`,
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€/smc`,
	`(\d+[.,]\d+)(?:\s*<!--[^>]*-->)?\s*€/mc`,
	`(\d+[.,]\d+)\s*€\s*/?\s*s?mc`,
	`€\s*(\d+[.,]\d+)\s*/?\s*s?mc`,
	`(\d+[.,]\d+)\s*€/smc`,
	`(\d+[.,]\d+)\s*€/mc`,
})

func compilePatterns(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return compiled
}

func patternsFor(c Commodity) []*regexp.Regexp {
	if c == Gas {
		return gasPatterns
	}
	return electricityPatterns
}

// ExtractPrice scans page text for the commodity's tariff price and returns it
// as an exact decimal. Comma decimal separators are normalised to periods
// before parsing so the result is locale invariant.
func ExtractPrice(text string, c Commodity) (decimal.Decimal, error) {
	lower := strings.ToLower(text)

	for _, pattern := range patternsFor(c) {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		price, err := parseDecimal(match[1])
		if err != nil {
			continue
		}
		return price, nil
	}

	return decimal.Decimal{}, ErrPriceNotFound
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}
