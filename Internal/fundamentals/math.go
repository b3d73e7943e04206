package fundamentals

import "github.com/shopspring/decimal"

// ratio divides through decimals to dodge float drift in chained
// ratio math. Zero denominators read as zero, never as an error.
func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result, _ := decimal.NewFromFloat(numerator).
		Div(decimal.NewFromFloat(denominator)).
		Float64()
	return result
}

// syntheticRating maps an interest-coverage ratio to a credit rating
// and default spread, Damodaran-style.
func syntheticRating(coverage float64) (string, float64) {
	switch {
	case coverage > 8.5:
		return "AAA", 0.0067
	case coverage > 6.5:
		return "AA", 0.0082
	case coverage > 5.5:
		return "A", 0.0103
	case coverage > 4.25:
		return "A-", 0.0114
	case coverage > 3.0:
		return "BBB", 0.0150
	default:
		return "High Risk/B", 0.0350
	}
}
