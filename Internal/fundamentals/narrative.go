package fundamentals

import (
	"fmt"

	"github.com/quantbrew/stockscope/Internal/types"
)

// fallbackNarrative builds the deterministic research summary used when
// the AI report is unavailable or times out without a payload.
func fallbackNarrative(ticker, sector string, growth, margin, roic, pe float64) types.Narrative {
	var growthVerdict, growthDesc string
	switch {
	case growth > 0.20:
		growthVerdict, growthDesc = "aggressive expansion", "high double-digit revenue growth"
	case growth > 0.05:
		growthVerdict, growthDesc = "steady compounding", "moderate but stable top-line increases"
	default:
		growthVerdict, growthDesc = "consolidation", "flat or declining revenues"
	}

	var profVerdict, profDesc string
	switch {
	case margin > 0.20:
		profVerdict, profDesc = "highly profitable", "robust operating margins typical of a moat"
	case margin > 0.05:
		profVerdict, profDesc = "healthy", "standard industry margins"
	default:
		profVerdict, profDesc = "capital intensive", "thin margins requiring strict cost control"
	}

	var valDesc string
	switch {
	case pe > 30:
		valDesc = "commands a premium valuation"
	case pe > 15:
		valDesc = "trades at a fair market multiple"
	case pe > 0:
		valDesc = "appears undervalued relative to the broader market"
	default:
		valDesc = "has earnings metrics that make traditional P/E analysis difficult"
	}

	story := fmt.Sprintf(
		"%s is currently in a phase of %s, characterized by %s. "+
			"The business is %s with %s. "+
			"From a market perspective, the stock %s.",
		ticker, growthVerdict, growthDesc, profVerdict, profDesc, valDesc)

	drivers := fmt.Sprintf(
		"• Revenue Trajectory: %.1f%% growth rate signaling %s.\n"+
			"• Operational Efficiency: %.1f%% margins indicating %s operations.\n"+
			"• Capital Returns: ROIC of %.1f%%.",
		growth*100, growthVerdict, margin*100, profVerdict, roic*100)

	risks := "• Macroeconomic sensitivity and interest rate changes.\n" +
		"• Competitive margin pressure in the sector.\n" +
		"• Execution risk in maintaining growth targets."

	return types.Narrative{
		CompanyDescription: fmt.Sprintf("%s operates in the %s sector.", ticker, sector),
		ValuationStory:     story,
		KeyDrivers:         drivers,
		RiskFactors:        risks,
	}
}

// financialContext is the condensed dataset handed to the AI report
// generator.
func financialContext(a *Analysis) map[string]interface{} {
	leverage := "Moderate"
	switch a.SyntheticRating {
	case "High Risk/B", "B", "CCC":
		leverage = "High"
	}
	return map[string]interface{}{
		"ticker":   a.Ticker,
		"sector":   a.ValuationMultiples.Sector,
		"price":    a.Price,
		"pe":       a.ValuationMultiples.PE,
		"growth":   a.RevenueGrowth,
		"margin":   a.OperatingMargin,
		"roic":     a.ROIC,
		"leverage": leverage,
	}
}
