package fundamentals

import (
	"math"

	"github.com/quantbrew/stockscope/Internal/edgar"
	"github.com/quantbrew/stockscope/Internal/marketdata"
	"github.com/quantbrew/stockscope/Internal/types"
)

// sectorStats picks a sector-specific metric template and fills it from
// the latest annual statements. Sectors without a dedicated template get
// the general solvency/margin set.
func sectorStats(sector string, latest, prev edgar.FiscalYear, quote *marketdata.Quote) types.SectorStats {
	revenue := latest.Value(revenueTags...)
	netIncome := latest.Value(netIncomeTags...)
	totalAssets := latest.Value(totalAssetsTags...)
	totalEquity := latest.Value(equityTags...)

	switch sector {
	case "Technology":
		prevRevenue := prev.Value(revenueTags...)
		if prevRevenue == 0 {
			prevRevenue = revenue
		}
		revGrowth := ratio(revenue-prevRevenue, prevRevenue) * 100

		ocf := latest.Value(operatingCashFlowTags...)
		capex := math.Abs(latest.Value(capexTags...))
		fcfMargin := ratio(ocf-capex, revenue) * 100

		return types.SectorStats{
			Template: "Technology",
			Metrics: []types.SectorMetric{
				{Label: "Rule of 40", Value: revGrowth + fcfMargin, Format: "number"},
				{Label: "R&D Intensity", Value: ratio(latest.Value(rndTags...), revenue) * 100, Format: "percent"},
				{Label: "Gross Margin", Value: ratio(latest.Value(grossProfitTags...), revenue) * 100, Format: "percent"},
			},
		}

	case "Consumer Cyclical", "Consumer Defensive", "Retail":
		return types.SectorStats{
			Template: "Retail",
			Metrics: []types.SectorMetric{
				{Label: "Inventory Turnover", Value: ratio(latest.Value(cogsTags...), latest.Value(inventoryTags...)), Format: "number"},
				{Label: "Net Margin", Value: ratio(netIncome, revenue) * 100, Format: "percent"},
				{Label: "Return on Assets", Value: ratio(netIncome, totalAssets) * 100, Format: "percent"},
			},
		}

	case "Financial Services":
		return types.SectorStats{
			Template: "Banking",
			Metrics: []types.SectorMetric{
				{Label: "Return on Equity", Value: ratio(netIncome, totalEquity) * 100, Format: "percent"},
				{Label: "Fin. Leverage", Value: ratio(totalAssets, totalEquity), Format: "number"},
				{Label: "Dividend Yield", Value: quote.DividendYield * 100, Format: "percent"},
			},
		}

	case "Real Estate":
		depreciation := latest.Value(depreciationTags...)
		ebitda := latest.Value(operatingIncomeTags...) + depreciation

		return types.SectorStats{
			Template: "REITs",
			Metrics: []types.SectorMetric{
				{Label: "Est. FFO (M)", Value: (netIncome + depreciation) / 1_000_000, Format: "currency"},
				{Label: "Debt / EBITDA", Value: ratio(latest.Value(totalDebtTags...), ebitda), Format: "number"},
				{Label: "Dividend Yield", Value: quote.DividendYield * 100, Format: "percent"},
			},
		}

	default:
		return types.SectorStats{
			Template: "General",
			Metrics: []types.SectorMetric{
				{Label: "Current Ratio", Value: ratio(latest.Value(currentAssetsTags...), latest.Value(currentLiabilitiesTags...)), Format: "number"},
				{Label: "Debt / Equity", Value: ratio(latest.Value(totalDebtTags...), totalEquity), Format: "number"},
				{Label: "Net Margin", Value: ratio(netIncome, revenue) * 100, Format: "percent"},
			},
		}
	}
}
