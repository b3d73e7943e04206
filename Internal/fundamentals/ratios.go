package fundamentals

import (
	"fmt"
	"math"
	"time"

	"github.com/quantbrew/stockscope/Internal/edgar"
	"github.com/quantbrew/stockscope/Internal/types"
)

// historicalRatios computes annual PE/PS/PB by pairing each fiscal-year
// end with the nearest trading day's close. Years with no usable price
// or EPS are skipped, newest years come first.
func historicalRatios(history []types.PricePoint, years []edgar.FiscalYear) []types.HistoricalRatios {
	if len(history) == 0 {
		return nil
	}

	var metrics []types.HistoricalRatios
	for _, fy := range years {
		price, ok := nearestClose(history, fy.EndDate)
		if !ok {
			continue
		}

		eps := fy.Value(epsTags...)
		shares := fy.Value(sharesTags...)
		revenue := fy.Value(revenueTags...)
		equity := fy.Value(equityTags...)

		metrics = append(metrics, types.HistoricalRatios{
			Year: fmt.Sprintf("%d", fy.Year),
			PE:   ratio(price, eps),
			PS:   ratio(price*shares, revenue),
			PB:   ratio(price*shares, equity),
		})
	}
	return metrics
}

// nearestClose finds the close price with the smallest date distance to
// target. History is ascending by date.
func nearestClose(history []types.PricePoint, target string) (float64, bool) {
	targetDate, err := time.Parse("2006-01-02", target)
	if err != nil {
		return 0, false
	}

	best := -1
	bestDistance := math.MaxFloat64
	for i, pt := range history {
		ptDate, err := time.Parse("2006-01-02", pt.Time)
		if err != nil {
			continue
		}
		distance := math.Abs(ptDate.Sub(targetDate).Hours())
		if distance < bestDistance {
			bestDistance = distance
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return history[best].Value, true
}
