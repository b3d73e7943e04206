package marketdata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/quantbrew/stockscope/Internal/types"
)

// BarSource is the slice of the Alpaca data client the price service
// needs; tests substitute canned bars.
type BarSource interface {
	GetBars(symbol string, req md.GetBarsRequest) ([]md.Bar, error)
}

// PriceService turns Alpaca daily bars into the close-only series the
// chart and the shock detector consume.
type PriceService struct {
	Bars BarSource
	Now  func() time.Time
}

func NewPriceService(apiKey, apiSecret string) *PriceService {
	return &PriceService{
		Bars: md.NewClient(md.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		Now: time.Now,
	}
}

// periodStart maps a chart period string to the query start date.
// Unknown periods fall back to one year.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "1mo":
		return now.AddDate(0, -1, 0)
	case "3mo":
		return now.AddDate(0, -3, 0)
	case "6mo":
		return now.AddDate(0, -6, 0)
	case "1y":
		return now.AddDate(-1, 0, 0)
	case "2y":
		return now.AddDate(-2, 0, 0)
	case "5y":
		return now.AddDate(-5, 0, 0)
	case "max":
		return now.AddDate(-30, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// History returns split-adjusted daily closes for the period, sorted
// ascending by date as the charting frontend requires.
func (s *PriceService) History(ticker, period string) ([]types.PricePoint, error) {
	bars, err := s.Bars.GetBars(strings.ToUpper(ticker), md.GetBarsRequest{
		TimeFrame:  md.OneDay,
		Start:      periodStart(period, s.Now().UTC()),
		Adjustment: md.Split,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", ticker, err)
	}

	points := make([]types.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, types.PricePoint{
			Time:  bar.Timestamp.Format("2006-01-02"),
			Value: bar.Close,
		})
	}
	sort.Slice(points, func(a, b int) bool { return points[a].Time < points[b].Time })
	return points, nil
}
