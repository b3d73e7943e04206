package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"github.com/quantbrew/stockscope/Internal/utils"
)

const defaultRiskFreeRate = 0.042

// Yahoo wraps the unauthenticated Yahoo Finance endpoints used for
// ticker search, quote fundamentals and the treasury-yield proxy.
type Yahoo struct {
	BaseURL string
	Client  *http.Client
}

func NewYahoo() *Yahoo {
	return &Yahoo{
		BaseURL: "https://query2.finance.yahoo.com",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Quote carries the per-ticker fundamentals inputs the analyzer needs.
// Numeric fields are zero when Yahoo omits them.
type Quote struct {
	Name              string
	Sector            string
	Industry          string
	Price             float64
	PreviousClose     float64
	MarketCap         float64
	Beta              float64
	SharesOutstanding float64
	TrailingPE        float64
	ForwardPE         float64
	PriceToBook       float64
	EVToEBITDA        float64
	PriceToSales      float64
	DividendYield     float64
	TotalRevenue      float64
}

// quoteSummary responses wrap every number in {raw, fmt}.
type yahooNumber struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName           string      `json:"longName"`
				ShortName          string      `json:"shortName"`
				RegularMarketPrice yahooNumber `json:"regularMarketPrice"`
				MarketCap          yahooNumber `json:"marketCap"`
			} `json:"price"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				PreviousClose yahooNumber `json:"previousClose"`
				Beta          yahooNumber `json:"beta"`
				TrailingPE    yahooNumber `json:"trailingPE"`
				ForwardPE     yahooNumber `json:"forwardPE"`
				DividendYield yahooNumber `json:"dividendYield"`
				PriceToSales  yahooNumber `json:"priceToSalesTrailing12Months"`
			} `json:"summaryDetail"`
			KeyStatistics struct {
				SharesOutstanding  yahooNumber `json:"sharesOutstanding"`
				PriceToBook        yahooNumber `json:"priceToBook"`
				EnterpriseToEbitda yahooNumber `json:"enterpriseToEbitda"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				TotalRevenue yahooNumber `json:"totalRevenue"`
				CurrentPrice yahooNumber `json:"currentPrice"`
			} `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (y *Yahoo) get(ctx context.Context, rawURL string, out interface{}) error {
	return utils.RetryWithBackoff(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := y.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}, utils.DefaultRetryConfig())
}

// Quote fetches the fundamentals snapshot for one ticker.
func (y *Yahoo) Quote(ctx context.Context, ticker string) (*Quote, error) {
	reqURL := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=price,assetProfile,summaryDetail,defaultKeyStatistics,financialData",
		y.BaseURL, url.PathEscape(ticker))

	var decoded quoteSummaryResponse
	if err := y.get(ctx, reqURL, &decoded); err != nil {
		return nil, fmt.Errorf("quote summary for %s: %w", ticker, err)
	}
	if len(decoded.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	r := decoded.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}
	price := r.FinancialData.CurrentPrice.Raw
	if price == 0 {
		price = r.Price.RegularMarketPrice.Raw
	}
	if price == 0 {
		price = r.SummaryDetail.PreviousClose.Raw
	}

	return &Quote{
		Name:              name,
		Sector:            r.AssetProfile.Sector,
		Industry:          r.AssetProfile.Industry,
		Price:             price,
		PreviousClose:     r.SummaryDetail.PreviousClose.Raw,
		MarketCap:         r.Price.MarketCap.Raw,
		Beta:              r.SummaryDetail.Beta.Raw,
		SharesOutstanding: r.KeyStatistics.SharesOutstanding.Raw,
		TrailingPE:        r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:         r.SummaryDetail.ForwardPE.Raw,
		PriceToBook:       r.KeyStatistics.PriceToBook.Raw,
		EVToEBITDA:        r.KeyStatistics.EnterpriseToEbitda.Raw,
		PriceToSales:      r.SummaryDetail.PriceToSales.Raw,
		DividendYield:     r.SummaryDetail.DividendYield.Raw,
		TotalRevenue:      r.FinancialData.TotalRevenue.Raw,
	}, nil
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search queries the autocomplete endpoint and keeps only tradable
// equity-like results. The returned total counts the raw matches before
// filtering, which is what the paging UI displays.
func (y *Yahoo) Search(ctx context.Context, query string) ([]types.SearchResult, int, error) {
	reqURL := fmt.Sprintf("%s/v1/finance/search?q=%s", y.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("searching %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("decoding search response: %w", err)
	}

	var results []types.SearchResult
	for _, q := range decoded.Quotes {
		if q.QuoteType != "EQUITY" && q.QuoteType != "ETF" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		results = append(results, types.SearchResult{
			Ticker:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
		})
	}
	return results, len(decoded.Quotes), nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// RiskFreeRate returns the 10-year treasury yield via the ^TNX proxy.
// Any failure falls back to the long-run default rather than erroring;
// the rate only seeds cost-of-debt math downstream.
func (y *Yahoo) RiskFreeRate(ctx context.Context) float64 {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d",
		y.BaseURL, url.PathEscape("^TNX"))

	var decoded chartResponse
	if err := y.get(ctx, reqURL, &decoded); err != nil {
		return defaultRiskFreeRate
	}
	if len(decoded.Chart.Result) == 0 || len(decoded.Chart.Result[0].Indicators.Quote) == 0 {
		return defaultRiskFreeRate
	}

	closes := decoded.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return *closes[i] / 100.0
		}
	}
	return defaultRiskFreeRate
}
