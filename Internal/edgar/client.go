package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/quantbrew/stockscope/Internal/utils"
)

// SEC asks automated clients to identify themselves with a contact
// address; requests without one get throttled aggressively.
const defaultUserAgent = "StockScope/1.0 (ops@quantbrew.dev)"

type Client struct {
	TickerURL string // serves company_tickers.json
	FactsURL  string // serves /api/xbrl/companyfacts
	UserAgent string
	Client    *http.Client
}

func NewClient() *Client {
	return &Client{
		TickerURL: "https://www.sec.gov",
		FactsURL:  "https://data.sec.gov",
		UserAgent: defaultUserAgent,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// LineItem is one reported us-gaap concept with its taxonomy metadata.
type LineItem struct {
	Tag         string  `json:"tag"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

// FiscalYear is one annual report reconstructed from company facts.
type FiscalYear struct {
	Year    int                 `json:"year"`
	EndDate string              `json:"endDate"`
	Items   map[string]LineItem `json:"items"`
}

// Value returns the first present concept among keys, or 0.
func (fy FiscalYear) Value(keys ...string) float64 {
	for _, key := range keys {
		if item, ok := fy.Items[key]; ok {
			return item.Value
		}
	}
	return 0
}

func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	return utils.RetryWithBackoff(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.UserAgent)
		req.Header.Set("Accept-Encoding", "gzip, deflate")

		resp, err := c.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sec returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}, utils.DefaultRetryConfig())
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// CIK resolves a ticker to its zero-padded 10-digit SEC identifier.
func (c *Client) CIK(ctx context.Context, ticker string) (string, error) {
	var entries map[string]tickerEntry
	if err := c.get(ctx, c.TickerURL+"/files/company_tickers.json", &entries); err != nil {
		return "", fmt.Errorf("fetching ticker directory: %w", err)
	}

	upper := strings.ToUpper(ticker)
	for _, e := range entries {
		if e.Ticker == upper {
			return fmt.Sprintf("%010d", e.CIK), nil
		}
	}
	return "", fmt.Errorf("no CIK found for %s", ticker)
}

type factUnit struct {
	End  string  `json:"end"`
	Val  float64 `json:"val"`
	FY   int     `json:"fy"`
	FP   string  `json:"fp"`
	Form string  `json:"form"`
}

type factConcept struct {
	Label       string                `json:"label"`
	Description string                `json:"description"`
	Units       map[string][]factUnit `json:"units"`
}

type companyFacts struct {
	EntityName string `json:"entityName"`
	Facts      struct {
		USGAAP map[string]factConcept `json:"us-gaap"`
	} `json:"facts"`
}

// FiscalYears reconstructs annual statements from company facts,
// keeping only values reported on 10-K filings. Concepts restated in a
// later filing keep the latest-ending observation for each fiscal year.
// At most the ten most recent years are returned, newest first.
func (c *Client) FiscalYears(ctx context.Context, ticker string) ([]FiscalYear, error) {
	cik, err := c.CIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var facts companyFacts
	factsURL := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.FactsURL, cik)
	if err := c.get(ctx, factsURL, &facts); err != nil {
		return nil, fmt.Errorf("fetching company facts for %s: %w", ticker, err)
	}

	years := make(map[int]*FiscalYear)
	itemEnds := make(map[int]map[string]string) // year -> tag -> observation end date
	for tag, concept := range facts.Facts.USGAAP {
		for unit, observations := range concept.Units {
			for _, obs := range observations {
				if obs.Form != "10-K" || obs.FP != "FY" || obs.FY == 0 {
					continue
				}

				fy, ok := years[obs.FY]
				if !ok {
					fy = &FiscalYear{Year: obs.FY, Items: make(map[string]LineItem)}
					years[obs.FY] = fy
					itemEnds[obs.FY] = make(map[string]string)
				}
				if obs.End > fy.EndDate {
					fy.EndDate = obs.End
				}
				if obs.End <= itemEnds[obs.FY][tag] {
					continue
				}

				itemEnds[obs.FY][tag] = obs.End
				fy.Items[tag] = LineItem{
					Tag:         tag,
					Label:       concept.Label,
					Description: concept.Description,
					Value:       obs.Val,
					Unit:        unit,
				}
			}
		}
	}

	result := make([]FiscalYear, 0, len(years))
	for _, fy := range years {
		result = append(result, *fy)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Year > result[b].Year })
	if len(result) > 10 {
		result = result[:10]
	}
	return result, nil
}
