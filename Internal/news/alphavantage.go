package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"golang.org/x/time/rate"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// Secondary-sourced items carry a fixed mid-range relevance because the
// feed reports no per-ticker match confidence.
const alphaVantageRelevance = 0.5

type AlphaVantage struct {
	Key     string
	BaseURL string
	Limit   int
	Client  *http.Client
	limiter *rate.Limiter
}

func NewAlphaVantage(key string, limit int, requestsPerMinute int) *AlphaVantage {
	return &AlphaVantage{
		Key:     key,
		BaseURL: alphaVantageBaseURL,
		Limit:   limit,
		Client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

type alphaVantageArticle struct {
	Title         string `json:"title"`
	Source        string `json:"source"`
	URL           string `json:"url"`
	TimePublished string `json:"time_published"`
}

type alphaVantageResponse struct {
	Feed []alphaVantageArticle `json:"feed"`
}

func (a *AlphaVantage) FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]types.NewsItem, error) {
	if a.Key == "" {
		return nil, ErrNoToken
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, newProviderError(a.Name(), KindTransport, err)
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", ticker)
	params.Set("apikey", a.Key)
	params.Set("time_from", from.Format("20060102")+"T0000")
	params.Set("time_to", to.Format("20060102")+"T2359")
	params.Set("limit", strconv.Itoa(a.Limit))

	req, err := http.NewRequestWithContext(ctx, "GET", a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, newProviderError(a.Name(), KindTransport, err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, newProviderError(a.Name(), KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newProviderError(a.Name(), classifyStatus(resp.StatusCode),
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var body alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(a.Name(), KindDecode, err)
	}

	var items []types.NewsItem
	for _, article := range body.Feed {
		items = append(items, types.NewsItem{
			Title:          article.Title,
			Source:         article.Source,
			URL:            article.URL,
			PublishedAt:    article.TimePublished,
			RelevanceScore: alphaVantageRelevance,
		})
	}
	return items, nil
}
