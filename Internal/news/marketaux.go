package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"golang.org/x/time/rate"
)

const marketauxBaseURL = "https://api.marketaux.com/v1/news/all"

// Marketaux is the primary provider. It reports entity match confidence,
// so items are kept only when the subject ticker's score clears the floor.
type Marketaux struct {
	Token           string
	BaseURL         string
	MatchScoreFloor float64
	Client          *http.Client
	limiter         *rate.Limiter
}

func NewMarketaux(token string, matchScoreFloor float64, requestsPerMinute int) *Marketaux {
	return &Marketaux{
		Token:           token,
		BaseURL:         marketauxBaseURL,
		MatchScoreFloor: matchScoreFloor,
		Client:          &http.Client{Timeout: 10 * time.Second},
		limiter:         rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (m *Marketaux) Name() string { return "marketaux" }

type marketauxEntity struct {
	Symbol     string  `json:"symbol"`
	MatchScore float64 `json:"match_score"`
}

type marketauxArticle struct {
	Title       string            `json:"title"`
	Source      string            `json:"source"`
	URL         string            `json:"url"`
	PublishedAt string            `json:"published_at"`
	Entities    []marketauxEntity `json:"entities"`
}

type marketauxResponse struct {
	Data []marketauxArticle `json:"data"`
}

func (m *Marketaux) FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]types.NewsItem, error) {
	if m.Token == "" {
		return nil, ErrNoToken
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, newProviderError(m.Name(), KindTransport, err)
	}

	params := url.Values{}
	params.Set("symbols", ticker)
	params.Set("filter_entities", "true")
	params.Set("published_after", from.Format("2006-01-02")+"T00:00")
	params.Set("published_before", to.Format("2006-01-02")+"T23:59")
	params.Set("api_token", m.Token)

	req, err := http.NewRequestWithContext(ctx, "GET", m.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, newProviderError(m.Name(), KindTransport, err)
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, newProviderError(m.Name(), KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newProviderError(m.Name(), classifyStatus(resp.StatusCode),
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var body marketauxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(m.Name(), KindDecode, err)
	}

	var items []types.NewsItem
	for _, article := range body.Data {
		matchScore := 0.0
		for _, entity := range article.Entities {
			if entity.Symbol == ticker && entity.MatchScore > m.MatchScoreFloor {
				matchScore = entity.MatchScore
				break
			}
		}
		if matchScore == 0 {
			continue
		}
		items = append(items, types.NewsItem{
			Title:          article.Title,
			Source:         article.Source,
			URL:            article.URL,
			PublishedAt:    article.PublishedAt,
			RelevanceScore: matchScore,
		})
	}
	return items, nil
}
