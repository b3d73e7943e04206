package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quantbrew/stockscope/Internal/ai"
	"github.com/quantbrew/stockscope/Internal/shocks"
	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// NewsSource is the per-event headline lookup the engine depends on.
// *news.Fetcher satisfies it.
type NewsSource interface {
	HasProviders() bool
	FetchForEvent(ctx context.Context, ticker string, pivotDate time.Time) []types.NewsItem
}

// Classifier decides whether a shock event is explained by its headlines.
// *ai.Service satisfies it.
type Classifier interface {
	AnalyzeShock(ctx context.Context, ticker, date, endDate string, percentChange float64, headlines []types.NewsItem) types.ShockAnalysis
}

// Engine runs the shock-to-marker pipeline for one request: detect,
// dedupe, fetch news per event, then classify the surviving events
// concurrently and map accepted verdicts to chart markers. It never
// returns an error; any internal failure yields whatever markers were
// already accumulated, or none.
type Engine struct {
	News       NewsSource
	Classifier Classifier
	Params     shocks.Params
	PoolSize   int
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewEngine(news NewsSource, classifier Classifier, params shocks.Params, poolSize int, logger *zap.Logger) *Engine {
	return &Engine{
		News:       news,
		Classifier: classifier,
		Params:     params,
		PoolSize:   poolSize,
		Logger:     logger,
		Now:        time.Now,
	}
}

type shockTask struct {
	event types.ShockCandidate
	news  []types.NewsItem
}

// Markers computes the annotated shock markers for a ticker's price
// history. Without any news provider configured the whole pipeline is
// bypassed in favor of a static mock set, so the frontend stays
// demonstrable on a bare checkout.
func (e *Engine) Markers(ctx context.Context, ticker string, history []types.PricePoint) []types.Marker {
	if !e.News.HasProviders() {
		e.Logger.Warn("no news provider tokens configured, serving mock markers",
			zap.String("ticker", ticker))
		return MockMarkers()
	}
	if len(history) < 2 {
		return nil
	}

	candidates := shocks.DetectShocks(history, e.Now(), e.Params)
	events := shocks.Dedupe(candidates, e.Params)
	if len(events) == 0 {
		return nil
	}

	// News fetches run sequentially: the providers are rate-limited and
	// the window count is already capped by dedup.
	var tasks []shockTask
	for _, ev := range events {
		pivot, err := time.Parse(dateLayout, ev.Date)
		if err != nil {
			continue
		}
		items := e.News.FetchForEvent(ctx, ticker, pivot)
		if len(items) == 0 {
			e.Logger.Debug("no headlines for shock event, dropping",
				zap.String("ticker", ticker),
				zap.String("date", ev.Date))
			continue
		}
		tasks = append(tasks, shockTask{event: ev, news: items})
	}
	if len(tasks) == 0 {
		return nil
	}

	e.Logger.Info("classifying shock events",
		zap.String("ticker", ticker),
		zap.Int("events", len(tasks)))

	// Bounded pool; each worker owns its task and sends an independent
	// result, so the marker slice is only appended after the join.
	results := make(chan types.Marker, len(tasks))
	sem := make(chan struct{}, e.PoolSize)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task shockTask) {
			defer wg.Done()
			// A panicking task drops its own event; the rest of the
			// batch and the serving goroutine keep going.
			defer func() {
				if r := recover(); r != nil {
					e.Logger.Warn("classifier task panicked, dropping event",
						zap.String("ticker", ticker),
						zap.String("date", task.event.Date),
						zap.Any("panic", r))
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()

			analysis := e.Classifier.AnalyzeShock(ctx, ticker,
				task.event.Date, task.event.EndDate, task.event.Change, task.news)
			if !analysis.IsRelevant && analysis.Headline != ai.MarketSentimentHeadline {
				return
			}
			if strings.TrimSpace(analysis.Summary) == "" {
				return
			}
			results <- markerFor(task.event, analysis)
		}(task)
	}
	wg.Wait()
	close(results)

	var markers []types.Marker
	for m := range results {
		markers = append(markers, m)
	}
	return markers
}

// markerFor maps a verdict onto chart display attributes. The headline
// slot carries the explanatory summary; the label is the fixed news
// badge the chart renders.
func markerFor(event types.ShockCandidate, analysis types.ShockAnalysis) types.Marker {
	color, position := "#fbbf24", "aboveBar"
	sentiment := strings.ToLower(analysis.Sentiment)
	switch {
	case strings.Contains(sentiment, "positive"):
		color, position = "#22c55e", "belowBar"
	case strings.Contains(sentiment, "negative"):
		color, position = "#ef4444", "aboveBar"
	}

	summary := analysis.Summary
	if strings.TrimSpace(summary) == "" {
		summary = "No summary available."
	}
	return types.Marker{
		Time:     event.Date,
		Text:     "",
		Label:    "N",
		Color:    color,
		Shape:    "circle",
		Position: position,
		Headline: summary,
	}
}

// MockMarkers is the fallback set served when no provider tokens exist.
func MockMarkers() []types.Marker {
	return []types.Marker{
		{Time: "2025-12-20", Text: "Mock: Positive Earnings Surprise", Label: "N", Color: "#22c55e", Shape: "circle", Position: "belowBar", Headline: "Mock Headline"},
		{Time: "2025-12-15", Text: "Mock: CEO Keynote Speech", Label: "N", Color: "#fbbf24", Shape: "circle", Position: "aboveBar", Headline: "Mock Headline"},
	}
}
