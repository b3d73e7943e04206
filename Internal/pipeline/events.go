package pipeline

import (
	"context"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
)

// EventSummarizer condenses a headline set into chart-ready events.
// *ai.Service satisfies it.
type EventSummarizer interface {
	GetMajorEvents(ctx context.Context, ticker string, news []types.NewsItem) []types.MajorEvent
}

// EventsFeed pairs the news fetcher with the AI summarizer to produce
// the "major events" annotations for a ticker's recent window.
type EventsFeed struct {
	News NewsSource
	AI   EventSummarizer
	Now  func() time.Time
}

func NewEventsFeed(news NewsSource, summarizer EventSummarizer) *EventsFeed {
	return &EventsFeed{News: news, AI: summarizer, Now: time.Now}
}

// RecentEvents summarizes the headlines around today. Without providers
// there is nothing to summarize; the caller caches the result either way.
func (f *EventsFeed) RecentEvents(ctx context.Context, ticker string) []types.MajorEvent {
	if !f.News.HasProviders() {
		return nil
	}
	items := f.News.FetchForEvent(ctx, ticker, f.Now())
	if len(items) == 0 {
		return nil
	}
	return f.AI.GetMajorEvents(ctx, ticker, items)
}
