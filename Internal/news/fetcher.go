package news

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

// Fetcher queries the primary provider for an event window and tops up
// from the secondary provider when primary coverage is thin. Provider
// failures are downgraded to zero results per the recovery policy; the
// enclosing event is never aborted by a news failure.
type Fetcher struct {
	Primary         Provider
	Secondary       Provider
	BackDays        int
	ForwardDays     int
	MinPrimaryItems int
	Logger          *zap.Logger
}

// HasProviders reports whether any provider is configured at all. The
// pipeline uses this to decide between real detection and mock markers.
func (f *Fetcher) HasProviders() bool {
	return f.Primary != nil || f.Secondary != nil
}

// FetchForEvent returns the relevance-ranked headlines around a pivot
// date, or an empty list when nothing qualifies.
func (f *Fetcher) FetchForEvent(ctx context.Context, ticker string, pivotDate time.Time) []types.NewsItem {
	from := pivotDate.AddDate(0, 0, -f.BackDays)
	to := pivotDate.AddDate(0, 0, f.ForwardDays)

	items := f.query(ctx, f.Primary, ticker, from, to)

	// Secondary supplements, it never replaces primary results.
	if len(items) < f.MinPrimaryItems && f.Secondary != nil {
		items = append(items, f.query(ctx, f.Secondary, ticker, from, to)...)
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].RelevanceScore != items[b].RelevanceScore {
			return items[a].RelevanceScore > items[b].RelevanceScore
		}
		return items[a].PublishedAt > items[b].PublishedAt
	})
	return items
}

func (f *Fetcher) query(ctx context.Context, p Provider, ticker string, from, to time.Time) []types.NewsItem {
	if p == nil {
		return nil
	}

	items, err := p.FetchNews(ctx, ticker, from, to)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil
		}
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Recoverable() {
			f.Logger.Warn("news provider failed, treating as zero results",
				zap.String("provider", perr.Provider),
				zap.String("kind", perr.Kind.String()),
				zap.String("ticker", ticker),
				zap.Error(perr.Err))
			return nil
		}
		f.Logger.Warn("news provider failed",
			zap.String("provider", p.Name()),
			zap.String("ticker", ticker),
			zap.Error(err))
		return nil
	}
	return items
}
