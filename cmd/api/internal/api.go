package internal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quantbrew/stockscope/Internal/cache"
	"github.com/quantbrew/stockscope/Internal/edgar"
	"github.com/quantbrew/stockscope/Internal/fundamentals"
	"github.com/quantbrew/stockscope/Internal/types"
)

// PriceSource supplies the daily close series for a ticker and period.
type PriceSource interface {
	History(ticker, period string) ([]types.PricePoint, error)
}

// Searcher answers ticker autocomplete queries.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, int, error)
}

// MarkerEngine runs the shock pipeline over a price history.
type MarkerEngine interface {
	Markers(ctx context.Context, ticker string, history []types.PricePoint) []types.Marker
}

// Analyzer supplies the fundamentals payload and per-ticker multiples.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*fundamentals.Analysis, error)
	Metrics(ctx context.Context, ticker string) (*types.PeerMetrics, error)
}

// StatementSource supplies reconstructed SEC annual filings.
type StatementSource interface {
	FiscalYears(ctx context.Context, ticker string) ([]edgar.FiscalYear, error)
}

// EventFeed produces AI-summarized recent events for a ticker.
type EventFeed interface {
	RecentEvents(ctx context.Context, ticker string) []types.MajorEvent
}

type API struct {
	Prices        PriceSource
	Search        Searcher
	Engine        MarkerEngine
	Fundamentals  Analyzer
	Statements    StatementSource
	Events        EventFeed
	AnalysisCache *cache.Memory
	EventsCache   *cache.Memory
	MarkerCache   *cache.File
	Logger        *zap.Logger
}

func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"server_time": time.Now().Format(time.RFC3339),
		"environment": "production",
	})
}

func (api *API) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	if cached, ok := api.AnalysisCache.Get(ticker); ok {
		api.Logger.Info("serving cached analysis", zap.String("ticker", ticker))
		WriteJSON(w, http.StatusOK, cached)
		return
	}

	analysis, err := api.Fundamentals.Analyze(r.Context(), ticker)
	if err != nil {
		api.Logger.Warn("analysis failed", zap.String("ticker", ticker), zap.Error(err))
		WriteError(w, http.StatusNotFound, "Stock data not found.")
		return
	}

	result := map[string]interface{}{
		"financials": analysis,
		"aiReport":   analysis.AIReport,
		"narrative":  analysis.Narrative,
	}
	api.AnalysisCache.Put(ticker, result)
	WriteJSON(w, http.StatusOK, result)
}

func (api *API) HandleStockHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	history, err := api.Prices.History(ticker, period)
	if err != nil || len(history) == 0 {
		if err != nil {
			api.Logger.Warn("history fetch failed", zap.String("ticker", ticker), zap.Error(err))
		}
		WriteError(w, http.StatusNotFound, "History not found")
		return
	}

	cacheKey := fmt.Sprintf("%s_%s", ticker, period)
	var markers []types.Marker
	if cached, ok := api.MarkerCache.Get(cacheKey); ok && !refresh {
		markers = cached
	} else {
		markers = api.Engine.Markers(r.Context(), ticker, history)
		if err := api.MarkerCache.Put(cacheKey, markers); err != nil {
			api.Logger.Warn("marker cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"period":  period,
		"history": history,
		"markers": markers,
		"events":  api.majorEvents(r.Context(), ticker),
	})
}

// majorEvents serves AI event summaries behind the long-lived events
// cache; the feed is expensive and changes slowly.
func (api *API) majorEvents(ctx context.Context, ticker string) []types.MajorEvent {
	if cached, ok := api.EventsCache.Get(ticker); ok {
		if events, ok := cached.([]types.MajorEvent); ok {
			return events
		}
	}

	events := api.Events.RecentEvents(ctx, ticker)
	api.EventsCache.Put(ticker, events)
	return events
}

func (api *API) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	metrics, err := api.Fundamentals.Metrics(r.Context(), ticker)
	if err != nil {
		api.Logger.Warn("metrics fetch failed", zap.String("ticker", ticker), zap.Error(err))
		WriteError(w, http.StatusNotFound, "Metrics not found")
		return
	}
	WriteJSON(w, http.StatusOK, metrics)
}

func (api *API) HandleValuation(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	years, err := api.Statements.FiscalYears(r.Context(), ticker)
	if err != nil || len(years) == 0 {
		if err != nil {
			api.Logger.Warn("SEC fetch failed", zap.String("ticker", ticker), zap.Error(err))
		}
		WriteError(w, http.StatusNotFound, "SEC data not available for this ticker.")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"years":  years,
	})
}

func (api *API) HandleSearchTicker(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 50 {
			limit = parsed
		}
	}

	results, total, err := api.Search.Search(r.Context(), query)
	if err != nil {
		api.Logger.Warn("ticker search failed", zap.String("query", query), zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	// Default parameters keep the legacy plain-list shape; anything else
	// gets the paged envelope.
	if offset == 0 && limit == 10 {
		if len(results) > 10 {
			results = results[:10]
		}
		if results == nil {
			results = []types.SearchResult{}
		}
		WriteJSON(w, http.StatusOK, results)
		return
	}

	start := offset
	if start > len(results) {
		start = len(results)
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}
	page := results[start:end]
	if page == nil {
		page = []types.SearchResult{}
	}
	WriteJSON(w, http.StatusOK, types.SearchPage{
		Results: page,
		Total:   total,
		Offset:  start,
		Limit:   limit,
	})
}
