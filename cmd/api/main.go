package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quantbrew/stockscope/Internal/ai"
	"github.com/quantbrew/stockscope/Internal/cache"
	"github.com/quantbrew/stockscope/Internal/edgar"
	"github.com/quantbrew/stockscope/Internal/fundamentals"
	"github.com/quantbrew/stockscope/Internal/marketdata"
	"github.com/quantbrew/stockscope/Internal/news"
	"github.com/quantbrew/stockscope/Internal/pipeline"
	"github.com/quantbrew/stockscope/Internal/shocks"
	"github.com/quantbrew/stockscope/Internal/utils/config"
	"github.com/quantbrew/stockscope/cmd/api/internal"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
		cfg = config.Defaults()
	}

	ctx := context.Background()

	// Reasoning service. A missing key degrades every AI feature to its
	// documented fallback instead of refusing to start.
	var generator ai.Generator
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		client, err := ai.NewGeminiClient(ctx, key, cfg.AI.Model)
		if err != nil {
			logger.Warn("gemini client unavailable", zap.Error(err))
		} else {
			generator = client
			logger.Info("gemini client connected", zap.String("model", cfg.AI.Model))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI features disabled")
	}
	aiService := ai.NewService(generator, cfg.AI.CallTimeout.Duration, logger)

	// News providers. Either may be absent; with both absent the
	// pipeline serves mock markers.
	var primary, secondary news.Provider
	if token := os.Getenv("MARKETAUX_API_TOKEN"); token != "" {
		primary = news.NewMarketaux(token, cfg.News.MatchScoreFloor, cfg.News.RequestsPerMinute)
	}
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		secondary = news.NewAlphaVantage(key, cfg.News.SecondaryLimit, cfg.News.RequestsPerMinute)
	}
	fetcher := &news.Fetcher{
		Primary:         primary,
		Secondary:       secondary,
		BackDays:        cfg.News.SearchBackDays,
		ForwardDays:     cfg.News.SearchForwardDays,
		MinPrimaryItems: cfg.News.MinPrimaryItems,
		Logger:          logger,
	}

	params := shocks.Params{
		ReturnThreshold: cfg.Shocks.ReturnThreshold,
		WindowDays:      cfg.Shocks.WindowDays,
		PivotLookback:   cfg.Shocks.PivotLookback,
		CutoffDays:      cfg.Shocks.CutoffDays,
		MaxEvents:       cfg.Shocks.MaxEvents,
		MinGapDays:      cfg.Shocks.MinGapDays,
	}
	engine := pipeline.NewEngine(fetcher, aiService, params, cfg.AI.ClassifyPoolSize, logger)

	prices := marketdata.NewPriceService(
		os.Getenv("ALPACA_API_KEY"),
		os.Getenv("ALPACA_API_SECRET"))
	yahoo := marketdata.NewYahoo()
	sec := edgar.NewClient()

	psCache := cache.NewMemory(cfg.Cache.PSRatioTTL.Duration)
	fundService := fundamentals.NewService(yahoo, sec, prices, aiService, psCache, logger)

	apiServer := &internal.API{
		Prices:        prices,
		Search:        yahoo,
		Engine:        engine,
		Fundamentals:  fundService,
		Statements:    sec,
		Events:        pipeline.NewEventsFeed(fetcher, aiService),
		AnalysisCache: cache.NewMemory(cfg.Cache.AnalysisTTL.Duration),
		EventsCache:   cache.NewMemory(cfg.Cache.EventsTTL.Duration),
		MarkerCache:   cache.NewFile(cfg.Cache.MarkerFile),
		Logger:        logger,
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = env
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(internal.RequestID)
	r.Use(internal.CorsMiddleware(strings.Split(allowedOrigins, ",")))

	r.Get("/health", apiServer.HandleHealth)
	r.Get("/api/analyze/{ticker}", apiServer.HandleAnalyze)
	r.Get("/api/stock-history/{ticker}", apiServer.HandleStockHistory)
	r.Get("/api/metrics/{ticker}", apiServer.HandleMetrics)
	r.Get("/api/valuation/{ticker}", apiServer.HandleValuation)
	r.Get("/api/search-ticker/{query}", apiServer.HandleSearchTicker)

	addr := ":" + cfg.Server.Port
	logger.Info("starting API server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
