package fundamentals

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quantbrew/stockscope/Internal/cache"
	"github.com/quantbrew/stockscope/Internal/edgar"
	"github.com/quantbrew/stockscope/Internal/marketdata"
	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

const (
	defaultTaxRate    = 0.21
	equityRiskPremium = 0.045
	placeholderWACC   = 0.08 // recomputed by the valuation frontend
	million           = 1_000_000
)

// QuoteSource supplies per-ticker market snapshots and the treasury
// yield. *marketdata.Yahoo satisfies it.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (*marketdata.Quote, error)
	RiskFreeRate(ctx context.Context) float64
}

// StatementSource supplies reconstructed annual filings.
// *edgar.Client satisfies it.
type StatementSource interface {
	FiscalYears(ctx context.Context, ticker string) ([]edgar.FiscalYear, error)
}

// PriceSource supplies daily close history for the historical ratios.
// *marketdata.PriceService satisfies it.
type PriceSource interface {
	History(ticker, period string) ([]types.PricePoint, error)
}

// Advisor is the AI collaborator for competitor lookup and the written
// report. *ai.Service satisfies it; nil disables both.
type Advisor interface {
	GetCompetitors(ctx context.Context, ticker, companyName string) []string
	GenerateFundamentalAnalysis(ctx context.Context, ticker string, financialContext map[string]interface{}) (types.Narrative, bool)
}

// Service aggregates quotes, filings and AI collaborators into the
// full analysis payload.
type Service struct {
	Quotes       QuoteSource
	Statements   StatementSource
	Prices       PriceSource
	Advisor      Advisor
	PSCache      *cache.Memory
	PeerPoolSize int
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewService(quotes QuoteSource, statements StatementSource, prices PriceSource, advisor Advisor, psCache *cache.Memory, logger *zap.Logger) *Service {
	return &Service{
		Quotes:       quotes,
		Statements:   statements,
		Prices:       prices,
		Advisor:      advisor,
		PSCache:      psCache,
		PeerPoolSize: 5,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Analysis is the full fundamentals payload for one ticker. Monetary
// aggregates are in millions; rates and margins are fractions.
type Analysis struct {
	Ticker                 string                   `json:"ticker"`
	LastUpdated            string                   `json:"lastUpdated"`
	Name                   string                   `json:"name"`
	Price                  float64                  `json:"price"`
	Beta                   float64                  `json:"beta"`
	MarketCap              float64                  `json:"marketCap"`
	TotalDebt              float64                  `json:"totalDebt"`
	Cash                   float64                  `json:"cash"`
	Revenue                float64                  `json:"revenue"`
	OperatingIncome        float64                  `json:"operatingIncome"`
	TaxRate                float64                  `json:"taxRate"`
	SharesOutstanding      float64                  `json:"sharesOutstanding"`
	SalesPerShare          float64                  `json:"salesPerShare"`
	WACC                   float64                  `json:"wacc"`
	ROIC                   float64                  `json:"roic"`
	ReinvestmentEfficiency float64                  `json:"reinvestmentEfficiency"`
	ListingStatus          string                   `json:"listingStatus"`
	CostOfDebt             float64                  `json:"costOfDebt"`
	SyntheticRating        string                   `json:"syntheticRating"`
	RiskFreeRate           float64                  `json:"riskFreeRate"`
	EquityRiskPremium      float64                  `json:"equityRiskPremium"`
	Lifecycle              string                   `json:"lifecycle"`
	SuggestedModel         string                   `json:"suggestedModel"`
	RevenueGrowth          float64                  `json:"revenueGrowth"`
	OperatingMargin        float64                  `json:"operatingMargin"`
	DividendsPaid          float64                  `json:"dividendsPaid"`
	NetIncome              float64                  `json:"netIncome"`
	ValuationMultiples     types.ValuationMultiples `json:"valuationMultiples"`
	PeerDetails            []types.PeerMetrics      `json:"peerDetails"`
	HistoricalMetrics      []types.HistoricalRatios `json:"historicalMetrics"`
	SectorStats            types.SectorStats        `json:"sectorStats"`
	AIReport               string                   `json:"aiReport"`
	Narrative              types.Narrative          `json:"narrative"`
}

// Analyze builds the complete fundamentals view. The quote is the only
// hard dependency; missing filings, peers, history or AI degrade the
// payload instead of failing it.
func (s *Service) Analyze(ctx context.Context, ticker string) (*Analysis, error) {
	ticker = strings.ToUpper(ticker)

	quote, err := s.Quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching quote for %s: %w", ticker, err)
	}

	years, err := s.Statements.FiscalYears(ctx, ticker)
	if err != nil {
		s.Logger.Warn("annual filings unavailable, continuing with quote data only",
			zap.String("ticker", ticker), zap.Error(err))
	}
	var latest, prev edgar.FiscalYear
	if len(years) > 0 {
		latest = years[0]
	}
	if len(years) > 1 {
		prev = years[1]
	}

	riskFreeRate := s.Quotes.RiskFreeRate(ctx)

	revenue := latest.Value(revenueTags...)
	operatingIncome := latest.Value(operatingIncomeTags...)
	totalDebt := latest.Value(totalDebtTags...)
	cash := latest.Value(cashTags...)
	totalEquity := latest.Value(equityTags...)
	dividendsPaid := math.Abs(latest.Value(dividendsTags...))
	netIncome := latest.Value(netIncomeTags...)

	taxRate := ratio(latest.Value(taxProvisionTags...), latest.Value(pretaxIncomeTags...))
	if taxRate == 0 || taxRate < 0 || taxRate > 0.5 {
		taxRate = defaultTaxRate
	}

	investedCapital := totalEquity + totalDebt - cash
	roic := ratio(operatingIncome, investedCapital)
	reinvestmentEfficiency := ratio(revenue, investedCapital)

	interestExpense := math.Abs(latest.Value(interestExpenseTags...))
	coverage := 100.0
	if interestExpense > 0 {
		coverage = ratio(operatingIncome, interestExpense)
	}
	rating, spread := syntheticRating(coverage)
	costOfDebt := riskFreeRate + spread

	prevRevenue := prev.Value(revenueTags...)
	if prevRevenue == 0 {
		prevRevenue = revenue
	}
	revenueGrowth := 0.0
	if prevRevenue > 0 {
		revenueGrowth = (revenue - prevRevenue) / prevRevenue
	}

	lifecycle := "Mature Stable"
	if revenueGrowth > 0.15 {
		lifecycle = "High Growth"
	}

	suggestedModel := "FCFF"
	switch {
	case quote.Sector == "Financial Services" || quote.Sector == "Real Estate":
		suggestedModel = "DDM"
	case revenueGrowth > 0.20:
		suggestedModel = "HIGH_GROWTH"
	}

	marketCap := quote.MarketCap
	if marketCap == 0 {
		marketCap = quote.PreviousClose * quote.SharesOutstanding
	}
	beta := quote.Beta
	if beta == 0 {
		beta = 1.0
	}

	analysis := &Analysis{
		Ticker:                 ticker,
		LastUpdated:            s.Now().Format(time.RFC3339),
		Name:                   orDefault(quote.Name, ticker),
		Price:                  quote.Price,
		Beta:                   beta,
		MarketCap:              marketCap / million,
		TotalDebt:              totalDebt / million,
		Cash:                   cash / million,
		Revenue:                revenue / million,
		OperatingIncome:        operatingIncome / million,
		TaxRate:                taxRate,
		SharesOutstanding:      quote.SharesOutstanding / million,
		SalesPerShare:          ratio(revenue, quote.SharesOutstanding),
		WACC:                   placeholderWACC,
		ROIC:                   roic,
		ReinvestmentEfficiency: reinvestmentEfficiency,
		ListingStatus:          "Public",
		CostOfDebt:             costOfDebt,
		SyntheticRating:        rating,
		RiskFreeRate:           riskFreeRate,
		EquityRiskPremium:      equityRiskPremium,
		Lifecycle:              lifecycle,
		SuggestedModel:         suggestedModel,
		RevenueGrowth:          revenueGrowth,
		OperatingMargin:        ratio(operatingIncome, revenue),
		DividendsPaid:          dividendsPaid / million,
		NetIncome:              netIncome / million,
		ValuationMultiples:     s.multiples(ticker, quote, revenue, true),
		SectorStats:            sectorStats(quote.Sector, latest, prev, quote),
	}

	peers := s.resolvePeers(ctx, ticker, analysis.Name, quote.Sector)
	analysis.PeerDetails = s.fetchPeerMetrics(ctx, peers)
	if len(analysis.PeerDetails) == 0 {
		if self, err := s.Metrics(ctx, ticker); err == nil {
			analysis.PeerDetails = []types.PeerMetrics{*self}
		}
	}

	if history, err := s.Prices.History(ticker, "5y"); err == nil {
		analysis.HistoricalMetrics = historicalRatios(history, years)
	} else {
		s.Logger.Warn("price history unavailable for historical ratios",
			zap.String("ticker", ticker), zap.Error(err))
	}

	narrative, ok := types.Narrative{}, false
	if s.Advisor != nil {
		narrative, ok = s.Advisor.GenerateFundamentalAnalysis(ctx, ticker, financialContext(analysis))
	}
	if !ok {
		narrative = fallbackNarrative(ticker, quote.Sector, revenueGrowth,
			analysis.OperatingMargin, roic, analysis.ValuationMultiples.PE)
	}
	analysis.Narrative = narrative
	analysis.AIReport = narrative.ValuationStory

	return analysis, nil
}

// Metrics fetches the valuation multiples for a single ticker, used for
// both the subject and its peers.
func (s *Service) Metrics(ctx context.Context, ticker string) (*types.PeerMetrics, error) {
	ticker = strings.ToUpper(ticker)
	quote, err := s.Quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &types.PeerMetrics{
		Ticker:  ticker,
		Metrics: s.multiples(ticker, quote, quote.TotalRevenue, false),
	}, nil
}

// multiples assembles the valuation multiple block. The P/S ratio sits
// behind its own TTL cache since the inputs churn slowly and the peer
// fan-out would otherwise recompute it constantly.
func (s *Service) multiples(ticker string, quote *marketdata.Quote, revenue float64, nilYieldWhenMissing bool) types.ValuationMultiples {
	var earningsYield *float64
	if quote.TrailingPE > 0 {
		y := 1 / quote.TrailingPE * 100
		earningsYield = &y
	} else if !nilYieldWhenMissing {
		zero := 0.0
		earningsYield = &zero
	}

	return types.ValuationMultiples{
		PE:            quote.TrailingPE,
		ForwardPE:     quote.ForwardPE,
		EVToEBITDA:    quote.EVToEBITDA,
		PriceToBook:   quote.PriceToBook,
		PS:            s.psRatio(ticker, quote, revenue),
		EarningsYield: earningsYield,
		Sector:        orDefault(quote.Sector, "Unknown"),
		Industry:      orDefault(quote.Industry, "Unknown"),
	}
}

func (s *Service) psRatio(ticker string, quote *marketdata.Quote, revenue float64) float64 {
	if s.PSCache != nil {
		if cached, ok := s.PSCache.Get(ticker); ok {
			if value, ok := cached.(float64); ok {
				return value
			}
		}
	}

	value := quote.PriceToSales
	if value <= 0 {
		if revenue == 0 {
			revenue = quote.TotalRevenue
		}
		value = ratio(quote.MarketCap, revenue)
	}

	if s.PSCache != nil {
		s.PSCache.Put(ticker, value)
	}
	return value
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
