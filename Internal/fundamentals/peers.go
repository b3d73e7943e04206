package fundamentals

import (
	"context"
	"strings"
	"sync"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

// sectorLeaders is the fallback peer universe when neither a direct
// override nor the AI lookup yields competitors.
var sectorLeaders = map[string][]string{
	"Technology":             {"MSFT", "AAPL", "NVDA", "ORCL", "ADBE", "CRM", "AMD", "INTC"},
	"Financial Services":     {"JPM", "BAC", "V", "MA", "MS", "GS", "WFC", "C"},
	"Healthcare":             {"JNJ", "LLY", "PFE", "MRK", "ABT", "TMO", "UNH", "BMY"},
	"Consumer Cyclical":      {"AMZN", "TSLA", "HD", "MCD", "NKE", "SBUX", "LOW", "F"},
	"Consumer Defensive":     {"PG", "KO", "PEP", "COST", "WMT", "CL", "MO", "TGT"},
	"Energy":                 {"XOM", "CVX", "SHEL", "TTE", "COP", "BP", "EOG", "SLB"},
	"Communication Services": {"GOOGL", "META", "NFLX", "DIS", "TMUS", "CMCSA", "VZ", "T"},
	"Industrials":            {"HON", "UPS", "UNP", "CAT", "GE", "DE", "LMT", "BA"},
	"Utilities":              {"NEE", "DUK", "SO", "D", "AEP"},
	"Real Estate":            {"PLD", "AMT", "CCI", "EQIX", "PSA", "O"},
	"Basic Materials":        {"LIN", "SHW", "FCX", "NEM", "DOW"},
}

// directPeers overrides the AI lookup for tickers whose competitive set
// is well known and stable.
var directPeers = map[string][]string{
	"NVDA": {"AMD", "INTC", "TSM"},
	"AMD":  {"NVDA", "INTC", "QCOM"},
	"INTC": {"AMD", "NVDA", "TXN"},
}

// resolvePeers picks the competitor tickers for a subject: direct
// override first, then the AI lookup, then sector leaders.
func (s *Service) resolvePeers(ctx context.Context, ticker, companyName, sector string) []string {
	upper := strings.ToUpper(ticker)
	if peers, ok := directPeers[upper]; ok {
		return peers
	}

	if s.Advisor != nil {
		if peers := s.Advisor.GetCompetitors(ctx, upper, companyName); len(peers) > 0 {
			return peers
		}
	}

	leaders, ok := sectorLeaders[sector]
	if !ok {
		leaders = []string{"SPY", "QQQ"}
	}
	var peers []string
	for _, p := range leaders {
		if p == upper {
			continue
		}
		peers = append(peers, p)
		if len(peers) == 5 {
			break
		}
	}
	return peers
}

// fetchPeerMetrics pulls valuation multiples for each peer with a
// bounded pool; a failed peer is dropped, not fatal.
func (s *Service) fetchPeerMetrics(ctx context.Context, peers []string) []types.PeerMetrics {
	results := make(chan types.PeerMetrics, len(peers))
	sem := make(chan struct{}, s.PeerPoolSize)
	var wg sync.WaitGroup
	for _, peer := range peers {
		wg.Add(1)
		go func(peer string) {
			defer wg.Done()
			// A panicking fetch drops only its peer.
			defer func() {
				if r := recover(); r != nil {
					s.Logger.Warn("peer metrics task panicked, dropping peer",
						zap.String("peer", peer), zap.Any("panic", r))
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()

			metrics, err := s.Metrics(ctx, peer)
			if err != nil {
				s.Logger.Warn("peer metrics fetch failed",
					zap.String("peer", peer), zap.Error(err))
				return
			}
			results <- *metrics
		}(peer)
	}
	wg.Wait()
	close(results)

	var details []types.PeerMetrics
	for m := range results {
		details = append(details, m)
	}
	return details
}
