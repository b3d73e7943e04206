package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

// FallbackSummary replaces an empty or unusable model summary so a
// classified event never surfaces without one.
const FallbackSummary = "No detailed AI summary available for this event"

// MarketSentimentHeadline is the sentinel headline for moves explained
// by broad market conditions rather than company-specific news.
const MarketSentimentHeadline = "Market Sentiment"

// AnalyzeShock asks the model which headline explains a price move, or
// whether broad market sentiment does. It encodes the gatekeeper rules:
// passing mentions in list articles are rejected, competitor news counts
// only with direct valuation impact, and "no company news" resolves to a
// Market Sentiment summary rather than a non-answer. The result is
// always usable; call failures and unparsable output map to sentinel
// analyses, never to an error.
func (s *Service) AnalyzeShock(ctx context.Context, ticker, date, endDate string, percentChange float64, headlines []types.NewsItem) types.ShockAnalysis {
	if s.Gen == nil {
		return types.ShockAnalysis{
			Headline:  "AI Unavailable",
			Summary:   "API key missing",
			Sentiment: "neutral",
		}
	}

	period := fmt.Sprintf("on %s", date)
	if endDate != "" {
		period = fmt.Sprintf("from %s to %s", date, endDate)
	}

	headlineJSON, err := json.Marshal(headlines)
	if err != nil {
		headlineJSON = []byte("[]")
	}

	prompt := fmt.Sprintf(
		"You are a Financial News Gatekeeper for ticker %s. Your goal is to find the PRIMARY reason for a %.2f%% price move %s. "+
			"Here is the news for the 10 days leading up to a major price reversal on %s. "+
			"Identify if the reversal was caused by a single 'Flash Event' on the pivot day, or if it was the culmination of a 'Slow Build' story (like a series of rumors) over the preceding week. "+
			"Headlines: %s. "+
			"Rule 1: Reject any news where %s is just a side-mention or part of a list (e.g., 'Stocks to watch today'). "+
			"Rule 2: Reject news that is about a competitor unless it directly changes the valuation of %s (e.g., a massive contract win by a rival). "+
			"Rule 3: If no specific company news exists, provide a brief 'Market Sentiment' summary (e.g., 'Broad sector rally' or 'Technical rebound') in the 'summary' field and set 'headline' to 'Market Sentiment'. Do NOT return 'NONE' in this case. "+
			"Output: A strict JSON object with keys: "+
			"'is_relevant' (boolean, true if company news OR market sentiment found), "+
			"'headline' (the exact text of the chosen headline or 'Market Sentiment'), "+
			"'summary' (a single summary sentence explaining why this caused the move), "+
			"and 'sentiment' (positive/negative/neutral). "+
			"Strict JSON only. No markdown.",
		ticker, percentChange, period, date, headlineJSON, ticker, ticker)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.Logger.Warn("shock analysis call failed",
			zap.String("ticker", ticker),
			zap.String("date", date),
			zap.Error(err))
		return types.ShockAnalysis{
			Headline:  "AI Analysis Failed",
			Summary:   FallbackSummary,
			Sentiment: "neutral",
		}
	}

	var analysis types.ShockAnalysis
	if err := DecodeModelJSON(text, &analysis); err != nil {
		// The model answered in prose; keep it as the summary.
		cleaned := CleanModelJSON(text)
		if cleaned == "" {
			cleaned = FallbackSummary
		}
		s.Logger.Warn("shock analysis returned non-JSON",
			zap.String("ticker", ticker),
			zap.String("date", date))
		return types.ShockAnalysis{
			Headline:  "AI Analysis",
			Summary:   cleaned,
			Sentiment: "neutral",
		}
	}

	if strings.TrimSpace(analysis.Summary) == "" {
		analysis.Summary = FallbackSummary
	}
	return analysis
}
