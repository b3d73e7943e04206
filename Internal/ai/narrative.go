package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

// GenerateFundamentalAnalysis produces the research-report narrative.
// The wall-clock budget is enforced through the service timeout; a
// timed-out call yields the fixed "timed out" payload and a parse
// failure yields ok=false so the caller can fall back to the
// deterministic narrative.
func (s *Service) GenerateFundamentalAnalysis(ctx context.Context, ticker string, financialContext map[string]interface{}) (types.Narrative, bool) {
	if s.Gen == nil {
		return types.Narrative{}, false
	}

	contextJSON, err := json.Marshal(financialContext)
	if err != nil {
		contextJSON = []byte("{}")
	}

	prompt := fmt.Sprintf(
		"You are a Senior Equity Research Analyst covering %s. "+
			"Generate a professional research report analyzing the company's valuation, growth drivers, and risks. "+
			"Data Context: %s. "+
			"Structure your response as a strict JSON object with these 4 keys: "+
			"1. 'companyDescription': A 1-2 sentence high-level summary of the business model and primary revenue streams. "+
			"2. 'valuationStory': A concise paragraph analyzing the current valuation. Compare metrics to historical averages or peers if implied. Avoid generic definitions. "+
			"3. 'keyDrivers': A bulleted list (string with newlines) of 3 distinct catalysts (internal or external) driving the stock. Specifically mention Internal Catalysts (product lines, margins) and External Factors (macro, regulation). "+
			"4. 'riskFactors': A bulleted list (string with newlines) of 3 specific risks unique to this company/industry. "+
			"Strict JSON only. No markdown.",
		ticker, contextJSON)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Warn("fundamental analysis timed out", zap.String("ticker", ticker))
			return types.Narrative{
				CompanyDescription: fmt.Sprintf("%s data available, but AI report generation timed out.", ticker),
				ValuationStory:     "AI Analysis Timed Out. Summary currently unavailable.",
				KeyDrivers:         "• AI Service Timeout\n• Try refreshing in a few moments",
				RiskFactors:        "• AI Service Timeout",
			}, true
		}
		s.Logger.Warn("fundamental analysis failed", zap.String("ticker", ticker), zap.Error(err))
		return types.Narrative{}, false
	}

	var narrative types.Narrative
	if err := DecodeModelJSON(text, &narrative); err != nil {
		s.Logger.Warn("fundamental analysis returned unparsable output", zap.String("ticker", ticker))
		return types.Narrative{}, false
	}
	return narrative, true
}
