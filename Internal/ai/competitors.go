package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// GetCompetitors asks the model for the subject's top public competitors.
// Failures return nil so the caller can fall back to sector leaders.
func (s *Service) GetCompetitors(ctx context.Context, ticker, companyName string) []string {
	if s.Gen == nil {
		return nil
	}

	prompt := fmt.Sprintf(
		"Return a strict list of 5 ticker symbols for the top public competitors of %s (%s). "+
			"Format: ['TICKER1', 'TICKER2', ...]. No text, no markdown, just the list.",
		companyName, ticker)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.Logger.Warn("competitor lookup failed", zap.String("ticker", ticker), zap.Error(err))
		return nil
	}

	// Models answer with single-quoted Python-style lists about as often
	// as JSON; DecodeModelJSON repairs both.
	var peers []string
	if err := DecodeModelJSON(text, &peers); err != nil {
		s.Logger.Warn("competitor lookup returned unparsable output", zap.String("ticker", ticker))
		return nil
	}
	return peers
}
