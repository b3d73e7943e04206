package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

// GetMajorEvents summarizes recent headlines into the top significant
// events and decorates each with display attributes by sentiment.
func (s *Service) GetMajorEvents(ctx context.Context, ticker string, news []types.NewsItem) []types.MajorEvent {
	if s.Gen == nil || len(news) == 0 {
		return nil
	}

	// Cap the payload to keep the prompt inside token limits.
	if len(news) > 10 {
		news = news[:10]
	}
	newsJSON, err := json.Marshal(news)
	if err != nil {
		return nil
	}

	prompt := fmt.Sprintf(
		"Analyze the following news headlines for %s and identify the top 5 most significant events. "+
			"Return a strict JSON list of objects with keys: 'time' (YYYY-MM-DD), 'title', 'summary', and 'sentiment' (positive, negative, or neutral). "+
			"If the news item has a timestamp, use it. If not, use today's date. "+
			"News Data: %s "+
			"Strict JSON format only. No markdown.",
		ticker, newsJSON)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.Logger.Warn("major events analysis failed", zap.String("ticker", ticker), zap.Error(err))
		return nil
	}

	var events []types.MajorEvent
	if err := DecodeModelJSON(text, &events); err != nil {
		s.Logger.Warn("major events returned unparsable output", zap.String("ticker", ticker))
		return nil
	}

	for i := range events {
		switch {
		case strings.Contains(strings.ToLower(events[i].Sentiment), "positive"):
			events[i].Color = "#22c55e"
			events[i].Position = "belowBar"
			events[i].Shape = "arrowUp"
		case strings.Contains(strings.ToLower(events[i].Sentiment), "negative"):
			events[i].Color = "#ef4444"
			events[i].Position = "aboveBar"
			events[i].Shape = "arrowDown"
		default:
			events[i].Color = "#fbbf24"
			events[i].Shape = "circle"
		}
	}
	return events
}
