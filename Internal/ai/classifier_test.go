package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	text string
	err  error
	// recorded for prompt assertions
	lastPrompt string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestService(gen Generator) *Service {
	return NewService(gen, 5*time.Second, zap.NewNop())
}

func TestAnalyzeShockNoGenerator(t *testing.T) {
	svc := newTestService(nil)
	svc.Gen = nil

	got := svc.AnalyzeShock(context.Background(), "AAPL", "2025-03-10", "2025-03-12", 6.5, nil)
	if got.Headline != "AI Unavailable" {
		t.Errorf("expected AI Unavailable headline, got %q", got.Headline)
	}
	if got.Sentiment != "neutral" {
		t.Errorf("expected neutral sentiment, got %q", got.Sentiment)
	}
}

func TestAnalyzeShockCallFailure(t *testing.T) {
	svc := newTestService(&fakeGenerator{err: errors.New("boom")})

	got := svc.AnalyzeShock(context.Background(), "AAPL", "2025-03-10", "", -5.2, nil)
	if got.Headline != "AI Analysis Failed" {
		t.Errorf("expected AI Analysis Failed, got %q", got.Headline)
	}
	if got.Summary != FallbackSummary {
		t.Errorf("expected fallback summary, got %q", got.Summary)
	}
}

func TestAnalyzeShockProseKeptAsSummary(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "The move was driven by sector rotation."})

	got := svc.AnalyzeShock(context.Background(), "AAPL", "2025-03-10", "", 5.0, nil)
	if got.Headline != "AI Analysis" {
		t.Errorf("expected AI Analysis headline, got %q", got.Headline)
	}
	if got.Summary != "The move was driven by sector rotation." {
		t.Errorf("prose should survive as summary, got %q", got.Summary)
	}
}

func TestAnalyzeShockEmptySummaryReplaced(t *testing.T) {
	svc := newTestService(&fakeGenerator{
		text: `{"is_relevant": true, "headline": "Earnings beat", "summary": "  ", "sentiment": "positive"}`,
	})

	got := svc.AnalyzeShock(context.Background(), "AAPL", "2025-03-10", "", 5.0, nil)
	if got.Summary != FallbackSummary {
		t.Errorf("blank summary should be replaced, got %q", got.Summary)
	}
	if !got.IsRelevant || got.Headline != "Earnings beat" {
		t.Errorf("unexpected analysis: %+v", got)
	}
}

func TestAnalyzeShockHappyPath(t *testing.T) {
	gen := &fakeGenerator{
		text: "```json\n{\"is_relevant\": true, \"headline\": \"Chip export ban\", \"summary\": \"New export restrictions hit revenue outlook.\", \"sentiment\": \"negative\"}\n```",
	}
	svc := newTestService(gen)

	news := []types.NewsItem{{Title: "Chip export ban", RelevanceScore: 0.9}}
	got := svc.AnalyzeShock(context.Background(), "NVDA", "2025-03-10", "2025-03-12", -7.1, news)
	if got.Headline != "Chip export ban" || got.Sentiment != "negative" {
		t.Errorf("unexpected analysis: %+v", got)
	}
	if !strings.Contains(gen.lastPrompt, "NVDA") {
		t.Error("prompt should name the ticker")
	}
	if !strings.Contains(gen.lastPrompt, "from 2025-03-10 to 2025-03-12") {
		t.Error("prompt should carry the date range")
	}
}

func TestGenerateFundamentalAnalysisTimeout(t *testing.T) {
	svc := newTestService(&fakeGenerator{err: context.DeadlineExceeded})

	got, ok := svc.GenerateFundamentalAnalysis(context.Background(), "MSFT", nil)
	if !ok {
		t.Fatal("timed-out analysis should still yield a payload")
	}
	if !strings.Contains(got.ValuationStory, "Timed Out") {
		t.Errorf("expected timed-out story, got %q", got.ValuationStory)
	}
}

func TestGenerateFundamentalAnalysisParseFailure(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "not json at all"})

	if _, ok := svc.GenerateFundamentalAnalysis(context.Background(), "MSFT", nil); ok {
		t.Error("unparsable output should report ok=false")
	}
}

func TestGetCompetitorsRepairsPythonList(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "['AMD', 'INTC', 'QCOM', 'AVGO', 'TSM']"})

	peers := svc.GetCompetitors(context.Background(), "NVDA", "NVIDIA Corporation")
	if len(peers) != 5 || peers[0] != "AMD" {
		t.Errorf("unexpected peers: %v", peers)
	}
}

func TestGetMajorEventsDecoratesBySentiment(t *testing.T) {
	svc := newTestService(&fakeGenerator{
		text: `[{"time": "2025-03-10", "title": "Beat", "summary": "s", "sentiment": "positive"},
				{"time": "2025-03-11", "title": "Miss", "summary": "s", "sentiment": "negative"},
				{"time": "2025-03-12", "title": "Hold", "summary": "s", "sentiment": "neutral"}]`,
	})

	news := []types.NewsItem{{Title: "Beat", PublishedAt: "2025-03-10"}}
	events := svc.GetMajorEvents(context.Background(), "AAPL", news)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Color != "#22c55e" || events[0].Shape != "arrowUp" || events[0].Position != "belowBar" {
		t.Errorf("positive event decorated wrong: %+v", events[0])
	}
	if events[1].Color != "#ef4444" || events[1].Shape != "arrowDown" || events[1].Position != "aboveBar" {
		t.Errorf("negative event decorated wrong: %+v", events[1])
	}
	if events[2].Color != "#fbbf24" || events[2].Shape != "circle" {
		t.Errorf("neutral event decorated wrong: %+v", events[2])
	}
}

func TestGetMajorEventsEmptyNews(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "[]"})
	if events := svc.GetMajorEvents(context.Background(), "AAPL", nil); events != nil {
		t.Errorf("expected nil for empty news, got %v", events)
	}
}
