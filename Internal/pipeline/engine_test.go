package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantbrew/stockscope/Internal/shocks"
	"github.com/quantbrew/stockscope/Internal/types"
	"go.uber.org/zap"
)

type fakeNews struct {
	providers bool
	items     map[string][]types.NewsItem // keyed by pivot date
	calls     int
}

func (f *fakeNews) HasProviders() bool { return f.providers }

func (f *fakeNews) FetchForEvent(ctx context.Context, ticker string, pivotDate time.Time) []types.NewsItem {
	f.calls++
	return f.items[pivotDate.Format("2006-01-02")]
}

type fakeClassifier struct {
	mu       sync.Mutex
	analyses map[string]types.ShockAnalysis // keyed by event date
	calls    int
	inFlight int32
	peak     int32
	delay    time.Duration
}

func (f *fakeClassifier) AnalyzeShock(ctx context.Context, ticker, date, endDate string, percentChange float64, headlines []types.NewsItem) types.ShockAnalysis {
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.analyses[date]
}

// seriesWithJump builds a daily close series of n points starting at
// 2025-06-01, flat at 100 except for the jumps given as index→value.
func seriesWithJump(n int, jumps map[int]float64) []types.PricePoint {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, n)
	for i := range points {
		value := 100.0
		if v, ok := jumps[i]; ok {
			value = v
		}
		points[i] = types.PricePoint{
			Time:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Value: value,
		}
	}
	return points
}

func testEngine(newsSrc NewsSource, classifier Classifier) *Engine {
	e := NewEngine(newsSrc, classifier, shocks.DefaultParams(), 5, zap.NewNop())
	e.Now = func() time.Time { return time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestMockMarkersWhenNoProviders(t *testing.T) {
	engine := testEngine(&fakeNews{providers: false}, &fakeClassifier{})

	history := seriesWithJump(20, map[int]float64{14: 108})
	markers := engine.Markers(context.Background(), "AAPL", history)

	want := MockMarkers()
	if len(markers) != len(want) {
		t.Fatalf("expected %d mock markers, got %d", len(want), len(markers))
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Errorf("marker %d = %+v, want %+v", i, markers[i], want[i])
		}
	}
}

func TestShortHistoryYieldsNothing(t *testing.T) {
	engine := testEngine(&fakeNews{providers: true}, &fakeClassifier{})
	if markers := engine.Markers(context.Background(), "AAPL", seriesWithJump(1, nil)); markers != nil {
		t.Errorf("expected nil markers for short history, got %v", markers)
	}
}

func TestEndToEndPositiveShock(t *testing.T) {
	// +6% at index 14; pivot resolves to the first flat point in the
	// lookback slice, 2025-06-05.
	history := seriesWithJump(15, map[int]float64{14: 106})

	newsSrc := &fakeNews{
		providers: true,
		items: map[string][]types.NewsItem{
			"2025-06-05": {{Title: "Earnings beat", RelevanceScore: 0.9}},
		},
	}
	classifier := &fakeClassifier{
		analyses: map[string]types.ShockAnalysis{
			"2025-06-05": {IsRelevant: true, Headline: "Earnings beat", Summary: "Quarterly revenue beat estimates.", Sentiment: "positive"},
		},
	}
	engine := testEngine(newsSrc, classifier)

	markers := engine.Markers(context.Background(), "AAPL", history)
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	m := markers[0]
	if m.Time != "2025-06-05" {
		t.Errorf("expected pivot date 2025-06-05, got %s", m.Time)
	}
	if m.Color != "#22c55e" || m.Position != "belowBar" {
		t.Errorf("positive sentiment mapped wrong: color=%s position=%s", m.Color, m.Position)
	}
	if m.Shape != "circle" || m.Label != "N" || m.Text != "" {
		t.Errorf("unexpected display attributes: %+v", m)
	}
	if m.Headline != "Quarterly revenue beat estimates." {
		t.Errorf("headline slot should carry the summary, got %q", m.Headline)
	}
}

func TestEmptySummaryNeverYieldsMarker(t *testing.T) {
	history := seriesWithJump(15, map[int]float64{14: 106})
	newsSrc := &fakeNews{
		providers: true,
		items: map[string][]types.NewsItem{
			"2025-06-05": {{Title: "Something", RelevanceScore: 0.9}},
		},
	}
	classifier := &fakeClassifier{
		analyses: map[string]types.ShockAnalysis{
			"2025-06-05": {IsRelevant: true, Headline: "Something", Summary: "  ", Sentiment: "positive"},
		},
	}
	engine := testEngine(newsSrc, classifier)

	if markers := engine.Markers(context.Background(), "AAPL", history); len(markers) != 0 {
		t.Errorf("empty summary must drop the event, got %v", markers)
	}
}

func TestIrrelevantDroppedUnlessMarketSentiment(t *testing.T) {
	history := seriesWithJump(15, map[int]float64{14: 94}) // -6% move, pivot at peak
	newsSrc := &fakeNews{
		providers: true,
		items: map[string][]types.NewsItem{
			"2025-06-05": {{Title: "Unrelated", RelevanceScore: 0.8}},
		},
	}

	classifier := &fakeClassifier{
		analyses: map[string]types.ShockAnalysis{
			"2025-06-05": {IsRelevant: false, Headline: "Unrelated", Summary: "Not about this company.", Sentiment: "neutral"},
		},
	}
	engine := testEngine(newsSrc, classifier)
	if markers := engine.Markers(context.Background(), "AAPL", history); len(markers) != 0 {
		t.Errorf("irrelevant verdict must drop the event, got %v", markers)
	}

	classifier.analyses["2025-06-05"] = types.ShockAnalysis{
		IsRelevant: false, Headline: "Market Sentiment",
		Summary: "Broad sector selloff.", Sentiment: "negative",
	}
	markers := engine.Markers(context.Background(), "AAPL", history)
	if len(markers) != 1 {
		t.Fatalf("market sentiment verdict must survive, got %d markers", len(markers))
	}
	if markers[0].Color != "#ef4444" || markers[0].Position != "aboveBar" {
		t.Errorf("negative sentiment mapped wrong: %+v", markers[0])
	}
}

func TestEventWithoutNewsSkipsClassifier(t *testing.T) {
	history := seriesWithJump(15, map[int]float64{14: 106})
	newsSrc := &fakeNews{providers: true} // no items for any date
	classifier := &fakeClassifier{}
	engine := testEngine(newsSrc, classifier)

	if markers := engine.Markers(context.Background(), "AAPL", history); markers != nil {
		t.Errorf("expected nil markers, got %v", markers)
	}
	if newsSrc.calls != 1 {
		t.Errorf("expected 1 news fetch, got %d", newsSrc.calls)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier must not run without headlines, ran %d times", classifier.calls)
	}
}

type panickingClassifier struct {
	fakeClassifier
	panicOn string
}

func (f *panickingClassifier) AnalyzeShock(ctx context.Context, ticker, date, endDate string, percentChange float64, headlines []types.NewsItem) types.ShockAnalysis {
	if date == f.panicOn {
		panic("classifier blew up on " + date)
	}
	return f.fakeClassifier.AnalyzeShock(ctx, ticker, date, endDate, percentChange, headlines)
}

func TestPanickingClassifierDropsOnlyItsEvent(t *testing.T) {
	// Two shocks a full window apart; the classifier panics on the first
	// and the second must still come back as a marker.
	history := seriesWithJump(29, map[int]float64{14: 106, 28: 112.4})
	for i := 15; i < 28; i++ {
		history[i].Value = 106
	}

	items := map[string][]types.NewsItem{
		"2025-06-05": {{Title: "First shock", RelevanceScore: 0.9}},
		"2025-06-19": {{Title: "Second shock", RelevanceScore: 0.9}},
	}
	classifier := &panickingClassifier{
		fakeClassifier: fakeClassifier{analyses: map[string]types.ShockAnalysis{
			"2025-06-19": {IsRelevant: true, Headline: "Second shock", Summary: "Second shock explained.", Sentiment: "positive"},
		}},
		panicOn: "2025-06-05",
	}
	engine := testEngine(&fakeNews{providers: true, items: items}, classifier)

	markers := engine.Markers(context.Background(), "NVDA", history)
	if len(markers) != 1 {
		t.Fatalf("panicking task must drop only its event, got %d markers", len(markers))
	}
	if markers[0].Time != "2025-06-19" {
		t.Errorf("surviving marker should be the second event, got %s", markers[0].Time)
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	// Two shocks a full window apart so detection records both.
	history := seriesWithJump(29, map[int]float64{14: 106, 28: 112.4})
	for i := 15; i < 28; i++ {
		history[i].Value = 106
	}

	analyses := make(map[string]types.ShockAnalysis)
	items := make(map[string][]types.NewsItem)
	for _, date := range []string{"2025-06-05", "2025-06-19"} {
		items[date] = []types.NewsItem{{Title: "News " + date, RelevanceScore: 0.9}}
		analyses[date] = types.ShockAnalysis{
			IsRelevant: true, Headline: "News " + date,
			Summary: fmt.Sprintf("Summary for %s.", date), Sentiment: "positive",
		}
	}
	classifier := &fakeClassifier{analyses: analyses, delay: 20 * time.Millisecond}
	engine := testEngine(&fakeNews{providers: true, items: items}, classifier)
	engine.PoolSize = 1

	markers := engine.Markers(context.Background(), "NVDA", history)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if peak := atomic.LoadInt32(&classifier.peak); peak > 1 {
		t.Errorf("pool of 1 allowed %d concurrent classifications", peak)
	}
}
