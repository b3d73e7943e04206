package shocks

import (
	"testing"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
)

func seriesFrom(start time.Time, values []float64) []types.PricePoint {
	points := make([]types.PricePoint, len(values))
	for i, v := range values {
		points[i] = types.PricePoint{
			Time:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Value: v,
		}
	}
	return points
}

func TestDetectShocksTooFewPoints(t *testing.T) {
	now := time.Now()
	values := make([]float64, 14)
	for i := range values {
		values[i] = 100
	}
	history := seriesFrom(now.AddDate(0, 0, -20), values)

	if got := DetectShocks(history, now, DefaultParams()); len(got) != 0 {
		t.Errorf("Expected no candidates for %d points, got %d", len(history), len(got))
	}
}

func TestDetectShocksPositiveMovePivotsAtTrough(t *testing.T) {
	now := time.Now()
	// Drifts down to a trough of 95, then jumps to 106 for a +6% window return.
	values := []float64{100, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103, 106}
	history := seriesFrom(now.AddDate(0, 0, -20), values)

	got := DetectShocks(history, now, DefaultParams())
	if len(got) != 1 {
		t.Fatalf("Expected exactly one candidate, got %d", len(got))
	}

	shock := got[0]
	troughDate := history[10].Time
	if shock.Date != troughDate {
		t.Errorf("Expected pivot at trough %s, got %s", troughDate, shock.Date)
	}
	if shock.Value != 95 {
		t.Errorf("Expected pivot value 95, got %f", shock.Value)
	}
	if shock.Change != 6.0 {
		t.Errorf("Expected +6.00%% change, got %f", shock.Change)
	}
}

func TestDetectShocksNegativeMovePivotsAtPeak(t *testing.T) {
	now := time.Now()
	// Climbs to a peak of 105, then falls to 94 for a -6% window return.
	values := []float64{100, 100, 100, 100, 100, 100, 101, 102, 103, 104, 105, 102, 99, 96, 94}
	history := seriesFrom(now.AddDate(0, 0, -20), values)

	got := DetectShocks(history, now, DefaultParams())
	if len(got) != 1 {
		t.Fatalf("Expected exactly one candidate, got %d", len(got))
	}

	shock := got[0]
	peakDate := history[10].Time
	if shock.Date != peakDate {
		t.Errorf("Expected pivot at peak %s, got %s", peakDate, shock.Date)
	}
	if shock.Change != -6.0 {
		t.Errorf("Expected -6.00%% change, got %f", shock.Change)
	}
}

func TestDetectShocksWindowBoundsPivot(t *testing.T) {
	now := time.Now()
	values := []float64{100, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103, 106}
	history := seriesFrom(now.AddDate(0, 0, -20), values)

	got := DetectShocks(history, now, DefaultParams())
	if len(got) != 1 {
		t.Fatalf("Expected one candidate, got %d", len(got))
	}

	pivot, _ := time.Parse("2006-01-02", got[0].Date)
	if got[0].StartDate != pivot.AddDate(0, 0, -1).Format("2006-01-02") {
		t.Errorf("Expected start date one day before pivot, got %s", got[0].StartDate)
	}
	if got[0].EndDate != pivot.AddDate(0, 0, 1).Format("2006-01-02") {
		t.Errorf("Expected end date one day after pivot, got %s", got[0].EndDate)
	}
}

func TestDetectShocksCutoffSkipsOldPoints(t *testing.T) {
	now := time.Now()
	values := []float64{100, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103, 106}
	// Entire series sits beyond the 730-day horizon.
	history := seriesFrom(now.AddDate(0, 0, -800), values)

	if got := DetectShocks(history, now, DefaultParams()); len(got) != 0 {
		t.Errorf("Expected no candidates beyond the cutoff, got %d", len(got))
	}
}

func TestDetectShocksSkipsUnparsableDates(t *testing.T) {
	now := time.Now()
	// Index 14 would trigger but its date is corrupted; index 15 is a
	// clean +12.4% trigger against index 1. The suffix keeps the bad
	// point in sort position so the walk reaches it first.
	values := []float64{100, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103, 106, 112.4}
	history := seriesFrom(now.AddDate(0, 0, -20), values)
	history[14].Time += "T12:00"

	got := DetectShocks(history, now, DefaultParams())
	if len(got) != 1 {
		t.Fatalf("Expected the walk to advance past the bad date and find 1 candidate, got %d", len(got))
	}
	if got[0].Date != history[10].Time {
		t.Errorf("Expected pivot at trough %s, got %s", history[10].Time, got[0].Date)
	}
	if got[0].Change != 12.4 {
		t.Errorf("Expected +12.40%% change, got %f", got[0].Change)
	}
}

func TestDetectShocksSkipsZeroDenominator(t *testing.T) {
	now := time.Now()
	values := []float64{0, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103, 106}
	history := seriesFrom(now.AddDate(0, 0, -20), values)

	if got := DetectShocks(history, now, DefaultParams()); len(got) != 0 {
		t.Errorf("Expected zero past price to be skipped, got %d candidates", len(got))
	}
}

func TestDetectShocksAdvancesPastRecordedWindow(t *testing.T) {
	now := time.Now()
	// 29 points: a +6% move at i=14 and prices held high after. Without
	// the full-window skip, i=15..28 would re-trigger on the same move.
	values := []float64{100, 100, 100, 100, 100, 100, 99, 98, 97, 96, 95, 98, 100, 103,
		106, 106, 106, 106, 106, 106, 106, 106, 106, 106, 106, 106, 106, 106, 105}
	history := seriesFrom(now.AddDate(0, 0, -40), values)

	got := DetectShocks(history, now, DefaultParams())
	if len(got) != 1 {
		t.Errorf("Expected a single candidate after the stride skip, got %d", len(got))
	}
}
