package shocks

import (
	"math"
	"sort"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"github.com/quantbrew/stockscope/Internal/utils"
)

const dateLayout = "2006-01-02"

type Params struct {
	ReturnThreshold float64 // trigger at |cumulative return| >= this
	WindowDays      int     // comparison stride in trading days
	PivotLookback   int     // points before i inspected for the pivot
	CutoffDays      int     // ignore points older than this many days
	MaxEvents       int
	MinGapDays      int
}

func DefaultParams() Params {
	return Params{
		ReturnThreshold: 0.05,
		WindowDays:      14,
		PivotLookback:   10,
		CutoffDays:      730,
		MaxEvents:       5,
		MinGapDays:      3,
	}
}

// DetectShocks scans a daily close series for large short-window moves.
// The comparison is p[i] against p[i-window]; on a trigger the pivot is
// the true local extremum inside the lookback slice, not index i itself.
// Unparsable dates, zero denominators and points past the cutoff all skip
// one index; a recorded shock skips a full window to avoid re-triggering
// on the same move.
func DetectShocks(history []types.PricePoint, now time.Time, p Params) []types.ShockCandidate {
	if len(history) <= p.WindowDays {
		return nil
	}

	sorted := make([]types.PricePoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Time < sorted[b].Time })

	cutoff := now.AddDate(0, 0, -p.CutoffDays)

	var candidates []types.ShockCandidate
	i := p.WindowDays
	for i < len(sorted) {
		current := sorted[i]
		past := sorted[i-p.WindowDays]

		currentDate, err := time.Parse(dateLayout, current.Time)
		if err != nil {
			i++
			continue
		}
		if currentDate.Before(cutoff) {
			i++
			continue
		}
		if past.Value == 0 {
			i++
			continue
		}

		cumReturn := (current.Value - past.Value) / past.Value
		if utils.Abs(cumReturn) < p.ReturnThreshold {
			i++
			continue
		}

		lookbackStart := i - p.PivotLookback
		if lookbackStart < 0 {
			lookbackStart = 0
		}
		pivot := pickPivot(sorted[lookbackStart:i+1], cumReturn > 0)

		if pivotDate, err := time.Parse(dateLayout, pivot.Time); err == nil {
			candidates = append(candidates, types.ShockCandidate{
				Date:      pivot.Time,
				Change:    math.Round(cumReturn*10000) / 100,
				Value:     pivot.Value,
				StartDate: pivotDate.AddDate(0, 0, -1).Format(dateLayout),
				EndDate:   pivotDate.AddDate(0, 0, 1).Format(dateLayout),
			})
		}
		i += p.WindowDays
	}

	return candidates
}

// pickPivot returns the minimum-value point for an upward move (the price
// jumped from a trough) or the maximum for a downward move (it fell from
// a peak). Ties go to the earliest point, matching the walk order.
func pickPivot(window []types.PricePoint, upward bool) types.PricePoint {
	pivot := window[0]
	for _, pt := range window[1:] {
		if upward && pt.Value < pivot.Value {
			pivot = pt
		}
		if !upward && pt.Value > pivot.Value {
			pivot = pt
		}
	}
	return pivot
}
