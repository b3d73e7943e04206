package shocks

import (
	"sort"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
	"github.com/quantbrew/stockscope/Internal/utils"
)

// Dedupe keeps at most MaxEvents candidates with no two pivot dates
// within MinGapDays of each other. Magnitude decides membership in the
// pool; the date-descending walk decides which of two close candidates
// wins, so within a gap the more recent one survives. This tie-break is
// deliberate: it can evict a larger-magnitude neighbor near the boundary.
func Dedupe(candidates []types.ShockCandidate, p Params) []types.ShockCandidate {
	pool := make([]types.ShockCandidate, len(candidates))
	copy(pool, candidates)

	sort.SliceStable(pool, func(a, b int) bool {
		return utils.Abs(pool[a].Change) > utils.Abs(pool[b].Change)
	})
	if len(pool) > p.MaxEvents {
		pool = pool[:p.MaxEvents]
	}
	sort.SliceStable(pool, func(a, b int) bool { return pool[a].Date > pool[b].Date })

	var accepted []types.ShockCandidate
	for _, cand := range pool {
		candDate, err := time.Parse(dateLayout, cand.Date)
		if err != nil {
			continue
		}

		tooClose := false
		for _, a := range accepted {
			acceptedDate, err := time.Parse(dateLayout, a.Date)
			if err != nil {
				continue
			}
			days := int(utils.Abs(candDate.Sub(acceptedDate).Hours() / 24))
			if days <= p.MinGapDays {
				tooClose = true
				break
			}
		}
		if !tooClose {
			accepted = append(accepted, cand)
		}
	}

	return accepted
}
