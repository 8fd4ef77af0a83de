// Package score computes the composite per-report confidence by blending
// ensemble agreement with cross-report consistency.
package score

import (
	"math"
	"time"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// RelativeTolerance is the allowed relative difference between the same
// actual quarter in two consecutive reports. Actuals, once reported,
// should be numerically stable; estimates are volatile and excluded.
const RelativeTolerance = 0.20

const (
	barWeight         = 0.5
	consistencyWeight = 0.5
)

// BarScore averages the per-pair agreement tiers for one report.
// No pairs means no evidence: the score is 0.
func BarScore(tiers []float64) float64 {
	if len(tiers) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tiers {
		sum += t
	}
	return sum / float64(len(tiers))
}

// ClosestPrior returns the record with the latest report date strictly
// before date, or nil if history holds none. History need not be ordered
// and gaps between reporting dates are tolerated.
func ClosestPrior(history []*entity.ReportRecord, date time.Time) *entity.ReportRecord {
	var prior *entity.ReportRecord
	for _, rec := range history {
		if !rec.ReportDate.Before(date) {
			continue
		}
		if prior == nil || rec.ReportDate.After(prior.ReportDate) {
			prior = rec
		}
	}
	return prior
}

// ConsistencyScore compares the current report's actual quarters against
// the closest preceding record. A quarter matches when the relative
// difference is within tolerance. With no prior record, or no quarter
// present as actual in both, there is nothing to contradict and the score
// is 100.
func ConsistencyScore(current *entity.ReportRecord, history []*entity.ReportRecord) float64 {
	prior := ClosestPrior(history, current.ReportDate)
	if prior == nil {
		return 100
	}

	currentActuals := current.ActualQuarters()
	priorActuals := prior.ActualQuarters()

	matches, comparable := 0, 0
	for key, cur := range currentActuals {
		prev, ok := priorActuals[key]
		if !ok {
			continue
		}
		comparable++
		if relDiff(cur, prev) <= RelativeTolerance {
			matches++
		}
	}
	if comparable == 0 {
		return 100
	}
	return 100 * float64(matches) / float64(comparable)
}

func relDiff(cur, prev float64) float64 {
	denom := math.Abs(prev)
	if denom < 0.01 {
		denom = 0.01
	}
	return math.Abs(cur-prev) / denom
}

// Confidence blends the internal-agreement signal with the
// external-stability signal. The two catch different failure modes: three
// methods can agree on a wrong crop, but the result then usually
// contradicts the prior report.
func Confidence(barScore, consistencyScore float64) float64 {
	return barWeight*barScore + consistencyWeight*consistencyScore
}
