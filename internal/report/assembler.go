// Package report folds matched, classified pairs into date-keyed records
// and accumulates them into the cumulative output table.
package report

import (
	"time"

	"github.com/seung-gu/factset-data-collector/internal/barclass"
	"github.com/seung-gu/factset-data-collector/internal/entity"
	"github.com/seung-gu/factset-data-collector/internal/score"
)

// ClassifiedPair couples a matched quarter/value pair with its ensemble
// classification.
type ClassifiedPair struct {
	Pair  entity.QuarterValuePair
	Class barclass.Result
}

// Assemble builds one ReportRecord from a single image's classified pairs
// and the caller-supplied history of previously assembled records. History
// is injected explicitly; the assembler holds no ambient state.
//
// An image with zero pairs still yields a record, with an empty quarter
// mapping and confidence 0.
func Assemble(date time.Time, pairs []ClassifiedPair, history []*entity.ReportRecord) *entity.ReportRecord {
	rec := entity.NewReportRecord(date)
	if len(pairs) == 0 {
		return rec
	}

	tiers := make([]float64, 0, len(pairs))
	for _, cp := range pairs {
		rec.Quarters[cp.Pair.Key()] = entity.QuarterValue{
			Value:      cp.Pair.Value,
			IsEstimate: cp.Class.FinalClass == barclass.ClassLight,
		}
		tiers = append(tiers, cp.Class.TierConfidence)
	}

	barScore := score.BarScore(tiers)
	consistency := score.ConsistencyScore(rec, history)
	rec.Confidence = score.Confidence(barScore, consistency)
	return rec
}
