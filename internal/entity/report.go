package entity

import (
	"fmt"
	"sort"
	"time"
)

// QuarterRef identifies a fiscal quarter, e.g. Q1 2014.
type QuarterRef struct {
	Quarter int // 1..4
	Year    int // four-digit, e.g. 2014
}

// Key renders the canonical quarter key, e.g. "Q1'14".
func (q QuarterRef) Key() string {
	return fmt.Sprintf("Q%d'%02d", q.Quarter, q.Year%100)
}

// Before reports chronological order by (year, quarter).
func (q QuarterRef) Before(o QuarterRef) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Quarter < o.Quarter
}

// ParseQuarterKey parses a canonical key like "Q1'14" back into a QuarterRef.
func ParseQuarterKey(key string) (QuarterRef, error) {
	var q, yy int
	if _, err := fmt.Sscanf(key, "Q%d'%d", &q, &yy); err != nil {
		return QuarterRef{}, fmt.Errorf("parse quarter key %q: %w", key, err)
	}
	if q < 1 || q > 4 || yy < 0 || yy > 99 {
		return QuarterRef{}, fmt.Errorf("parse quarter key %q: out of range", key)
	}
	return QuarterRef{Quarter: q, Year: 2000 + yy}, nil
}

// QuarterLabel is a TextDetection recognized as a quarter label in the
// bottom band of the chart. Never mutated after creation.
type QuarterLabel struct {
	QuarterRef
	Box        Box
	SourceText string
}

// NumericCandidate is a TextDetection whose text parses as a decimal value.
type NumericCandidate struct {
	Value float64
	Box   Box
}

// QuarterValuePair is the output of spatial matching: one quarter label
// paired with the numeric value printed above its bar.
type QuarterValuePair struct {
	QuarterRef
	Value    float64
	LabelBox Box
	ValueBox Box
	XDiff    float64 // |label centerX - value centerX|
	YDiff    float64 // label centerY - value centerY, positive (value above)
}

// QuarterValue is one cell of a report: an EPS figure plus its
// actual/estimate marker.
type QuarterValue struct {
	Value      float64
	IsEstimate bool
}

// ReportRecord is the extraction result for one chart image: all quarter
// values keyed by canonical quarter key, plus the composite confidence.
type ReportRecord struct {
	ReportDate time.Time
	Quarters   map[string]QuarterValue
	Confidence float64
}

// NewReportRecord returns an empty record for the given report date.
func NewReportRecord(date time.Time) *ReportRecord {
	return &ReportRecord{ReportDate: date, Quarters: map[string]QuarterValue{}}
}

// QuarterKeys returns the record's quarter keys in chronological order,
// independent of detection order.
func (r *ReportRecord) QuarterKeys() []string {
	keys := make([]string, 0, len(r.Quarters))
	for k := range r.Quarters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		qi, erri := ParseQuarterKey(keys[i])
		qj, errj := ParseQuarterKey(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		return qi.Before(qj)
	})
	return keys
}

// ActualQuarters returns only the non-estimate cells.
func (r *ReportRecord) ActualQuarters() map[string]float64 {
	out := map[string]float64{}
	for k, v := range r.Quarters {
		if !v.IsEstimate {
			out[k] = v.Value
		}
	}
	return out
}
