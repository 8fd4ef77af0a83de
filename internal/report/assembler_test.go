package report

import (
	"testing"
	"time"

	"github.com/seung-gu/factset-data-collector/internal/barclass"
	"github.com/seung-gu/factset-data-collector/internal/entity"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func classified(q, year int, value float64, class barclass.Class, tier float64) ClassifiedPair {
	return ClassifiedPair{
		Pair: entity.QuarterValuePair{
			QuarterRef: entity.QuarterRef{Quarter: q, Year: year},
			Value:      value,
		},
		Class: barclass.Result{FinalClass: class, TierConfidence: tier},
	}
}

func TestAssemble_EmptyPairs(t *testing.T) {
	rec := Assemble(day("2014-02-14"), nil, nil)
	if rec == nil {
		t.Fatal("Assemble returned nil for zero pairs")
	}
	if len(rec.Quarters) != 0 {
		t.Fatalf("expected empty quarter map, got %v", rec.Quarters)
	}
	if rec.Confidence != 0 {
		t.Fatalf("zero pairs must yield confidence 0, got %v", rec.Confidence)
	}
}

func TestAssemble_ClassifiesEstimates(t *testing.T) {
	pairs := []ClassifiedPair{
		classified(1, 2014, 27.85, barclass.ClassDark, 100),
		classified(2, 2014, 28.30, barclass.ClassLight, 100),
	}
	rec := Assemble(day("2014-02-14"), pairs, nil)

	q1, ok := rec.Quarters["Q1'14"]
	if !ok || q1.Value != 27.85 || q1.IsEstimate {
		t.Fatalf("Q1'14 = %+v (present=%v), want actual 27.85", q1, ok)
	}
	q2, ok := rec.Quarters["Q2'14"]
	if !ok || q2.Value != 28.30 || !q2.IsEstimate {
		t.Fatalf("Q2'14 = %+v (present=%v), want estimate 28.30", q2, ok)
	}
}

func TestAssemble_FirstRecordConfidence(t *testing.T) {
	pairs := []ClassifiedPair{
		classified(1, 2014, 27.85, barclass.ClassDark, 100),
	}
	rec := Assemble(day("2014-01-10"), pairs, nil)
	// bar 100, consistency 100 (first record) -> 100
	if rec.Confidence != 100 {
		t.Fatalf("first record confidence = %v, want 100", rec.Confidence)
	}
}

func TestAssemble_ContradictedPriorHalvesConfidence(t *testing.T) {
	prior := entity.NewReportRecord(day("2014-01-10"))
	prior.Quarters["Q1'14"] = entity.QuarterValue{Value: 10.00}

	pairs := []ClassifiedPair{
		classified(1, 2014, 15.00, barclass.ClassDark, 100),
	}
	rec := Assemble(day("2014-02-14"), pairs, []*entity.ReportRecord{prior})
	// bar 100, consistency 0 -> 50
	if rec.Confidence != 50 {
		t.Fatalf("contradicted prior: confidence = %v, want 50", rec.Confidence)
	}
}

func TestAssemble_BlendsTiers(t *testing.T) {
	pairs := []ClassifiedPair{
		classified(1, 2014, 27.85, barclass.ClassDark, 100),
		classified(2, 2014, 28.30, barclass.ClassLight, 33),
	}
	rec := Assemble(day("2014-01-10"), pairs, nil)
	// bar (100+33)/2 = 66.5, consistency 100 -> 83.25
	if rec.Confidence != 83.25 {
		t.Fatalf("confidence = %v, want 83.25", rec.Confidence)
	}
}

func TestTable_MergeIsIdempotentPerDate(t *testing.T) {
	table := NewTable()

	first := entity.NewReportRecord(day("2014-02-14"))
	first.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.80}
	table.Merge(first)

	second := entity.NewReportRecord(day("2014-02-14"))
	second.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.85}
	table.Merge(second)

	if table.Len() != 1 {
		t.Fatalf("re-merging a date duplicated rows: len = %d", table.Len())
	}
	got := table.Get(day("2014-02-14"))
	if got.Quarters["Q1'14"].Value != 27.85 {
		t.Fatalf("later merge must replace: got %v", got.Quarters["Q1'14"].Value)
	}
}

func TestTable_RecordsOrderedByDate(t *testing.T) {
	table := NewTable()
	for _, d := range []string{"2014-03-21", "2014-01-10", "2014-02-14"} {
		table.Merge(entity.NewReportRecord(day(d)))
	}
	recs := table.Records()
	want := []string{"2014-01-10", "2014-02-14", "2014-03-21"}
	for i, w := range want {
		if got := recs[i].ReportDate.Format("2006-01-02"); got != w {
			t.Fatalf("records[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestTable_QuarterColumnsChronologicalUnion(t *testing.T) {
	table := NewTable()

	a := entity.NewReportRecord(day("2014-01-10"))
	a.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.85}
	a.Quarters["Q4'13"] = entity.QuarterValue{Value: 26.50}
	table.Merge(a)

	b := entity.NewReportRecord(day("2014-02-14"))
	b.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.85}
	b.Quarters["Q2'14"] = entity.QuarterValue{Value: 28.30, IsEstimate: true}
	table.Merge(b)

	got := table.QuarterColumns()
	want := []string{"Q4'13", "Q1'14", "Q2'14"}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}
