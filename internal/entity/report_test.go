package entity

import (
	"testing"
	"time"
)

func TestQuarterRefKey(t *testing.T) {
	cases := []struct {
		ref  QuarterRef
		want string
	}{
		{QuarterRef{Quarter: 1, Year: 2014}, "Q1'14"},
		{QuarterRef{Quarter: 4, Year: 2013}, "Q4'13"},
		{QuarterRef{Quarter: 2, Year: 2005}, "Q2'05"},
	}
	for _, tc := range cases {
		if got := tc.ref.Key(); got != tc.want {
			t.Errorf("Key(%+v) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestParseQuarterKeyRoundTrip(t *testing.T) {
	for _, key := range []string{"Q1'14", "Q4'13", "Q2'05"} {
		ref, err := ParseQuarterKey(key)
		if err != nil {
			t.Fatalf("ParseQuarterKey(%q): %v", key, err)
		}
		if got := ref.Key(); got != key {
			t.Errorf("round trip %q -> %q", key, got)
		}
	}
}

func TestParseQuarterKeyRejects(t *testing.T) {
	for _, key := range []string{"", "Q5'14", "Q0'14", "2014", "Q1"} {
		if _, err := ParseQuarterKey(key); err == nil {
			t.Errorf("ParseQuarterKey(%q) succeeded, want error", key)
		}
	}
}

func TestQuarterRefBefore(t *testing.T) {
	q413 := QuarterRef{Quarter: 4, Year: 2013}
	q114 := QuarterRef{Quarter: 1, Year: 2014}
	q214 := QuarterRef{Quarter: 2, Year: 2014}

	if !q413.Before(q114) {
		t.Error("Q4'13 must precede Q1'14")
	}
	if !q114.Before(q214) {
		t.Error("Q1'14 must precede Q2'14")
	}
	if q214.Before(q214) {
		t.Error("a quarter does not precede itself")
	}
}

func TestReportRecordQuarterKeysChronological(t *testing.T) {
	rec := NewReportRecord(time.Date(2014, 2, 14, 0, 0, 0, 0, time.UTC))
	rec.Quarters["Q2'14"] = QuarterValue{Value: 28.30, IsEstimate: true}
	rec.Quarters["Q4'13"] = QuarterValue{Value: 26.50}
	rec.Quarters["Q1'14"] = QuarterValue{Value: 27.85}

	want := []string{"Q4'13", "Q1'14", "Q2'14"}
	got := rec.QuarterKeys()
	if len(got) != len(want) {
		t.Fatalf("QuarterKeys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("QuarterKeys = %v, want %v", got, want)
		}
	}
}

func TestReportRecordActualQuarters(t *testing.T) {
	rec := NewReportRecord(time.Date(2014, 2, 14, 0, 0, 0, 0, time.UTC))
	rec.Quarters["Q1'14"] = QuarterValue{Value: 27.85}
	rec.Quarters["Q2'14"] = QuarterValue{Value: 28.30, IsEstimate: true}

	actuals := rec.ActualQuarters()
	if len(actuals) != 1 {
		t.Fatalf("ActualQuarters = %v, want only Q1'14", actuals)
	}
	if actuals["Q1'14"] != 27.85 {
		t.Fatalf("ActualQuarters[Q1'14] = %v, want 27.85", actuals["Q1'14"])
	}
}

func TestBoxGeometry(t *testing.T) {
	b := Box{X0: 10, Y0: 20, X1: 30, Y1: 60}
	if got := b.CenterX(); got != 20 {
		t.Errorf("CenterX = %v, want 20", got)
	}
	if got := b.CenterY(); got != 40 {
		t.Errorf("CenterY = %v, want 40", got)
	}

	u := b.Union(Box{X0: 5, Y0: 25, X1: 25, Y1: 70})
	want := Box{X0: 5, Y0: 20, X1: 30, Y1: 70}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
}

func TestBoxFromLTWH(t *testing.T) {
	b := BoxFromLTWH(10, 20, 15, 40)
	want := Box{X0: 10, Y0: 20, X1: 25, Y1: 60}
	if b != want {
		t.Errorf("BoxFromLTWH = %+v, want %+v", b, want)
	}
}
