package report

import (
	"sort"
	"sync"
	"time"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// Table is the cumulative extraction table, keyed by report date. Merges
// are applied atomically per date, so upstream stages may run concurrently
// as long as records reach Merge in non-decreasing date order.
type Table struct {
	mu      sync.Mutex
	records map[string]*entity.ReportRecord // key: date as 2006-01-02
}

func NewTable() *Table {
	return &Table{records: map[string]*entity.ReportRecord{}}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// Merge inserts the record, replacing any record with the same report
// date. Re-processing a date is idempotent, never duplicating rows.
func (t *Table) Merge(rec *entity.ReportRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[dateKey(rec.ReportDate)] = rec
}

// Records returns the records ordered by report date.
func (t *Table) Records() []*entity.ReportRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*entity.ReportRecord, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.Before(out[j].ReportDate) })
	return out
}

// Get returns the record for a date, or nil.
func (t *Table) Get(date time.Time) *entity.ReportRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[dateKey(date)]
}

// Len returns the number of report dates in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// QuarterColumns returns the sorted union of quarter keys across all
// records. The column set only ever grows as records are merged.
func (t *Table) QuarterColumns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := map[string]struct{}{}
	for _, r := range t.records {
		for k := range r.Quarters {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		qi, erri := entity.ParseQuarterKey(keys[i])
		qj, errj := entity.ParseQuarterKey(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		return qi.Before(qj)
	})
	return keys
}
