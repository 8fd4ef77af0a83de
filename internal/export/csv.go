// Package export renders the cumulative table to its external formats:
// the wide estimates CSV, the companion confidence CSV, and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/seung-gu/factset-data-collector/internal/report"
)

// DefaultEstimateMarker is suffixed to values classified as estimates.
const DefaultEstimateMarker = "*"

// Writer renders a report table.
type Writer struct {
	EstimateMarker string
}

func NewWriter(marker string) *Writer {
	if marker == "" {
		marker = DefaultEstimateMarker
	}
	return &Writer{EstimateMarker: marker}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(math.Round(c*10)/10, 'f', -1, 64)
}

// WriteWideCSV writes the wide table: one row per report date, one column
// per quarter key (sorted chronologically, union over all dates), estimate
// values suffixed with the marker, and a trailing Confidence column.
// Quarters absent from a date are left as empty cells.
func (w *Writer) WriteWideCSV(out io.Writer, table *report.Table) error {
	cw := csv.NewWriter(out)
	columns := table.QuarterColumns()

	header := append([]string{"Report_Date"}, columns...)
	header = append(header, "Confidence")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range table.Records() {
		row := make([]string, 0, len(header))
		row = append(row, rec.ReportDate.Format("2006-01-02"))
		for _, col := range columns {
			v, ok := rec.Quarters[col]
			if !ok {
				row = append(row, "")
				continue
			}
			cell := formatValue(v.Value)
			if v.IsEstimate {
				cell += w.EstimateMarker
			}
			row = append(row, cell)
		}
		row = append(row, formatConfidence(rec.Confidence))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConfidenceCSV writes the co-located confidence table: report date
// and composite confidence only.
func (w *Writer) WriteConfidenceCSV(out io.Writer, table *report.Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"Report_Date", "Confidence"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range table.Records() {
		if err := cw.Write([]string{
			rec.ReportDate.Format("2006-01-02"),
			formatConfidence(rec.Confidence),
		}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
