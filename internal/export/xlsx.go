package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/seung-gu/factset-data-collector/internal/report"
)

// WriteXLSX returns the wide table as an XLSX workbook, one sheet, the
// same column layout as the wide CSV.
func (w *Writer) WriteXLSX(table *report.Table) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Estimates"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook only carries ours.
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	columns := table.QuarterColumns()
	header := append([]string{"Report_Date"}, columns...)
	header = append(header, "Confidence")
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range table.Records() {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, rec.ReportDate.Format("2006-01-02"))
		for i, colKey := range columns {
			v, ok := rec.Quarters[colKey]
			if !ok {
				continue
			}
			if v.IsEstimate {
				write(i+2, formatValue(v.Value)+w.EstimateMarker)
			} else {
				write(i+2, v.Value)
			}
		}
		write(len(header), rec.Confidence)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
