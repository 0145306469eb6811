package export

import (
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dataSheet    = "Purchase Order Analysis"
	summarySheet = "Summary"

	// Report widths are in pixels; excelize expects character units.
	pixelsPerChar = 7.0
)

// WriteXLSX writes the rows to a data sheet and the chart totals to a summary sheet.
func WriteXLSX(w io.Writer, columns []domain.Column, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col.Label

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(dataSheet, name, name, float64(col.Width)/pixelsPerChar); err != nil {
				return fmt.Errorf("failed to set width of column %s: %w", name, err)
			}
		}
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}
	if err := f.SetRowStyle(dataSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style xlsx header: %w", err)
	}

	for r, row := range report.Rows {
		fields := row.Fields()
		values := make([]interface{}, len(columns))
		for i, col := range columns {
			values[i] = cellValue(fields[col.FieldName])
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dataSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", r+2, err)
		}
	}

	if err := writeSummary(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	labels := []string{"Amount to Bill", "Billed Amount"}
	if report.Chart != nil && len(report.Chart.Data.Labels) == 2 {
		labels = report.Chart.Data.Labels
	}

	rows := [][]interface{}{
		{labels[0], report.TotalPending.InexactFloat64()},
		{labels[1], report.TotalCompleted.InexactFloat64()},
		{"Rows", len(report.Rows)},
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

// cellValue keeps numbers numeric and dates as plain dates.
func cellValue(value any) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return v.InexactFloat64()
	case time.Time:
		return v.Format(dateLayout)
	default:
		return v
	}
}
