// Package export renders purchase order analysis reports as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	dateLayout = "2006-01-02"
)

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// ParseFormat normalizes a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Write renders report in the given format.
func Write(w io.Writer, format string, columns []domain.Column, report *domain.Report) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, columns, report)
	case FormatCSV:
		return WriteCSV(w, columns, report)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header of column labels followed by one record per row.
func WriteCSV(w io.Writer, columns []domain.Column, report *domain.Report) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.Rows {
		fields := row.Fields()
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatValue(fields[col.FieldName])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(dateLayout)
	default:
		return fmt.Sprint(v)
	}
}
