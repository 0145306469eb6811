package domain

import (
	"errors"
	"strings"
	"time"
)

// ReportFilter holds the options recognised by the purchase order analysis.
// FromDate and ToDate are inclusive and must be given together.
type ReportFilter struct {
	FromDate  *time.Time `json:"from_date,omitempty"`
	ToDate    *time.Time `json:"to_date,omitempty"`
	Company   string     `json:"company,omitempty"`
	OrderID   string     `json:"purchase_order,omitempty"`
	Status    []string   `json:"status,omitempty"`
	Project   string     `json:"project,omitempty"`
	GroupByPO bool       `json:"group_by_po,omitempty"`
}

// IsEmpty reports whether no option at all was supplied.
func (f *ReportFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.FromDate == nil &&
		f.ToDate == nil &&
		f.Company == "" &&
		f.OrderID == "" &&
		len(f.Status) == 0 &&
		f.Project == "" &&
		!f.GroupByPO
}

// HasDateRange reports whether both bounds of the date range are set.
func (f *ReportFilter) HasDateRange() bool {
	return f != nil && f.FromDate != nil && f.ToDate != nil
}

// Normalize returns a copy with surrounding whitespace removed from the text
// options and blank statuses dropped. The receiver is not modified.
func (f *ReportFilter) Normalize() *ReportFilter {
	if f == nil {
		return nil
	}
	out := *f
	out.Company = strings.TrimSpace(f.Company)
	out.OrderID = strings.TrimSpace(f.OrderID)
	out.Project = strings.TrimSpace(f.Project)

	out.Status = nil
	for _, status := range f.Status {
		if status = strings.TrimSpace(status); status != "" {
			out.Status = append(out.Status, status)
		}
	}
	return &out
}

// Validate checks that the date range is coherent. ToDate requires FromDate and
// must not precede it. FromDate alone is accepted and applies no date condition.
func (f *ReportFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.FromDate == nil && f.ToDate != nil {
		return &ValidationError{Field: "from_date", Message: "From and To Dates are required."}
	}
	if f.FromDate != nil && f.ToDate != nil && dateOnly(*f.ToDate).Before(dateOnly(*f.FromDate)) {
		return &ValidationError{Field: "to_date", Message: "To Date cannot be before From Date."}
	}
	return nil
}

// ValidationError is returned when report filters are incoherent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
