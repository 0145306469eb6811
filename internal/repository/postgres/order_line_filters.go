package postgres

import (
	"strings"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/lib/pq"
)

// orderLinePredicate contributes one condition to the order line query.
// Clauses use "?" placeholders and are rebound for the driver once composed.
// ok is false when the filter option is not set.
type orderLinePredicate func(filter *domain.ReportFilter) (clause string, args []interface{}, ok bool)

// orderLinePredicates lists every supported filter, applied conjunctively in this order.
var orderLinePredicates = []orderLinePredicate{
	submittedOpenOrders,
	byCompany,
	byOrderID,
	byTransactionDate,
	byStatus,
	byProject,
}

func submittedOpenOrders(_ *domain.ReportFilter) (string, []interface{}, bool) {
	return "po.docstatus = ? AND NOT (po.status = ANY(?))",
		[]interface{}{domain.DocStatusSubmitted, pq.Array(domain.ExcludedOrderStatuses)},
		true
}

func byCompany(filter *domain.ReportFilter) (string, []interface{}, bool) {
	if filter.Company == "" {
		return "", nil, false
	}
	return "po.company = ?", []interface{}{filter.Company}, true
}

func byOrderID(filter *domain.ReportFilter) (string, []interface{}, bool) {
	if filter.OrderID == "" {
		return "", nil, false
	}
	return "po.name = ?", []interface{}{filter.OrderID}, true
}

// byTransactionDate applies only when both bounds are present; both ends are inclusive.
func byTransactionDate(filter *domain.ReportFilter) (string, []interface{}, bool) {
	if !filter.HasDateRange() {
		return "", nil, false
	}
	return "po.transaction_date BETWEEN ? AND ?",
		[]interface{}{filter.FromDate.Format(dateLayout), filter.ToDate.Format(dateLayout)},
		true
}

func byStatus(filter *domain.ReportFilter) (string, []interface{}, bool) {
	statuses := normalizeStatuses(filter.Status)
	if len(statuses) == 0 {
		return "", nil, false
	}
	return "po.status = ANY(?)", []interface{}{pq.Array(statuses)}, true
}

func byProject(filter *domain.ReportFilter) (string, []interface{}, bool) {
	if filter.Project == "" {
		return "", nil, false
	}
	return "poi.project = ?", []interface{}{filter.Project}, true
}

// buildOrderLineWhere composes every applicable predicate into a WHERE clause.
func buildOrderLineWhere(filter *domain.ReportFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	for _, predicate := range orderLinePredicates {
		clause, predicateArgs, ok := predicate(filter)
		if !ok {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, predicateArgs...)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// normalizeStatuses maps known statuses to their stored label and drops blanks.
// Unknown values are kept verbatim.
func normalizeStatuses(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	statuses := make([]string, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if canonical, ok := domain.ParseOrderStatus(value); ok {
			value = canonical
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		statuses = append(statuses, value)
	}
	return statuses
}
