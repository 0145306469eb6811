package analysis

import (
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Result is the output of Reconcile.
type Result struct {
	Rows []domain.ReportRow

	// TotalPending and TotalCompleted are summed over every order line before
	// grouping, so they are identical in both modes.
	TotalPending   decimal.Decimal
	TotalCompleted decimal.Decimal
}

// Reconcile enriches order lines with received amounts and quantity to bill,
// accumulates the chart totals and, when groupByPO is set, rolls lines up to
// one row per purchase order in first-seen order.
func Reconcile(lines []domain.OrderLineRow, received domain.ReceivedAmountMap, groupByPO bool) Result {
	result := Result{
		TotalPending:   decimal.Zero,
		TotalCompleted: decimal.Zero,
	}

	var acc *orderAccumulator
	if groupByPO {
		acc = newOrderAccumulator()
	} else {
		result.Rows = make([]domain.ReportRow, 0, len(lines))
	}

	for _, line := range lines {
		row := enrich(line, received)

		result.TotalPending = result.TotalPending.Add(row.PendingAmount)
		result.TotalCompleted = result.TotalCompleted.Add(row.BilledAmount)

		if acc != nil {
			acc.add(row)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if acc != nil {
		result.Rows = acc.rows
	}

	return result
}

func enrich(line domain.OrderLineRow, received domain.ReceivedAmountMap) domain.ReportRow {
	return domain.ReportRow{
		OrderLineRow:      line,
		ReceivedQtyAmount: received.Get(line.LineID),
		QtyToBill:         line.Qty.Sub(line.BilledQty),
	}
}

// orderAccumulator folds rows by purchase order while keeping the order in
// which each purchase order was first seen.
type orderAccumulator struct {
	rows  []domain.ReportRow
	index map[string]int
}

func newOrderAccumulator() *orderAccumulator {
	return &orderAccumulator{
		rows:  make([]domain.ReportRow, 0),
		index: make(map[string]int),
	}
}

func (a *orderAccumulator) add(row domain.ReportRow) {
	i, ok := a.index[row.OrderID]
	if !ok {
		a.index[row.OrderID] = len(a.rows)
		a.rows = append(a.rows, row.Clone())
		return
	}
	fold(&a.rows[i], row)
}

// fold merges row into the aggregate: quantities and amounts are summed, the
// required date keeps the earliest value, everything else stays first-wins.
func fold(agg *domain.ReportRow, row domain.ReportRow) {
	agg.RequiredDate = earliest(agg.RequiredDate, row.RequiredDate)

	agg.Qty = agg.Qty.Add(row.Qty)
	agg.ReceivedQty = agg.ReceivedQty.Add(row.ReceivedQty)
	agg.PendingQty = agg.PendingQty.Add(row.PendingQty)
	agg.BilledQty = agg.BilledQty.Add(row.BilledQty)
	agg.QtyToBill = agg.QtyToBill.Add(row.QtyToBill)
	agg.Amount = agg.Amount.Add(row.Amount)
	agg.ReceivedQtyAmount = agg.ReceivedQtyAmount.Add(row.ReceivedQtyAmount)
	agg.BilledAmount = agg.BilledAmount.Add(row.BilledAmount)
	agg.PendingAmount = agg.PendingAmount.Add(row.PendingAmount)
}

// earliest returns a copy of the earlier date, ignoring missing values.
func earliest(current, candidate *time.Time) *time.Time {
	switch {
	case candidate == nil:
		return current
	case current == nil, candidate.Before(*current):
		v := *candidate
		return &v
	default:
		return current
	}
}
