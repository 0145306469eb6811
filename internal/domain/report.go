package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRow is one purchase order line joined with its billing and sales order data.
// Amounts are in the company's base currency.
type OrderLineRow struct {
	LineID        string          `json:"name" db:"name"`
	OrderID       string          `json:"purchase_order" db:"purchase_order"`
	OrderDate     time.Time       `json:"date" db:"date"`
	RequiredDate  *time.Time      `json:"required_date" db:"required_date"`
	Project       *string         `json:"project" db:"project"`
	Status        string          `json:"status" db:"status"`
	SupplierID    string          `json:"supplier" db:"supplier"`
	SupplierName  string          `json:"supplier_name" db:"supplier_name"`
	ItemCode      string          `json:"item_code" db:"item_code"`
	ItemName      string          `json:"item_name" db:"item_name"`
	Description   string          `json:"description" db:"description"`
	Qty           decimal.Decimal `json:"qty" db:"qty"`
	ReceivedQty   decimal.Decimal `json:"received_qty" db:"received_qty"`
	PendingQty    decimal.Decimal `json:"pending_qty" db:"pending_qty"`
	BilledQty     decimal.Decimal `json:"billed_qty" db:"billed_qty"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	BilledAmount  decimal.Decimal `json:"billed_amount" db:"billed_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount" db:"pending_amount"`
	Warehouse     *string         `json:"warehouse" db:"warehouse"`
	Company       string          `json:"company" db:"company"`

	// Populated only when the line references a sales order.
	SalesOrderID   *string    `json:"so_no" db:"so_no"`
	SalesOrderItem *string    `json:"so_item_code" db:"so_item_code"`
	CustomerID     *string    `json:"customer" db:"customer"`
	CustomerName   *string    `json:"customer_name" db:"customer_name"`
	SODeliveryDate *time.Time `json:"so_delivery_date" db:"so_delivery_date"`
}

// ApplyOutstanding derives pending quantity and pending amount. Negative
// results (over-receipt, over-billing) are kept as-is.
func (r *OrderLineRow) ApplyOutstanding() {
	r.PendingQty = r.Qty.Sub(r.ReceivedQty)
	r.PendingAmount = r.Amount.Sub(r.BilledAmount)
}

// ReceivedAmountMap maps an order line id to the summed amount received against it.
type ReceivedAmountMap map[string]decimal.Decimal

// Get returns the received amount for the line, zero when absent.
func (m ReceivedAmountMap) Get(lineID string) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	if v, ok := m[lineID]; ok {
		return v
	}
	return decimal.Zero
}

// ReportRow is an order line enriched with received amount and quantity to bill.
// In grouped mode one ReportRow carries the roll-up of every line of an order.
type ReportRow struct {
	OrderLineRow
	ReceivedQtyAmount decimal.Decimal `json:"received_qty_amount"`
	QtyToBill         decimal.Decimal `json:"qty_to_bill"`
}

// Clone returns a deep copy that shares no pointers with r.
func (r ReportRow) Clone() ReportRow {
	out := r
	out.RequiredDate = cloneTime(r.RequiredDate)
	out.Project = cloneString(r.Project)
	out.Warehouse = cloneString(r.Warehouse)
	out.SalesOrderID = cloneString(r.SalesOrderID)
	out.SalesOrderItem = cloneString(r.SalesOrderItem)
	out.CustomerID = cloneString(r.CustomerID)
	out.CustomerName = cloneString(r.CustomerName)
	out.SODeliveryDate = cloneTime(r.SODeliveryDate)
	return out
}

// Fields returns the row as a flat field name to value mapping. Missing
// optional values map to nil.
func (r ReportRow) Fields() map[string]any {
	return map[string]any{
		"name":                r.LineID,
		"purchase_order":      r.OrderID,
		"date":                r.OrderDate,
		"required_date":       timeOrNil(r.RequiredDate),
		"project":             stringOrNil(r.Project),
		"status":              r.Status,
		"supplier":            r.SupplierID,
		"supplier_name":       r.SupplierName,
		"item_code":           r.ItemCode,
		"item_name":           r.ItemName,
		"description":         r.Description,
		"qty":                 r.Qty,
		"received_qty":        r.ReceivedQty,
		"pending_qty":         r.PendingQty,
		"billed_qty":          r.BilledQty,
		"qty_to_bill":         r.QtyToBill,
		"amount":              r.Amount,
		"billed_amount":       r.BilledAmount,
		"pending_amount":      r.PendingAmount,
		"received_qty_amount": r.ReceivedQtyAmount,
		"warehouse":           stringOrNil(r.Warehouse),
		"company":             r.Company,
		"so_no":               stringOrNil(r.SalesOrderID),
		"so_item_code":        stringOrNil(r.SalesOrderItem),
		"customer":            stringOrNil(r.CustomerID),
		"customer_name":       stringOrNil(r.CustomerName),
		"so_delivery_date":    timeOrNil(r.SODeliveryDate),
	}
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Column describes one report column for the rendering layer.
type Column struct {
	Label     string `json:"label"`
	FieldName string `json:"fieldname"`
	FieldType string `json:"fieldtype"`
	Width     int    `json:"width"`
	Options   string `json:"options,omitempty"`
}

// ChartDataset holds the values of a single chart series.
type ChartDataset struct {
	Values []float64 `json:"values"`
}

// ChartData holds chart labels and series.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// Chart is the descriptor handed to the chart renderer.
type Chart struct {
	Data   ChartData `json:"data"`
	Type   string    `json:"type"`
	Height int       `json:"height"`
}

// Report is the complete output of one analysis run.
type Report struct {
	Columns     []Column    `json:"columns"`
	Rows        []ReportRow `json:"data"`
	Chart       *Chart      `json:"chart"`
	GroupedByPO bool        `json:"grouped_by_po"`

	// Totals feed the chart and are independent of grouping.
	TotalPending   decimal.Decimal `json:"total_pending"`
	TotalCompleted decimal.Decimal `json:"total_completed"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// EmptyReport is returned when no filters were given.
func EmptyReport() *Report {
	return &Report{
		Columns: []Column{},
		Rows:    []ReportRow{},
	}
}
