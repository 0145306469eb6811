package analysis

import "github.com/andresuchdata/po-analysis/backend-go/internal/domain"

// Translator localises label text.
type Translator func(string) string

// Identity is the default Translator.
func Identity(s string) string { return s }

const (
	fieldTypeDate     = "Date"
	fieldTypeLink     = "Link"
	fieldTypeData     = "Data"
	fieldTypeFloat    = "Float"
	fieldTypeCurrency = "Currency"
)

var leadingColumns = []domain.Column{
	{Label: "Date", FieldName: "date", FieldType: fieldTypeDate, Width: 90},
	{Label: "Expected Date", FieldName: "required_date", FieldType: fieldTypeDate, Width: 90},
	{Label: "Purchase Order", FieldName: "purchase_order", FieldType: fieldTypeLink, Options: "Purchase Order", Width: 160},
	{Label: "Supplier", FieldName: "supplier", FieldType: fieldTypeLink, Options: "Supplier", Width: 130},
	{Label: "Supplier Name", FieldName: "supplier_name", FieldType: fieldTypeData, Width: 120},
}

// itemCodeColumn only makes sense per line; grouped rows span several items.
var itemCodeColumn = domain.Column{Label: "Item Code", FieldName: "item_code", FieldType: fieldTypeLink, Options: "Item", Width: 100}

var trailingColumns = []domain.Column{
	{Label: "Item Name", FieldName: "item_name", FieldType: fieldTypeData, Width: 120},
	{Label: "Item Description", FieldName: "description", FieldType: fieldTypeData, Width: 150},
	{Label: "Qty", FieldName: "qty", FieldType: fieldTypeFloat, Width: 120},
	{Label: "Received Qty", FieldName: "received_qty", FieldType: fieldTypeFloat, Width: 120},
	{Label: "Pending Qty", FieldName: "pending_qty", FieldType: fieldTypeFloat, Width: 80},
	{Label: "SO No.", FieldName: "so_no", FieldType: fieldTypeLink, Options: "Sales Order", Width: 130},
	{Label: "Customer", FieldName: "customer", FieldType: fieldTypeLink, Options: "Customer", Width: 150},
	{Label: "Customer Name", FieldName: "customer_name", FieldType: fieldTypeData, Width: 120},
	{Label: "SO Item Code", FieldName: "so_item_code", FieldType: fieldTypeData, Width: 120},
	{Label: "Sales Order Delivery Date", FieldName: "so_delivery_date", FieldType: fieldTypeDate, Width: 130},
}

// detailColumns are not displayed in the report view but are part of exports.
var detailColumns = []domain.Column{
	{Label: "Status", FieldName: "status", FieldType: fieldTypeData, Width: 130},
	{Label: "Project", FieldName: "project", FieldType: fieldTypeLink, Options: "Project", Width: 130},
	{Label: "Billed Qty", FieldName: "billed_qty", FieldType: fieldTypeFloat, Width: 80},
	{Label: "Qty to Bill", FieldName: "qty_to_bill", FieldType: fieldTypeFloat, Width: 80},
	{Label: "Amount", FieldName: "amount", FieldType: fieldTypeCurrency, Width: 110},
	{Label: "Billed Amount", FieldName: "billed_amount", FieldType: fieldTypeCurrency, Width: 110},
	{Label: "Pending Amount", FieldName: "pending_amount", FieldType: fieldTypeCurrency, Width: 130},
	{Label: "Received Qty Amount", FieldName: "received_qty_amount", FieldType: fieldTypeCurrency, Width: 130},
	{Label: "Warehouse", FieldName: "warehouse", FieldType: fieldTypeLink, Options: "Warehouse", Width: 100},
	{Label: "Company", FieldName: "company", FieldType: fieldTypeLink, Options: "Company", Width: 100},
}

// Columns returns the displayed report columns. The item code column is
// omitted when rows are grouped by purchase order.
func Columns(groupByPO bool, tr Translator) []domain.Column {
	cols := make([]domain.Column, 0, len(leadingColumns)+1+len(trailingColumns))
	cols = append(cols, leadingColumns...)
	if !groupByPO {
		cols = append(cols, itemCodeColumn)
	}
	cols = append(cols, trailingColumns...)
	return translate(cols, tr)
}

// AllColumns returns the displayed columns followed by the detail columns.
func AllColumns(groupByPO bool, tr Translator) []domain.Column {
	cols := Columns(groupByPO, tr)
	return append(cols, translate(append([]domain.Column(nil), detailColumns...), tr)...)
}

func translate(cols []domain.Column, tr Translator) []domain.Column {
	if tr == nil {
		return cols
	}
	for i := range cols {
		cols[i].Label = tr(cols[i].Label)
	}
	return cols
}
