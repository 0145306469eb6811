// backend-go/internal/repository/postgres/po_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// queryer is satisfied by both *DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type poRepository struct {
	db *DB
	q  queryer
}

func NewPORepository(db *DB) *poRepository {
	return &poRepository{db: db, q: db}
}

var _ repository.PurchaseAnalysisRepository = (*poRepository)(nil)

const orderLinesQuery = `
	SELECT
		poi.name AS name,
		po.name AS purchase_order,
		po.transaction_date AS date,
		poi.expected_delivery_date AS required_date,
		poi.project AS project,
		po.status AS status,
		po.supplier AS supplier,
		COALESCE(po.supplier_name, '') AS supplier_name,
		COALESCE(poi.item_code, '') AS item_code,
		COALESCE(poi.item_name, '') AS item_name,
		COALESCE(poi.description, '') AS description,
		COALESCE(poi.qty, 0) AS qty,
		COALESCE(poi.received_qty, 0) AS received_qty,
		COALESCE(billed.billed_qty, 0) AS billed_qty,
		COALESCE(poi.base_amount, 0) AS amount,
		COALESCE(poi.billed_amt, 0) * COALESCE(po.conversion_rate, 1) AS billed_amount,
		po.set_warehouse AS warehouse,
		po.company AS company,
		poi.sales_order AS so_no,
		poi.so_item AS so_item_code,
		so.customer AS customer,
		so.customer_name AS customer_name,
		so.delivery_date AS so_delivery_date
	FROM purchase_orders po
	JOIN purchase_order_items poi ON poi.parent = po.name
	LEFT JOIN (
		SELECT po_detail, SUM(COALESCE(qty, 0)) AS billed_qty
		FROM purchase_invoice_items
		WHERE docstatus = 1
		GROUP BY po_detail
	) billed ON billed.po_detail = poi.name
	LEFT JOIN sales_orders so ON so.name = poi.sales_order`

// GetOrderLines runs the order line join with every applicable filter.
func (r *poRepository) GetOrderLines(ctx context.Context, filter *domain.ReportFilter) ([]domain.OrderLineRow, error) {
	if filter.IsEmpty() {
		return []domain.OrderLineRow{}, nil
	}

	whereClause, args := buildOrderLineWhere(filter)
	query := r.q.Rebind(orderLinesQuery + whereClause + `
	ORDER BY po.transaction_date ASC, poi.name ASC`)

	log.Debug().
		Str("where", whereClause).
		Interface("args", args).
		Msg("po analysis: fetching order lines")

	var rows []domain.OrderLineRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	for i := range rows {
		rows[i].ApplyOutstanding()
	}

	log.Debug().Int("rows", len(rows)).Msg("po analysis: order lines fetched")

	return rows, nil
}

type receivedAmountRow struct {
	LineID string          `db:"purchase_order_item"`
	Amount decimal.Decimal `db:"received_qty_amount"`
}

// GetReceivedAmounts sums receipt amounts per order line. No query is issued
// for an empty id list.
func (r *poRepository) GetReceivedAmounts(ctx context.Context, lineIDs []string) (domain.ReceivedAmountMap, error) {
	if len(lineIDs) == 0 {
		return domain.ReceivedAmountMap{}, nil
	}

	query := r.q.Rebind(`
		SELECT
			pri.purchase_order_item AS purchase_order_item,
			COALESCE(SUM(pri.base_amount), 0) AS received_qty_amount
		FROM purchase_receipts pr
		JOIN purchase_receipt_items pri ON pri.parent = pr.name
		WHERE pr.docstatus = ? AND pri.purchase_order_item = ANY(?)
		GROUP BY pri.purchase_order_item
	`)

	var rows []receivedAmountRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, domain.DocStatusSubmitted, pq.Array(lineIDs)); err != nil {
		return nil, fmt.Errorf("failed to get received amounts: %w", err)
	}

	amounts := make(domain.ReceivedAmountMap, len(rows))
	for _, row := range rows {
		amounts[row.LineID] = row.Amount
	}

	return amounts, nil
}

// ReadSnapshot binds fn to one read-only transaction.
func (r *poRepository) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, repo repository.PurchaseAnalysisRepository) error) error {
	return r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, &poRepository{db: r.db, q: tx})
	})
}
