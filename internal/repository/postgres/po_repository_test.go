package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedConn is a database/sql driver that records every query and answers
// them, in order, from a queue of canned result sets.
type recordedConn struct {
	mu       sync.Mutex
	queries  []string
	args     [][]driver.Value
	results  []cannedRows
	txOpts   []driver.TxOptions
	rollback int
}

type cannedRows struct {
	columns []string
	rows    [][]driver.Value
}

func (c *recordedConn) Connect(context.Context) (driver.Conn, error) { return c, nil }
func (c *recordedConn) Driver() driver.Driver { return c }
func (c *recordedConn) Open(string) (driver.Conn, error) { return c, nil }
func (c *recordedConn) Prepare(query string) (driver.Stmt, error) {
	return &recordedStmt{conn: c, query: query}, nil
}
func (c *recordedConn) Close() error { return nil }
func (c *recordedConn) Begin() (driver.Tx, error) { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *recordedConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txOpts = append(c.txOpts, opts)
	return c, nil
}

func (c *recordedConn) Commit() error { return nil }

func (c *recordedConn) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollback++
	return nil
}

func (c *recordedConn) queryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

type recordedStmt struct {
	conn  *recordedConn
	query string
}

func (s *recordedStmt) Close() error { return nil }
func (s *recordedStmt) NumInput() int { return -1 }
func (s *recordedStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("exec not supported")
}

func (s *recordedStmt) Query(args []driver.Value) (driver.Rows, error) {
	c := s.conn
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, s.query)
	c.args = append(c.args, args)
	if len(c.results) == 0 {
		return nil, errors.New("unexpected query")
	}
	next := c.results[0]
	c.results = c.results[1:]
	return &cannedRowsCursor{cannedRows: next}, nil
}

type cannedRowsCursor struct {
	cannedRows
	pos int
}

func (r *cannedRowsCursor) Columns() []string { return r.columns }
func (r *cannedRowsCursor) Close() error { return nil }
func (r *cannedRowsCursor) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func newRecordedRepository(t *testing.T, results ...cannedRows) (*poRepository, *recordedConn) {
	t.Helper()
	conn := &recordedConn{results: results}
	db := Wrap(sqlx.NewDb(sql.OpenDB(conn), "postgres"), 1)
	t.Cleanup(func() { _ = db.Close() })
	return NewPORepository(db), conn
}

var orderLineColumns = []string{
	"name", "purchase_order", "date", "required_date", "project", "status",
	"supplier", "supplier_name", "item_code", "item_name", "description",
	"qty", "received_qty", "billed_qty", "amount", "billed_amount",
	"warehouse", "company",
	"so_no", "so_item_code", "customer", "customer_name", "so_delivery_date",
}

func TestOrderLinesQuerySelectsEveryScannedColumn(t *testing.T) {
	require.Len(t, orderLineColumns, 23)
	for _, col := range orderLineColumns {
		assert.Regexp(t, `\sAS `+col+`[,\n]`, orderLinesQuery)
	}
}

func TestGetOrderLines_EmptyFilterIssuesNoQuery(t *testing.T) {
	repo, conn := newRecordedRepository(t)

	for _, filter := range []*domain.ReportFilter{nil, {}} {
		rows, err := repo.GetOrderLines(context.Background(), filter)

		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	}
	assert.Zero(t, conn.queryCount())
}

func TestGetOrderLines_ScansRowsAndDerivesOutstanding(t *testing.T) {
	orderDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	required := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	repo, conn := newRecordedRepository(t, cannedRows{
		columns: orderLineColumns,
		rows: [][]driver.Value{
			{
				"POI-1", "PO-1", orderDate, required, "PRJ-1", "To Receive and Bill",
				"SUP-1", "Supplier One", "ITEM-1", "Item One", "First item",
				"3", "5", "1", "100", "120.5",
				"Stores - A", "ACME",
				"SO-1", "SOI-1", "CUST-1", "Customer One", orderDate,
			},
			{
				"POI-2", "PO-1", orderDate, nil, nil, "To Receive and Bill",
				"SUP-1", "Supplier One", "ITEM-2", "Item Two", "",
				"4", "0", "0", "40", "0",
				nil, "ACME",
				nil, nil, nil, nil, nil,
			},
		},
	})

	filter := &domain.ReportFilter{Company: "ACME", Project: "PRJ-1"}
	rows, err := repo.GetOrderLines(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "POI-1", first.LineID)
	assert.Equal(t, "PO-1", first.OrderID)
	assert.True(t, first.OrderDate.Equal(orderDate))
	require.NotNil(t, first.RequiredDate)
	assert.True(t, first.RequiredDate.Equal(required))
	assert.Equal(t, "PRJ-1", *first.Project)
	assert.Equal(t, "Stores - A", *first.Warehouse)
	assert.Equal(t, "Customer One", *first.CustomerName)
	assert.Equal(t, "SOI-1", *first.SalesOrderItem)
	assert.Equal(t, "120.5", first.BilledAmount.String())
	assert.Equal(t, "-2", first.PendingQty.String())
	assert.Equal(t, "-20.5", first.PendingAmount.String())

	second := rows[1]
	assert.Nil(t, second.RequiredDate)
	assert.Nil(t, second.Project)
	assert.Nil(t, second.Warehouse)
	assert.Nil(t, second.SalesOrderID)
	assert.Nil(t, second.CustomerID)
	assert.Nil(t, second.SODeliveryDate)
	assert.Equal(t, "4", second.PendingQty.String())
	assert.Equal(t, "40", second.PendingAmount.String())

	require.Equal(t, 1, conn.queryCount())
	query := conn.queries[0]
	assert.Contains(t, query, "po.docstatus = $1 AND NOT (po.status = ANY($2)) AND po.company = $3 AND poi.project = $4")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(query), "ORDER BY po.transaction_date ASC, poi.name ASC"))
	assert.NotContains(t, query, "?")
	require.Len(t, conn.args[0], 4)
	assert.Equal(t, int64(domain.DocStatusSubmitted), conn.args[0][0])
	assert.Equal(t, "{\"Stopped\",\"Closed\"}", conn.args[0][1])
	assert.Equal(t, "ACME", conn.args[0][2])
	assert.Equal(t, "PRJ-1", conn.args[0][3])
}

func TestGetOrderLines_WrapsQueryErrors(t *testing.T) {
	repo, _ := newRecordedRepository(t)

	_, err := repo.GetOrderLines(context.Background(), &domain.ReportFilter{Company: "ACME"})

	assert.ErrorContains(t, err, "failed to get order lines")
	assert.ErrorContains(t, err, "unexpected query")
}

func TestGetReceivedAmounts_EmptyIDsIssueNoQuery(t *testing.T) {
	repo, conn := newRecordedRepository(t)

	for _, ids := range [][]string{nil, {}} {
		amounts, err := repo.GetReceivedAmounts(context.Background(), ids)

		require.NoError(t, err)
		assert.NotNil(t, amounts)
		assert.Empty(t, amounts)
	}
	assert.Zero(t, conn.queryCount())
}

func TestGetReceivedAmounts(t *testing.T) {
	repo, conn := newRecordedRepository(t, cannedRows{
		columns: []string{"purchase_order_item", "received_qty_amount"},
		rows:    [][]driver.Value{{"L1", "42"}},
	})

	amounts, err := repo.GetReceivedAmounts(context.Background(), []string{"L1", "L2"})

	require.NoError(t, err)
	assert.Equal(t, "42", amounts.Get("L1").String())
	assert.True(t, amounts.Get("L2").IsZero())
	_, present := amounts["L2"]
	assert.False(t, present)

	require.Equal(t, 1, conn.queryCount())
	assert.Contains(t, conn.queries[0], "pr.docstatus = $1 AND pri.purchase_order_item = ANY($2)")
	assert.Equal(t, int64(domain.DocStatusSubmitted), conn.args[0][0])
	assert.Equal(t, "{\"L1\",\"L2\"}", conn.args[0][1])
}

func TestReadSnapshot_UsesOneReadOnlyTransaction(t *testing.T) {
	repo, conn := newRecordedRepository(t,
		cannedRows{columns: orderLineColumns, rows: [][]driver.Value{{
			"POI-1", "PO-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), nil, nil, "To Bill",
			"SUP-1", "", "", "", "",
			"1", "1", "0", "10", "0",
			nil, "ACME",
			nil, nil, nil, nil, nil,
		}}},
		cannedRows{columns: []string{"purchase_order_item", "received_qty_amount"}},
	)

	err := repo.ReadSnapshot(context.Background(), func(ctx context.Context, snapshot repository.PurchaseAnalysisRepository) error {
		lines, err := snapshot.GetOrderLines(ctx, &domain.ReportFilter{Company: "ACME"})
		if err != nil {
			return err
		}
		_, err = snapshot.GetReceivedAmounts(ctx, []string{lines[0].LineID})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, conn.queryCount())
	require.Len(t, conn.txOpts, 1)
	assert.True(t, conn.txOpts[0].ReadOnly)
	assert.Equal(t, driver.IsolationLevel(sql.LevelRepeatableRead), conn.txOpts[0].Isolation)
	assert.Equal(t, 1, conn.rollback)
}
