package postgres

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type seedTable struct {
	name    string
	columns []string
}

// seedTables is ordered so that parents load before the rows referencing them.
var seedTables = []seedTable{
	{name: "purchase_orders", columns: []string{"name", "transaction_date", "status", "docstatus", "supplier", "supplier_name", "company", "set_warehouse", "conversion_rate"}},
	{name: "sales_orders", columns: []string{"name", "customer", "customer_name", "delivery_date"}},
	{name: "purchase_order_items", columns: []string{"name", "parent", "item_code", "item_name", "description", "project", "expected_delivery_date", "qty", "received_qty", "base_amount", "billed_amt", "sales_order", "so_item"}},
	{name: "purchase_invoice_items", columns: []string{"name", "parent", "docstatus", "po_detail", "qty"}},
	{name: "purchase_receipts", columns: []string{"name", "docstatus"}},
	{name: "purchase_receipt_items", columns: []string{"name", "parent", "purchase_order_item", "base_amount"}},
}

// Seed loads <table>.csv files from dir into the record source tables in one
// transaction. Missing files are skipped; rows are upserted by name.
func Seed(ctx context.Context, db *DB, dir string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range seedTables {
		path := filepath.Join(dir, table.name+".csv")
		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("table", table.name).Msg("seed: no file, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		n, err := seedFromCSV(ctx, tx, table, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", table.name, err)
		}
		log.Info().Str("table", table.name).Int("rows", n).Msg("seed: table loaded")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func seedFromCSV(ctx context.Context, tx *sqlx.Tx, table seedTable, r io.Reader) (int, error) {
	columns, records, err := readSeedRecords(table, r)
	if err != nil {
		return 0, err
	}

	query := tx.Rebind(buildUpsert(table.name, columns))
	for i, args := range records {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return i, fmt.Errorf("failed to insert record %d: %w", i+1, err)
		}
	}
	return len(records), nil
}

// readSeedRecords reads a CSV whose header names a subset of the table columns.
// Empty cells become NULL.
func readSeedRecords(table seedTable, r io.Reader) ([]string, [][]interface{}, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	allowed := make(map[string]struct{}, len(table.columns))
	for _, col := range table.columns {
		allowed[col] = struct{}{}
	}

	columns := make([]string, len(header))
	hasName := false
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		if _, ok := allowed[col]; !ok {
			return nil, nil, fmt.Errorf("unknown column %q for %s", col, table.name)
		}
		hasName = hasName || col == "name"
		columns[i] = col
	}
	if !hasName {
		return nil, nil, fmt.Errorf("%s CSV must have a name column", table.name)
	}

	var records [][]interface{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, value := range record {
			if value = strings.TrimSpace(value); value != "" {
				args[i] = value
			}
		}
		records = append(records, args)
	}

	return columns, records, nil
}

func buildUpsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		if col != "name" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (name) %s",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflict)
}
