package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeedRecords(t *testing.T) {
	input := "name,Parent,item_code,qty,project\n" +
		"POI-1,PO-1,ITEM-1,3,\n" +
		"POI-2,PO-1, ITEM-2 ,5,PRJ-1\n"

	columns, records, err := readSeedRecords(seedTables[2], strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "parent", "item_code", "qty", "project"}, columns)
	require.Len(t, records, 2)
	assert.Equal(t, []interface{}{"POI-1", "PO-1", "ITEM-1", "3", nil}, records[0])
	assert.Equal(t, []interface{}{"POI-2", "PO-1", "ITEM-2", "5", "PRJ-1"}, records[1])
}

func TestReadSeedRecords_RejectsUnknownColumns(t *testing.T) {
	_, _, err := readSeedRecords(seedTables[0], strings.NewReader("name,drop_table\nPO-1,x\n"))

	assert.EqualError(t, err, `unknown column "drop_table" for purchase_orders`)
}

func TestReadSeedRecords_RequiresName(t *testing.T) {
	_, _, err := readSeedRecords(seedTables[4], strings.NewReader("docstatus\n1\n"))

	assert.Error(t, err)
}

func TestBuildUpsert(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO purchase_receipts (name, docstatus) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET docstatus = EXCLUDED.docstatus",
		buildUpsert("purchase_receipts", []string{"name", "docstatus"}))

	assert.Equal(t,
		"INSERT INTO purchase_receipts (name) VALUES (?) ON CONFLICT (name) DO NOTHING",
		buildUpsert("purchase_receipts", []string{"name"}))
}
