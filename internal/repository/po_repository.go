// backend-go/internal/repository/po_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
)

// PurchaseAnalysisRepository reads the record sources behind the purchase order analysis.
type PurchaseAnalysisRepository interface {
	// GetOrderLines returns one row per submitted purchase order line matching
	// the filter, ordered by order transaction date. An empty filter returns
	// no rows without querying.
	GetOrderLines(ctx context.Context, filter *domain.ReportFilter) ([]domain.OrderLineRow, error)

	// GetReceivedAmounts sums received amounts of submitted receipts per order line.
	GetReceivedAmounts(ctx context.Context, lineIDs []string) (domain.ReceivedAmountMap, error)

	// ReadSnapshot runs fn against a repository bound to a single read-only
	// snapshot so that every read inside fn sees the same data.
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, repo PurchaseAnalysisRepository) error) error
}
