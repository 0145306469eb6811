package analysis

import (
	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ChartTypeDonut     = "donut"
	DefaultChartHeight = 300

	labelAmountToBill = "Amount to Bill"
	labelBilledAmount = "Billed Amount"
)

// BuildChart packages the pending and billed totals as a donut chart.
// A non-positive height falls back to DefaultChartHeight.
func BuildChart(totalPending, totalCompleted decimal.Decimal, height int, tr Translator) *domain.Chart {
	if height <= 0 {
		height = DefaultChartHeight
	}
	if tr == nil {
		tr = Identity
	}

	return &domain.Chart{
		Data: domain.ChartData{
			Labels: []string{tr(labelAmountToBill), tr(labelBilledAmount)},
			Datasets: []domain.ChartDataset{
				{Values: []float64{totalPending.InexactFloat64(), totalCompleted.InexactFloat64()}},
			},
		},
		Type:   ChartTypeDonut,
		Height: height,
	}
}
