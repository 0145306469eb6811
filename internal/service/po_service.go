// backend-go/internal/service/po_service.go
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/analysis"
	"github.com/andresuchdata/po-analysis/backend-go/internal/cache"
	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Options tune report presentation.
type Options struct {
	ChartHeight int
	Translator  analysis.Translator
}

type POAnalysisService struct {
	repo  repository.PurchaseAnalysisRepository
	cache cache.ReportCache
	opts  Options
	now   func() time.Time
}

func NewPOAnalysisService(repo repository.PurchaseAnalysisRepository, cacheImpl cache.ReportCache, opts Options) *POAnalysisService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = analysis.DefaultChartHeight
	}
	if opts.Translator == nil {
		opts.Translator = analysis.Identity
	}
	return &POAnalysisService{repo: repo, cache: cacheImpl, opts: opts, now: time.Now}
}

// GenerateReport runs the purchase order analysis for filter.
//
// The filter is normalized once up front; the cache key and the query both
// see the normalized copy. A nil or empty filter yields an empty report
// without touching the data source. Incoherent date ranges fail with
// *domain.ValidationError. When no order line matches, the report carries
// columns but no rows and no chart.
func (s *POAnalysisService) GenerateReport(ctx context.Context, filter *domain.ReportFilter) (*domain.Report, error) {
	filter = filter.Normalize()
	if filter.IsEmpty() {
		return domain.EmptyReport(), nil
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if report, ok, err := s.cache.GetReport(ctx, filter); err == nil && ok {
		log.Debug().Msg("po analysis: report served from cache")
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("po analysis: cache get report failed")
	}

	var (
		lines    []domain.OrderLineRow
		received domain.ReceivedAmountMap
	)
	err := s.repo.ReadSnapshot(ctx, func(ctx context.Context, repo repository.PurchaseAnalysisRepository) error {
		var err error
		lines, err = repo.GetOrderLines(ctx, filter)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		received, err = repo.GetReceivedAmounts(ctx, lineIDs(lines))
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("po analysis: failed to read report data")
		return nil, err
	}

	report := s.buildReport(filter, lines, received)

	if err := s.cache.SetReport(ctx, filter, report); err != nil {
		log.Warn().Err(err).Msg("po analysis: cache set report failed")
	}

	return report, nil
}

// InvalidateCache drops every cached report.
func (s *POAnalysisService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// Columns returns the displayed columns for the grouping mode.
func (s *POAnalysisService) Columns(groupByPO bool) []domain.Column {
	return analysis.Columns(groupByPO, s.opts.Translator)
}

// ExportColumns returns displayed plus detail columns for the grouping mode.
func (s *POAnalysisService) ExportColumns(groupByPO bool) []domain.Column {
	return analysis.AllColumns(groupByPO, s.opts.Translator)
}

func (s *POAnalysisService) buildReport(filter *domain.ReportFilter, lines []domain.OrderLineRow, received domain.ReceivedAmountMap) *domain.Report {
	report := &domain.Report{
		Columns:     s.Columns(filter.GroupByPO),
		Rows:        []domain.ReportRow{},
		GroupedByPO: filter.GroupByPO,
		GeneratedAt: s.now().UTC(),
	}

	if len(lines) == 0 {
		log.Debug().Msg("po analysis: no order lines matched")
		return report
	}

	result := analysis.Reconcile(lines, received, filter.GroupByPO)
	report.Rows = result.Rows
	report.TotalPending = result.TotalPending
	report.TotalCompleted = result.TotalCompleted
	report.Chart = analysis.BuildChart(result.TotalPending, result.TotalCompleted, s.opts.ChartHeight, s.opts.Translator)

	log.Debug().
		Int("order_lines", len(lines)).
		Int("rows", len(report.Rows)).
		Bool("group_by_po", filter.GroupByPO).
		Msg("po analysis: report built")

	return report
}

func lineIDs(lines []domain.OrderLineRow) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.LineID)
	}
	return ids
}
