package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/export"
	"github.com/andresuchdata/po-analysis/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const queryDateLayout = "2006-01-02"

type POAnalysisHandler struct {
	service *service.POAnalysisService
}

func NewPOAnalysisHandler(service *service.POAnalysisService) *POAnalysisHandler {
	return &POAnalysisHandler{service: service}
}

// GetReport returns columns, rows and chart for the query filters.
func (h *POAnalysisHandler) GetReport(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "failed to generate purchase order analysis")
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportReport streams the report as CSV or XLSX.
func (h *POAnalysisHandler) ExportReport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "failed to generate purchase order analysis")
		return
	}

	groupByPO := filter != nil && filter.GroupByPO
	var buf bytes.Buffer
	if err := export.Write(&buf, format, h.service.ExportColumns(groupByPO), report); err != nil {
		log.Error().Err(err).Str("format", format).Msg("po analysis: export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		return
	}

	filename := fmt.Sprintf("purchase-order-analysis-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// InvalidateCache drops cached reports.
func (h *POAnalysisHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("po analysis: cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *POAnalysisHandler) respondError(c *gin.Context, err error, message string) {
	if domain.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Error().Err(err).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// parseReportFilter reads the query string into a filter. It returns nil when
// no recognised option is present.
func parseReportFilter(c *gin.Context) (*domain.ReportFilter, error) {
	filter := &domain.ReportFilter{
		Company: strings.TrimSpace(c.Query("company")),
		Project: strings.TrimSpace(c.Query("project")),
		Status:  parseListParam(c, "status"),
	}

	filter.OrderID = strings.TrimSpace(c.Query("purchase_order"))
	if filter.OrderID == "" {
		filter.OrderID = strings.TrimSpace(c.Query("name"))
	}

	var err error
	if filter.FromDate, err = parseDateParam(c, "from_date"); err != nil {
		return nil, err
	}
	if filter.ToDate, err = parseDateParam(c, "to_date"); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(c.Query("group_by_po")); raw != "" {
		groupByPO, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid group_by_po value %q", raw)
		}
		filter.GroupByPO = groupByPO
	}

	if filter.IsEmpty() {
		return nil, nil
	}
	return filter, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q, expected YYYY-MM-DD", name, raw)
	}
	return &t, nil
}

// parseListParam accepts both repeated params and comma-separated values:
//
//	?status=A&status=B
//	?status=A,B
func parseListParam(c *gin.Context, name string) []string {
	raw := c.QueryArray(name)
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				values = append(values, part)
			}
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
