package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/config"
	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reportKeyPrefix     = "po_analysis:report"
	reportScanBatchSize = 100

	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type ReportCache interface {
	GetReport(ctx context.Context, filter *domain.ReportFilter) (*domain.Report, bool, error)
	SetReport(ctx context.Context, filter *domain.ReportFilter, report *domain.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type memoryReportCache struct {
	store *gocache.Cache
}

type noopReportCache struct{}

// NewReportCache builds the cache selected by cfg.Backend.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return &noopReportCache{}, nil
	case BackendMemory:
		return NewMemoryReportCache(cacheTTL(cfg)), nil
	case BackendRedis:
		client, err := newRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return &redisReportCache{client: client, ttl: cacheTTL(cfg)}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

// NewMemoryReportCache keeps reports in process memory for ttl.
func NewMemoryReportCache(ttl time.Duration) ReportCache {
	return &memoryReportCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *redisReportCache) GetReport(ctx context.Context, filter *domain.ReportFilter) (*domain.Report, bool, error) {
	key := buildReportKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, filter *domain.ReportFilter, report *domain.Report) error {
	key := buildReportKey(filter)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (c *memoryReportCache) GetReport(_ context.Context, filter *domain.ReportFilter) (*domain.Report, bool, error) {
	value, found := c.store.Get(buildReportKey(filter))
	if !found {
		return nil, false, nil
	}
	report, ok := value.(*domain.Report)
	if !ok {
		log.Warn().Str("key", buildReportKey(filter)).Msg("report cache: unexpected entry type")
		return nil, false, nil
	}
	return report, true, nil
}

func (c *memoryReportCache) SetReport(_ context.Context, filter *domain.ReportFilter, report *domain.Report) error {
	c.store.SetDefault(buildReportKey(filter), report)
	return nil
}

func (c *memoryReportCache) InvalidateAll(_ context.Context) error {
	c.store.Flush()
	return nil
}

func (n *noopReportCache) GetReport(ctx context.Context, filter *domain.ReportFilter) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, filter *domain.ReportFilter, report *domain.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(filter *domain.ReportFilter) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, reportFilterHash(filter))
}

func reportFilterHash(filter *domain.ReportFilter) string {
	if filter.IsEmpty() {
		return "default"
	}

	parts := []string{}

	if filter.FromDate != nil {
		parts = append(parts, "from_date="+filter.FromDate.Format("2006-01-02"))
	}
	if filter.ToDate != nil {
		parts = append(parts, "to_date="+filter.ToDate.Format("2006-01-02"))
	}
	if filter.Company != "" {
		parts = append(parts, "company="+filter.Company)
	}
	if filter.OrderID != "" {
		parts = append(parts, "purchase_order="+filter.OrderID)
	}
	if filter.Project != "" {
		parts = append(parts, "project="+filter.Project)
	}
	if len(filter.Status) > 0 {
		parts = append(parts, "status="+joinStrings(filter.Status))
	}
	if filter.GroupByPO {
		parts = append(parts, "group_by_po=1")
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
