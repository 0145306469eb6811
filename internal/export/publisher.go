package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher renders reports and uploads them to object storage.
type Publisher struct {
	store  storage.ObjectStorage
	prefix string
	now    func() time.Time
}

func NewPublisher(store storage.ObjectStorage, prefix string) *Publisher {
	return &Publisher{store: store, prefix: prefix, now: time.Now}
}

// Publish uploads the rendered report and returns the object key.
func (p *Publisher) Publish(ctx context.Context, format string, columns []domain.Column, report *domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, columns, report); err != nil {
		return "", err
	}

	key := p.objectKey(format)
	size := int64(buf.Len())
	if err := p.store.PutObject(ctx, key, &buf, size, ContentType(format)); err != nil {
		return "", fmt.Errorf("failed to publish report: %w", err)
	}

	log.Info().
		Str("key", key).
		Int64("bytes", size).
		Int("rows", len(report.Rows)).
		Msg("export: report published")

	return key, nil
}

func (p *Publisher) objectKey(format string) string {
	name := fmt.Sprintf("%s-%s.%s", p.now().UTC().Format("20060102T150405Z"), uuid.NewString(), format)
	return path.Join(p.prefix, name)
}
