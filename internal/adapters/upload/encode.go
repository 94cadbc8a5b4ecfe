package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Encoded is one photo ready for transport.
type Encoded struct {
	Filename string
	Base64   string
}

// Encode base64-encodes every photo concurrently. The result is aligned
// with photos by position. Any read failure aborts the whole batch.
func (a *Adapter) Encode(ctx context.Context, photos []staging.Photo) ([]Encoded, error) {
	const op = "upload.Encode"
	start := time.Now()
	out := make([]Encoded, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, p := range photos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := a.read(p)
			if err != nil {
				return fmt.Errorf("photo %s: %w", p.ID, err)
			}
			out[i] = Encoded{Filename: p.Filename(), Base64: base64.StdEncoding.EncodeToString(data)}
			return nil
		})
	}

	err := g.Wait()
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordEncodeLatency("error", latency)
		a.logger.Warn(ctx, "encoding failed", logger.Int("photos", len(photos)), logger.Error(err))
		return nil, errkind.WrapKind(op, model.ErrEncoding, err)
	}
	metrics.RecordEncodeLatency("ok", latency)
	return out, nil
}

func (a *Adapter) read(p staging.Photo) ([]byte, error) {
	if p.Source == nil {
		return nil, staging.ErrEmptySource
	}
	rc, err := p.Source.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, a.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrTooLarge, a.maxBytes)
	}
	if len(data) == 0 {
		return nil, staging.ErrEmptySource
	}
	return data, nil
}
