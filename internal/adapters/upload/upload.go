// Package upload encodes staged photos and sends them to the detection
// service as one batch.
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// Detector sends one detection batch.
type Detector interface {
	Detect(ctx context.Context, req types.DetectRequest) (types.DetectResponse, error)
}

// Result is the detection outcome of one batch, aligned with the uploaded photos.
type Result struct {
	Address string
	Results []model.DetectionResult
}

// Adapter encodes and uploads staged photos.
type Adapter struct {
	detector    Detector
	maxBytes    int64
	concurrency int
	logger      logger.Logger
}

// New creates an Adapter sending batches to d.
func New(d Detector, opts ...Option) *Adapter {
	a := &Adapter{
		detector: d,
		maxBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Named("upload")
	}
	return a
}

// Upload encodes photos and sends them with pos and owner. Zero photos is
// refused before any encoding. No retry is attempted.
func (a *Adapter) Upload(ctx context.Context, photos []staging.Photo, pos model.Position, owner string) (Result, error) {
	const op = "upload.Upload"
	if len(photos) == 0 {
		return Result{}, errkind.NewKind(op, model.ErrNoPhotos)
	}

	encoded, err := a.Encode(ctx, photos)
	if err != nil {
		return Result{}, err
	}

	req := types.DetectRequest{
		ImagesBase64: make([]string, len(encoded)),
		Filenames:    make([]string, len(encoded)),
		UserID:       owner,
		Latitude:     pos.LatString(),
		Longitude:    pos.LonString(),
	}
	for i, e := range encoded {
		req.ImagesBase64[i] = e.Base64
		req.Filenames[i] = e.Filename
	}

	start := time.Now()
	resp, err := a.detector.Detect(ctx, req)
	metrics.RecordUploadLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpload("error")
		return Result{}, errkind.WrapKind(op, model.ErrUpload, err)
	}

	results, err := align(resp.Results, len(photos))
	if err != nil {
		metrics.RecordUpload("rejected")
		a.logger.Warn(ctx, "detection response rejected", logger.Error(err))
		return Result{}, errkind.WrapKind(op, model.ErrUpload, err)
	}

	metrics.RecordUpload("ok")
	a.logger.Info(ctx, "batch analyzed",
		logger.String("owner", owner),
		logger.Int("photos", len(photos)))
	return Result{Address: resp.Address, Results: results}, nil
}

// align orders items by their reported index when every index is present
// and unique, and by response position otherwise.
func align(items []types.DetectItem, want int) ([]model.DetectionResult, error) {
	if len(items) != want {
		return nil, fmt.Errorf("%w: sent %d photos, got %d results", ErrCountMismatch, want, len(items))
	}
	out := make([]model.DetectionResult, want)
	byIndex := true
	seen := make([]bool, want)
	for _, it := range items {
		if it.Index == nil || *it.Index < 0 || *it.Index >= want || seen[*it.Index] {
			byIndex = false
			break
		}
		seen[*it.Index] = true
	}
	for i, it := range items {
		if it.Error != "" {
			return nil, fmt.Errorf("image %d (%s): %s", i, it.Filename, it.Error)
		}
		slot := i
		if byIndex {
			slot = *it.Index
		}
		out[slot] = it.Result()
	}
	return out, nil
}
