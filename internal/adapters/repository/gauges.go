package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// gauges refreshes the per-status ticket gauges in the background.
type gauges struct {
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func startGauges(ctx context.Context, s Store, o storeOptions) *gauges {
	g := &gauges{stop: make(chan struct{})}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(o.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stop:
				return
			case <-ticker.C:
				counts, err := s.CountByStatus(ctx)
				if err != nil {
					o.logger.Warn(ctx, "ticket count failed", logger.Error(err))
					continue
				}
				for _, st := range []model.Status{model.StatusDraft, model.StatusSubmitted} {
					metrics.UpdateTickets(string(st), counts[st])
				}
			}
		}
	}()
	return g
}

func (g *gauges) close() {
	g.once.Do(func() { close(g.stop) })
	g.wg.Wait()
}

func validateFilter(f Filter) bool {
	return f.Skip >= 0 && f.Limit > 0
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Milliseconds()))
}
