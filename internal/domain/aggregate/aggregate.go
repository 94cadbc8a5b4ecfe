// Package aggregate merges per-image detection results into one report-level
// risk summary and derives the report priority from it.
package aggregate

import (
	"fmt"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
)

const maxRisk = 100

// Summary is the aggregated view of a batch of detection results.
type Summary struct {
	Risk      model.AggregateRisk
	ImageURLs []string
}

// Aggregate merges results. Severity counts and totals are summed; the
// average and max risks are both maxima. AverageRisk keeps its historic
// name even though it is the largest per-image average.
// ImageURLs follow the order of results.
func Aggregate(results []model.DetectionResult) (Summary, error) {
	const op = "aggregate.Aggregate"
	if len(results) == 0 {
		return Summary{}, errkind.WrapKind(op, model.ErrAggregation, fmt.Errorf("no detection results"))
	}

	var sum Summary
	sum.ImageURLs = make([]string, 0, len(results))
	for i, r := range results {
		if err := check(r); err != nil {
			return Summary{}, errkind.WrapKind(op, model.ErrAggregation, fmt.Errorf("result %d: %w", i, err))
		}
		if i == 0 || r.AverageRisk > sum.Risk.AverageRisk {
			sum.Risk.AverageRisk = r.AverageRisk
		}
		if i == 0 || r.MaxRisk > sum.Risk.MaxRisk {
			sum.Risk.MaxRisk = r.MaxRisk
		}
		sum.Risk.Detections = sum.Risk.Detections.Add(r.Detections)
		sum.Risk.TotalPotholes += r.TotalPotholes
		sum.ImageURLs = append(sum.ImageURLs, r.ImageURL)
	}
	return sum, nil
}

func check(r model.DetectionResult) error {
	switch {
	case r.AverageRisk < 0 || r.AverageRisk > maxRisk:
		return fmt.Errorf("average_risk %v out of range", r.AverageRisk)
	case r.MaxRisk < 0 || r.MaxRisk > maxRisk:
		return fmt.Errorf("max_risk %v out of range", r.MaxRisk)
	case r.TotalPotholes < 0 || r.Detections.Negative():
		return fmt.Errorf("negative counts")
	case r.TotalPotholes != r.Detections.Total():
		return fmt.Errorf("total_potholes %d does not match severity sum %d", r.TotalPotholes, r.Detections.Total())
	}
	return nil
}
