package aggregate

import "github.com/okian/roadreport/internal/domain/model"

// Default max_risk thresholds above which a report is escalated.
const (
	defaultCriticalRisk = 70
	defaultHighRisk     = 50
	defaultMediumRisk   = 30
)

// Option applies a configuration option to the Prioritizer.
type Option func(*Prioritizer)

// WithRiskThresholds sets the max_risk thresholds for critical, high and
// medium. Thresholds must be strictly decreasing.
func WithRiskThresholds(critical, high, medium float64) Option {
	return func(p *Prioritizer) {
		if critical > high && high > medium && medium >= 0 {
			p.critical, p.high, p.medium = critical, high, medium
		}
	}
}

// Prioritizer maps an aggregate to a routing priority.
type Prioritizer struct {
	critical float64
	high     float64
	medium   float64
}

// NewPrioritizer creates a Prioritizer with the default thresholds.
func NewPrioritizer(opts ...Option) *Prioritizer {
	p := &Prioritizer{
		critical: defaultCriticalRisk,
		high:     defaultHighRisk,
		medium:   defaultMediumRisk,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Priority returns the highest class that has a detection, or whose max_risk
// threshold is exceeded.
func (p *Prioritizer) Priority(r model.AggregateRisk) model.Priority {
	switch {
	case r.Detections.Critical > 0 || r.MaxRisk > p.critical:
		return model.PriorityCritical
	case r.Detections.High > 0 || r.MaxRisk > p.high:
		return model.PriorityHigh
	case r.Detections.Medium > 0 || r.MaxRisk > p.medium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
