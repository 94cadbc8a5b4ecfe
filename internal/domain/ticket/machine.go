package ticket

import (
	"context"
	"sync"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// Machine holds the lifecycle phase of one report session.
type Machine struct {
	mu     sync.Mutex
	phase  Phase
	uuid   string
	logger logger.Logger
}

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// NewMachine creates a Machine in the collecting phase.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{phase: PhaseCollecting}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Named("ticket")
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// UUID returns the draft uuid, or "" before a draft exists.
func (m *Machine) UUID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uuid
}

// Transition moves the machine to the given phase.
func (m *Machine) Transition(ctx context.Context, to Phase) error {
	const op = "ticket.Transition"
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(ctx, op, to)
}

// Drafted records the draft uuid and moves analyzing -> drafted.
func (m *Machine) Drafted(ctx context.Context, uuid string) error {
	const op = "ticket.Drafted"
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionLocked(ctx, op, PhaseDrafted); err != nil {
		return err
	}
	m.uuid = uuid
	return nil
}

// Guard evaluates g against the current state and converts a refusal to an
// ErrInvalidTransition error.
func (m *Machine) Guard(op string, g func(Phase, string) GuardResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := g(m.phase, m.uuid).Error(); err != nil {
		return errkind.WrapKind(op, model.ErrInvalidTransition, err)
	}
	return nil
}

func (m *Machine) transitionLocked(ctx context.Context, op string, to Phase) error {
	from := m.phase
	if err := CanTransition(TransitionContext{From: from, To: to}).Error(); err != nil {
		return errkind.WrapKind(op, model.ErrInvalidTransition, err)
	}
	m.phase = to
	metrics.RecordTransition(string(from), string(to))
	m.logger.Debug(ctx, "phase changed",
		logger.String("from", string(from)),
		logger.String("to", string(to)))
	return nil
}
