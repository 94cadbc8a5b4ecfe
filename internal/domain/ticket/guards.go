// Package ticket drives one report through its lifecycle. Guards are pure
// functions that evaluate preconditions without side effects; Machine holds
// the current phase and applies guarded transitions.
package ticket

import "fmt"

// Phase is a pipeline lifecycle phase.
type Phase string

// Lifecycle phases, in forward order.
const (
	PhaseCollecting Phase = "collecting"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseDrafted    Phase = "drafted"
	PhaseReviewing  Phase = "reviewing"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

// transitions lists every allowed edge. analyzing->collecting and
// submitting->reviewing are the failure edges.
var transitions = map[Phase][]Phase{
	PhaseCollecting: {PhaseAnalyzing},
	PhaseAnalyzing:  {PhaseDrafted, PhaseCollecting},
	PhaseDrafted:    {PhaseReviewing},
	PhaseReviewing:  {PhaseSubmitting},
	PhaseSubmitting: {PhaseSubmitted, PhaseReviewing},
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// TransitionContext provides context for phase transition guards.
type TransitionContext struct {
	From Phase
	To   Phase
}

// AnalyzeContext provides context for the analyze guard.
type AnalyzeContext struct {
	Phase       Phase
	StagedCount int
	HasPosition bool
}

// SubmitContext provides context for the submit guard.
type SubmitContext struct {
	Phase Phase
	UUID  string
}

// CanTransition evaluates whether the machine may move From -> To.
// Rules:
// - submitted is terminal
// - only listed edges are allowed, so no forward skip
func CanTransition(ctx TransitionContext) GuardResult {
	if ctx.From == PhaseSubmitted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("ticket already submitted (requested: %s)", ctx.To),
		}
	}
	for _, to := range transitions[ctx.From] {
		if to == ctx.To {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("cannot move from %s to %s", ctx.From, ctx.To),
	}
}

// CanAnalyze evaluates whether the staged photos may be sent for detection.
// Rules:
// - phase must be collecting
// - at least one photo must be staged
// - a position must be known
func CanAnalyze(ctx AnalyzeContext) GuardResult {
	if ctx.Phase != PhaseCollecting {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only analyze while collecting (current phase: %s)", ctx.Phase),
		}
	}
	if ctx.StagedCount == 0 {
		return GuardResult{Allowed: false, Reason: "no photos staged"}
	}
	if !ctx.HasPosition {
		return GuardResult{Allowed: false, Reason: "no position selected and no photo carries GPS data"}
	}
	return GuardResult{Allowed: true}
}

// CanSubmit evaluates whether the draft may be submitted.
// Rules:
// - phase must be reviewing
// - a draft uuid must exist
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.Phase != PhaseReviewing {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only submit a reviewed draft (current phase: %s)", ctx.Phase),
		}
	}
	if ctx.UUID == "" {
		return GuardResult{Allowed: false, Reason: "no draft to submit"}
	}
	return GuardResult{Allowed: true}
}
