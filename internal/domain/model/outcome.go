package model

import "time"

// Op names a pipeline operation in an Outcome.
type Op string

// Pipeline operations that publish outcomes.
const (
	OpStage   Op = "stage"
	OpAnalyze Op = "analyze"
	OpDraft   Op = "draft"
	OpSubmit  Op = "submit"
	OpList    Op = "list"
	OpGet     Op = "get"
)

// Outcome is the structured completion notice of a pipeline operation.
// Err is nil on success; Kind names the error kind otherwise.
type Outcome struct {
	Op        Op
	SessionID string
	UUID      string
	Ticket    *Ticket
	Err       error
	Kind      string
	At        time.Time
}

// Failed reports whether the operation failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
