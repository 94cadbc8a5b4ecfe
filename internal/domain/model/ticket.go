// Package model contains domain models passed between layers.
package model

import "time"

// Severity is a detection severity class.
type Severity string

// Severity classes reported by the detection service.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityCounts counts detections per severity class.
type SeverityCounts struct {
	Critical int `json:"CRITICAL"`
	High     int `json:"HIGH"`
	Medium   int `json:"MEDIUM"`
	Low      int `json:"LOW"`
}

// Total returns the number of detections across all classes.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// Add returns the element-wise sum of c and o.
func (c SeverityCounts) Add(o SeverityCounts) SeverityCounts {
	return SeverityCounts{
		Critical: c.Critical + o.Critical,
		High:     c.High + o.High,
		Medium:   c.Medium + o.Medium,
		Low:      c.Low + o.Low,
	}
}

// Negative reports whether any class holds a negative count.
func (c SeverityCounts) Negative() bool {
	return c.Critical < 0 || c.High < 0 || c.Medium < 0 || c.Low < 0
}

// DetectionResult is the per-image output of the detection service.
type DetectionResult struct {
	Filename      string
	ImageURL      string
	AverageRisk   float64
	MaxRisk       float64
	TotalPotholes int
	Detections    SeverityCounts
}

// AggregateRisk is the report-level summary of all images.
// TotalPotholes always equals Detections.Total().
type AggregateRisk struct {
	// AverageRisk holds the maximum of the per-image averages, not a mean.
	AverageRisk   float64
	MaxRisk       float64
	TotalPotholes int
	Detections    SeverityCounts
}

// Status is the persisted ticket status.
type Status string

// Ticket statuses.
const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Priority is the routing priority computed at draft creation.
type Priority string

// Ticket priorities.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Ticket is a report routed to an authority.
type Ticket struct {
	UUID        string
	OwnerID     string
	Address     string
	Position    Position
	ImageURLs   []string
	Aggregate   AggregateRisk
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	SubmittedAt *time.Time
}

// Submitted reports whether the ticket reached its terminal status.
func (t Ticket) Submitted() bool {
	return t.Status == StatusSubmitted
}

// CanBeSubmitted reports whether a draft carries everything an authority needs.
func (t Ticket) CanBeSubmitted() bool {
	return t.Status == StatusDraft && t.Address != "" && len(t.ImageURLs) > 0 && t.Position.Validate() == nil
}

// Page is one page of a ticket listing.
type Page struct {
	Total int
	Items []Ticket
}
