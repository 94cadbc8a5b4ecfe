// Package types contains the wire types shared by the report server and its clients.
package types

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
)

// DetectRequest is the body of POST /api/detect/images.
type DetectRequest struct {
	ImagesBase64 []string `json:"images_base64"`
	UserID       string   `json:"user_id"`
	Latitude     string   `json:"latitude"`
	Longitude    string   `json:"longitude"`
	Filenames    []string `json:"filenames"`
}

// DetectItem is one per-image entry of a detection response.
type DetectItem struct {
	Filename      string               `json:"filename,omitempty"`
	Index         *int                 `json:"index,omitempty"`
	ImageURL      string               `json:"image_url"`
	AverageRisk   float64              `json:"average_risk"`
	MaxRisk       float64              `json:"max_risk"`
	TotalPotholes int                  `json:"total_potholes"`
	Detections    model.SeverityCounts `json:"detections"`
	Error         string               `json:"error,omitempty"`
}

// Result converts the item to a domain detection result.
func (d DetectItem) Result() model.DetectionResult {
	return model.DetectionResult{
		Filename:      d.Filename,
		ImageURL:      d.ImageURL,
		AverageRisk:   d.AverageRisk,
		MaxRisk:       d.MaxRisk,
		TotalPotholes: d.TotalPotholes,
		Detections:    d.Detections,
	}
}

// DetectResponse is the batch detection response.
type DetectResponse struct {
	UserID    string       `json:"user_id"`
	Latitude  string       `json:"latitude"`
	Longitude string       `json:"longitude"`
	Address   string       `json:"address"`
	Results   []DetectItem `json:"results"`
}

// DraftRequest is the body of POST /api/reports/draft.
type DraftRequest struct {
	UserID        string               `json:"user_id"`
	Latitude      string               `json:"latitude"`
	Longitude     string               `json:"longitude"`
	Address       string               `json:"address"`
	ImageURLs     []string             `json:"image_urls"`
	TotalPotholes int                  `json:"total_potholes"`
	AverageRisk   float64              `json:"average_risk"`
	MaxRisk       float64              `json:"max_risk"`
	Detections    model.SeverityCounts `json:"detections"`
}

// NewDraftRequest builds the draft payload for an analyzed report.
func NewDraftRequest(owner, address string, pos model.Position, urls []string, risk model.AggregateRisk) DraftRequest {
	return DraftRequest{
		UserID:        owner,
		Latitude:      pos.LatString(),
		Longitude:     pos.LonString(),
		Address:       address,
		ImageURLs:     urls,
		TotalPotholes: risk.TotalPotholes,
		AverageRisk:   risk.AverageRisk,
		MaxRisk:       risk.MaxRisk,
		Detections:    risk.Detections,
	}
}

// DraftResponse acknowledges a created draft.
type DraftResponse struct {
	UUID           string `json:"uuid"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	CanBeSubmitted bool   `json:"can_be_submitted"`
	Message        string `json:"message"`
}

// Ticket is the stored report as served by the report store.
type Ticket struct {
	UUID          string     `json:"uuid"`
	UserID        string     `json:"user_id"`
	Latitude      string     `json:"latitude"`
	Longitude     string     `json:"longitude"`
	Address       string     `json:"address"`
	ImageURLs     []string   `json:"image_urls"`
	TotalPotholes int        `json:"total_potholes"`
	AverageRisk   float64    `json:"average_risk"`
	MaxRisk       float64    `json:"max_risk"`
	CriticalCount int        `json:"critical_count"`
	HighCount     int        `json:"high_count"`
	MediumCount   int        `json:"medium_count"`
	LowCount      int        `json:"low_count"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	CreatedAt     time.Time  `json:"created_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
}

// FromTicket renders a domain ticket for the wire.
func FromTicket(t model.Ticket) Ticket {
	return Ticket{
		UUID:          t.UUID,
		UserID:        t.OwnerID,
		Latitude:      t.Position.LatString(),
		Longitude:     t.Position.LonString(),
		Address:       t.Address,
		ImageURLs:     t.ImageURLs,
		TotalPotholes: t.Aggregate.TotalPotholes,
		AverageRisk:   t.Aggregate.AverageRisk,
		MaxRisk:       t.Aggregate.MaxRisk,
		CriticalCount: t.Aggregate.Detections.Critical,
		HighCount:     t.Aggregate.Detections.High,
		MediumCount:   t.Aggregate.Detections.Medium,
		LowCount:      t.Aggregate.Detections.Low,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		CreatedAt:     t.CreatedAt,
		SubmittedAt:   t.SubmittedAt,
	}
}

// Model converts the wire ticket to the domain ticket. Unparseable
// coordinates are left at zero; the store owns their validity.
func (t Ticket) Model() model.Ticket {
	pos, _ := model.ParsePosition(t.Latitude, t.Longitude)
	det := model.SeverityCounts{
		Critical: t.CriticalCount,
		High:     t.HighCount,
		Medium:   t.MediumCount,
		Low:      t.LowCount,
	}
	return model.Ticket{
		UUID:      t.UUID,
		OwnerID:   t.UserID,
		Address:   t.Address,
		Position:  pos,
		ImageURLs: t.ImageURLs,
		Aggregate: model.AggregateRisk{
			AverageRisk:   t.AverageRisk,
			MaxRisk:       t.MaxRisk,
			TotalPotholes: t.TotalPotholes,
			Detections:    det,
		},
		Status:      model.Status(t.Status),
		Priority:    model.Priority(t.Priority),
		CreatedAt:   t.CreatedAt,
		SubmittedAt: t.SubmittedAt,
	}
}

// TicketList is a ticket listing. The store may answer with either
// {total, items} or a bare array; both decode into TicketList.
type TicketList struct {
	Total int      `json:"total"`
	Items []Ticket `json:"items"`
}

// UnmarshalJSON accepts both listing envelopes. A bare array reports its
// own length as the total.
func (l *TicketList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Ticket
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		l.Total = len(items)
		l.Items = items
		return nil
	}
	type envelope TicketList
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*l = TicketList(env)
	if l.Total < len(l.Items) {
		l.Total = len(l.Items)
	}
	return nil
}

// Page converts the listing to the domain page.
func (l TicketList) Page() model.Page {
	items := make([]model.Ticket, 0, len(l.Items))
	for _, t := range l.Items {
		items = append(items, t.Model())
	}
	return model.Page{Total: l.Total, Items: items}
}

// ErrorResponse is the JSON error body of the report server.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
