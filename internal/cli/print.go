package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/okian/roadreport/internal/domain/model"
)

func okMark() string { return color.New(color.FgGreen).Sprint("✓") }

func colorPriority(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(p)
	case model.PriorityHigh:
		return color.New(color.FgHiRed).Sprint(p)
	case model.PriorityMedium:
		return color.New(color.FgYellow).Sprint(p)
	case model.PriorityLow:
		return color.New(color.FgGreen).Sprint(p)
	default:
		return string(p)
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printTicket(w io.Writer, t model.Ticket) { //nolint:gocritic // hugeParam: printed once
	d := t.Aggregate.Detections
	fmt.Fprintf(w, "  Status:    %s\n", t.Status)
	fmt.Fprintf(w, "  Priority:  %s\n", colorPriority(t.Priority))
	fmt.Fprintf(w, "  Address:   %s\n", t.Address)
	fmt.Fprintf(w, "  Position:  %s, %s\n", t.Position.LatString(), t.Position.LonString())
	fmt.Fprintf(w, "  Potholes:  %d (critical %d, high %d, medium %d, low %d)\n",
		t.Aggregate.TotalPotholes, d.Critical, d.High, d.Medium, d.Low)
	fmt.Fprintf(w, "  Risk:      max %.1f, average %.1f\n", t.Aggregate.MaxRisk, t.Aggregate.AverageRisk)
	fmt.Fprintf(w, "  Created:   %s\n", formatTime(&t.CreatedAt))
	if t.SubmittedAt != nil {
		fmt.Fprintf(w, "  Submitted: %s\n", formatTime(t.SubmittedAt))
	}
	if len(t.ImageURLs) > 0 {
		fmt.Fprintf(w, "  Images:    %s\n", strings.Join(t.ImageURLs, "\n             "))
	}
}
