package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	types "github.com/okian/roadreport/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTicketList(t *testing.T) {
	Convey("Given the two listing envelopes", t, func() {
		Convey("When the store answers with a bare array", func() {
			var l types.TicketList
			err := json.Unmarshal([]byte(` [{"uuid":"a"},{"uuid":"b"}]`), &l)

			Convey("Then the total is the item count", func() {
				So(err, ShouldBeNil)
				So(l.Total, ShouldEqual, 2)
				So(l.Items[1].UUID, ShouldEqual, "b")
			})
		})

		Convey("When the store answers with an envelope", func() {
			var l types.TicketList
			err := json.Unmarshal([]byte(`{"total":42,"items":[{"uuid":"a"}]}`), &l)

			Convey("Then the reported total is kept", func() {
				So(err, ShouldBeNil)
				So(l.Total, ShouldEqual, 42)
				So(len(l.Items), ShouldEqual, 1)
			})
		})

		Convey("When the envelope omits total", func() {
			var l types.TicketList
			err := json.Unmarshal([]byte(`{"items":[{"uuid":"a"},{"uuid":"b"}]}`), &l)
			So(err, ShouldBeNil)
			So(l.Total, ShouldEqual, 2)
		})

		Convey("When the body is malformed", func() {
			var l types.TicketList
			So(json.Unmarshal([]byte(`{"items":`), &l), ShouldNotBeNil)
		})
	})
}

func TestTicketConversion(t *testing.T) {
	Convey("Given a domain ticket", t, func() {
		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		submitted := created.Add(time.Minute)
		tk := model.Ticket{
			UUID:      "t-1",
			OwnerID:   "owner-1",
			Address:   "Tverskaya 1",
			Position:  model.Position{Longitude: 37.6173, Latitude: 55.7558},
			ImageURLs: []string{"u1", "u2"},
			Aggregate: model.AggregateRisk{
				AverageRisk:   80,
				MaxRisk:       95,
				TotalPotholes: 7,
				Detections:    model.SeverityCounts{Critical: 3, High: 1, Medium: 2, Low: 1},
			},
			Status:      model.StatusSubmitted,
			Priority:    model.PriorityCritical,
			CreatedAt:   created,
			SubmittedAt: &submitted,
		}

		Convey("When it is rendered for the wire and read back", func() {
			wire := types.FromTicket(tk)

			Convey("Then coordinates are decimal strings and counts are flattened", func() {
				So(wire.Latitude, ShouldEqual, "55.7558")
				So(wire.Longitude, ShouldEqual, "37.6173")
				So(wire.CriticalCount, ShouldEqual, 3)
				So(wire.Status, ShouldEqual, "submitted")
			})

			Convey("Then the domain ticket is restored", func() {
				So(wire.Model(), ShouldResemble, tk)
			})
		})
	})
}

func TestDraftRequest(t *testing.T) {
	Convey("Given an aggregate and a position", t, func() {
		risk := model.AggregateRisk{AverageRisk: 80, MaxRisk: 95, TotalPotholes: 7,
			Detections: model.SeverityCounts{Critical: 3, High: 1, Medium: 2, Low: 1}}
		req := types.NewDraftRequest("owner-1", "Tverskaya 1",
			model.FromPair([2]float64{37.6, 55.7}), []string{"u1"}, risk)

		Convey("Then the payload carries the fields the store expects", func() {
			body, err := json.Marshal(req)
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, `"latitude":"55.7"`)
			So(string(body), ShouldContainSubstring, `"detections":{"CRITICAL":3,"HIGH":1,"MEDIUM":2,"LOW":1}`)
			So(string(body), ShouldContainSubstring, `"image_urls":["u1"]`)
		})
	})
}
