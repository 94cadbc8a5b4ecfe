package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/roadreport/internal/adapters/repository"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func draftRequest() types.DraftRequest {
	return types.DraftRequest{
		UserID:        "owner-1",
		Latitude:      "50.4501",
		Longitude:     "30.5234",
		Address:       "Khreshchatyk St, Kyiv",
		ImageURLs:     []string{"https://img.example/1.jpg", "https://img.example/2.jpg"},
		TotalPotholes: 7,
		AverageRisk:   80,
		MaxRisk:       95,
		Detections:    model.SeverityCounts{Critical: 3, High: 1, Medium: 2, Low: 1},
	}
}

func TestReports(t *testing.T) {
	Convey("Given report operations over a memory store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()

		clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		seq := 0
		reports := NewReports(store,
			WithClock(func() time.Time { return clock }),
			WithUUIDGenerator(func() string { seq++; return fmt.Sprintf("r-%02d", seq) }),
			WithMaxListLimit(10))

		Convey("When a valid draft is created", func() {
			resp, err := reports.CreateDraft(ctx, draftRequest())
			So(err, ShouldBeNil)

			Convey("Then it is stored as a submittable critical draft", func() {
				So(resp.UUID, ShouldEqual, "r-01")
				So(resp.Status, ShouldEqual, "draft")
				So(resp.Priority, ShouldEqual, "critical")
				So(resp.CanBeSubmitted, ShouldBeTrue)

				got, err := reports.Get(ctx, resp.UUID)
				So(err, ShouldBeNil)
				So(got.CriticalCount, ShouldEqual, 3)
				So(got.Latitude, ShouldEqual, "50.4501")
				So(got.CreatedAt, ShouldEqual, clock)
			})

			Convey("And submitted twice", func() {
				clock = clock.Add(time.Minute)
				first, changed, err := reports.Submit(ctx, resp.UUID)
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)

				clock = clock.Add(time.Minute)
				second, changed2, err := reports.Submit(ctx, resp.UUID)
				So(err, ShouldBeNil)

				Convey("Then the second submit leaves submitted_at unchanged", func() {
					So(first.Status, ShouldEqual, "submitted")
					So(first.SubmittedAt, ShouldNotBeNil)
					So(first.SubmittedAt.After(first.CreatedAt), ShouldBeTrue)
					So(changed2, ShouldBeFalse)
					So(*second.SubmittedAt, ShouldEqual, *first.SubmittedAt)
				})
			})

			Convey("And the clock runs behind created_at at submission", func() {
				clock = clock.Add(-time.Hour)
				done, _, err := reports.Submit(ctx, resp.UUID)

				Convey("Then submitted_at is clamped to created_at", func() {
					So(err, ShouldBeNil)
					So(done.SubmittedAt.Equal(done.CreatedAt), ShouldBeTrue)
				})
			})
		})

		Convey("When a draft lacks an address", func() {
			req := draftRequest()
			req.Address = ""
			resp, err := reports.CreateDraft(ctx, req)
			So(err, ShouldBeNil)

			Convey("Then it is stored but cannot be submitted", func() {
				So(resp.CanBeSubmitted, ShouldBeFalse)
				_, _, err := reports.Submit(ctx, resp.UUID)
				So(errors.Is(err, ErrNotSubmittable), ShouldBeTrue)
			})
		})

		Convey("When drafts are invalid", func() {
			noOwner := draftRequest()
			noOwner.UserID = ""
			badLat := draftRequest()
			badLat.Latitude = "north"
			badSum := draftRequest()
			badSum.TotalPotholes = 3
			badRisk := draftRequest()
			badRisk.MaxRisk = 140

			Convey("Then each is rejected", func() {
				for _, req := range []types.DraftRequest{noOwner, badLat, badSum, badRisk} {
					_, err := reports.CreateDraft(ctx, req)
					So(errors.Is(err, ErrInvalidDraft), ShouldBeTrue)
				}
				stats, err := reports.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats["total"], ShouldEqual, 0)
			})
		})

		Convey("When an unknown ticket is submitted", func() {
			_, _, err := reports.Submit(ctx, "nope")

			Convey("Then it is not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing tickets", func() {
			for i := 0; i < 3; i++ {
				clock = clock.Add(time.Second)
				_, err := reports.CreateDraft(ctx, draftRequest())
				So(err, ShouldBeNil)
			}
			_, _, err := reports.Submit(ctx, "r-01")
			So(err, ShouldBeNil)

			Convey("Then pages are newest first with a total", func() {
				list, err := reports.List(ctx, repository.Filter{Owner: "owner-1", Limit: 2})
				So(err, ShouldBeNil)
				So(list.Total, ShouldEqual, 3)
				So(list.Items, ShouldHaveLength, 2)
				So(list.Items[0].UUID, ShouldEqual, "r-03")
			})

			Convey("Then the status filter applies", func() {
				list, err := reports.List(ctx, repository.Filter{Status: model.StatusSubmitted, Limit: 10})
				So(err, ShouldBeNil)
				So(list.Total, ShouldEqual, 1)
				So(list.Items[0].UUID, ShouldEqual, "r-01")
			})

			Convey("Then stats count both statuses", func() {
				stats, err := reports.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats["draft"], ShouldEqual, 2)
				So(stats["submitted"], ShouldEqual, 1)
				So(stats["total"], ShouldEqual, 3)
			})

			Convey("Then out-of-range queries are rejected", func() {
				for _, f := range []repository.Filter{
					{Skip: -1, Limit: 5},
					{Limit: 0},
					{Limit: 11},
					{Status: "archived", Limit: 5},
				} {
					_, err := reports.List(ctx, f)
					So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
				}
			})
		})
	})
}
