package upload_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/roadreport/internal/adapters/upload"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

// fakeDetector records requests and answers with a canned response.
type fakeDetector struct {
	mu    sync.Mutex
	calls int
	last  types.DetectRequest
	resp  func(req types.DetectRequest) (types.DetectResponse, error)
}

func (f *fakeDetector) Detect(_ context.Context, req types.DetectRequest) (types.DetectResponse, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	f.mu.Unlock()
	if f.resp != nil {
		return f.resp(req)
	}
	items := make([]types.DetectItem, len(req.Filenames))
	for i, name := range req.Filenames {
		items[i] = types.DetectItem{Filename: name, ImageURL: "https://img/" + name, TotalPotholes: 1,
			Detections: model.SeverityCounts{Low: 1}}
	}
	return types.DetectResponse{Address: "Tverskaya 1", Results: items}, nil
}

// slowSource delays its read so completion order differs from staging order.
type slowSource struct {
	name  string
	data  string
	delay time.Duration
}

func (s slowSource) Name() string { return s.name }
func (s slowSource) Open() (io.ReadCloser, error) {
	time.Sleep(s.delay)
	return io.NopCloser(strings.NewReader(s.data)), nil
}

type brokenSource struct{}

func (brokenSource) Name() string                 { return "broken.jpg" }
func (brokenSource) Open() (io.ReadCloser, error) { return nil, errors.New("stream closed") }

func photos(srcs ...staging.Source) []staging.Photo {
	out := make([]staging.Photo, len(srcs))
	for i, s := range srcs {
		out[i] = staging.Photo{ID: string(rune('a' + i)), Source: s}
	}
	return out
}

var pos = model.Position{Longitude: 37.6173, Latitude: 55.7558}

func TestEncode(t *testing.T) {
	Convey("Given photos that finish encoding out of order", t, func() {
		a := upload.New(&fakeDetector{})
		ps := photos(
			slowSource{name: "first.jpg", data: "one", delay: 60 * time.Millisecond},
			slowSource{name: "second.jpg", data: "two", delay: 30 * time.Millisecond},
			slowSource{data: "three"},
		)

		Convey("When encoding", func() {
			enc, err := a.Encode(context.Background(), ps)

			Convey("Then results follow staging order with filename fallback", func() {
				So(err, ShouldBeNil)
				So(enc[0].Filename, ShouldEqual, "first.jpg")
				So(enc[0].Base64, ShouldEqual, base64.StdEncoding.EncodeToString([]byte("one")))
				So(enc[1].Filename, ShouldEqual, "second.jpg")
				So(enc[2].Filename, ShouldEqual, "image_c.jpg")
				So(enc[2].Base64, ShouldEqual, base64.StdEncoding.EncodeToString([]byte("three")))
			})
		})
	})

	Convey("Given a photo over the size cap", t, func() {
		a := upload.New(&fakeDetector{}, upload.WithMaxImageBytes(4), upload.WithConcurrency(2))
		_, err := a.Encode(context.Background(), photos(staging.BytesSource{Data: []byte("12345")}))

		Convey("Then encoding fails", func() {
			So(errors.Is(err, model.ErrEncoding), ShouldBeTrue)
			So(errors.Is(err, upload.ErrTooLarge), ShouldBeTrue)
		})
	})
}

func TestUpload(t *testing.T) {
	Convey("Given an upload adapter", t, func() {
		ctx := context.Background()
		det := &fakeDetector{}
		a := upload.New(det)

		Convey("When uploading two photos", func() {
			res, err := a.Upload(ctx, photos(
				staging.BytesSource{Filename: "a.jpg", Data: []byte("A")},
				staging.BytesSource{Filename: "b.jpg", Data: []byte("B")},
			), pos, "owner-1")

			Convey("Then one batch carries owner, position and filenames", func() {
				So(err, ShouldBeNil)
				So(det.calls, ShouldEqual, 1)
				So(det.last.UserID, ShouldEqual, "owner-1")
				So(det.last.Latitude, ShouldEqual, "55.7558")
				So(det.last.Longitude, ShouldEqual, "37.6173")
				So(det.last.Filenames, ShouldResemble, []string{"a.jpg", "b.jpg"})
				So(res.Address, ShouldEqual, "Tverskaya 1")
				So(res.Results[1].ImageURL, ShouldEqual, "https://img/b.jpg")
			})
		})

		Convey("When there are no photos", func() {
			_, err := a.Upload(ctx, nil, pos, "owner-1")

			Convey("Then the detector is never called", func() {
				So(errors.Is(err, model.ErrNoPhotos), ShouldBeTrue)
				So(det.calls, ShouldEqual, 0)
			})
		})

		Convey("When one photo cannot be read", func() {
			_, err := a.Upload(ctx, photos(staging.BytesSource{Data: []byte("A")}, brokenSource{}), pos, "owner-1")

			Convey("Then the batch aborts before any network call", func() {
				So(errors.Is(err, model.ErrEncoding), ShouldBeTrue)
				So(det.calls, ShouldEqual, 0)
			})
		})

		Convey("When the service fails", func() {
			det.resp = func(types.DetectRequest) (types.DetectResponse, error) {
				return types.DetectResponse{}, errors.New("502")
			}
			_, err := a.Upload(ctx, photos(staging.BytesSource{Data: []byte("A")}), pos, "owner-1")
			So(errors.Is(err, model.ErrUpload), ShouldBeTrue)
			So(det.calls, ShouldEqual, 1)
		})

		Convey("When the service returns too few results", func() {
			det.resp = func(types.DetectRequest) (types.DetectResponse, error) {
				return types.DetectResponse{Results: []types.DetectItem{{ImageURL: "u"}}}, nil
			}
			_, err := a.Upload(ctx, photos(staging.BytesSource{Data: []byte("A")}, staging.BytesSource{Data: []byte("B")}), pos, "o")
			So(errors.Is(err, model.ErrUpload), ShouldBeTrue)
			So(errors.Is(err, upload.ErrCountMismatch), ShouldBeTrue)
		})

		Convey("When the service reports a per-image error", func() {
			det.resp = func(types.DetectRequest) (types.DetectResponse, error) {
				return types.DetectResponse{Results: []types.DetectItem{{Error: "cannot decode"}}}, nil
			}
			_, err := a.Upload(ctx, photos(staging.BytesSource{Data: []byte("A")}), pos, "o")
			So(errors.Is(err, model.ErrUpload), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "cannot decode")
		})

		Convey("When the service answers out of order with indexes", func() {
			det.resp = func(types.DetectRequest) (types.DetectResponse, error) {
				one, zero := 1, 0
				return types.DetectResponse{Results: []types.DetectItem{
					{Index: &one, ImageURL: "second"},
					{Index: &zero, ImageURL: "first"},
				}}, nil
			}
			res, err := a.Upload(ctx, photos(staging.BytesSource{Data: []byte("A")}, staging.BytesSource{Data: []byte("B")}), pos, "o")

			Convey("Then results are realigned to upload order", func() {
				So(err, ShouldBeNil)
				So(res.Results[0].ImageURL, ShouldEqual, "first")
				So(res.Results[1].ImageURL, ShouldEqual, "second")
			})
		})
	})
}
