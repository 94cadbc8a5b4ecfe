package photo_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"testing"

	"github.com/okian/roadreport/internal/adapters/photo"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func jpegBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestThumbnailPreviewer(t *testing.T) {
	Convey("Given a previewer writing to a temp dir", t, func() {
		dir := t.TempDir()
		p := photo.NewThumbnailPreviewer(photo.WithDir(dir), photo.WithSize(32))

		Convey("When previewing a JPEG", func() {
			pv, err := p.Preview("abc", staging.BytesSource{Filename: "a.jpg", Data: jpegBytes(120, 80)})

			Convey("Then a thumbnail is written and removed on release", func() {
				So(err, ShouldBeNil)
				f, err := os.Open(pv.Location())
				So(err, ShouldBeNil)
				cfg, err := jpeg.DecodeConfig(f)
				_ = f.Close()
				So(err, ShouldBeNil)
				So(cfg.Width, ShouldEqual, 32)
				So(cfg.Height, ShouldEqual, 32)

				So(pv.Release(), ShouldBeNil)
				_, err = os.Stat(pv.Location())
				So(os.IsNotExist(err), ShouldBeTrue)
				So(pv.Release(), ShouldBeNil)
			})
		})

		Convey("When the content is not an image", func() {
			_, err := p.Preview("bad", staging.BytesSource{Data: []byte("not an image")})
			So(errors.Is(err, photo.ErrDecode), ShouldBeTrue)
		})

		Convey("When the file is missing", func() {
			_, err := p.Preview("gone", staging.FileSource{Path: dir + "/missing.jpg"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a staging store backed by thumbnails", t, func() {
		dir := t.TempDir()
		s := staging.New(staging.WithPreviewer(photo.NewThumbnailPreviewer(photo.WithDir(dir))))
		_, err := s.Add(context.Background(), staging.BytesSource{Data: jpegBytes(64, 64)}, staging.BytesSource{Data: jpegBytes(64, 64)})
		So(err, ShouldBeNil)

		Convey("When the store is closed", func() {
			s.Close(context.Background())

			Convey("Then no thumbnails remain", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestLocate(t *testing.T) {
	Convey("Given a JPEG without EXIF", t, func() {
		src := staging.BytesSource{Data: jpegBytes(8, 8)}

		Convey("Then no position is found", func() {
			_, err := photo.Locate(src)
			So(errors.Is(err, photo.ErrNoGPS), ShouldBeTrue)
			_, ok := photo.LocateFirst([]staging.Source{src, src})
			So(ok, ShouldBeFalse)
		})
	})
}
