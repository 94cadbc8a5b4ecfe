package photo

import (
	"fmt"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/rwcarlsen/goexif/exif"
)

// Locate reads the GPS position recorded in the photo's EXIF block.
func Locate(src staging.Source) (model.Position, error) {
	rc, err := src.Open()
	if err != nil {
		return model.Position{}, err
	}
	defer func() { _ = rc.Close() }()

	x, err := exif.Decode(rc)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %w", ErrNoGPS, err)
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %w", ErrNoGPS, err)
	}
	pos := model.Position{Latitude: lat, Longitude: lon}
	if err := pos.Validate(); err != nil {
		return model.Position{}, err
	}
	return pos, nil
}

// LocateFirst returns the position of the first source that carries one.
func LocateFirst(srcs []staging.Source) (model.Position, bool) {
	for _, src := range srcs {
		if pos, err := Locate(src); err == nil {
			return pos, true
		}
	}
	return model.Position{}, false
}
