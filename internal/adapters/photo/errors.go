package photo

import "errors"

// Sentinel errors for photo processing.
var (
	ErrDecode = errors.New("decode image failed")
	ErrNoGPS  = errors.New("no GPS data in photo")
)
