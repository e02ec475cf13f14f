package observation

import (
	"fmt"
	"math"
)

// Segment sizes of the wire format.
const (
	ColorChannels      = 3
	BytesPerColorPixel = ColorChannels // one uint8 per channel
	BytesPerDepthPixel = 4             // one float32 per pixel
	MatrixElements     = 16            // 4x4, column-major
	MatrixSegmentBytes = 2 * MatrixElements * 4
)

// maxBufferBytes bounds the largest buffer a Config may describe, leaving
// room for the camera-matrix tail so no offset overflows int.
const maxBufferBytes = math.MaxInt - MatrixSegmentBytes

// checkDimensions rejects non-positive dimensions and frames whose
// color+depth segments would not fit in an int.
func checkDimensions(width, height int) error {
	if width <= 0 {
		return &ConfigError{Field: "width", Value: width, Reason: "must be positive"}
	}
	if height <= 0 {
		return &ConfigError{Field: "height", Value: height, Reason: "must be positive"}
	}
	if width > maxBufferBytes/height/(BytesPerColorPixel+BytesPerDepthPixel) {
		return &ConfigError{Field: "width", Value: width, Reason: fmt.Sprintf("frame of height %d overflows the buffer size", height)}
	}
	return nil
}

// Layout holds the byte boundaries of each segment for one Config.
// Offsets are strictly sequential: color first, depth right after.
type Layout struct {
	PixelCount     int
	ColorOffset    int
	ColorBytes     int // 0 when the modality has no color segment
	DepthOffset    int
	DepthBytes     int // 0 when the modality has no depth segment
	ReservedOffset int // start of the camera-matrix tail
}

// LayoutFor computes the segment boundaries for cfg. It fails with a
// ConfigError if cfg was not built by a constructor.
func LayoutFor(cfg Config) (Layout, error) {
	if err := checkDimensions(cfg.width, cfg.height); err != nil {
		return Layout{}, err
	}
	if cfg.modality == 0 {
		return Layout{}, &ConfigError{Reason: "config has no modality"}
	}

	l := Layout{PixelCount: cfg.width * cfg.height}
	offset := 0
	if cfg.HasColor() {
		l.ColorOffset = offset
		l.ColorBytes = l.PixelCount * BytesPerColorPixel
		offset += l.ColorBytes
	}
	if cfg.IncludeDepth() {
		l.DepthOffset = offset
		l.DepthBytes = l.PixelCount * BytesPerDepthPixel
		offset += l.DepthBytes
	}
	l.ReservedOffset = offset
	return l, nil
}

// Required is the minimum length of a non-empty buffer.
func (l Layout) Required() int {
	return l.ReservedOffset
}

// RequiredWithMatrices is the minimum length when the camera-matrix tail
// is consumed.
func (l Layout) RequiredWithMatrices() int {
	return l.ReservedOffset + MatrixSegmentBytes
}
