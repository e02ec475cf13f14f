// Package testutil provides shared test utilities and fixtures.
//
// The buffer builders produce frames in engine wire order: scanline 0 is
// the bottom row of the image, and depth floats follow the color bytes.
package testutil

import (
	"encoding/binary"
	"math"
)

// ColorSegment builds a width*height*3 color segment. fill is called with
// the wire scanline (0 = bottom), column and channel of each byte.
func ColorSegment(width, height int, fill func(scanline, col, ch int) byte) []byte {
	buf := make([]byte, 0, width*height*3)
	for s := 0; s < height; s++ {
		for c := 0; c < width; c++ {
			for ch := 0; ch < 3; ch++ {
				buf = append(buf, fill(s, c, ch))
			}
		}
	}
	return buf
}

// ScanlineMarkers builds a color segment whose every byte in wire
// scanline s equals markers[s].
func ScanlineMarkers(width int, markers []byte) []byte {
	return ColorSegment(width, len(markers), func(s, _, _ int) byte { return markers[s] })
}

// DepthSegment builds a width*height float32 segment in the given byte
// order. fill is called with the wire scanline and column of each value.
func DepthSegment(width, height int, order binary.ByteOrder, fill func(scanline, col int) float32) []byte {
	buf := make([]byte, width*height*4)
	i := 0
	for s := 0; s < height; s++ {
		for c := 0; c < width; c++ {
			order.PutUint32(buf[i:], math.Float32bits(fill(s, c)))
			i += 4
		}
	}
	return buf
}

// MatrixSegment encodes the modelview and projection matrices as two runs
// of 16 float32 values, column-major.
func MatrixSegment(order binary.ByteOrder, modelView, projection [16]float32) []byte {
	buf := make([]byte, 2*16*4)
	for i, v := range modelView {
		order.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range projection {
		order.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}

// Concat joins segments into one wire buffer.
func Concat(segments ...[]byte) []byte {
	n := 0
	for _, s := range segments {
		n += len(s)
	}
	out := make([]byte, 0, n)
	for _, s := range segments {
		out = append(out, s...)
	}
	return out
}
