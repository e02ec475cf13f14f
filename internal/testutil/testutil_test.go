package testutil

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestScanlineMarkers(t *testing.T) {
	t.Parallel()

	buf := ScanlineMarkers(2, []byte{1, 2})
	want := []byte{1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2}
	if string(buf) != string(want) {
		t.Errorf("ScanlineMarkers = %v, want %v", buf, want)
	}
}

func TestDepthSegment_ByteOrder(t *testing.T) {
	t.Parallel()

	le := DepthSegment(1, 1, binary.LittleEndian, func(int, int) float32 { return 0.5 })
	be := DepthSegment(1, 1, binary.BigEndian, func(int, int) float32 { return 0.5 })

	if got := math.Float32frombits(binary.LittleEndian.Uint32(le)); got != 0.5 {
		t.Errorf("little-endian value = %v, want 0.5", got)
	}
	if got := math.Float32frombits(binary.BigEndian.Uint32(be)); got != 0.5 {
		t.Errorf("big-endian value = %v, want 0.5", got)
	}
}

func TestMatrixSegment(t *testing.T) {
	t.Parallel()

	var mv, proj [16]float32
	mv[0] = 1
	proj[15] = 2
	buf := MatrixSegment(binary.LittleEndian, mv, proj)
	if len(buf) != 128 {
		t.Fatalf("len = %d, want 128", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 1 {
		t.Errorf("modelview[0] = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[124:])); got != 2 {
		t.Errorf("projection[15] = %v, want 2", got)
	}
}

func TestConcat(t *testing.T) {
	t.Parallel()

	got := Concat([]byte{1}, nil, []byte{2, 3})
	if string(got) != string([]byte{1, 2, 3}) {
		t.Errorf("Concat = %v", got)
	}
}
