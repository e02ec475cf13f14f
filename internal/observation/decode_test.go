package observation

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/povframe/internal/testutil"
)

func mustPOV(t *testing.T, w, h int, depth bool) Config {
	t.Helper()
	cfg, err := NewPOVConfig(w, h, depth)
	require.NoError(t, err)
	return cfg
}

func TestDecode_EmptyBufferFallback(t *testing.T) {
	t.Parallel()

	for _, dims := range [][2]int{{1, 1}, {4, 3}, {7, 2}} {
		w, h := dims[0], dims[1]

		obs, err := Decode(nil, mustPOV(t, w, h, false))
		require.NoError(t, err)
		require.NotNil(t, obs.Color)
		assert.Nil(t, obs.Depth)
		assert.Equal(t, []int{h, w, 3}, obs.Color.Shape())
		assert.Equal(t, make([]uint8, w*h*3), obs.Color.Pix)

		obs, err = Decode([]byte{}, mustPOV(t, w, h, true))
		require.NoError(t, err)
		require.NotNil(t, obs.Color)
		require.NotNil(t, obs.Depth)
		assert.Equal(t, []int{h, w, 1}, obs.Depth.Shape())
		assert.Equal(t, make([]float32, w*h), obs.Depth.Values)

		depthCfg, err := NewDepthConfig(w, h)
		require.NoError(t, err)
		obs, err = Decode(nil, depthCfg)
		require.NoError(t, err)
		assert.Nil(t, obs.Color)
		require.NotNil(t, obs.Depth)
		assert.Equal(t, make([]float32, w*h), obs.Depth.Values)
	}
}

func TestDecode_RowOrderScenario(t *testing.T) {
	t.Parallel()

	// Wire scanline 0 is the bottom of the image.
	raw := testutil.ScanlineMarkers(4, []byte{10, 20, 30})
	require.Len(t, raw, 36)

	obs, err := Decode(raw, mustPOV(t, 4, 3, false))
	require.NoError(t, err)

	want := [][]uint8{
		bytes.Repeat([]byte{30}, 12),
		bytes.Repeat([]byte{20}, 12),
		bytes.Repeat([]byte{10}, 12),
	}
	for r := range want {
		if diff := cmp.Diff(want[r], obs.Color.Row(r)); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", r, diff)
		}
	}
}

func TestDecode_RowReversalKeepsColumnsAndChannels(t *testing.T) {
	t.Parallel()

	const w, h = 5, 4
	fill := func(s, c, ch int) byte { return byte(s*100 + c*10 + ch) }
	raw := testutil.ColorSegment(w, h, fill)

	obs, err := Decode(raw, mustPOV(t, w, h, false))
	require.NoError(t, err)

	for s := 0; s < h; s++ {
		for c := 0; c < w; c++ {
			for ch := 0; ch < 3; ch++ {
				assert.Equal(t, fill(s, c, ch), obs.Color.At(h-1-s, c, ch),
					"scanline %d col %d ch %d", s, c, ch)
			}
		}
	}
}

func TestDecode_ColorAndDepth(t *testing.T) {
	t.Parallel()

	const w, h = 3, 2
	color := testutil.ScanlineMarkers(w, []byte{1, 2})
	depth := testutil.DepthSegment(w, h, binary.LittleEndian, func(s, c int) float32 {
		return float32(s) + float32(c)/10
	})
	raw := testutil.Concat(color, depth)

	obs, err := Decode(raw, mustPOV(t, w, h, true))
	require.NoError(t, err)
	require.NotNil(t, obs.Depth)
	assert.Nil(t, obs.Matrices)

	assert.Equal(t, []int{h, w, 1}, obs.Depth.Shape())
	want := []float32{
		1.0, 1.1, 1.2, // top row comes from wire scanline 1
		0.0, 0.1, 0.2,
	}
	if diff := cmp.Diff(want, obs.Depth.Values); diff != "" {
		t.Errorf("depth mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint8(2), obs.Color.At(0, 0, 0))
	assert.Equal(t, uint8(1), obs.Color.At(1, 0, 0))
}

func TestDecode_PureDepth(t *testing.T) {
	t.Parallel()

	const w, h = 2, 3
	raw := testutil.DepthSegment(w, h, binary.LittleEndian, func(s, c int) float32 {
		return float32(s*10 + c)
	})
	cfg, err := NewDepthConfig(w, h)
	require.NoError(t, err)

	obs, err := Decode(raw, cfg)
	require.NoError(t, err)
	assert.Nil(t, obs.Color)
	assert.Equal(t, []float32{20, 21, 10, 11, 0, 1}, obs.Depth.Values)
	assert.Equal(t, float32(21), obs.Depth.At(0, 1))
	assert.Equal(t, []float32{0, 1}, obs.Depth.Row(2))
}

func TestDecode_BigEndianDepth(t *testing.T) {
	t.Parallel()

	cfg, err := NewDepthConfig(1, 2)
	require.NoError(t, err)
	raw := testutil.DepthSegment(1, 2, binary.BigEndian, func(s, _ int) float32 { return float32(s) + 0.25 })

	d, err := NewDecoder(cfg, DecoderOptions{ByteOrder: binary.BigEndian})
	require.NoError(t, err)
	obs, err := d.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.25, 0.25}, obs.Depth.Values)
}

func TestDecode_MalformedBuffer(t *testing.T) {
	t.Parallel()

	cfg := mustPOV(t, 2, 2, true)
	for _, n := range []int{1, 11, 12, 27} {
		_, err := Decode(make([]byte, n), cfg)
		require.Error(t, err, "len %d", n)
		assert.True(t, errors.Is(err, ErrMalformedBuffer))

		var mb *MalformedBufferError
		require.True(t, errors.As(err, &mb))
		assert.Equal(t, 28, mb.Need)
		assert.Equal(t, n, mb.Got)
		if n < 12 {
			assert.Equal(t, "color", mb.Segment)
		} else {
			assert.Equal(t, "depth", mb.Segment)
		}
	}

	_, err := Decode(make([]byte, 35), mustPOV(t, 4, 3, false))
	assert.ErrorIs(t, err, ErrMalformedBuffer)
}

func TestDecode_TrailingBytesIgnored(t *testing.T) {
	t.Parallel()

	raw := testutil.Concat(testutil.ScanlineMarkers(2, []byte{5, 6}), bytes.Repeat([]byte{0xAB}, 200))
	obs, err := Decode(raw, mustPOV(t, 2, 2, false))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), obs.Color.At(0, 0, 0))
	assert.Equal(t, uint8(5), obs.Color.At(1, 1, 2))
}

func TestDecode_OutputDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	raw := testutil.ScanlineMarkers(2, []byte{7, 7})
	obs, err := Decode(raw, mustPOV(t, 2, 2, false))
	require.NoError(t, err)

	for i := range raw {
		raw[i] = 0
	}
	assert.Equal(t, bytes.Repeat([]byte{7}, 12), obs.Color.Pix)
}

func TestDecoder_Matrices(t *testing.T) {
	t.Parallel()

	const w, h = 2, 2
	var mv, proj [16]float32
	for i := range mv {
		mv[i] = float32(i)
		proj[i] = float32(100 + i)
	}
	raw := testutil.Concat(
		testutil.ScanlineMarkers(w, []byte{1, 2}),
		testutil.DepthSegment(w, h, binary.LittleEndian, func(int, int) float32 { return 0.5 }),
		testutil.MatrixSegment(binary.LittleEndian, mv, proj),
	)

	d, err := NewDecoder(mustPOV(t, w, h, true), DecoderOptions{Matrices: MatricesV1})
	require.NoError(t, err)
	assert.Equal(t, w*h*7+MatrixSegmentBytes, d.Required())

	obs, err := d.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, obs.Matrices)

	// Column-major: element i lands at (i%4, i/4).
	assert.Equal(t, 1.0, obs.Matrices.ModelView.At(1, 0))
	assert.Equal(t, 4.0, obs.Matrices.ModelView.At(0, 1))
	assert.Equal(t, 115.0, obs.Matrices.Projection.At(3, 3))

	_, err = d.Decode(raw[:len(raw)-1])
	var mb *MalformedBufferError
	require.True(t, errors.As(err, &mb))
	assert.Equal(t, "matrices", mb.Segment)

	empty, err := d.Decode(nil)
	require.NoError(t, err)
	require.NotNil(t, empty.Matrices)
	assert.Equal(t, 1.0, empty.Matrices.ViewProjection().At(2, 2))
	assert.Equal(t, 0.0, empty.Matrices.ViewProjection().At(2, 1))
}

func TestNewDecoder_MatricesRequireColorDepth(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder(mustPOV(t, 2, 2, false), DecoderOptions{Matrices: MatricesV1})
	assert.ErrorIs(t, err, ErrConfig)

	depth, err := NewDepthConfig(2, 2)
	require.NoError(t, err)
	_, err = NewDecoder(depth, DecoderOptions{Matrices: MatricesV1})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewDecoder(mustPOV(t, 2, 2, true), DecoderOptions{Matrices: MatrixVersion(9)})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewDecoder(Config{}, DecoderOptions{})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseMatrixVersion(t *testing.T) {
	t.Parallel()

	v, err := ParseMatrixVersion("")
	require.NoError(t, err)
	assert.Equal(t, MatricesNone, v)

	v, err = ParseMatrixVersion("v1")
	require.NoError(t, err)
	assert.Equal(t, MatricesV1, v)

	_, err = ParseMatrixVersion("v2")
	assert.Error(t, err)
}

func TestDecoder_ConcurrentUse(t *testing.T) {
	t.Parallel()

	cfg := mustPOV(t, 8, 6, true)
	d, err := NewDecoder(cfg, DecoderOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(marker byte) {
			defer wg.Done()
			markers := bytes.Repeat([]byte{marker}, 6)
			raw := testutil.Concat(
				testutil.ScanlineMarkers(8, markers),
				testutil.DepthSegment(8, 6, binary.LittleEndian, func(int, int) float32 { return float32(marker) }),
			)
			for i := 0; i < 50; i++ {
				obs, err := d.Decode(raw)
				if err != nil {
					t.Errorf("decode: %v", err)
					return
				}
				if obs.Color.At(0, 0, 0) != marker || obs.Depth.At(5, 7) != float32(marker) {
					t.Errorf("goroutine %d saw foreign data", marker)
					return
				}
			}
		}(byte(g))
	}
	wg.Wait()
}

func TestColorFrame_RGBA(t *testing.T) {
	t.Parallel()

	f := NewColorFrame(2, 1)
	copy(f.Pix, []uint8{1, 2, 3, 4, 5, 6})
	img := f.RGBA()
	assert.Equal(t, []uint8{1, 2, 3, 255, 4, 5, 6, 255}, img.Pix)
}

func TestDecode_LogStreams(t *testing.T) {
	// Mutates package loggers; not parallel.
	var ops, diag, trace bytes.Buffer
	SetLogWriters(&ops, &diag, &trace)
	defer SetLogWriters(nil, nil, nil)

	cfg := mustPOV(t, 2, 2, false)
	_, _ = Decode(nil, cfg)
	_, _ = Decode(make([]byte, 12), cfg)
	_, _ = Decode(make([]byte, 3), cfg)

	assert.Contains(t, diag.String(), "empty buffer")
	assert.Contains(t, trace.String(), "decoded")
	assert.Contains(t, ops.String(), "malformed")
}
