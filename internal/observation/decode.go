package observation

import (
	"encoding/binary"
	"math"
)

// DecoderOptions tunes how the wire buffer is interpreted. The zero value
// decodes little-endian depth and ignores the camera-matrix tail.
type DecoderOptions struct {
	ByteOrder binary.ByteOrder
	Matrices  MatrixVersion
}

// Decoder decodes buffers for a single Config. It holds no mutable state
// and may be shared between goroutines.
type Decoder struct {
	cfg    Config
	layout Layout
	order  binary.ByteOrder
	matrix MatrixVersion
}

// NewDecoder validates cfg and opts and precomputes the buffer layout.
func NewDecoder(cfg Config, opts DecoderOptions) (*Decoder, error) {
	layout, err := LayoutFor(cfg)
	if err != nil {
		return nil, err
	}
	switch opts.Matrices {
	case MatricesNone:
	case MatricesV1:
		if cfg.Modality() != ModalityColorDepth {
			return nil, &ConfigError{Reason: "camera matrices " + opts.Matrices.String() + " require the color+depth modality, got " + cfg.Modality().String()}
		}
	default:
		return nil, &ConfigError{Field: "matrices", Value: int(opts.Matrices), Reason: "unknown camera matrix version"}
	}
	order := opts.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	diagf("decoder ready: %s, %d bytes required, matrices=%s", cfg, layout.Required(), opts.Matrices)
	return &Decoder{cfg: cfg, layout: layout, order: order, matrix: opts.Matrices}, nil
}

// Decode decodes raw with default options. See (*Decoder).Decode.
func Decode(raw []byte, cfg Config) (*Observation, error) {
	d, err := NewDecoder(cfg, DecoderOptions{})
	if err != nil {
		return nil, err
	}
	return d.Decode(raw)
}

func (d *Decoder) Config() Config { return d.cfg }
func (d *Decoder) Layout() Layout { return d.layout }

// Required is the minimum length of a non-empty buffer for this decoder.
func (d *Decoder) Required() int {
	if d.matrix != MatricesNone {
		return d.layout.RequiredWithMatrices()
	}
	return d.layout.Required()
}

// Decode turns one raw frame buffer into an Observation.
//
// An empty buffer yields zero-filled frames: the engine produces no
// pixels when a frame is unavailable. A non-empty buffer shorter than
// Required fails with a MalformedBufferError. Bytes past the required
// segments are ignored. raw is only read during the call.
func (d *Decoder) Decode(raw []byte) (*Observation, error) {
	w, h := d.cfg.width, d.cfg.height
	obs := &Observation{Config: d.cfg}

	if len(raw) == 0 {
		diagf("empty buffer for %s, returning zero observation", d.cfg)
		if d.cfg.HasColor() {
			obs.Color = NewColorFrame(w, h)
		}
		if d.cfg.IncludeDepth() {
			obs.Depth = NewDepthFrame(w, h)
		}
		if d.matrix != MatricesNone {
			obs.Matrices = identityMatrices()
		}
		return obs, nil
	}

	if err := d.checkLength(len(raw)); err != nil {
		opsf("%v", err)
		return nil, err
	}

	l := d.layout
	if d.cfg.HasColor() {
		obs.Color = decodeColor(raw[l.ColorOffset:l.ColorOffset+l.ColorBytes], w, h)
	}
	if d.cfg.IncludeDepth() {
		obs.Depth = decodeDepth(raw[l.DepthOffset:l.DepthOffset+l.DepthBytes], w, h, d.order)
	}
	if d.matrix == MatricesV1 {
		obs.Matrices = decodeMatrices(raw[l.ReservedOffset:l.RequiredWithMatrices()], d.order)
	}

	tracef("decoded %s from %d bytes", d.cfg, len(raw))
	return obs, nil
}

func (d *Decoder) checkLength(n int) error {
	l := d.layout
	need := d.Required()
	if n >= need {
		return nil
	}
	segment := "matrices"
	switch {
	case d.cfg.HasColor() && n < l.ColorOffset+l.ColorBytes:
		segment = "color"
	case d.cfg.IncludeDepth() && n < l.DepthOffset+l.DepthBytes:
		segment = "depth"
	}
	return &MalformedBufferError{Config: d.cfg, Segment: segment, Need: need, Got: n}
}

// decodeColor copies a bottom-up (h, w, 3) segment into a top-down frame.
func decodeColor(seg []byte, w, h int) *ColorFrame {
	f := NewColorFrame(w, h)
	stride := w * ColorChannels
	for r := 0; r < h; r++ {
		src := seg[(h-1-r)*stride : (h-r)*stride]
		copy(f.Pix[r*stride:(r+1)*stride], src)
	}
	return f
}

// decodeDepth reads a bottom-up (h, w, 1) float32 segment into a top-down
// frame.
func decodeDepth(seg []byte, w, h int, order binary.ByteOrder) *DepthFrame {
	f := NewDepthFrame(w, h)
	stride := w * BytesPerDepthPixel
	for r := 0; r < h; r++ {
		src := seg[(h-1-r)*stride : (h-r)*stride]
		dst := f.Values[r*w : (r+1)*w]
		for c := range dst {
			dst[c] = math.Float32frombits(order.Uint32(src[c*BytesPerDepthPixel:]))
		}
	}
	return f
}
