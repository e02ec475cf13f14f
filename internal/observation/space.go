package observation

import (
	"fmt"
	"slices"
)

// DType is the element type declared by a Box.
type DType string

const (
	Uint8   DType = "uint8"
	Float32 DType = "float32"
)

// Box declares the shape, element type and inclusive bounds of one array.
type Box struct {
	Shape []int
	DType DType
	Low   float64
	High  float64
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%g, %g, %v, %s)", b.Low, b.High, b.Shape, b.DType)
}

// Space is the declared output of a handler: a single Box for color-only
// and pure-depth handlers, a (color, depth) tuple for color+depth.
type Space struct {
	boxes []Box
	tuple bool
}

// Describe returns the space declared for cfg. Shapes use (height, width,
// channels) axis order.
//
// The pure-depth space is bounded [0, 255] while the depth half of the
// color+depth tuple is bounded [0, 1]. Both are kept as published.
func Describe(cfg Config) Space {
	h, w := cfg.height, cfg.width
	color := Box{Shape: []int{h, w, ColorChannels}, DType: Uint8, Low: 0, High: 255}
	switch cfg.modality {
	case ModalityDepth:
		return Space{boxes: []Box{{Shape: []int{h, w, 1}, DType: Float32, Low: 0, High: 255}}}
	case ModalityColorDepth:
		depth := Box{Shape: []int{h, w, 1}, DType: Float32, Low: 0, High: 1}
		return Space{boxes: []Box{color, depth}, tuple: true}
	default:
		return Space{boxes: []Box{color}}
	}
}

// IsTuple reports whether the space is a (color, depth) pair.
func (s Space) IsTuple() bool { return s.tuple }

// Boxes returns a copy of the declared boxes in output order.
func (s Space) Boxes() []Box {
	out := make([]Box, len(s.boxes))
	for i, b := range s.boxes {
		b.Shape = slices.Clone(b.Shape)
		out[i] = b
	}
	return out
}

// Color returns the color box, if the space declares one.
func (s Space) Color() (Box, bool) {
	for _, b := range s.boxes {
		if b.DType == Uint8 {
			b.Shape = slices.Clone(b.Shape)
			return b, true
		}
	}
	return Box{}, false
}

// Depth returns the depth box, if the space declares one.
func (s Space) Depth() (Box, bool) {
	for _, b := range s.boxes {
		if b.DType == Float32 {
			b.Shape = slices.Clone(b.Shape)
			return b, true
		}
	}
	return Box{}, false
}

func (s Space) String() string {
	if s.tuple {
		return fmt.Sprintf("Tuple(%s, %s)", s.boxes[0], s.boxes[1])
	}
	if len(s.boxes) == 0 {
		return "Space()"
	}
	return s.boxes[0].String()
}

// Contains checks that obs has the frames, shapes and value ranges the
// space declares. It returns the first violation found.
func (s Space) Contains(obs *Observation) error {
	if obs == nil {
		return fmt.Errorf("nil observation")
	}
	if b, ok := s.Color(); ok {
		if obs.Color == nil {
			return fmt.Errorf("missing color frame for %s", b)
		}
		if !slices.Equal(obs.Color.Shape(), b.Shape) {
			return fmt.Errorf("color shape %v does not match %v", obs.Color.Shape(), b.Shape)
		}
		for i, v := range obs.Color.Pix {
			if float64(v) < b.Low || float64(v) > b.High {
				return fmt.Errorf("color value %d at index %d outside [%g, %g]", v, i, b.Low, b.High)
			}
		}
	} else if obs.Color != nil {
		return fmt.Errorf("unexpected color frame")
	}

	if b, ok := s.Depth(); ok {
		if obs.Depth == nil {
			return fmt.Errorf("missing depth frame for %s", b)
		}
		if !slices.Equal(obs.Depth.Shape(), b.Shape) {
			return fmt.Errorf("depth shape %v does not match %v", obs.Depth.Shape(), b.Shape)
		}
		for i, v := range obs.Depth.Values {
			// NaN fails both comparisons, so test the inverse.
			if !(float64(v) >= b.Low && float64(v) <= b.High) {
				return fmt.Errorf("depth value %g at index %d outside [%g, %g]", v, i, b.Low, b.High)
			}
		}
	} else if obs.Depth != nil {
		return fmt.Errorf("unexpected depth frame")
	}
	return nil
}
