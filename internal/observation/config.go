package observation

import "fmt"

// Modality selects which channels a handler produces.
type Modality int

const (
	ModalityColor Modality = iota + 1
	ModalityDepth
	ModalityColorDepth
)

func (m Modality) String() string {
	switch m {
	case ModalityColor:
		return "color"
	case ModalityDepth:
		return "depth"
	case ModalityColorDepth:
		return "color+depth"
	default:
		return fmt.Sprintf("Modality(%d)", int(m))
	}
}

// Kind is the handler family a modality belongs to. Configs of different
// kinds are never merge-compatible.
type Kind string

const (
	KindPOV   Kind = "pov"
	KindDepth Kind = "depth"
)

// Kind returns the handler family of m.
func (m Modality) Kind() Kind {
	if m == ModalityDepth {
		return KindDepth
	}
	return KindPOV
}

// Config is an immutable observation handler configuration. The zero
// value is not valid; use NewPOVConfig, NewDepthConfig or NewConfig.
type Config struct {
	modality Modality
	width    int
	height   int
}

// NewConfig validates and builds a Config for the given modality.
func NewConfig(m Modality, width, height int) (Config, error) {
	switch m {
	case ModalityColor, ModalityDepth, ModalityColorDepth:
	default:
		return Config{}, &ConfigError{Reason: fmt.Sprintf("unknown modality %v", m)}
	}
	if err := checkDimensions(width, height); err != nil {
		return Config{}, err
	}
	return Config{modality: m, width: width, height: height}, nil
}

// NewPOVConfig builds a point-of-view config, optionally carrying depth.
func NewPOVConfig(width, height int, includeDepth bool) (Config, error) {
	m := ModalityColor
	if includeDepth {
		m = ModalityColorDepth
	}
	return NewConfig(m, width, height)
}

// NewDepthConfig builds a pure-depth config.
func NewDepthConfig(width, height int) (Config, error) {
	return NewConfig(ModalityDepth, width, height)
}

func (c Config) Modality() Modality { return c.modality }
func (c Config) Kind() Kind         { return c.modality.Kind() }
func (c Config) Width() int         { return c.width }
func (c Config) Height() int        { return c.height }

// IncludeDepth reports whether decoded observations carry a depth frame.
func (c Config) IncludeDepth() bool {
	return c.modality == ModalityDepth || c.modality == ModalityColorDepth
}

// HasColor reports whether decoded observations carry a color frame.
func (c Config) HasColor() bool {
	return c.modality == ModalityColor || c.modality == ModalityColorDepth
}

// Valid reports whether c was produced by one of the constructors.
func (c Config) Valid() bool {
	return c.modality != 0 && c.width > 0 && c.height > 0
}

// Equal reports whether both configs describe the same observation.
func (c Config) Equal(other Config) bool {
	return c.modality == other.modality && c.width == other.width && c.height == other.height
}

// String is the diagnostic identity of the handler. It is not parsed.
func (c Config) String() string {
	switch c.Kind() {
	case KindDepth:
		return fmt.Sprintf("DepthObservation(video_resolution=[%d %d]):%s", c.width, c.height, KindDepth)
	default:
		s := fmt.Sprintf("POVObservation(video_resolution=[%d %d]", c.width, c.height)
		if c.modality == ModalityColorDepth {
			s += ", include_depth=true"
		}
		return s + "):" + string(KindPOV)
	}
}
