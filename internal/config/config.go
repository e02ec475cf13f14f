package config

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/povframe/internal/observation"
)

// DefaultConfigPath is the path to the example decoder configuration.
const DefaultConfigPath = "config/povdecode.defaults.json"

// ObservationSpec is one requested observation handler.
type ObservationSpec struct {
	Kind         string `json:"kind"` // "pov" or "depth"
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	IncludeDepth bool   `json:"include_depth,omitempty"` // pov only
}

// DecodeConfig is the root configuration for the povdecode tool.
// Fields omitted from the JSON file fall back to the Get* defaults.
type DecodeConfig struct {
	Observations []ObservationSpec `json:"observations,omitempty"`

	// Wire format
	ByteOrder      *string `json:"byte_order,omitempty"`      // "little" or "big"
	CameraMatrices *string `json:"camera_matrices,omitempty"` // "none" or "v1"

	// Outputs
	StorePath     *string `json:"store_path,omitempty"`
	PlotDir       *string `json:"plot_dir,omitempty"`
	StatsInterval *int    `json:"stats_interval,omitempty"` // frames between stats reports
	ReplayTimeout *string `json:"replay_timeout,omitempty"` // duration string like "30s"
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyDecodeConfig returns a DecodeConfig with all fields unset.
func EmptyDecodeConfig() *DecodeConfig {
	return &DecodeConfig{}
}

// LoadDecodeConfig loads a DecodeConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadDecodeConfig(path string) (*DecodeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDecodeConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *DecodeConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/povdecode/
	}
	for _, path := range candidates {
		if cfg, err := LoadDecodeConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *DecodeConfig) Validate() error {
	cfgs, err := c.ObservationConfigs()
	if err != nil {
		return err
	}

	if c.ByteOrder != nil {
		switch *c.ByteOrder {
		case "", "little", "big":
		default:
			return fmt.Errorf("byte_order must be \"little\" or \"big\", got %q", *c.ByteOrder)
		}
	}

	if c.CameraMatrices != nil {
		version, err := observation.ParseMatrixVersion(*c.CameraMatrices)
		if err != nil {
			return fmt.Errorf("camera_matrices: %w", err)
		}
		if version == observation.MatricesV1 {
			for _, oc := range cfgs {
				if oc.Modality() != observation.ModalityColorDepth {
					return fmt.Errorf("camera_matrices %s requires every observation to be kind \"pov\" with include_depth, got %s", version, oc)
				}
			}
		}
	}

	if c.StatsInterval != nil && *c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must be non-negative, got %d", *c.StatsInterval)
	}

	if c.ReplayTimeout != nil && *c.ReplayTimeout != "" {
		if _, err := time.ParseDuration(*c.ReplayTimeout); err != nil {
			return fmt.Errorf("invalid replay_timeout '%s': %w", *c.ReplayTimeout, err)
		}
	}

	return nil
}

// ObservationConfigs builds the requested handlers, merging duplicates of
// the same kind. Requests that disagree fail with an
// IncompatibleObservablesError.
func (c *DecodeConfig) ObservationConfigs() ([]observation.Config, error) {
	cfgs := make([]observation.Config, 0, len(c.Observations))
	for i, spec := range c.Observations {
		var (
			oc  observation.Config
			err error
		)
		switch spec.Kind {
		case string(observation.KindPOV):
			oc, err = observation.NewPOVConfig(spec.Width, spec.Height, spec.IncludeDepth)
		case string(observation.KindDepth):
			if spec.IncludeDepth {
				return nil, fmt.Errorf("observations[%d]: include_depth is only valid for kind \"pov\"", i)
			}
			oc, err = observation.NewDepthConfig(spec.Width, spec.Height)
		default:
			return nil, fmt.Errorf("observations[%d]: unknown kind %q", i, spec.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("observations[%d]: %w", i, err)
		}
		cfgs = append(cfgs, oc)
	}
	return observation.MergeAll(cfgs)
}

// DecoderOptions maps the wire-format settings onto decoder options.
func (c *DecodeConfig) DecoderOptions() observation.DecoderOptions {
	opts := observation.DecoderOptions{ByteOrder: binary.LittleEndian}
	if c.GetByteOrder() == "big" {
		opts.ByteOrder = binary.BigEndian
	}
	// Validate has already rejected unknown versions.
	opts.Matrices, _ = observation.ParseMatrixVersion(c.GetCameraMatrices())
	return opts
}

// GetByteOrder returns the byte_order value or the default.
func (c *DecodeConfig) GetByteOrder() string {
	if c.ByteOrder == nil || *c.ByteOrder == "" {
		return "little" // default
	}
	return *c.ByteOrder
}

// GetCameraMatrices returns the camera_matrices value or the default.
func (c *DecodeConfig) GetCameraMatrices() string {
	if c.CameraMatrices == nil || *c.CameraMatrices == "" {
		return "none" // default
	}
	return *c.CameraMatrices
}

// GetStorePath returns the store_path value. Empty disables recording.
func (c *DecodeConfig) GetStorePath() string {
	if c.StorePath == nil {
		return ""
	}
	return *c.StorePath
}

// GetPlotDir returns the plot_dir value. Empty disables image export.
func (c *DecodeConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return ""
	}
	return *c.PlotDir
}

// GetStatsInterval returns the stats_interval value or the default.
func (c *DecodeConfig) GetStatsInterval() int {
	if c.StatsInterval == nil {
		return 100 // default
	}
	return *c.StatsInterval
}

// GetReplayTimeout parses and returns the ReplayTimeout as a time.Duration.
func (c *DecodeConfig) GetReplayTimeout() time.Duration {
	if c.ReplayTimeout == nil || *c.ReplayTimeout == "" {
		return 30 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ReplayTimeout)
	if err != nil {
		return 30 * time.Second // default on parse error
	}
	return d
}
