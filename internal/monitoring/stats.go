package monitoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/povframe/internal/observation"
)

// FrameStats summarises one decoded observation.
type FrameStats struct {
	HasColor  bool
	ColorMean [3]float64 // per channel, in source channel order

	HasDepth    bool
	DepthMin    float64
	DepthMax    float64
	DepthMean   float64
	DepthStdDev float64
	DepthNaNs   int

	// Zero is set when every sample is zero, which is what the decoder
	// returns for an empty buffer.
	Zero bool
}

// ComputeStats returns statistics for obs. A nil observation yields the
// zero FrameStats.
func ComputeStats(obs *observation.Observation) FrameStats {
	var s FrameStats
	if obs == nil {
		return s
	}
	zero := true

	if f := obs.Color; f != nil && len(f.Pix) > 0 {
		s.HasColor = true
		n := len(f.Pix) / observation.ColorChannels
		var sums [3]float64
		for i, v := range f.Pix {
			sums[i%observation.ColorChannels] += float64(v)
			if v != 0 {
				zero = false
			}
		}
		for ch := range sums {
			s.ColorMean[ch] = sums[ch] / float64(n)
		}
	}

	if f := obs.Depth; f != nil && len(f.Values) > 0 {
		s.HasDepth = true
		vals := make([]float64, 0, len(f.Values))
		for _, v := range f.Values {
			if v != 0 {
				zero = false
			}
			if math.IsNaN(float64(v)) {
				s.DepthNaNs++
				continue
			}
			vals = append(vals, float64(v))
		}
		if len(vals) > 0 {
			s.DepthMin = floats.Min(vals)
			s.DepthMax = floats.Max(vals)
			s.DepthMean, s.DepthStdDev = stat.MeanStdDev(vals, nil)
			if len(vals) == 1 {
				s.DepthStdDev = 0
			}
		}
	}

	s.Zero = zero && (s.HasColor || s.HasDepth)
	return s
}

func (s FrameStats) String() string {
	out := ""
	if s.HasColor {
		out = fmt.Sprintf("color mean=(%.1f, %.1f, %.1f)", s.ColorMean[0], s.ColorMean[1], s.ColorMean[2])
	}
	if s.HasDepth {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("depth min=%.4f max=%.4f mean=%.4f sd=%.4f", s.DepthMin, s.DepthMax, s.DepthMean, s.DepthStdDev)
		if s.DepthNaNs > 0 {
			out += fmt.Sprintf(" nan=%d", s.DepthNaNs)
		}
	}
	if s.Zero {
		out += " (zero frame)"
	}
	return out
}
