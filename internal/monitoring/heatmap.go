package monitoring

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/povframe/internal/observation"
)

// depthGrid adapts a DepthFrame to plotter.GridXYZ. Columns map to X and
// rows to Y, with row 0 (the top scanline) drawn at the top.
type depthGrid struct {
	f *observation.DepthFrame
}

func (g depthGrid) Dims() (c, r int) { return g.f.Width, g.f.Height }

func (g depthGrid) Z(c, r int) float64 {
	v := float64(g.f.At(g.f.Height-1-r, c))
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g depthGrid) X(c int) float64 { return float64(c) }
func (g depthGrid) Y(r int) float64 { return float64(r) }

// WriteDepthHeatmap renders f as a heatmap image. The format follows the
// file extension (png, svg, pdf, ...).
func WriteDepthHeatmap(f *observation.DepthFrame, title, path string) error {
	if f == nil || len(f.Values) == 0 {
		return fmt.Errorf("no depth frame to plot")
	}
	if f.Width < 2 || f.Height < 2 {
		return fmt.Errorf("depth frame %dx%d too small to plot", f.Width, f.Height)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create plot dir: %w", err)
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row (bottom = last scanline)"

	hm := plotter.NewHeatMap(depthGrid{f: f}, palette.Heat(32, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	// Keep the aspect ratio of the frame, 4 inches on the long side.
	w, h := 4*vg.Inch, 4*vg.Inch
	if f.Width > f.Height {
		h = vg.Length(float64(w) * float64(f.Height) / float64(f.Width))
	} else if f.Height > f.Width {
		w = vg.Length(float64(h) * float64(f.Width) / float64(f.Height))
	}
	if err := p.Save(w+vg.Inch, h+vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save heatmap %s: %w", path, err)
	}
	diagf("wrote depth heatmap %s", path)
	return nil
}
