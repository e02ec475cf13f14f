// Command povdecode decodes raw video-producer frame dumps into observation
// frames, reports per-frame statistics, and optionally exports images or
// records the buffers for later replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/povframe/internal/config"
	"github.com/banshee-data/povframe/internal/framestore"
	"github.com/banshee-data/povframe/internal/monitoring"
	"github.com/banshee-data/povframe/internal/observation"
	"github.com/banshee-data/povframe/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON decode config (overrides -width/-height/-depth)")
	width       = flag.Int("width", 64, "Frame width in pixels")
	height      = flag.Int("height", 64, "Frame height in pixels")
	withDepth   = flag.Bool("depth", false, "Frames carry a depth segment after the color segment")
	depthOnly   = flag.Bool("depth-only", false, "Frames carry only a depth segment")
	byteOrder   = flag.String("byte-order", "little", "Byte order of depth floats: little or big")
	matrices    = flag.String("matrices", "none", "Camera matrix tail version to decode: none or v1")
	outDir      = flag.String("out", "", "Directory for PNG and depth heatmap exports (disabled if empty)")
	dbPath      = flag.String("db", "", "Path to the SQLite frame store")
	record      = flag.Bool("record", false, "Record each input buffer into -db once per observation that decodes it, so replay reproduces every observation")
	label       = flag.String("label", "", "Label for the recorded session")
	replay      = flag.String("replay", "", "Replay a recorded session ID from -db instead of reading files")
	verbose     = flag.Int("v", 0, "Log verbosity: 0 ops, 1 diag, 2 trace")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("povdecode"))
		return
	}

	setupLogging(os.Stderr, *verbose)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(w io.Writer, level int) {
	var diag, trace io.Writer
	if level >= 1 {
		diag = w
	}
	if level >= 2 {
		trace = w
	}
	observation.SetLogWriters(w, diag, trace)
	monitoring.SetLogWriters(w, diag, trace)
	framestore.SetLogWriters(w, diag)
}

// loadConfig reads -config, or assembles the equivalent config from flags.
func loadConfig() (*config.DecodeConfig, error) {
	if *configPath != "" {
		return config.LoadDecodeConfig(*configPath)
	}
	return flagConfig(*width, *height, *withDepth, *depthOnly, *byteOrder, *matrices, *outDir, *dbPath)
}

func flagConfig(w, h int, depth, depthOnly bool, order, matrixVersion, out, db string) (*config.DecodeConfig, error) {
	if depth && depthOnly {
		return nil, fmt.Errorf("-depth and -depth-only are mutually exclusive")
	}
	spec := config.ObservationSpec{Kind: string(observation.KindPOV), Width: w, Height: h, IncludeDepth: depth}
	if depthOnly {
		spec = config.ObservationSpec{Kind: string(observation.KindDepth), Width: w, Height: h}
	}
	cfg := &config.DecodeConfig{
		Observations:   []config.ObservationSpec{spec},
		ByteOrder:      &order,
		CameraMatrices: &matrixVersion,
		PlotDir:        &out,
		StorePath:      &db,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.DecodeConfig, files []string, out io.Writer) error {
	obsCfgs, err := cfg.ObservationConfigs()
	if err != nil {
		return err
	}
	if len(obsCfgs) == 0 {
		return fmt.Errorf("no observations configured")
	}

	var store *framestore.Store
	if path := cfg.GetStorePath(); path != "" {
		if store, err = framestore.Open(path); err != nil {
			return err
		}
		defer store.Close()
	}

	if *replay != "" {
		if store == nil {
			return fmt.Errorf("-replay requires -db or store_path")
		}
		rctx, cancel := context.WithTimeout(ctx, cfg.GetReplayTimeout())
		defer cancel()
		return replaySession(rctx, store, *replay, cfg, out)
	}

	if len(files) == 0 {
		return fmt.Errorf("no frame files given")
	}

	var session string
	if *record {
		if store == nil {
			return fmt.Errorf("-record requires -db or store_path")
		}
		if session, err = store.NewSession(ctx, *label); err != nil {
			return err
		}
		fmt.Fprintf(out, "session %s\n", session)
	}

	type handler struct {
		dec *observation.Decoder
		mon *monitoring.Monitor
	}
	handlers := make([]handler, 0, len(obsCfgs))
	for _, oc := range obsCfgs {
		dec, err := observation.NewDecoder(oc, cfg.DecoderOptions())
		if err != nil {
			return err
		}
		handlers = append(handlers, handler{dec: dec, mon: monitoring.NewMonitor(oc.String(), cfg.GetStatsInterval())})
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}
		for _, h := range handlers {
			obs, err := h.dec.Decode(raw)
			h.mon.Observe(monitoring.ComputeStats(obs), err)
			if err != nil {
				fmt.Fprintf(out, "%s %s: error: %v\n", file, h.dec.Config(), err)
				continue
			}
			report(out, file, obs)
			if err := export(cfg.GetPlotDir(), file, obs); err != nil {
				return err
			}
			// One record per handler: each carries the config replay decodes it with.
			if session != "" {
				if _, err := store.SaveFrame(ctx, session, h.dec.Config(), raw, time.Now()); err != nil {
					return err
				}
			}
		}
	}

	failed := 0
	for _, h := range handlers {
		s := h.mon.Summary()
		fmt.Fprintf(out, "summary %s: %d frames, %d zero, %d errors\n", s.Name, s.Frames, s.ZeroFrames, s.Errors)
		failed += s.Errors
	}
	if failed > 0 {
		return fmt.Errorf("%d frames failed to decode", failed)
	}
	return nil
}

func replaySession(ctx context.Context, store *framestore.Store, session string, cfg *config.DecodeConfig, out io.Writer) error {
	return store.Replay(ctx, session, cfg.DecoderOptions(), func(rec *framestore.FrameRecord, obs *observation.Observation) error {
		name := fmt.Sprintf("frame-%04d", rec.Seq)
		report(out, name, obs)
		return export(cfg.GetPlotDir(), name, obs)
	})
}

func report(out io.Writer, name string, obs *observation.Observation) {
	fmt.Fprintf(out, "%s %s: %s\n", name, obs.Config, monitoring.ComputeStats(obs))
	if obs.Matrices != nil {
		vp := obs.Matrices.ViewProjection()
		fmt.Fprintf(out, "%s view-projection diag: [%.4f %.4f %.4f %.4f]\n",
			name, vp.At(0, 0), vp.At(1, 1), vp.At(2, 2), vp.At(3, 3))
	}
}

// export writes <dir>/<base>.<kind>.png and, with depth, a heatmap.
func export(dir, name string, obs *observation.Observation) error {
	if dir == "" {
		return nil
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	prefix := filepath.Join(dir, base+"."+string(obs.Config.Kind()))

	if obs.Color != nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		f, err := os.Create(prefix + ".png")
		if err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}
		if err := png.Encode(f, obs.Color.RGBA()); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode image: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if obs.Depth != nil && obs.Depth.Width > 1 && obs.Depth.Height > 1 {
		if err := monitoring.WriteDepthHeatmap(obs.Depth, obs.Config.String(), prefix+".depth.png"); err != nil {
			return err
		}
	}
	return nil
}
