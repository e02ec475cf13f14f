package monitoring

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Monitor accumulates decode outcomes across frames. It is safe for
// concurrent use.
type Monitor struct {
	mu sync.Mutex

	name        string
	interval    int // frames between diag reports, 0 disables
	frames      int
	zeroFrames  int
	errors      int
	depthMeans  []float64
	lastStats   FrameStats
	lastErr     error
	sinceReport int
}

// Summary is a snapshot of a Monitor's counters.
type Summary struct {
	Name          string
	Frames        int
	ZeroFrames    int
	Errors        int
	MeanDepthMean float64 // mean of per-frame depth means, non-zero frames only
	LastError     error
}

// NewMonitor creates a monitor that logs a diag summary every interval
// frames.
func NewMonitor(name string, interval int) *Monitor {
	return &Monitor{name: name, interval: interval}
}

// Observe records the outcome of one decode call.
func (m *Monitor) Observe(stats FrameStats, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames++
	m.sinceReport++
	if err != nil {
		m.errors++
		m.lastErr = err
		opsf("%s: decode failed at frame %d: %v", m.name, m.frames, err)
	} else {
		m.lastStats = stats
		if stats.Zero {
			m.zeroFrames++
		} else if stats.HasDepth {
			m.depthMeans = append(m.depthMeans, stats.DepthMean)
		}
		tracef("%s: frame %d: %s", m.name, m.frames, stats)
	}

	if m.interval > 0 && m.sinceReport >= m.interval {
		m.sinceReport = 0
		s := m.summaryLocked()
		diagf("%s: %d frames, %d zero, %d errors", s.Name, s.Frames, s.ZeroFrames, s.Errors)
	}
}

// Summary returns the current counters.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

func (m *Monitor) summaryLocked() Summary {
	s := Summary{
		Name:       m.name,
		Frames:     m.frames,
		ZeroFrames: m.zeroFrames,
		Errors:     m.errors,
		LastError:  m.lastErr,
	}
	if len(m.depthMeans) > 0 {
		s.MeanDepthMean = stat.Mean(m.depthMeans, nil)
	}
	return s
}

// Last returns the statistics of the most recent successful frame.
func (m *Monitor) Last() FrameStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastStats
}
