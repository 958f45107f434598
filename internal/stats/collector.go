package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Reader is the read-only view presenters use.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	ETA() time.Duration
	History(n int) []float64
}

// ReadTicker is a Reader that presenters also drive once per second.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks transfer statistics using lock-free atomic counters.
type Collector struct {
	bytesWritten atomic.Int64
	linesWritten atomic.Int64
	inputsOpened atomic.Int64
	inputsFailed atomic.Int64
	total        atomic.Int64 // bytes, or lines in line mode; 0 = unknown
	lineMode     atomic.Bool
	currentInput atomic.Value // string
	startTime    time.Time

	// Ring buffer, written only by the presenter's Tick().
	mu         sync.Mutex
	throughput [ringSize]int64 // units delta per second
	ringIdx    int
	ringCount  int
	lastUnits  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	c := &Collector{startTime: time.Now()}
	c.currentInput.Store("")
	return c
}

// SetTotal records the estimated total. lineMode selects whether progress is
// measured in lines or bytes; total 0 means unknown.
func (c *Collector) SetTotal(total int64, lineMode bool) {
	c.total.Store(total)
	c.lineMode.Store(lineMode)
}

// SetCurrentInput records the display name of the input being read.
func (c *Collector) SetCurrentInput(name string) { c.currentInput.Store(name) }

func (c *Collector) AddBytes(n int64)        { c.bytesWritten.Add(n) }
func (c *Collector) AddLines(n int64)        { c.linesWritten.Add(n) }
func (c *Collector) AddInputsOpened(n int64) { c.inputsOpened.Add(n) }
func (c *Collector) AddInputsFailed(n int64) { c.inputsFailed.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesWritten int64
	LinesWritten int64
	InputsOpened int64
	InputsFailed int64
	Total        int64
	LineMode     bool
	CurrentInput string
	Elapsed      time.Duration
}

// Done returns progress in the unit the total is measured in.
func (s Snapshot) Done() int64 {
	if s.LineMode {
		return s.LinesWritten
	}
	return s.BytesWritten
}

// Fraction returns completed/total in [0,1], and false when the total is unknown.
func (s Snapshot) Fraction() (float64, bool) {
	if s.Total <= 0 {
		return 0, false
	}
	f := float64(s.Done()) / float64(s.Total)
	return min(max(f, 0), 1), true
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	cur, _ := c.currentInput.Load().(string) //nolint:errcheck // always a string
	return Snapshot{
		BytesWritten: c.bytesWritten.Load(),
		LinesWritten: c.linesWritten.Load(),
		InputsOpened: c.inputsOpened.Load(),
		InputsFailed: c.inputsFailed.Load(),
		Total:        c.total.Load(),
		LineMode:     c.lineMode.Load(),
		CurrentInput: cur,
		Elapsed:      c.Elapsed(),
	}
}

func (c *Collector) done() int64 {
	if c.lineMode.Load() {
		return c.linesWritten.Load()
	}
	return c.bytesWritten.Load()
}

// Tick snapshots the progress delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.done()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastUnits
	c.lastUnits = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average units/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// History returns up to n per-second samples, oldest first.
func (c *Collector) History(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	out := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = float64(c.throughput[idx])
	}
	return out
}

// AverageSpeed returns units/sec since the collector was created.
func (c *Collector) AverageSpeed() float64 {
	secs := c.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(c.done()) / secs
}

// ETA estimates remaining time from the rolling speed. Zero means unknown.
func (c *Collector) ETA() time.Duration {
	total := c.total.Load()
	if total <= 0 {
		return 0
	}
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := total - c.done()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / speed * float64(time.Second))
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"bytes=%d lines=%d inputs=%d failed=%d total=%d",
		s.BytesWritten, s.LinesWritten, s.InputsOpened, s.InputsFailed, s.Total,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
