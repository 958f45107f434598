package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bamsammich/pipemeter/internal/stats"
)

// plainPresenter writes one progress line per interval, for stderr that is
// not a terminal (logs, CI).
type plainPresenter struct {
	mu       sync.Mutex
	w        io.Writer
	prog     string
	stats    stats.ReadTicker
	interval time.Duration
}

func (p *plainPresenter) Run(events <-chan Event) error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	draw := time.NewTicker(p.interval)
	defer draw.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-tick.C:
			p.stats.Tick()
		case <-draw.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case SizeReached:
		p.mu.Lock()
		fmt.Fprintf(p.w, "%s: stopped after %s\n", p.prog, formatDone(p.stats.Snapshot()))
		p.mu.Unlock()
	case SizeEstimated, InputOpened, InputFinished, InputFailed:
		// progress lines read the collector; diagnostics arrive via Report
	}
}

func (p *plainPresenter) printProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, progressLine(p.stats))
}

// progressLine renders the non-interactive progress text.
func progressLine(r stats.Reader) string {
	snap := r.Snapshot()
	speed := formatSpeed(r.RollingSpeed(10), snap.LineMode)
	line := fmt.Sprintf("progress: %s", formatDone(snap))
	if frac, ok := snap.Fraction(); ok {
		line += fmt.Sprintf(" (%.0f%%) %s eta %s", frac*100, speed, FormatETA(r.ETA()))
	} else {
		line += " " + speed
	}
	if snap.CurrentInput != "" {
		line += "  " + snap.CurrentInput
	}
	return line
}

func (p *plainPresenter) Report(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: %s\n", p.prog, msg)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
