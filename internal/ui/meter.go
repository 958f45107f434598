package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bamsammich/pipemeter/internal/stats"
)

const (
	clearLine   = "\r\033[K"
	minBarWidth = 8
	maxNameLen  = 24
)

// meterPresenter redraws a single status line on the terminal:
//
//	name  1.2 MiB 0:00:03 [412 KiB/s] [▪▪▪▪□□□□]  45% ETA 0:00:04
//
// With an unknown total the bar is replaced by a throughput sparkline.
type meterPresenter struct {
	mu       sync.Mutex
	w        io.Writer
	prog     string
	stats    stats.ReadTicker
	interval time.Duration
	width    int
	drawn    bool
}

func (p *meterPresenter) Run(events <-chan Event) error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	draw := time.NewTicker(p.interval)
	defer draw.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.finish()
				return nil
			}
			if ev.Type == InputOpened || ev.Type == SizeEstimated {
				p.redraw()
			}
		case <-tick.C:
			p.stats.Tick()
		case <-draw.C:
			p.redraw()
		}
	}
}

func (p *meterPresenter) redraw() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, clearLine+p.render())
	p.drawn = true
}

// finish leaves the final state of the meter on screen.
func (p *meterPresenter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, clearLine+p.render()+"\n")
	p.drawn = false
}

// Report clears the meter, prints the message, and redraws the meter below it.
func (p *meterPresenter) Report(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprint(p.w, clearLine)
	}
	fmt.Fprintf(p.w, "%s: %s\n", p.prog, msg)
	if p.drawn {
		fmt.Fprint(p.w, p.render())
	}
}

func (p *meterPresenter) Summary() string {
	return ""
}

func (p *meterPresenter) render() string {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(5)
	if speed == 0 && snap.Elapsed > 0 {
		speed = float64(snap.Done()) / snap.Elapsed.Seconds()
	}

	var head strings.Builder
	if name := truncateName(snap.CurrentInput, maxNameLen); name != "" {
		head.WriteString(name)
		head.WriteString("  ")
	}
	fmt.Fprintf(&head, "%s %s [%s] ",
		formatDone(snap),
		FormatClock(snap.Elapsed),
		formatSpeed(speed, snap.LineMode),
	)

	frac, known := snap.Fraction()
	tail := ""
	if known {
		tail = fmt.Sprintf(" %3.0f%% ETA %s", frac*100, FormatETA(p.stats.ETA()))
	}

	barWidth := p.width - utf8.RuneCountInString(head.String()) - len(tail) - 3
	if barWidth < minBarWidth {
		return strings.TrimRight(head.String(), " ") + tail
	}
	if known {
		return head.String() + "[" + ProgressBar(frac, barWidth) + "]" + tail
	}
	return head.String() + "[" + Sparkline(p.stats.History(barWidth), barWidth) + "]"
}

// truncateName shortens s to at most n runes, keeping the tail.
func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
