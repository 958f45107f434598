package ui

import (
	"io"
	"time"

	"github.com/bamsammich/pipemeter/internal/stats"
)

// DefaultInterval is the redraw interval when none is configured.
const DefaultInterval = time.Second

// Presenter consumes events and displays progress. It also acts as the
// diagnostic reporter so messages do not interleave with a redrawn line.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Report prints a diagnostic message.
	Report(msg string)
	// Summary returns the final summary line, or "" when there is none.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer   io.Writer // progress and diagnostics; normally stderr
	Stats    stats.ReadTicker
	Program  string
	Interval time.Duration
	Width    int
	IsTTY    bool
	Quiet    bool
}

func (c Config) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultInterval
	}
	return c.Interval
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory
func NewPresenter(cfg Config) Presenter {
	if cfg.Program == "" {
		cfg.Program = "pipemeter"
	}
	if cfg.Quiet {
		return &quietPresenter{w: cfg.Writer, prog: cfg.Program}
	}
	if !cfg.IsTTY {
		return &plainPresenter{
			w:        cfg.Writer,
			prog:     cfg.Program,
			stats:    cfg.Stats,
			interval: cfg.interval(),
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &meterPresenter{
		w:        cfg.Writer,
		prog:     cfg.Program,
		stats:    cfg.Stats,
		interval: cfg.interval(),
		width:    width,
	}
}
