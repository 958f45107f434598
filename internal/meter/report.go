package meter

import (
	"fmt"
	"io"
	"sync"
)

// Reporter receives user-visible diagnostics.
type Reporter interface {
	Report(msg string)
}

// ReporterFunc adapts a plain function to a Reporter.
type ReporterFunc func(msg string)

// Report calls f(msg).
func (f ReporterFunc) Report(msg string) { f(msg) }

// writerReporter prints "prog: msg" lines to w.
type writerReporter struct {
	mu   sync.Mutex
	w    io.Writer
	prog string
}

// NewWriterReporter returns a Reporter that writes one line per message to
// w, prefixed with prog.
func NewWriterReporter(w io.Writer, prog string) Reporter {
	return &writerReporter{w: w, prog: prog}
}

func (r *writerReporter) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s: %s\n", r.prog, msg)
}
