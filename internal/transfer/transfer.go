// Package transfer copies the inputs of a meter.State to its output,
// feeding a stats.Collector and an event stream for progress display.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"hash"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/pipemeter/internal/event"
	"github.com/bamsammich/pipemeter/internal/meter"
	"github.com/bamsammich/pipemeter/internal/stats"
)

const bufferSize = 128 << 10

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// Options configures a transfer.
type Options struct {
	// Size overrides the estimated total when positive (bytes, or lines in
	// line mode).
	Size int64
	// StopAtSize stops the transfer once Size has been written.
	StopAtSize bool
	// RateLimit caps throughput in bytes per second; 0 is unlimited.
	RateLimit int64
	// Hash names a digest of the transferred stream: "", "blake3" or "xxhash".
	Hash string

	Stats  *stats.Collector
	Events chan<- event.Event
}

// Result is the outcome of a transfer. Per-input failures are recorded in
// the State's Status, not in Err.
type Result struct {
	Total   meter.Size
	Written int64
	Lines   int64
	Digest  string
	// Stopped is true when the transfer ended at the size limit.
	Stopped bool
	// Err is set for invalid options, cancellation, or a failed write.
	Err error
}

// outputError marks a failed write; the transfer cannot continue after it.
type outputError struct{ err error }

func (e *outputError) Error() string { return "write: " + e.err.Error() }
func (e *outputError) Unwrap() error { return e.err }

type runner struct {
	st        *meter.State
	out       io.Writer
	digest    hash.Hash
	limiter   *rate.Limiter
	collector *stats.Collector
	events    chan<- event.Event
	delim     byte

	limit   int64 // stop after this many bytes (lines in line mode); 0 = none
	written int64
	lines   int64
}

// Run sizes the inputs, then opens each in order and copies it to
// st.Stdout. An input that cannot be opened is skipped; the reason is
// already reported and recorded in st.Status. Run blocks until all inputs
// are copied, the size limit is reached, ctx is cancelled, or a write fails.
func Run(ctx context.Context, st *meter.State, opts Options) Result {
	digest, err := newDigest(opts.Hash)
	if err != nil {
		return Result{Err: err}
	}

	collector := opts.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	// The loop compares descriptors against st.Stdin, so it must be the
	// same *os.File that NextFile hands back for StdinPath.
	if st.Stdin == nil {
		st.Stdin = os.Stdin
	}
	if st.Stdout == nil {
		st.Stdout = os.Stdout
	}

	total := st.TotalSize()
	if opts.Size > 0 {
		total = meter.KnownSize(uint64(opts.Size))
		if opts.StopAtSize {
			st.StopAtSize = true
		}
	}

	var totalUnits int64
	if total.Known {
		totalUnits = int64(min(total.N, uint64(1<<63-1)))
	}
	collector.SetTotal(totalUnits, st.LineMode)

	r := &runner{
		st:        st,
		out:       st.Stdout,
		digest:    digest,
		collector: collector,
		events:    opts.Events,
		delim:     '\n',
	}
	if digest != nil {
		r.out = io.MultiWriter(r.out, digest)
	}
	if st.NullDelimited {
		r.delim = 0
	}
	if opts.RateLimit > 0 {
		r.limiter = NewRateLimiter(opts.RateLimit)
	}
	if st.StopAtSize && total.Known {
		r.limit = totalUnits
	}

	slog.Debug("starting transfer",
		"inputs", len(st.Inputs),
		"total", total.String(),
		"line_mode", st.LineMode,
		"stop_at_size", st.StopAtSize,
	)
	r.emit(ctx, event.Event{Type: event.SizeEstimated, Total: totalUnits, LineMode: st.LineMode})

	res := Result{Total: total}
	res.Stopped, res.Err = r.run(ctx)
	res.Written, res.Lines = r.written, r.lines
	res.Digest = hexSum(digest)
	return res
}

func (r *runner) run(ctx context.Context) (bool, error) {
	st := r.st

	var cur *os.File
	defer func() {
		if cur != nil && cur != st.Stdin {
			if err := cur.Close(); err != nil {
				slog.Debug("close last input", "file", cur.Name(), "error", err)
			}
		}
	}()

	for i, name := range st.Inputs {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		prev := cur
		if prev == st.Stdin {
			// stdin stays open; it may be listed again.
			prev = nil
		}
		f, err := st.NextFile(i, prev)
		cur = nil
		if err != nil {
			r.collector.AddInputsFailed(1)
			r.emit(ctx, event.Event{Type: event.InputFailed, Input: meter.DisplayName(name), Index: i, Error: err})
			continue
		}
		cur = f

		r.collector.AddInputsOpened(1)
		r.collector.SetCurrentInput(st.CurrentFile)
		r.emit(ctx, event.Event{Type: event.InputOpened, Input: st.CurrentFile, Index: i})

		n, stopped, err := r.copyInput(ctx, f)
		r.emit(ctx, event.Event{Type: event.InputFinished, Input: st.CurrentFile, Index: i, Size: n, Error: err})

		switch {
		case err == nil:
		case ctx.Err() != nil:
			return false, ctx.Err()
		default:
			var oe *outputError
			if errors.As(err, &oe) {
				st.Status.Add(meter.KindIO)
				st.Reportf("write failed: %s", meter.ErrorText(oe.err))
				return false, err
			}
			// A read error ends this input only.
			st.Status.Add(meter.KindIO)
			st.Reportf("%s: read failed: %s", st.CurrentFile, meter.ErrorText(err))
		}

		if stopped {
			r.emit(ctx, event.Event{Type: event.SizeReached, Input: st.CurrentFile, Index: i})
			return true, nil
		}
	}
	return false, nil
}

func (r *runner) copyInput(ctx context.Context, f *os.File) (int64, bool, error) {
	var src io.Reader = f
	if r.limiter != nil {
		src = newRateLimitedReader(ctx, f, r.limiter)
	}

	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer bufPool.Put(bufp)
	buf := *bufp

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, false, err
		}

		m, rerr := src.Read(buf)
		if m > 0 {
			chunk, stop := r.clip(buf[:m])
			if _, werr := r.out.Write(chunk); werr != nil {
				return n, false, &outputError{err: werr}
			}
			lines := int64(bytes.Count(chunk, []byte{r.delim}))
			n += int64(len(chunk))
			r.written += int64(len(chunk))
			r.lines += lines
			r.collector.AddBytes(int64(len(chunk)))
			r.collector.AddLines(lines)
			if stop {
				return n, true, nil
			}
		}
		if rerr == io.EOF {
			return n, false, nil
		}
		if rerr != nil {
			return n, false, rerr
		}
	}
}

// clip trims chunk so the transfer does not pass the size limit, and
// reports whether the limit has been reached.
func (r *runner) clip(chunk []byte) ([]byte, bool) {
	if r.limit <= 0 {
		return chunk, false
	}
	if !r.st.LineMode {
		remaining := r.limit - r.written
		if int64(len(chunk)) >= remaining {
			return chunk[:remaining], true
		}
		return chunk, false
	}
	remaining := r.limit - r.lines
	for i, b := range chunk {
		if b != r.delim {
			continue
		}
		remaining--
		if remaining == 0 {
			return chunk[:i+1], true
		}
	}
	return chunk, false
}

func (r *runner) emit(ctx context.Context, ev event.Event) {
	if r.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}
