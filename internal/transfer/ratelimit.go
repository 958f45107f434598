package transfer

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewRateLimiter creates a rate.Limiter capping throughput to bytesPerSec.
// The burst is 1 MiB, or the rate itself when that is smaller.
func NewRateLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = max(int(bytesPerSec), 1)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// readAlign keeps clamped reads a multiple of the page size, which uncached
// (O_DIRECT) reads require.
const readAlign = 4 << 10

// rateLimitedReader wraps an io.Reader and enforces a rate limit. Reads are
// clamped to the limiter's burst so WaitN can always be satisfied.
type rateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedReader(
	ctx context.Context,
	r io.Reader,
	limiter *rate.Limiter,
) *rateLimitedReader {
	return &rateLimitedReader{r: r, limiter: limiter, ctx: ctx}
}

func (rl *rateLimitedReader) Read(p []byte) (int, error) {
	p = p[:readSize(len(p), rl.limiter.Burst())]
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := rl.limiter.WaitN(rl.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// readSize clamps a read of n bytes to burst, rounded down to readAlign
// when burst is at least that large.
func readSize(n, burst int) int {
	if n <= burst {
		return n
	}
	if burst >= readAlign {
		return burst &^ (readAlign - 1)
	}
	return burst
}
