package meter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bamsammich/pipemeter/internal/platform"
)

const (
	lineScanSize = 1024
	stdoutLabel  = "(stdout)"
)

// Size is an estimated transfer total, in bytes or in lines.
type Size struct {
	N     uint64
	Known bool
}

// KnownSize returns a trusted total of n.
func KnownSize(n uint64) Size { return Size{N: n, Known: true} }

// sizeOf treats a zero total as unknown: nothing measurable was found.
func sizeOf(n uint64) Size {
	if n < 1 {
		return Size{}
	}
	return KnownSize(n)
}

func (s Size) String() string {
	if !s.Known {
		return "unknown"
	}
	return strconv.FormatUint(s.N, 10)
}

// TotalSize estimates how much will be transferred across all inputs: a
// delimiter count in line mode, a byte count otherwise. An unknown Size means
// progress fractions and ETA must not be shown; it is never an error.
func (s *State) TotalSize() Size {
	if s.LineMode {
		return s.lineTotal()
	}
	return s.byteTotal()
}

func (s *State) byteTotal() Size {
	if len(s.Inputs) == 0 {
		fi, err := s.stdin().Stat()
		if err != nil {
			return Size{}
		}
		return sizeOf(uint64(max(fi.Size(), 0)))
	}

	var total uint64
	for _, name := range s.Inputs {
		fi, err := s.statReadable(name)
		if err != nil {
			s.logger().Debug("cannot size input", "input", name, "error", err)
			return Size{}
		}

		mode := fi.Mode()
		switch {
		case platform.IsBlockDevice(mode):
			path := name
			if name == StdinPath {
				path = reopenPath(s.stdin())
			}
			n, err := blockDeviceSize(path)
			if err != nil {
				s.logger().Debug("cannot open block device", "input", name, "error", err)
				return Size{}
			}
			total += n
		case mode.IsRegular():
			total += uint64(max(fi.Size(), 0))
		default:
			// Pipes and character devices cannot be measured. Later inputs
			// may still add to the total.
			total = 0
		}
	}

	if total < 1 {
		total = s.outputDeviceSize()
	}
	return sizeOf(total)
}

// statReadable stats an input and, for named paths, checks it is readable.
func (s *State) statReadable(name string) (os.FileInfo, error) {
	if name == StdinPath {
		return s.stdin().Stat()
	}
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if err := platform.CanRead(name); err != nil {
		return nil, err
	}
	return fi, nil
}

// blockDeviceSize measures a block device by seeking to its end. A failed
// seek contributes nothing rather than abandoning the estimate.
func blockDeviceSize(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil || end <= 0 {
		return 0, nil //nolint:nilerr // unseekable device contributes nothing
	}
	return uint64(end), nil
}

// reopenPath names f's descriptor under /dev/fd. On Linux opening it yields
// a new open file description, so seeking it leaves f's offset alone.
func reopenPath(f *os.File) string {
	return "/dev/fd/" + strconv.FormatUint(uint64(f.Fd()), 10)
}

// outputDeviceSize returns the size of a seekable, non-append block device
// on stdout, or 0. A positive result sets StopAtSize, since writing past the
// end of the device is the expected way such a transfer finishes.
func (s *State) outputDeviceSize() uint64 {
	out := s.stdout()
	fi, err := out.Stat()
	if err != nil || !platform.IsBlockDevice(fi.Mode()) {
		return 0
	}
	appendOnly, err := platform.IsAppendOnly(out)
	if err != nil || appendOnly {
		return 0
	}

	var total uint64
	if end, err := out.Seek(0, io.SeekEnd); err == nil && end > 0 {
		total = uint64(end)
	}

	pos, err := out.Seek(0, io.SeekStart)
	if err == nil && pos != 0 {
		err = fmt.Errorf("offset is %d", pos)
	}
	if err != nil {
		s.Reportf("%s: failed to seek to start of output: %s", stdoutLabel, ErrorText(err))
		s.Status.Add(KindIO)
	}

	if total > 0 {
		s.StopAtSize = true
	}
	return total
}

func (s *State) lineTotal() Size {
	delim := byte('\n')
	if s.NullDelimited {
		delim = 0
	}

	var total uint64
	for _, name := range s.Inputs {
		n, err := s.countDelimiters(name, delim)
		if err != nil {
			s.logger().Debug("cannot count lines", "input", name, "error", err)
			return Size{}
		}
		total += n
	}
	return sizeOf(total)
}

var errNotRegular = errors.New("not a regular file")

// countDelimiters counts delim bytes in one input through an independent
// descriptor and rewinds it before closing. A returned error abandons the
// whole estimate; read and rewind failures are only reported.
func (s *State) countDelimiters(name string, delim byte) (uint64, error) {
	var (
		f   *os.File
		err error
	)
	if name == StdinPath {
		fi, serr := s.stdin().Stat()
		if serr != nil {
			return 0, serr
		}
		if !fi.Mode().IsRegular() {
			return 0, errNotRegular
		}
		f, err = platform.Dup(s.stdin())
	} else {
		fi, serr := os.Stat(name)
		if serr != nil {
			return 0, serr
		}
		if !fi.Mode().IsRegular() {
			return 0, errNotRegular
		}
		f, err = os.Open(name)
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	platform.AdviseSequential(f)

	var (
		count uint64
		buf   [lineScanSize]byte
	)
	for {
		n, rerr := f.Read(buf[:])
		count += uint64(bytes.Count(buf[:n], []byte{delim}))
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			s.Reportf("%s: %s", name, ErrorText(rerr))
			s.Status.Add(KindIO)
			break
		}
	}

	// The transfer reads this file again from the start.
	if pos, serr := f.Seek(0, io.SeekStart); serr != nil || pos != 0 {
		if serr == nil {
			serr = fmt.Errorf("offset is %d", pos)
		}
		s.Reportf("%s: %s", name, ErrorText(serr))
		s.Status.Add(KindIO)
	}

	return count, nil
}
