package meter

import (
	"errors"
	"fmt"
	"os"

	"github.com/bamsammich/pipemeter/internal/platform"
)

var (
	// ErrIndexOutOfRange is wrapped by NextFile when asked for an input
	// that does not exist.
	ErrIndexOutOfRange = errors.New("input index out of range")
	// ErrInputIsOutput is wrapped by NextFile when an input is the file
	// standard output is writing to.
	ErrInputIsOutput = errors.New("input file is output file")
)

// RotateError describes why NextFile could not produce a descriptor.
type RotateError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *RotateError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RotateError) Unwrap() error { return e.Err }

// NextFile closes prev (if non-nil) and opens input index, refusing inputs
// that are the same file as standard output. On success the returned file
// belongs to the caller, who passes it back as prev on the next call. On
// failure the reason is reported, its kind is added to s.Status, and a
// *RotateError is returned.
//
// When the input is StdinPath, the returned file is s.Stdin itself.
func (s *State) NextFile(index int, prev *os.File) (*os.File, error) {
	if prev != nil {
		if err := prev.Close(); err != nil {
			// The descriptor table can no longer be trusted; do not open more.
			s.Reportf("failed to close file: %s", ErrorText(err))
			s.Status.Add(KindRotation)
			return nil, &RotateError{Kind: KindRotation, Op: "close", Path: prev.Name(), Err: err}
		}
	}

	if index < 0 || index >= len(s.Inputs) {
		s.logger().Debug("input index too large", "index", index, "count", len(s.Inputs))
		s.Status.Add(KindRotation)
		return nil, &RotateError{Kind: KindRotation, Op: "select", Err: ErrIndexOutOfRange}
	}

	name := s.Inputs[index]
	f, fresh := s.stdin(), false
	if name != StdinPath {
		var err error
		f, err = os.Open(name)
		if err != nil {
			s.Reportf("failed to read file: %s: %s", name, ErrorText(err))
			s.Status.Add(KindIO)
			return nil, &RotateError{Kind: KindIO, Op: "open", Path: name, Err: err}
		}
		fresh = true
	}

	fail := func(kind ErrorKind, op string, err error) (*os.File, error) {
		if fresh {
			_ = f.Close()
		}
		s.Status.Add(kind)
		return nil, &RotateError{Kind: kind, Op: op, Path: name, Err: err}
	}

	in, err := f.Stat()
	if err != nil {
		s.Reportf("failed to stat file: %s: %s", name, ErrorText(err))
		return fail(KindIO, "stat", err)
	}
	out, err := s.stdout().Stat()
	if err != nil {
		s.Reportf("failed to stat output file: %s", ErrorText(err))
		return fail(KindIO, "stat output", err)
	}

	if isSameObject(f, in, out) {
		s.Reportf("%s: %s", ErrInputIsOutput, name)
		return fail(KindInputIsOutput, "check", ErrInputIsOutput)
	}

	s.CurrentFile = DisplayName(name)
	s.applyDirectIO(f)

	id, _ := platform.Identify(in)
	s.logger().Debug("next file opened",
		"index", index,
		"file", s.CurrentFile,
		"dev", id.Dev,
		"ino", id.Ino,
	)
	return f, nil
}

// isSameObject reports whether the input is the output's file. Terminals
// and anything other than regular files and block devices never match, so
// reading and writing the same tty is allowed.
func isSameObject(f *os.File, in, out os.FileInfo) bool {
	if !platform.SameObject(in, out) {
		return false
	}
	if platform.IsTerminal(f) {
		return false
	}
	mode := in.Mode()
	return mode.IsRegular() || platform.IsBlockDevice(mode)
}

// applyDirectIO sets uncached I/O on f when requested, and clears it when
// an earlier input had it set. Failure is only logged.
func (s *State) applyDirectIO(f *os.File) {
	if !s.DirectIO && !s.directIOUsed {
		return
	}
	if !platform.DirectIOSupported() {
		s.logger().Debug("uncached I/O unavailable", "file", s.CurrentFile)
		return
	}
	if s.DirectIO {
		s.directIOUsed = true
	}
	if err := platform.SetDirectIO(f, s.DirectIO); err != nil {
		s.logger().Debug("cannot change uncached I/O", "file", s.CurrentFile, "error", err)
	}
}
