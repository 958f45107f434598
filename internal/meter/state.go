// Package meter sizes a list of transfer inputs before copying starts and
// opens them one at a time while the copy runs.
//
// A State is owned by a single goroutine. TotalSize is called once, before
// the transfer; NextFile is called once per input, in order, each time
// handing back the descriptor returned by the previous call.
package meter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// StdinPath is the input name that selects standard input.
const StdinPath = "-"

const stdinLabel = "(stdin)"

// State is the shared record read and updated by TotalSize and NextFile.
type State struct {
	// Inputs are read in order. Must not change once sizing has started.
	Inputs []string

	LineMode      bool
	NullDelimited bool
	DirectIO      bool

	// StopAtSize is set by TotalSize when the total was taken from the size
	// of a block-device output: reaching it is a clean stop, not ENOSPC.
	StopAtSize bool

	// CurrentFile is the display name of the input last opened by NextFile.
	CurrentFile string

	Status Status

	// Stdin and Stdout default to the process's streams when nil. A block
	// device on Stdin is sized through a reopen of its /dev/fd entry.
	Stdin  *os.File
	Stdout *os.File

	// Reporter receives user-visible diagnostics; nil prints to stderr.
	Reporter Reporter
	// Logger receives debug records; nil uses slog.Default().
	Logger *slog.Logger

	directIOUsed bool
}

// NewState returns a State reading inputs and writing to the process's
// standard output.
func NewState(inputs []string) *State {
	return &State{
		Inputs: inputs,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

func (s *State) stdin() *os.File {
	if s.Stdin == nil {
		return os.Stdin
	}
	return s.Stdin
}

func (s *State) stdout() *os.File {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s *State) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Reportf formats a diagnostic and passes it to the Reporter.
func (s *State) Reportf(format string, args ...any) {
	r := s.Reporter
	if r == nil {
		r = NewWriterReporter(os.Stderr, "pipemeter")
	}
	r.Report(fmt.Sprintf(format, args...))
}

// DisplayName returns the label shown for an input name.
func DisplayName(name string) string {
	if name == StdinPath {
		return stdinLabel
	}
	return name
}

// ErrorText returns the OS error text without the operation and path that
// *fs.PathError prepends, for messages that already name the file.
func ErrorText(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
