// Package platform wraps the OS-specific descriptor operations used while
// sizing and opening transfer inputs.
package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrUnsupported is returned by capabilities the current platform lacks.
var ErrUnsupported = errors.New("not supported on this platform")

// CanRead reports whether the calling process may read path, using the real
// user and group IDs like access(2).
func CanRead(path string) error {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return &os.PathError{Op: "access", Path: path, Err: err}
	}
	return nil
}

// Dup returns a new *os.File sharing f's open file description (and
// therefore its offset).
//
//nolint:gosec // G115: fd values are small non-negative integers
func Dup(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, &os.PathError{Op: "dup", Path: f.Name(), Err: err}
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), f.Name()), nil
}

// IsAppendOnly reports whether f was opened with O_APPEND.
//
//nolint:gosec // G115: fd values are small non-negative integers
func IsAppendOnly(f *os.File) (bool, error) {
	flags, err := unix.FcntlInt(f.Fd(), unix.F_GETFL, 0)
	if err != nil {
		return false, &os.PathError{Op: "fcntl", Path: f.Name(), Err: err}
	}
	return flags&unix.O_APPEND != 0, nil
}

// IsTerminal reports whether f refers to a terminal device.
//
//nolint:gosec // G115: fd values are small non-negative integers
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsBlockDevice reports whether mode describes a block device.
func IsBlockDevice(mode os.FileMode) bool {
	return mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0
}
