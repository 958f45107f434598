//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// DirectIOSupported reports whether SetDirectIO can work here.
func DirectIOSupported() bool { return true }

// SetDirectIO sets or clears O_DIRECT on f.
//
//nolint:gosec // G115: fd values are small non-negative integers
func SetDirectIO(f *os.File, on bool) error {
	fd := f.Fd()
	flags, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return &os.PathError{Op: "fcntl", Path: f.Name(), Err: err}
	}
	if on {
		flags |= unix.O_DIRECT
	} else {
		flags &^= unix.O_DIRECT
	}
	if _, err := unix.FcntlInt(fd, unix.F_SETFL, flags); err != nil {
		return &os.PathError{Op: "fcntl", Path: f.Name(), Err: err}
	}
	return nil
}
