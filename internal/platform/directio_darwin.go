//go:build darwin

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// DirectIOSupported reports whether SetDirectIO can work here.
func DirectIOSupported() bool { return true }

// SetDirectIO toggles F_NOCACHE, macOS's equivalent of O_DIRECT.
func SetDirectIO(f *os.File, on bool) error {
	arg := 0
	if on {
		arg = 1
	}
	if _, err := unix.FcntlInt(f.Fd(), unix.F_NOCACHE, arg); err != nil {
		return &os.PathError{Op: "fcntl", Path: f.Name(), Err: err}
	}
	return nil
}
