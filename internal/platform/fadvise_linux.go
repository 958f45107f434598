//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// AdviseSequential hints that f will be read front to back. The hint is
// advisory; errors are ignored.
//
//nolint:gosec // G115: fd values are small non-negative integers
func AdviseSequential(f *os.File) {
	//nolint:errcheck // fadvise is advisory
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
