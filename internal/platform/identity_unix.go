//go:build linux || darwin

package platform

import (
	"os"
	"syscall"
)

// Identify extracts device and inode from fi.
func Identify(fi os.FileInfo) (Identity, bool) {
	if fi == nil {
		return Identity{}, false
	}
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return Identity{}, false
	}
	return Identity{Dev: uint64(stat.Dev), Ino: stat.Ino}, true //nolint:unconvert // Dev is int32 on darwin
}
