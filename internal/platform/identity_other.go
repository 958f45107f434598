//go:build !linux && !darwin

package platform

import "os"

// Identify is unavailable on this platform.
func Identify(os.FileInfo) (Identity, bool) {
	return Identity{}, false
}
