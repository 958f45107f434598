//go:build !linux && !darwin

package platform

import "os"

// DirectIOSupported reports whether SetDirectIO can work here.
func DirectIOSupported() bool { return false }

// SetDirectIO always fails with ErrUnsupported.
func SetDirectIO(_ *os.File, _ bool) error { return ErrUnsupported }
