package platform

import "os"

// Identity names a filesystem object by device and inode number.
type Identity struct {
	Dev uint64
	Ino uint64
}

// SameObject reports whether a and b describe the same filesystem object.
// It compares device and inode where the platform exposes them and falls
// back to os.SameFile otherwise.
func SameObject(a, b os.FileInfo) bool {
	ia, okA := Identify(a)
	ib, okB := Identify(b)
	if okA && okB {
		return ia == ib
	}
	return os.SameFile(a, b)
}
