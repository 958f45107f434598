package ui

import (
	"os"

	"golang.org/x/term"

	"github.com/bamsammich/pipemeter/internal/platform"
)

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	return platform.IsTerminal(f)
}

// TermWidth returns the width of the terminal behind f in columns, or 80 if
// it cannot be determined.
func TermWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
