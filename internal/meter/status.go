package meter

import (
	"slices"
	"strings"
)

// ErrorKind names a category of failure recorded in a Status.
type ErrorKind int

const (
	// KindIO covers stat, open, read, seek and close failures.
	KindIO ErrorKind = iota + 1
	// KindInputIsOutput means an input resolved to the output's file.
	KindInputIsOutput
	// KindRotation means a previous input failed to close, or an input
	// index was out of range.
	KindRotation
)

var kindNames = [...]string{
	KindIO:            "io",
	KindInputIsOutput: "input-is-output",
	KindRotation:      "rotation",
}

func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// exitBit is the process exit status bit for k. Bits are independent so the
// final exit code reflects every category seen.
func (k ErrorKind) exitBit() int {
	switch k {
	case KindIO:
		return 2
	case KindInputIsOutput:
		return 4
	case KindRotation:
		return 8
	default:
		return 1
	}
}

// Status accumulates the error kinds seen during a run. Kinds are only ever
// added. The zero value is an empty set ready to use.
type Status struct {
	kinds map[ErrorKind]struct{}
}

// Add records k.
func (s *Status) Add(k ErrorKind) {
	if s.kinds == nil {
		s.kinds = make(map[ErrorKind]struct{}, 3)
	}
	s.kinds[k] = struct{}{}
}

// Has reports whether k has been recorded.
func (s *Status) Has(k ErrorKind) bool {
	_, ok := s.kinds[k]
	return ok
}

// Empty reports whether no failure has been recorded.
func (s *Status) Empty() bool { return len(s.kinds) == 0 }

// Kinds returns the recorded kinds in ascending order.
func (s *Status) Kinds() []ErrorKind {
	out := make([]ErrorKind, 0, len(s.kinds))
	for k := range s.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ExitCode folds the recorded kinds into a process exit status.
func (s *Status) ExitCode() int {
	code := 0
	for k := range s.kinds {
		code |= k.exitBit()
	}
	return code
}

func (s *Status) String() string {
	kinds := s.Kinds()
	if len(kinds) == 0 {
		return "ok"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}
