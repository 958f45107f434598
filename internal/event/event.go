package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	SizeEstimated Type = iota + 1
	InputOpened
	InputFinished
	InputFailed
	SizeReached
)

var typeNames = [...]string{
	SizeEstimated: "SizeEstimated",
	InputOpened:   "InputOpened",
	InputFinished: "InputFinished",
	InputFailed:   "InputFailed",
	SizeReached:   "SizeReached",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the transfer loop.
type Event struct {
	Type      Type
	Timestamp time.Time
	Input     string // display name of the input
	Index     int    // position in the input list
	Size      int64  // bytes read from this input (InputFinished)
	Total     int64  // estimated total (SizeEstimated); 0 if unknown
	LineMode  bool   // Total counts lines (SizeEstimated)
	Error     error
}
