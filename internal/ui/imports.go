package ui

import "github.com/bamsammich/pipemeter/internal/event"

// Event is the transfer event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	SizeEstimated = event.SizeEstimated
	InputOpened   = event.InputOpened
	InputFinished = event.InputFinished
	InputFailed   = event.InputFailed
	SizeReached   = event.SizeReached
)
