package ui

import (
	"fmt"

	"github.com/bamsammich/pipemeter/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  inputs 3  size 2.1 GiB  avg 641 MiB/s  time 0:00:03  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avg := 0.0
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		avg = float64(snap.Done()) / secs
	}

	icon := "✓"
	if snap.InputsFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  inputs %s  size %s",
		icon,
		FormatCount(snap.InputsOpened),
		FormatBytes(snap.BytesWritten),
	)
	if snap.LineMode {
		base += "  lines " + FormatCount(snap.LinesWritten)
	}
	return base + fmt.Sprintf("  avg %s  time %s  errors %d",
		formatSpeed(avg, snap.LineMode),
		FormatClock(snap.Elapsed),
		snap.InputsFailed,
	)
}
