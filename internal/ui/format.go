package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bamsammich/pipemeter/internal/stats"
)

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	units := []string{"B/s", "KiB/s", "MiB/s", "GiB/s", "TiB/s"}
	val := bytesPerSec
	for _, u := range units {
		if val < 1024 {
			switch {
			case val < 10:
				return fmt.Sprintf("%.2f %s", val, u)
			case val < 100:
				return fmt.Sprintf("%.1f %s", val, u)
			default:
				return fmt.Sprintf("%.0f %s", val, u)
			}
		}
		val /= 1024
	}
	return fmt.Sprintf("%.1f PiB/s", val)
}

// FormatLineRate formats a lines-per-second rate.
func FormatLineRate(linesPerSec float64) string {
	if linesPerSec <= 0 {
		return "0 lines/s"
	}
	return FormatCount(int64(linesPerSec+0.5)) + " lines/s"
}

// FormatClock formats a duration as H:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatETA formats a remaining duration; zero or negative means unknown.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--:--:--"
	}
	return FormatClock(d)
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ProgressBar renders a bar of the given width using ▪/□ characters.
func ProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = min(max(frac, 0), 1)
	filled := min(int(frac*float64(width)), width)
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// formatDone renders transferred units: bytes, or a line count in line mode.
func formatDone(snap stats.Snapshot) string {
	if snap.LineMode {
		return FormatCount(snap.LinesWritten) + " lines"
	}
	return FormatBytes(snap.BytesWritten)
}

func formatSpeed(speed float64, lineMode bool) string {
	if lineMode {
		return FormatLineRate(speed)
	}
	return FormatRate(speed)
}
