package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/pipemeter/internal/stats"
)

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0 B/s"},
		{-1, "0 B/s"},
		{512, "512 B/s"},
		{1024, "1.00 KiB/s"},
		{1.5 * 1024 * 1024, "1.50 MiB/s"},
		{2.5 * 1024 * 1024 * 1024, "2.50 GiB/s"},
		{100 * 1024, "100 KiB/s"},
		{15 * 1024, "15.0 KiB/s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRate(tt.input))
		})
	}
}

func TestFormatLineRate(t *testing.T) {
	assert.Equal(t, "0 lines/s", FormatLineRate(0))
	assert.Equal(t, "12 lines/s", FormatLineRate(11.6))
	assert.Equal(t, "1,500 lines/s", FormatLineRate(1500))
}

func TestFormatClockAndETA(t *testing.T) {
	tests := []struct {
		input time.Duration
		clock string
		eta   string
	}{
		{0, "0:00:00", "--:--:--"},
		{-time.Second, "0:00:00", "--:--:--"},
		{30 * time.Second, "0:00:30", "0:00:30"},
		{90 * time.Second, "0:01:30", "0:01:30"},
		{3661 * time.Second, "1:01:01", "1:01:01"},
		{1500 * time.Millisecond, "0:00:02", "0:00:02"},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			assert.Equal(t, tt.clock, FormatClock(tt.input))
			assert.Equal(t, tt.eta, FormatETA(tt.input))
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1000000, "1,000,000"},
		{14302, "14,302"},
		{-1000, "-1,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.input))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "", ProgressBar(0.5, 0))
	assert.Equal(t, "□□□□", ProgressBar(0, 4))
	assert.Equal(t, "▪▪□□", ProgressBar(0.5, 4))
	assert.Equal(t, "▪▪▪▪", ProgressBar(1, 4))
	assert.Equal(t, "▪▪▪▪", ProgressBar(7, 4))
	assert.Equal(t, "□□□□", ProgressBar(-1, 4))
}

func TestFormatDone(t *testing.T) {
	assert.Equal(t, "2.0 KiB", formatDone(stats.Snapshot{BytesWritten: 2048}))
	assert.Equal(t, "1,200 lines", formatDone(stats.Snapshot{BytesWritten: 2048, LinesWritten: 1200, LineMode: true}))
}
