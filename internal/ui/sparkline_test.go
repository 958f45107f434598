package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		want  string
	}{
		{"zero width", []float64{1, 2}, 0, ""},
		{"no data", nil, 3, "▁▁▁"},
		{"all zeros", []float64{0, 0, 0}, 3, "▁▁▁"},
		{"padded", []float64{100}, 4, "▁▁▁█"},
		{"ramp", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 8, "▁▂▃▄▅▆▇█"},
		{"flat", []float64{5, 5, 5}, 3, "███"},
		{"keeps newest", []float64{9, 9, 9, 0, 8}, 2, "▁█"},
		{"negative", []float64{-3, 4}, 2, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sparkline(tt.data, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Len(t, []rune(got), tt.width)
		})
	}
}
