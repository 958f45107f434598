// Package units parses human-readable byte quantities.
package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T (case-insensitive), in
// powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	numStr := s

	switch strings.ToUpper(s[len(s)-1:]) {
	case "B":
		numStr = s[:len(s)-1]
	case "K":
		multiplier = 1 << 10
		numStr = s[:len(s)-1]
	case "M":
		multiplier = 1 << 20
		numStr = s[:len(s)-1]
	case "G":
		multiplier = 1 << 30
		numStr = s[:len(s)-1]
	case "T":
		multiplier = 1 << 40
		numStr = s[:len(s)-1]
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}

// SizeFlag is a pflag.Value holding a byte count written as "1.5G", "100K"...
type SizeFlag struct {
	Bytes int64
	raw   string
}

var _ pflag.Value = (*SizeFlag)(nil)

func (f *SizeFlag) String() string { return f.raw }
func (*SizeFlag) Type() string     { return "size" }

func (f *SizeFlag) Set(val string) error {
	n, err := ParseSize(val)
	if err != nil {
		return err
	}
	f.Bytes, f.raw = n, val
	return nil
}
