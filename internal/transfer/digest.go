package transfer

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Digest algorithms accepted by Options.Hash.
const (
	HashNone   = ""
	HashBLAKE3 = "blake3"
	HashXXHash = "xxhash"
)

// newDigest returns a hash for algo, or nil for HashNone.
func newDigest(algo string) (hash.Hash, error) {
	switch algo {
	case HashNone:
		return nil, nil
	case HashBLAKE3:
		return blake3.New(), nil
	case HashXXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash %q (use %s or %s)", algo, HashBLAKE3, HashXXHash)
	}
}

// ValidateHash reports whether algo names a supported digest.
func ValidateHash(algo string) error {
	_, err := newDigest(algo)
	return err
}

func hexSum(h hash.Hash) string {
	if h == nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
