// Package utils holds small helpers shared across packages.
package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the parts into a fixed-length hex key with BLAKE2b-256.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
