package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("user-1", "car", "c1", "2025-03-01", "2025-03-04")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("user-1", "car", "c1", "2025-03-01", "2025-03-04"))
	assert.NotEqual(t, a, Fingerprint("user-2", "car", "c1", "2025-03-01", "2025-03-04"))
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
}
