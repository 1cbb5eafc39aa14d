package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// entryKey builds a stable key for a (professor, course) pair. Professor
// names carry commas and arbitrary user input, so the normalized pair is
// hashed rather than spliced into the key with delimiters.
func entryKey(professorName, courseID string) string {
	normalized := strings.TrimSpace(professorName) + "|" + strings.TrimSpace(courseID)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
