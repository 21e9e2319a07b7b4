package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Join returns the digest of parts joined with "|".
func Join(parts ...string) string {
	return Sum([]byte(strings.Join(parts, "|")))
}
