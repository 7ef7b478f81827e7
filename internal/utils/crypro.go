package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex sha256 of the parts joined by a NUL byte.
func Hash(parts ...string) string {
	hash := sha256.New()
	hash.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash.Sum(nil))
}
