package evaluation

import (
	"crypto/sha1"
	"encoding/hex"
)

const fingerprintLength = 10

// Fingerprint computes the short content fingerprint of a trimmed prompt:
// the first 10 hex characters of its SHA-1 digest. It is a duplicate-detection
// aid, not a cryptographic identifier.
func Fingerprint(trimmed string) string {
	sum := sha1.Sum([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
