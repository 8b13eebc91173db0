// Package fingerprint computes the content digest used as the article
// deduplication key. The digest is stored durably in the catalog, so it
// must be stable across processes and releases.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the SHA-256 digest of body as lowercase hex.
func Sum(body string) string {
	h := sha256.Sum256([]byte(body))
	return hex.EncodeToString(h[:])
}
