package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IdentityKey returns the de-duplication key of an item: the hex SHA-256 of
// the normalized link and the title, both trimmed and joined by a newline.
func IdentityKey(title, link string) string {
	base := strings.TrimSpace(NormalizeURL(link)) + "\n" + strings.TrimSpace(title)

	hash := sha256.Sum256([]byte(base))
	return hex.EncodeToString(hash[:])
}
