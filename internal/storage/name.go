package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

// hashNameLength is the number of hex characters kept from the URL digest.
const hashNameLength = 50

// HashName returns the content-address base name for url.
func HashName(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:hashNameLength]
}

// Extension returns the file extension, including the leading dot, for a
// media type without parameters. Types mimetype cannot detect (text/css)
// fall back to the system MIME table. Unknown media types map to "".
func Extension(mediaType string) string {
	if detected := mimetype.Lookup(mediaType); detected != nil && detected.Extension() != "" {
		return detected.Extension()
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
