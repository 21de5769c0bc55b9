// Package fingerprint derives content-addressed identifiers for image bytes.
package fingerprint

import (
	"crypto/md5"

	"github.com/mr-tron/base58"
)

// Fingerprint returns a short, URL-safe identifier derived from the exact
// bytes of data. Identical inputs always produce identical outputs, so the
// result doubles as a deduplication key: two page images with the same
// encoded bytes map to the same storage object.
func Fingerprint(data []byte) string {
	sum := md5.Sum(data)
	return base58.Encode(sum[:])
}
