// Package identity derives content-addressed document ids from natural keys.
package identity

import (
	"crypto/md5"
	"encoding/hex"
)

// DeriveID returns the stable one-way hash of a natural key, used both to
// address documents and to deduplicate creates. A user id is derived from its
// username, an original post id from text+username, a repost id from
// originalID+userID.
func DeriveID(naturalKey string) string {
	sum := md5.Sum([]byte(naturalKey))
	return hex.EncodeToString(sum[:])
}
