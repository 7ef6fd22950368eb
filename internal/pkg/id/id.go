package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort lexicographically by creation
// time, which gives the entry and alert logs their chronological ordering
// without a separate sort key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
