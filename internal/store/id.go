package store

import (
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Identifier prefixes per entity family. The prefix plus the ULID's
// embedded timestamp makes identifiers lexicographically sortable in
// approximate creation order, and keeps them free of characters that
// are unsafe in file names.
const (
	ReviewIDPrefix = "rev"
	TaskIDPrefix   = "task"
)

// NewID generates a new prefixed, sortable identifier. The ULID's
// random suffix prevents collisions between records created within
// the same millisecond.
func NewID(prefix string) string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return prefix + "-" + ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// HasPrefix reports whether id belongs to the given entity family.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-")
}
