package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short random identifier with the given prefix, e.g. "blk_3f9a0c1d2e4b".
func NewID(prefix string) string {
	return prefix + "_" + short(uuid.New())
}

// StableID derives an identifier from seed. Equal seeds give equal ids, so a
// parser can keep block ids steady across re-parses of unchanged content.
func StableID(prefix, seed string) string {
	return prefix + "_" + short(uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)))
}

func short(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")[:12]
}
