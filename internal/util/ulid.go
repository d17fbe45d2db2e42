package util

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string. Safe for concurrent use; ids from
// the same millisecond stay unique and sortable.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

// IsULID reports whether s is a well-formed ULID string.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
