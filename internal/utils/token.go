package utils

import "github.com/google/uuid"

// NewToken returns the opaque access token handed to a citizen when a
// request is created.  Tokens are random version-4 UUIDs in their
// canonical 36 character form, giving 122 bits of entropy from
// crypto/rand; no uniqueness check against storage is performed.
func NewToken() string {
    return uuid.NewString()
}
