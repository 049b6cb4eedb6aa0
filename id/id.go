// Package id generates the opaque identifiers corevr hands out for things
// that have no natural platform-issued id of their own (profiles,
// correlation ids attached to login attempts for log lines). It wraps
// google/uuid, the identifier library already depended on across the
// example corpus, rather than hand-rolling random byte generation.
package id

import "github.com/google/uuid"

// NewV4 returns a random 128-bit identifier, suitable for ProfileId.
func NewV4() [16]byte {
	return uuid.New()
}

// NewV7 returns a time-ordered 128-bit identifier, used for correlation ids
// that are only ever compared for uniqueness and logged, never looked up by
// range, but benefit from sorting roughly by creation time in log output.
func NewV7() [16]byte {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the system clock/random source is broken
		// beyond recovery; fall back to a random id rather than panic.
		return uuid.New()
	}
	return u
}

// String renders a [16]byte identifier in canonical UUID form.
func String(b [16]byte) string {
	return uuid.UUID(b).String()
}

// Parse decodes a canonical UUID string back into a [16]byte identifier.
func Parse(s string) ([16]byte, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, err
	}
	return u, nil
}
