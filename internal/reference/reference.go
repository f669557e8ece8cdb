// Package reference generates the short public codes that identify
// registrations. Codes are presented to attendees, embedded in QR payloads and
// URLs, so the alphabet excludes characters that are easy to misread (0/O,
// 1/I). Uniqueness is backstopped by the database unique constraint, not by
// the generator; callers retry on conflict.
package reference

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet has 32 characters, so modulo mapping from random bytes is unbiased.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of generated codes.
const Length = 10

// New returns a new random reference code.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i := range buf {
		buf[i] = Alphabet[int(buf[i])%len(Alphabet)]
	}

	return string(buf), nil
}

// Normalize canonicalizes user-supplied references for lookup: codes are
// stored uppercase but accepted case-insensitively at the boundary.
func Normalize(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
