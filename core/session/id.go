package session

import (
	"crypto/subtle"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idPattern is the strict UUIDv4 grammar: version nibble 4, variant
// nibble 8-b. No whitespace trimming, case-insensitive.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// ID is an opaque validated session identifier in canonical UUIDv4
// textual form. Every ID in memory has passed validation; the zero
// value is recognizable via IsZero and never matches a stored session.
type ID struct {
	value string
}

// NewID generates a fresh CSPRNG-derived id.
func NewID() (ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return ID{}, err
	}
	return ID{value: u.String()}, nil
}

// ParseID validates s against the UUIDv4 grammar and returns the id in
// canonical lowercase form.
func ParseID(s string) (ID, error) {
	if !idPattern.MatchString(s) {
		return ID{}, ErrInvalidID
	}
	return ID{value: strings.ToLower(s)}, nil
}

// String returns the canonical textual form.
func (id ID) String() string {
	return id.value
}

// IsZero reports whether the id is the zero value.
func (id ID) IsZero() bool {
	return id.value == ""
}

// Equal compares two ids in constant time over their byte
// representation.
func (id ID) Equal(other ID) bool {
	return subtle.ConstantTimeCompare([]byte(id.value), []byte(other.value)) == 1
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the same
// strict grammar as ParseID.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
