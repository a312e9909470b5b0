// Package id implements the fixed-length base62 identifier formats used
// throughout the storage core: ID8 for deltas, ID16 for documents and
// users, ID32 for larger-scope identifiers (schema families, node
// owners). See doc.go for the full format description.
package id

import (
	"errors"

	"github.com/google/uuid"
)

// alphabet is the base62 character set: digits, uppercase, lowercase,
// in that order. Equality and ordering of IDs are defined over the raw
// byte array, not over the decoded numeric value.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidLength is returned when parsing an identifier of the wrong
// byte length, or containing bytes outside the base62 alphabet.
var ErrInvalidLength = errors.New("id: invalid length or alphabet")

var reverseAlphabet [256]int8

func init() {
	for i := range reverseAlphabet {
		reverseAlphabet[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		reverseAlphabet[alphabet[i]] = int8(i)
	}
}

// ID8 is an 8-byte ASCII base62 identifier, used for delta IDs.
type ID8 [8]byte

// ID16 is a 16-byte ASCII base62 identifier, used for document and user IDs.
type ID16 [16]byte

// ID32 is a 32-byte ASCII base62 identifier, used for schema families and
// other wide-scope identifiers.
type ID32 [32]byte

// String implementations return the raw ASCII bytes as a Go string —
// this is a zero-validation view, not a re-encoding.
func (i ID8) String() string  { return string(i[:]) }
func (i ID16) String() string { return string(i[:]) }
func (i ID32) String() string { return string(i[:]) }

// randomBase62 fills dst with random bytes from the base62 alphabet,
// drawn from as many UUIDv4 values (via google/uuid) as the identifier
// width needs, for every ID width. Using google/uuid's
// random source (which itself reads crypto/rand) keeps a single,
// well-reviewed randomness path across the module instead of
// duplicating one per ID width.
func randomBase62(dst []byte) {
	need := len(dst)
	raw := make([]byte, 0, need+16)
	for len(raw) < need {
		u := uuid.New()
		raw = append(raw, u[:]...)
	}
	for i := range dst {
		dst[i] = alphabet[int(raw[i])%len(alphabet)]
	}
}

// RandomID8 returns a new random ID8.
func RandomID8() ID8 {
	var out ID8
	randomBase62(out[:])
	return out
}

// RandomID16 returns a new random ID16.
func RandomID16() ID16 {
	var out ID16
	randomBase62(out[:])
	return out
}

// RandomID32 returns a new random ID32.
func RandomID32() ID32 {
	var out ID32
	randomBase62(out[:])
	return out
}

// ParseID8 validates and converts a string into an ID8. Parse∘format is
// the identity for any string produced by ID8.String on a value built
// from RandomID8 or ParseID8 itself.
func ParseID8(s string) (ID8, error) {
	var out ID8
	if err := parseInto(out[:], s); err != nil {
		return out, err
	}
	copy(out[:], s)
	return out, nil
}

// ParseID16 validates and converts a string into an ID16.
func ParseID16(s string) (ID16, error) {
	var out ID16
	if err := parseInto(out[:], s); err != nil {
		return out, err
	}
	copy(out[:], s)
	return out, nil
}

// ParseID32 validates and converts a string into an ID32.
func ParseID32(s string) (ID32, error) {
	var out ID32
	if err := parseInto(out[:], s); err != nil {
		return out, err
	}
	copy(out[:], s)
	return out, nil
}

func parseInto(dst []byte, s string) error {
	if len(s) != len(dst) {
		return ErrInvalidLength
	}
	for i := 0; i < len(s); i++ {
		if reverseAlphabet[s[i]] < 0 {
			return ErrInvalidLength
		}
	}
	return nil
}
