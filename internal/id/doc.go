// Package id provides the fixed-length identifier formats used across the
// storage core.
//
// # Formats
//
// ID8, ID16, and ID32 are fixed-length byte arrays whose bytes are always
// ASCII characters drawn from the base62 alphabet `[0-9A-Za-z]` (62
// symbols, digits first). They are not varint-packed or base64: every
// byte of the array is always a printable base62 character, which keeps
// equality and ordering simple (raw byte-array compare) and keeps the
// wire format self-describing without a length prefix.
//
// # Generation
//
// Random IDs are generated from a UUIDv4 byte stream (github.com/google/uuid,
// itself backed by crypto/rand) reduced into the base62 alphabet one byte
// at a time. This is a convenience source of entropy, not a format
// requirement — any random or deterministic byte source producing valid
// base62 characters is a legal ID.
//
// # Equality and ordering
//
// Two IDs are equal iff their underlying byte arrays are equal. Ordering
// (where used, e.g. for deterministic iteration) is lexicographic over
// the raw bytes, not over any decoded numeric value.
package id
