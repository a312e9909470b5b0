package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID16RoundTrip(t *testing.T) {
	got := RandomID16()
	parsed, err := ParseID16(got.String())
	require.NoError(t, err)
	assert.Equal(t, got, parsed)
}

func TestID8RoundTrip(t *testing.T) {
	got := RandomID8()
	parsed, err := ParseID8(got.String())
	require.NoError(t, err)
	assert.Equal(t, got, parsed)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := ParseID16("tooshort")
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestParseRejectsBadAlphabet(t *testing.T) {
	bad := "d00000000000000!" // 16 chars, trailing '!' invalid
	_, err := ParseID16(bad)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRandomIDsAreDistinct(t *testing.T) {
	a := RandomID16()
	b := RandomID16()
	assert.NotEqual(t, a, b)
}
