package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econic-ai/massive-graph/internal/id"
)

func TestDeltaRoundTrip(t *testing.T) {
	d := Delta{
		DocID:         id.RandomID16(),
		SchemaVersion: 7,
		Op:            OpIncrement,
		Params: []Param{
			{Type: 1, Value: []byte("n")},
			{Type: 2, Value: []byte{0x01}},
		},
		Payload: []byte("+1"),
	}

	enc, err := Encode(d)
	require.NoError(t, err)

	got, err := Decode(enc)
	require.NoError(t, err)

	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Byte-exact: re-encoding the decoded value reproduces the same bytes.
	enc2, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, enc, enc2)
}

func TestDeltaNoParamsNoPayload(t *testing.T) {
	d := Delta{DocID: id.RandomID16(), SchemaVersion: 1, Op: OpClear}
	enc, err := Encode(d)
	require.NoError(t, err)
	got, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, d.DocID, got.DocID)
	assert.Equal(t, d.Op, got.Op)
	assert.Empty(t, got.Params)
	assert.Empty(t, got.Payload)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeBadParamLength(t *testing.T) {
	d := Delta{DocID: id.RandomID16(), SchemaVersion: 1, Op: OpSet, Params: []Param{{Type: 1, Value: []byte("x")}}}
	enc, err := Encode(d)
	require.NoError(t, err)
	truncated := enc[:len(enc)-1]
	_, err = Decode(truncated)
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestIsPrivileged(t *testing.T) {
	assert.False(t, OpSet.IsPrivileged())
	assert.False(t, OpDeltas.IsPrivileged())
	assert.True(t, OpType(0x80).IsPrivileged())
	assert.True(t, OpType(0xFF).IsPrivileged())
}

func TestEncodedFieldRefRoundTrip(t *testing.T) {
	f := EncodedFieldRef{
		SchemaVersion: 42,
		FieldIndex:    300,
		Params:        []Param{{Type: 9, Value: []byte("v")}},
	}
	enc, err := EncodeFieldRef(f)
	require.NoError(t, err)
	got, err := DecodeFieldRef(enc)
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
