package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econic-ai/massive-graph/internal/arena"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/wire"
)

func testHeader() Header {
	return Header{DocID: id.RandomID16(), DocType: 1, SchemaFamily: 1}
}

func newTestDocument() *Document {
	a := arena.New(arena.Tiny)
	return New(testHeader(), a, 16)
}

func TestNewDocumentHasEmptyInitialVersion(t *testing.T) {
	d := newTestDocument()
	v := d.CurrentVersion()
	assert.Equal(t, uint64(0), v.VersionID)
	assert.Nil(t, d.CurrentPayload())
}

func TestApplyOpSetReplacesPayload(t *testing.T) {
	d := newTestDocument()
	delta := wire.Delta{DocID: d.Header.DocID, SchemaVersion: 1, Op: wire.OpSet, Payload: []byte("hello")}
	header, err := d.ApplyDelta(delta, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)
	assert.Equal(t, DeltaApplied, header.Status())

	assert.Equal(t, []byte("hello"), d.CurrentPayload())
	assert.Equal(t, uint64(1), d.CurrentVersion().VersionID)
}

func TestApplySequentialOpSetsProgressVersions(t *testing.T) {
	d := newTestDocument()
	for i, payload := range [][]byte{[]byte("v1"), []byte("v2"), []byte("v3")} {
		delta := wire.Delta{DocID: d.Header.DocID, SchemaVersion: 1, Op: wire.OpSet, Payload: payload}
		_, err := d.ApplyDelta(delta, id.RandomID8(), id.RandomID16())
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), d.CurrentVersion().VersionID)
		assert.Equal(t, payload, d.CurrentPayload())
	}
}

func TestApplyNonSetOpPreservesPayload(t *testing.T) {
	d := newTestDocument()
	set := wire.Delta{DocID: d.Header.DocID, SchemaVersion: 1, Op: wire.OpSet, Payload: []byte("base")}
	_, err := d.ApplyDelta(set, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)

	increment := wire.Delta{DocID: d.Header.DocID, SchemaVersion: 1, Op: wire.OpIncrement, Payload: []byte("+1")}
	_, err = d.ApplyDelta(increment, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)

	assert.Equal(t, []byte("base"), d.CurrentPayload())
	assert.Equal(t, uint64(2), d.CurrentVersion().VersionID)
}

func TestApplyRejectsMismatchedDocID(t *testing.T) {
	d := newTestDocument()
	delta := wire.Delta{DocID: id.RandomID16(), Op: wire.OpSet, Payload: []byte("x")}
	header, err := d.ApplyDelta(delta, id.RandomID8(), id.RandomID16())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, DeltaRejected, header.Status())
	assert.Equal(t, uint64(0), d.CurrentVersion().VersionID)
}

func TestLargePayloadIsCompressedAndRoundTrips(t *testing.T) {
	d := newTestDocument()
	big := make([]byte, compressThreshold*4)
	for i := range big {
		big[i] = byte(i % 251)
	}
	delta := wire.Delta{DocID: d.Header.DocID, SchemaVersion: 1, Op: wire.OpSet, Payload: big}
	_, err := d.ApplyDelta(delta, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)

	assert.True(t, d.CurrentVersion().Compressed)
	assert.Equal(t, big, d.CurrentPayload())
}

func TestPendingCountTracksInFlightDeltas(t *testing.T) {
	d := newTestDocument()
	assert.Equal(t, int64(0), d.PendingCount())
	delta := wire.Delta{DocID: d.Header.DocID, Op: wire.OpSet, Payload: []byte("x")}
	_, err := d.ApplyDelta(delta, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.PendingCount())

	// AppendDelta alone leaves the delta in flight.
	_, _, err = d.AppendDelta(delta, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.PendingCount())
}

func TestDeltaHeaderStatusTransitions(t *testing.T) {
	h := NewDeltaHeader(id.RandomID8(), id.RandomID16(), 10, 0)
	assert.Equal(t, DeltaPending, h.Status())
	h.SetStatus(DeltaApplied)
	assert.Equal(t, DeltaApplied, h.Status())
	assert.Equal(t, "applied", h.Status().String())
}
