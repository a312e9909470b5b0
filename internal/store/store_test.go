package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econic-ai/massive-graph/internal/arena"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/wire"
)

func testConfig() Config {
	return Config{StrictUsers: false, ChunkClass: arena.Tiny, StreamPageCapacity: 16}
}

func TestLenientCreateDocumentImplicitlyCreatesUser(t *testing.T) {
	s := New(testConfig())
	userID := id.RandomID16()
	docID := id.RandomID16()

	_, err := s.CreateDocument(userID, docID, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.UserCount())
}

func TestStrictUsersRejectsUnknownUser(t *testing.T) {
	cfg := testConfig()
	cfg.StrictUsers = true
	s := New(cfg)

	_, err := s.CreateDocument(id.RandomID16(), id.RandomID16(), 1, 1, 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStrictUsersAllowsRegisteredUser(t *testing.T) {
	cfg := testConfig()
	cfg.StrictUsers = true
	s := New(cfg)

	userID := id.RandomID16()
	s.GetOrCreateUserSpace(userID)

	docID := id.RandomID16()
	_, err := s.CreateDocument(userID, docID, 1, 1, 0)
	require.NoError(t, err)
}

func TestApplyDeltaEndToEnd(t *testing.T) {
	s := New(testConfig())
	userID := id.RandomID16()
	docID := id.RandomID16()

	_, err := s.CreateDocument(userID, docID, 1, 1, 0)
	require.NoError(t, err)

	delta := wire.Delta{DocID: docID, Op: wire.OpSet, Payload: []byte("hi")}
	_, err = s.ApplyDelta(userID, delta, id.RandomID8(), id.RandomID16())
	require.NoError(t, err)

	d, err := s.GetDocument(userID, docID)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), d.CurrentPayload())
}

func TestUsersAreIsolated(t *testing.T) {
	s := New(testConfig())
	userA, userB := id.RandomID16(), id.RandomID16()
	docID := id.RandomID16()

	_, err := s.CreateDocument(userA, docID, 1, 1, 0)
	require.NoError(t, err)

	_, err = s.GetDocument(userB, docID)
	assert.Error(t, err)
}

func TestRemoveDocumentAndCount(t *testing.T) {
	s := New(testConfig())
	userID := id.RandomID16()
	docID := id.RandomID16()

	_, err := s.CreateDocument(userID, docID, 1, 1, 0)
	require.NoError(t, err)
	count, err := s.UserDocumentCount(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.RemoveDocument(userID, docID))
	count, err = s.UserDocumentCount(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
