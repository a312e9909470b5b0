// Package store implements Store: the top-level entry point fanning
// user-parameterized operations out to each user's Space. See doc.go
// for the full design and the get-or-create policy decision.
package store

import (
	"errors"

	"github.com/econic-ai/massive-graph/internal/arena"
	"github.com/econic-ai/massive-graph/internal/docstore"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/mph"
	"github.com/econic-ai/massive-graph/internal/optindex"
	"github.com/econic-ai/massive-graph/internal/userspace"
	"github.com/econic-ai/massive-graph/internal/wire"
)

// ErrUserNotFound is returned when StrictUsers is enabled and a
// user-parameterized call addresses a user with no existing Space.
var ErrUserNotFound = errors.New("store: user not found")

func userIDBytes(k id.ID16) []byte {
	b := make([]byte, 16)
	copy(b, k[:])
	return b
}

// Config holds Store's behavioral knobs, including the resolved policy
// on implicit user-space creation.
type Config struct {
	// StrictUsers, when true, makes every user-parameterized
	// convenience method (CreateDocument, GetDocument, ApplyDelta, ...)
	// require the user's Space to already exist via GetOrCreateUserSpace
	// or explicit registration, returning ErrUserNotFound otherwise.
	// When false (the default), a user's first touch implicitly
	// creates their Space.
	StrictUsers bool

	// ChunkClass is the arena chunk size class shared by every Space
	// this Store creates.
	ChunkClass arena.ChunkClass

	// StreamPageCapacity is the page size for every stream.Stream this
	// Store's spaces and documents create. 0 selects
	// stream.DefaultPageCapacity.
	StreamPageCapacity int
}

// DefaultConfig returns a Config with lenient user creation and Medium
// chunks, suitable for most callers.
func DefaultConfig() Config {
	return Config{StrictUsers: false, ChunkClass: arena.Medium, StreamPageCapacity: 0}
}

// Store is the root of the in-memory storage substrate: one
// OptimisedIndex mapping user ID to Space, an arena shared across
// every space it creates, and the StrictUsers policy controlling
// implicit space creation.
type Store struct {
	cfg    Config
	arena  *arena.Arena
	spaces *optindex.Index[id.ID16, *userspace.Space]
}

// New creates an empty Store.
func New(cfg Config) *Store {
	return &Store{
		cfg:    cfg,
		arena:  arena.New(cfg.ChunkClass),
		spaces: optindex.New[id.ID16, *userspace.Space](16, userIDBytes, mph.DefaultSeed),
	}
}

// GetUserSpace returns userID's Space, or ErrUserNotFound if none
// exists yet.
func (s *Store) GetUserSpace(userID id.ID16) (*userspace.Space, error) {
	sp, ok := s.spaces.Get(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	return sp, nil
}

// GetOrCreateUserSpace returns userID's Space, creating an empty one on
// first touch if none exists.
func (s *Store) GetOrCreateUserSpace(userID id.ID16) *userspace.Space {
	if sp, ok := s.spaces.Get(userID); ok {
		return sp
	}
	sp := userspace.New(userID, s.arena, s.cfg.StreamPageCapacity)
	s.spaces.Upsert(userID, sp)
	return sp
}

// resolve applies the StrictUsers policy: GetUserSpace under strict
// mode, GetOrCreateUserSpace (never failing) otherwise.
func (s *Store) resolve(userID id.ID16) (*userspace.Space, error) {
	if s.cfg.StrictUsers {
		return s.GetUserSpace(userID)
	}
	return s.GetOrCreateUserSpace(userID), nil
}

// CreateDocument creates docID under userID's space, implicitly
// creating the space first unless StrictUsers is set.
func (s *Store) CreateDocument(userID, docID id.ID16, docType uint8, schemaFamily uint32, createdAtNS int64) (*docstore.Document, error) {
	sp, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	return sp.CreateDocument(docID, docType, schemaFamily, createdAtNS)
}

// GetDocument returns docID from userID's space.
func (s *Store) GetDocument(userID, docID id.ID16) (*docstore.Document, error) {
	sp, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	return sp.GetDocument(docID)
}

// ApplyDelta routes delta to userID's space.
func (s *Store) ApplyDelta(userID id.ID16, delta wire.Delta, deltaID id.ID8, executorID id.ID16) (*docstore.DeltaHeader, error) {
	sp, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	return sp.ApplyDelta(delta, deltaID, executorID)
}

// RemoveDocument removes docID from userID's space.
func (s *Store) RemoveDocument(userID, docID id.ID16) error {
	sp, err := s.resolve(userID)
	if err != nil {
		return err
	}
	return sp.RemoveDocument(docID)
}

// UserDocumentCount returns the number of live documents owned by
// userID, or ErrUserNotFound under StrictUsers for an unknown user.
func (s *Store) UserDocumentCount(userID id.ID16) (int, error) {
	sp, err := s.resolve(userID)
	if err != nil {
		return 0, err
	}
	return sp.DocumentCount(), nil
}

// UserCount returns the number of user spaces the Store currently
// tracks.
func (s *Store) UserCount() int {
	return s.spaces.Len()
}

// Publish folds this Store's user-space index overlay into a fresh
// frozen base. It does not cascade into each Space's own document
// index — callers that want both publish each independently, since
// they are typically scheduled on different thresholds.
func (s *Store) Publish() error {
	return s.spaces.Publish()
}
