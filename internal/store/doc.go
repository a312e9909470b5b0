// Package store is the single entry point for the whole in-memory
// substrate: every user-parameterized operation (CreateDocument,
// GetDocument, ApplyDelta, ...) is addressed as (userID, ...) and
// fanned out to that user's userspace.Space.
//
// # Implicit user creation
//
// By default a user's first touch implicitly creates their Space —
// there is no provisioning round-trip before a new collaborator's
// first delta can land. Setting Config.StrictUsers true switches every
// convenience method over to GetUserSpace's behavior (ErrUserNotFound
// on an unregistered user); callers in that mode must call
// GetOrCreateUserSpace (or otherwise register a user) before routing
// operations to them. See DESIGN.md for why the lenient default was
// chosen.
//
// # No cross-user locking
//
// Two different users' operations never contend: Store only takes a
// lock (via optindex's internal publish-exclusion) when publishing its
// own user-space index, never on the CreateDocument/GetDocument/
// ApplyDelta data path, which only ever touches the target Space.
package store
