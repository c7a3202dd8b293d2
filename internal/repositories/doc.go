// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [UserRepository] : accounts keyed by (provider, uid)
//   - [WorkRepository] : catalog CRUD with category grouping and vote tallies
//   - [VoteRepository] : the vote ledger
//
// Integrity rules live in the schema rather than in Go: the (user_id, work_id) unique index
// guarantees one vote per pair even under concurrent submissions, and ON DELETE CASCADE
// removes a work's votes with it. Repositories translate the resulting driver errors into
// [shared.ErrDuplicateVote], [shared.ErrDuplicateUser], and [shared.ErrNotFound].
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs.
package repositories
