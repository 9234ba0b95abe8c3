// Package repositories implements SQLite persistence for the promotion tracker.
//
// Two kinds of storage live here:
//
//   - [StorageRepository] : scoped key/value rows in session_storage. The client keeps the
//     logged-in user there, one scope per terminal session.
//   - [UserRepository], [ReleaseRepository], [TaskRepository] : the tables behind the
//     development server (`promo serve`).
//
// Entity IDs come from per-table sequence tables via [NextSequence], so they are small integers
// matching what the REST contract expects. Users and releases are soft deleted and excluded from
// lookups afterwards. Tasks keep their deleted flag visible because clients filter them.
//
// Lookups of missing rows return errors wrapping [shared.ErrNotFound].
package repositories
