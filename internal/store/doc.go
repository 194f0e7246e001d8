// Package store holds the job ledger: jobs and their weekly updates, kept in
// memory and guarded for concurrent use.
//
// LoadFile parses and validates a YAML jobs file. A Store is built once from
// those jobs and handed to every consumer; Replace swaps in a reloaded file.
// AddUpdate and SetLifecycle apply boundary validation before mutating, so the
// variance engine only ever sees in-range values.
package store
