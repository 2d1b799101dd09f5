// Package store persists shared loading plans in SQLite so that a plan can
// be retrieved later by its id. The schema is managed with embedded
// migrations.
package store
