// Package repository defines the data access interface for netatlas.
//
// This package provides the repository abstraction for persisting and
// retrieving catalog entities. The only implementation lives in the sqlite
// subpackage; the interface keeps a second driver possible and lets service
// tests run against an in-memory store.
//
// # Contract
//
// Get methods return (nil, nil) when the entity does not exist; callers own
// the translation to domain.ErrNotFound so scope-aware error shaping stays in
// one place.
//
// Multi-statement mutations — cascading deletes in particular — run inside a
// single transaction and are all-or-nothing: a partially applied cascade is
// never observable. Cascades traverse the space tree with an explicit
// worklist instead of recursion, then batch-delete dependents leaves-first.
//
// VLAN number uniqueness per root is enforced by a storage-level uniqueness
// constraint, not only by application checks, so two concurrent creations
// cannot race past each other; violations surface as domain.ErrConflict.
package repository
