package domain

import "errors"

// Error taxonomy for the catalog core. Callers match with errors.Is; the
// transport layer owns the mapping to user-facing responses.
var (
	// ErrForbidden is returned when the identity may not perform the
	// operation. Read-tier denials for USER identities are reported as
	// ErrNotFound instead, so the existence of entities outside the
	// caller's assigned roots never leaks.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced entity does not exist or
	// is outside the caller's scope.
	ErrNotFound = errors.New("not found")

	// ErrInvalidHierarchy is returned for cyclic or cross-root parent
	// assignments in the space tree.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrConflict is returned for duplicate VLAN numbers within a root and
	// for deletions refused while dependent entities remain.
	ErrConflict = errors.New("conflict")

	// ErrInvalidRange is returned when a VLAN number is outside [1, 4094].
	ErrInvalidRange = errors.New("invalid range")

	// ErrMissingVlan is returned when a connection technology requires a
	// VLAN and none was supplied.
	ErrMissingVlan = errors.New("missing vlan")

	// ErrMissingReceiverCapability is returned when a connection
	// technology requires a receiver endpoint and neither endpoint device
	// qualifies.
	ErrMissingReceiverCapability = errors.New("missing receiver capability")

	// ErrInvalidTechnology is returned for unknown technologies and for a
	// VLAN supplied on a technology that does not carry one.
	ErrInvalidTechnology = errors.New("invalid technology")

	// ErrDecryption is returned by the vault when a sealed value cannot be
	// opened (malformed token or key mismatch).
	ErrDecryption = errors.New("decryption failed")

	// ErrValidation is returned for malformed input that does not fit a
	// more specific category.
	ErrValidation = errors.New("validation failed")
)
