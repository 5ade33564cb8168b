// Package access implements the authorization predicate for the catalog.
//
// Every public operation of every service passes through this package before
// touching any other component. The predicate is pure: the decision depends
// only on the caller-supplied identity, the target root, and the action tier.
//
// ADMIN identities may perform every action on every root. USER identities
// may perform read-tier actions (read, reveal) on their assigned roots only;
// every write-tier action is denied regardless of root. Inactive identities
// are denied everything.
//
// Require maps denials onto the error taxonomy with one deliberate asymmetry:
// a USER denied a read-tier action gets ErrNotFound, not ErrForbidden, so the
// existence of data outside the assigned roots never leaks through error
// codes.
package access

import "netatlas/internal/domain"

// Action is the closed set of operation tiers used for authorization.
type Action string

const (
	// ActionRead covers list and get operations.
	ActionRead Action = "read"
	// ActionReveal covers plaintext exposure of Wi-Fi passwords. It is a
	// sensitive read: gated like ActionRead for USER, always allowed for
	// ADMIN.
	ActionReveal Action = "reveal"
	// ActionWrite covers every mutation plus device-secret management,
	// which is administrator territory even for its read paths.
	ActionWrite Action = "write"
)

// readTier reports whether the action is allowed for USER identities at all.
func (a Action) readTier() bool {
	return a == ActionRead || a == ActionReveal
}

// Authorize reports whether identity may perform action against rootID.
// Pure predicate, no side effects.
func Authorize(identity domain.Identity, rootID string, action Action) bool {
	if !identity.Active {
		return false
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return action.readTier() && identity.HasRoot(rootID)
	default:
		return false
	}
}

// Require returns nil when the action is allowed, and otherwise an error from
// the domain taxonomy: ErrNotFound for read-tier denials of USER identities,
// ErrForbidden for everything else.
func Require(identity domain.Identity, rootID string, action Action) error {
	if Authorize(identity, rootID, action) {
		return nil
	}
	if identity.Active && identity.Role == domain.RoleUser && action.readTier() {
		return domain.ErrNotFound
	}
	return domain.ErrForbidden
}
