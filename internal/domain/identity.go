package domain

// Role is the closed set of identity roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is a known variant.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Identity is the resolved caller identity supplied by the request layer.
// The core consumes it; it never issues or refreshes credentials.
type Identity struct {
	Subject string   `json:"subject"`
	Role    Role     `json:"role"`
	RootIDs []string `json:"root_ids,omitempty"`
	Active  bool     `json:"active"`
}

// HasRoot reports whether rootID is in the identity's assigned-root set.
// The set is meaningful for USER identities only; ADMIN is root-agnostic.
func (id Identity) HasRoot(rootID string) bool {
	for _, r := range id.RootIDs {
		if r == rootID {
			return true
		}
	}
	return false
}
