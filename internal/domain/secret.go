package domain

import "time"

// SecretKind categorizes device secrets.
type SecretKind string

const (
	SecretKindPassword SecretKind = "PASSWORD"
	SecretKindToken    SecretKind = "TOKEN"
	SecretKindAPIKey   SecretKind = "API_KEY"
	SecretKindOther    SecretKind = "OTHER"
)

// Valid reports whether k is a known secret kind.
func (k SecretKind) Valid() bool {
	switch k {
	case SecretKindPassword, SecretKindToken, SecretKindAPIKey, SecretKindOther:
		return true
	}
	return false
}

// Secret is a confidential value scoped to one root, optionally linked to a
// device in the same root. A linked secret is cascade-deleted with its
// device. ValueSealed never marshals to JSON; plaintext leaves the core only
// through the reveal operation.
type Secret struct {
	ID          string     `json:"id"`
	RootID      string     `json:"root_id"`
	Kind        SecretKind `json:"kind"`
	Name        string     `json:"name"`
	ValueSealed string     `json:"-"`
	DeviceID    string     `json:"device_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
