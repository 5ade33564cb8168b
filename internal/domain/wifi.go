package domain

import "time"

// WifiNetwork is a wireless network scoped to one root and anchored in one
// space. The password is held only in sealed form; PasswordSealed never
// marshals to JSON and plaintext leaves the core only through the reveal
// operation.
type WifiNetwork struct {
	ID             string    `json:"id"`
	RootID         string    `json:"root_id"`
	SpaceID        string    `json:"space_id"`
	SSID           string    `json:"ssid"`
	Security       string    `json:"security"`
	PasswordSealed string    `json:"-"`
	VlanID         string    `json:"vlan_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
