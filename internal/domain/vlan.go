package domain

import "time"

// VLAN numbers occupy the 802.1Q usable range.
const (
	VlanNumberMin = 1
	VlanNumberMax = 4094
)

// Vlan is a layer-2 segment scoped to one root. Number is unique within the
// root, not globally; the storage layer enforces this with a uniqueness
// constraint so concurrent creations cannot race past the check.
type Vlan struct {
	ID           string    `json:"id"`
	RootID       string    `json:"root_id"`
	Number       int       `json:"vlan_id"`
	Name         string    `json:"name"`
	SubnetMask   string    `json:"subnet_mask"`
	IPRangeStart string    `json:"ip_range_start"`
	IPRangeEnd   string    `json:"ip_range_end"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidVlanNumber reports whether n is inside the usable VLAN range.
func ValidVlanNumber(n int) bool {
	return n >= VlanNumberMin && n <= VlanNumberMax
}
