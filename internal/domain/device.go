package domain

import "time"

// Capability identifies a wireless or wired technology a receiver device can
// coordinate. The set is closed so connection legality stays a total,
// exhaustively testable function.
type Capability string

const (
	CapabilityWifi         Capability = "wifi"
	CapabilityEthernet     Capability = "ethernet"
	CapabilityZigbee       Capability = "zigbee"
	CapabilityMatterThread Capability = "matter_thread"
	CapabilityBluetooth    Capability = "bluetooth"
	CapabilityBLE          Capability = "ble"
)

// AllCapabilities lists every capability variant in a stable order.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityWifi,
		CapabilityEthernet,
		CapabilityZigbee,
		CapabilityMatterThread,
		CapabilityBluetooth,
		CapabilityBLE,
	}
}

// Valid reports whether c is a known capability variant.
func (c Capability) Valid() bool {
	for _, known := range AllCapabilities() {
		if c == known {
			return true
		}
	}
	return false
}

// CapabilitySet holds the capabilities a device supports. Only capabilities
// present with value true count as supported.
type CapabilitySet map[Capability]bool

// Has reports whether the set contains c.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// Empty reports whether no capability is set.
func (s CapabilitySet) Empty() bool {
	for _, on := range s {
		if on {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(s))
	for c, on := range s {
		out[c] = on
	}
	return out
}

// Device is a piece of equipment scoped to one root and anchored in one
// space. Capabilities are meaningful only when IsReceiver is true: a
// non-receiver device always carries an empty capability set.
type Device struct {
	ID           string        `json:"id"`
	RootID       string        `json:"root_id"`
	SpaceID      string        `json:"space_id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Vendor       string        `json:"vendor,omitempty"`
	Model        string        `json:"model,omitempty"`
	Serial       string        `json:"serial,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	IsReceiver   bool          `json:"is_receiver"`
	Capabilities CapabilitySet `json:"capabilities"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Supports reports whether the device is a receiver with capability c.
func (d *Device) Supports(c Capability) bool {
	return d.IsReceiver && d.Capabilities.Has(c)
}

// Interface is a physical or logical port of exactly one device. Its
// lifecycle is tied to the device: deleting the device removes it and every
// connection that references it.
type Interface struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	MAC       string    `json:"mac,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
