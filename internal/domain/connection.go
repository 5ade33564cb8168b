package domain

import "time"

// Technology is the closed set of connection media.
type Technology string

const (
	TechnologyEthernet         Technology = "ETHERNET"
	TechnologyFiber            Technology = "FIBER"
	TechnologyWifi             Technology = "WIFI"
	TechnologyZigbee           Technology = "ZIGBEE"
	TechnologyMatterOverThread Technology = "MATTER_OVER_THREAD"
	TechnologyBluetooth        Technology = "BLUETOOTH"
	TechnologyBLE              Technology = "BLE"
	TechnologySerial           Technology = "SERIAL"
	TechnologyOther            Technology = "OTHER"
)

// AllTechnologies lists every technology variant in a stable order.
func AllTechnologies() []Technology {
	return []Technology{
		TechnologyEthernet,
		TechnologyFiber,
		TechnologyWifi,
		TechnologyZigbee,
		TechnologyMatterOverThread,
		TechnologyBluetooth,
		TechnologyBLE,
		TechnologySerial,
		TechnologyOther,
	}
}

// Valid reports whether t is a known technology variant.
func (t Technology) Valid() bool {
	for _, known := range AllTechnologies() {
		if t == known {
			return true
		}
	}
	return false
}

// RequiresVlan reports whether the technology must carry a VLAN reference.
// Supplying a VLAN on any other technology is rejected, not ignored.
func (t Technology) RequiresVlan() bool {
	return t == TechnologyEthernet
}

// RequiredCapability returns the receiver capability one endpoint device must
// support for the technology, and whether one is required at all. Together
// with RequiresVlan this makes connection legality a total function over the
// technology enum.
func (t Technology) RequiredCapability() (Capability, bool) {
	switch t {
	case TechnologyZigbee:
		return CapabilityZigbee, true
	case TechnologyMatterOverThread:
		return CapabilityMatterThread, true
	case TechnologyBluetooth:
		return CapabilityBluetooth, true
	case TechnologyBLE:
		return CapabilityBLE, true
	default:
		return "", false
	}
}

// Connection links two interfaces of devices in the same root. VlanID is set
// only for ETHERNET connections. Legality is validated at creation and at
// edits touching technology, VLAN, or endpoints; later capability edits on
// the endpoint devices do not retroactively invalidate it.
type Connection struct {
	ID              string     `json:"id"`
	RootID          string     `json:"root_id"`
	FromInterfaceID string     `json:"from_interface_id"`
	ToInterfaceID   string     `json:"to_interface_id"`
	Technology      Technology `json:"technology"`
	VlanID          string     `json:"vlan_id,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
