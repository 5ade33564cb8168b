package domain

import "time"

// GraphDevice is the device view carried in graph snapshots.
type GraphDevice struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	SpaceID    string    `json:"space_id"`
	Vendor     string    `json:"vendor,omitempty"`
	Model      string    `json:"model,omitempty"`
	IsReceiver bool      `json:"is_receiver"`
	CreatedAt  time.Time `json:"created_at"`
}

// GraphConnection is a connection with its endpoint device ids resolved, so
// consumers can draw edges without joining interfaces themselves.
type GraphConnection struct {
	ID              string     `json:"id"`
	FromDeviceID    string     `json:"from_device_id"`
	ToDeviceID      string     `json:"to_device_id"`
	FromInterfaceID string     `json:"from_interface_id"`
	ToInterfaceID   string     `json:"to_interface_id"`
	Technology      Technology `json:"technology"`
	VlanID          string     `json:"vlan_id,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Graph is a read-only snapshot of one root's devices and connections.
// Filtering by technology, space, or device type is the caller's concern;
// the core always returns the full scoped graph.
type Graph struct {
	Devices     []GraphDevice     `json:"devices"`
	Connections []GraphConnection `json:"connections"`
}
