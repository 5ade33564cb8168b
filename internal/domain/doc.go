// Package domain defines the core domain types for the netatlas infrastructure catalog.
//
// This package contains the entities and value objects that represent the
// catalog: ownership roots and their space hierarchy, VLANs, Wi-Fi networks,
// devices with their interfaces and inter-device connections, and sealed
// secrets.
//
// # Multi-tenancy
//
// Every entity is scoped to exactly one Root, an independently managed
// ownership tree. Root ids are passed explicitly on every operation; nothing
// in the system relies on an ambient "current root".
//
// # Hierarchy
//
// Space is a node in a Root's location tree. The root node of each tree is a
// Space whose id equals its root id and which has no parent. Every other
// Space has a parent in the same tree; cycles are never reachable through the
// public API.
//
// # Connections
//
// Connection links two Interfaces of devices in the same root. Technology is
// a closed enumeration and legality is a total function over technology and
// the endpoint devices' capability sets: ETHERNET requires a VLAN, the
// short-range wireless technologies require a qualifying receiver endpoint.
//
// # Confidentiality
//
// Wi-Fi passwords and secret values are held only in sealed form. The sealed
// fields never marshal to JSON; plaintext exists only in the return value of
// an explicit reveal operation.
//
// # Design Principles
//
// - No database or external dependencies
// - Closed enumerations with meaningful constants
// - Errors as a small fixed taxonomy, matched with errors.Is
package domain
