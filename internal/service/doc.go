// Package service implements the catalog's business logic on top of the
// repository layer.
//
// # Services
//
//   - TreeService: roots and their space trees
//   - NetworkService: VLANs and Wi-Fi networks
//   - DeviceService: devices, interfaces, connections, and the graph
//   - SecretService: sealed device secrets
//
// Every public operation takes the resolved caller identity and an explicit
// root id, authorizes first, and touches nothing on denial. Services return
// the error taxonomy from the domain package; transport owns the mapping to
// status codes.
package service
