package repository

import (
	"context"

	"netatlas/internal/domain"
)

// Repository defines data access for the catalog. All implementations must
// honor the contract documented in the package comment.
type Repository interface {
	// Roots. A root is the origin Space of its tree (id == root_id).
	CreateRoot(ctx context.Context, root *domain.Space) error
	GetRoot(ctx context.Context, rootID string) (*domain.Space, error)
	ListRoots(ctx context.Context) ([]domain.Space, error)
	DeleteRootCascade(ctx context.Context, rootID string) error

	// Spaces
	CreateSpace(ctx context.Context, space *domain.Space) error
	GetSpace(ctx context.Context, id string) (*domain.Space, error)
	UpdateSpace(ctx context.Context, space *domain.Space) error
	ListSpaces(ctx context.Context, rootID string) ([]domain.Space, error)
	DeleteSpaceCascade(ctx context.Context, spaceID string) error
	DeviceCountsBySpace(ctx context.Context, rootID string) (map[string]int, error)

	// VLANs
	CreateVlan(ctx context.Context, vlan *domain.Vlan) error
	GetVlan(ctx context.Context, id string) (*domain.Vlan, error)
	UpdateVlan(ctx context.Context, vlan *domain.Vlan) error
	ListVlans(ctx context.Context, rootID string) ([]domain.Vlan, error)
	DeleteVlan(ctx context.Context, id string) error
	VlanReferenceCounts(ctx context.Context, vlanID string) (wifiRefs, connectionRefs int, err error)

	// Wi-Fi networks
	CreateWifiNetwork(ctx context.Context, network *domain.WifiNetwork) error
	GetWifiNetwork(ctx context.Context, id string) (*domain.WifiNetwork, error)
	UpdateWifiNetwork(ctx context.Context, network *domain.WifiNetwork) error
	ListWifiNetworks(ctx context.Context, rootID string) ([]domain.WifiNetwork, error)
	DeleteWifiNetwork(ctx context.Context, id string) error

	// Devices
	CreateDevice(ctx context.Context, device *domain.Device) error
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	UpdateDevice(ctx context.Context, device *domain.Device) error
	ListDevices(ctx context.Context, rootID, spaceID string) ([]domain.Device, error)
	DeleteDeviceCascade(ctx context.Context, id string) error

	// Interfaces
	CreateInterface(ctx context.Context, iface *domain.Interface) error
	GetInterface(ctx context.Context, id string) (*domain.Interface, error)
	GetInterfaceWithDevice(ctx context.Context, id string) (*domain.Interface, *domain.Device, error)
	UpdateInterface(ctx context.Context, iface *domain.Interface) error
	ListInterfaces(ctx context.Context, deviceID string) ([]domain.Interface, error)
	DeleteInterfaceCascade(ctx context.Context, id string) error

	// Connections
	CreateConnection(ctx context.Context, conn *domain.Connection) error
	GetConnection(ctx context.Context, id string) (*domain.Connection, error)
	UpdateConnection(ctx context.Context, conn *domain.Connection) error
	ListConnections(ctx context.Context, rootID, deviceID string) ([]domain.GraphConnection, error)
	DeleteConnection(ctx context.Context, id string) error
	Graph(ctx context.Context, rootID string) (*domain.Graph, error)

	// Secrets
	CreateSecret(ctx context.Context, secret *domain.Secret) error
	GetSecret(ctx context.Context, id string) (*domain.Secret, error)
	ListSecrets(ctx context.Context, rootID, deviceID string) ([]domain.Secret, error)
	DeleteSecret(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
