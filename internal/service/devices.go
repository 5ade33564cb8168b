package service

import (
	"context"
	"fmt"
	"strings"

	"netatlas/internal/access"
	"netatlas/internal/domain"
	"netatlas/internal/repository"
)

// DeviceService manages devices, their interfaces, the connections between
// them, and the per-root graph snapshot.
type DeviceService struct {
	repo     repository.Repository
	eventBus *EventBus
}

// NewDeviceService creates a new device service
func NewDeviceService(repo repository.Repository, eventBus *EventBus) *DeviceService {
	return &DeviceService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// DeviceInput holds the caller-supplied fields of a device.
type DeviceInput struct {
	SpaceID      string               `json:"space_id"`
	Name         string               `json:"name"`
	Type         string               `json:"type"`
	Vendor       string               `json:"vendor,omitempty"`
	Model        string               `json:"model,omitempty"`
	Serial       string               `json:"serial,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	IsReceiver   bool                 `json:"is_receiver"`
	Capabilities domain.CapabilitySet `json:"capabilities,omitempty"`
}

// DeviceUpdate is a partial update; nil fields are left unchanged. Setting
// IsReceiver false clears every capability flag; supplying capabilities on a
// non-receiver is rejected.
type DeviceUpdate struct {
	SpaceID      *string               `json:"space_id,omitempty"`
	Name         *string               `json:"name,omitempty"`
	Type         *string               `json:"type,omitempty"`
	Vendor       *string               `json:"vendor,omitempty"`
	Model        *string               `json:"model,omitempty"`
	Serial       *string               `json:"serial,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
	IsReceiver   *bool                 `json:"is_receiver,omitempty"`
	Capabilities *domain.CapabilitySet `json:"capabilities,omitempty"`
}

// InterfaceInput holds the caller-supplied fields of an interface.
type InterfaceInput struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	MAC      string `json:"mac,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// InterfaceUpdate is a partial update; nil fields are left unchanged.
type InterfaceUpdate struct {
	Name  *string `json:"name,omitempty"`
	Type  *string `json:"type,omitempty"`
	MAC   *string `json:"mac,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// ConnectionInput holds the caller-supplied fields of a connection.
type ConnectionInput struct {
	FromInterfaceID string            `json:"from_interface_id"`
	ToInterfaceID   string            `json:"to_interface_id"`
	Technology      domain.Technology `json:"technology"`
	VlanID          string            `json:"vlan_id,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// ConnectionUpdate is a partial update; nil fields are left unchanged.
// Legality is re-checked only when technology, VLAN, or an endpoint changes;
// a notes-only edit never re-validates.
type ConnectionUpdate struct {
	FromInterfaceID *string            `json:"from_interface_id,omitempty"`
	ToInterfaceID   *string            `json:"to_interface_id,omitempty"`
	Technology      *domain.Technology `json:"technology,omitempty"`
	VlanID          *string            `json:"vlan_id,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

// ============================================================================
// Devices
// ============================================================================

// normalizeCapabilities validates the receiver/capability pairing: unknown
// capability names are rejected, a non-receiver may not carry flags, and a
// non-receiver always ends up with an empty set.
func normalizeCapabilities(isReceiver bool, set domain.CapabilitySet) (domain.CapabilitySet, error) {
	for c, on := range set {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown capability %q", domain.ErrValidation, c)
		}
		if on && !isReceiver {
			return nil, fmt.Errorf("%w: capability %q requires is_receiver", domain.ErrValidation, c)
		}
	}
	if !isReceiver {
		return domain.CapabilitySet{}, nil
	}
	if set == nil {
		return domain.CapabilitySet{}, nil
	}
	return set.Clone(), nil
}

// CreateDevice creates a device anchored in a space of the root.
func (s *DeviceService) CreateDevice(ctx context.Context, identity domain.Identity, rootID string, input DeviceInput) (*domain.Device, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: device name is required", domain.ErrValidation)
	}
	if _, err := resolveSpace(ctx, s.repo, rootID, input.SpaceID); err != nil {
		return nil, err
	}
	capabilities, err := normalizeCapabilities(input.IsReceiver, input.Capabilities)
	if err != nil {
		return nil, err
	}

	device := &domain.Device{
		ID:           newID(),
		RootID:       rootID,
		SpaceID:      input.SpaceID,
		Name:         input.Name,
		Type:         input.Type,
		Vendor:       input.Vendor,
		Model:        input.Model,
		Serial:       input.Serial,
		Notes:        input.Notes,
		IsReceiver:   input.IsReceiver,
		Capabilities: capabilities,
		CreatedAt:    now(),
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventDeviceCreated,
		Payload: map[string]string{"root_id": rootID, "device_id": device.ID},
	})
	return device, nil
}

// GetDevice returns a device of the root together with its interfaces.
func (s *DeviceService) GetDevice(ctx context.Context, identity domain.Identity, rootID, id string) (*domain.Device, []domain.Interface, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, nil, err
	}
	device, err := resolveDevice(ctx, s.repo, rootID, id)
	if err != nil {
		return nil, nil, err
	}
	interfaces, err := s.repo.ListInterfaces(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return device, interfaces, nil
}

// UpdateDevice applies a partial update. Moving the device re-validates the
// target space; receiver and capability edits are normalized together, so
// clearing is_receiver clears the flags too.
func (s *DeviceService) UpdateDevice(ctx context.Context, identity domain.Identity, rootID, id string, update DeviceUpdate) (*domain.Device, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	device, err := resolveDevice(ctx, s.repo, rootID, id)
	if err != nil {
		return nil, err
	}

	if update.SpaceID != nil {
		if _, err := resolveSpace(ctx, s.repo, rootID, *update.SpaceID); err != nil {
			return nil, err
		}
		device.SpaceID = *update.SpaceID
	}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, fmt.Errorf("%w: device name is required", domain.ErrValidation)
		}
		device.Name = *update.Name
	}
	if update.Type != nil {
		device.Type = *update.Type
	}
	if update.Vendor != nil {
		device.Vendor = *update.Vendor
	}
	if update.Model != nil {
		device.Model = *update.Model
	}
	if update.Serial != nil {
		device.Serial = *update.Serial
	}
	if update.Notes != nil {
		device.Notes = *update.Notes
	}

	isReceiver := device.IsReceiver
	if update.IsReceiver != nil {
		isReceiver = *update.IsReceiver
	}
	capabilities := device.Capabilities
	if update.Capabilities != nil {
		capabilities = *update.Capabilities
	}
	if update.IsReceiver != nil && !isReceiver {
		// Clearing the receiver flag clears the flags, whether or not
		// the caller sent a capability set.
		if update.Capabilities == nil {
			capabilities = domain.CapabilitySet{}
		}
	}
	normalized, err := normalizeCapabilities(isReceiver, capabilities)
	if err != nil {
		return nil, err
	}
	device.IsReceiver = isReceiver
	device.Capabilities = normalized

	if err := s.repo.UpdateDevice(ctx, device); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventDeviceUpdated,
		Payload: map[string]string{"root_id": rootID, "device_id": id},
	})
	return device, nil
}

// ListDevices returns a root's devices, optionally narrowed to one space.
func (s *DeviceService) ListDevices(ctx context.Context, identity domain.Identity, rootID, spaceID string) ([]domain.Device, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if spaceID != "" {
		if _, err := resolveSpace(ctx, s.repo, rootID, spaceID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListDevices(ctx, rootID, spaceID)
}

// DeleteDevice removes a device with its interfaces, every connection
// referencing them, and its linked secrets.
func (s *DeviceService) DeleteDevice(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := resolveDevice(ctx, s.repo, rootID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDeviceCascade(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventDeviceDeleted,
		Payload: map[string]string{"root_id": rootID, "device_id": id},
	})
	return nil
}

// ============================================================================
// Interfaces
// ============================================================================

// CreateInterface adds an interface to a device of the root.
func (s *DeviceService) CreateInterface(ctx context.Context, identity domain.Identity, rootID string, input InterfaceInput) (*domain.Interface, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: interface name is required", domain.ErrValidation)
	}
	if _, err := resolveDevice(ctx, s.repo, rootID, input.DeviceID); err != nil {
		return nil, err
	}

	iface := &domain.Interface{
		ID:        newID(),
		DeviceID:  input.DeviceID,
		Name:      input.Name,
		Type:      input.Type,
		MAC:       input.MAC,
		Notes:     input.Notes,
		CreatedAt: now(),
	}
	if err := s.repo.CreateInterface(ctx, iface); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventInterfaceCreated,
		Payload: map[string]string{"root_id": rootID, "interface_id": iface.ID},
	})
	return iface, nil
}

// UpdateInterface applies a partial update to an interface of the root.
func (s *DeviceService) UpdateInterface(ctx context.Context, identity domain.Identity, rootID, id string, update InterfaceUpdate) (*domain.Interface, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	iface, _, err := s.resolveInterface(ctx, rootID, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, fmt.Errorf("%w: interface name is required", domain.ErrValidation)
		}
		iface.Name = *update.Name
	}
	if update.Type != nil {
		iface.Type = *update.Type
	}
	if update.MAC != nil {
		iface.MAC = *update.MAC
	}
	if update.Notes != nil {
		iface.Notes = *update.Notes
	}

	if err := s.repo.UpdateInterface(ctx, iface); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventInterfaceUpdated,
		Payload: map[string]string{"root_id": rootID, "interface_id": id},
	})
	return iface, nil
}

// ListInterfaces returns a device's interfaces ordered by name.
func (s *DeviceService) ListInterfaces(ctx context.Context, identity domain.Identity, rootID, deviceID string) ([]domain.Interface, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveDevice(ctx, s.repo, rootID, deviceID); err != nil {
		return nil, err
	}
	return s.repo.ListInterfaces(ctx, deviceID)
}

// DeleteInterface removes an interface and every connection referencing it.
func (s *DeviceService) DeleteInterface(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, _, err := s.resolveInterface(ctx, rootID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteInterfaceCascade(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventInterfaceDeleted,
		Payload: map[string]string{"root_id": rootID, "interface_id": id},
	})
	return nil
}

// resolveInterface loads an interface with its owning device and verifies
// the device belongs to the root.
func (s *DeviceService) resolveInterface(ctx context.Context, rootID, id string) (*domain.Interface, *domain.Device, error) {
	iface, device, err := s.repo.GetInterfaceWithDevice(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if iface == nil || device == nil || device.RootID != rootID {
		return nil, nil, fmt.Errorf("%w: interface %s", domain.ErrNotFound, id)
	}
	return iface, device, nil
}

// ============================================================================
// Connections
// ============================================================================

// CreateConnection links two interfaces of the root after the full legality
// check: distinct endpoints resolving within the root, the VLAN rule for the
// technology, and the receiver-capability rule where one applies.
func (s *DeviceService) CreateConnection(ctx context.Context, identity domain.Identity, rootID string, input ConnectionInput) (*domain.Connection, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}

	conn := &domain.Connection{
		ID:              newID(),
		RootID:          rootID,
		FromInterfaceID: input.FromInterfaceID,
		ToInterfaceID:   input.ToInterfaceID,
		Technology:      input.Technology,
		VlanID:          input.VlanID,
		Notes:           input.Notes,
		CreatedAt:       now(),
	}
	if err := s.checkConnectionLegality(ctx, conn); err != nil {
		return nil, err
	}
	if err := s.repo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventConnectionCreated,
		Payload: map[string]string{"root_id": rootID, "connection_id": conn.ID},
	})
	return conn, nil
}

// GetConnection returns one connection of the root.
func (s *DeviceService) GetConnection(ctx context.Context, identity domain.Identity, rootID, id string) (*domain.Connection, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	return s.resolveConnection(ctx, rootID, id)
}

// UpdateConnection applies a partial update. Edits touching technology,
// VLAN, or an endpoint re-run the legality check against the devices as they
// are now; a notes-only edit does not, and neither do later capability edits
// on the endpoint devices.
func (s *DeviceService) UpdateConnection(ctx context.Context, identity domain.Identity, rootID, id string, update ConnectionUpdate) (*domain.Connection, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	conn, err := s.resolveConnection(ctx, rootID, id)
	if err != nil {
		return nil, err
	}

	revalidate := false
	if update.FromInterfaceID != nil {
		conn.FromInterfaceID = *update.FromInterfaceID
		revalidate = true
	}
	if update.ToInterfaceID != nil {
		conn.ToInterfaceID = *update.ToInterfaceID
		revalidate = true
	}
	if update.Technology != nil {
		conn.Technology = *update.Technology
		revalidate = true
	}
	if update.VlanID != nil {
		conn.VlanID = *update.VlanID
		revalidate = true
	}
	if update.Notes != nil {
		conn.Notes = *update.Notes
	}

	if revalidate {
		if err := s.checkConnectionLegality(ctx, conn); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateConnection(ctx, conn); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventConnectionUpdated,
		Payload: map[string]string{"root_id": rootID, "connection_id": id},
	})
	return conn, nil
}

// checkConnectionLegality runs the full legality check for a candidate
// connection. The order is fixed: technology known, endpoints distinct and
// resolving to devices of the root, then the VLAN rule, then the
// receiver-capability rule.
func (s *DeviceService) checkConnectionLegality(ctx context.Context, conn *domain.Connection) error {
	if !conn.Technology.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTechnology, conn.Technology)
	}
	if conn.FromInterfaceID == conn.ToInterfaceID {
		return fmt.Errorf("%w: connection endpoints must be distinct interfaces", domain.ErrValidation)
	}

	_, fromDevice, err := s.resolveInterface(ctx, conn.RootID, conn.FromInterfaceID)
	if err != nil {
		return err
	}
	_, toDevice, err := s.resolveInterface(ctx, conn.RootID, conn.ToInterfaceID)
	if err != nil {
		return err
	}

	if conn.Technology.RequiresVlan() {
		if conn.VlanID == "" {
			return fmt.Errorf("%w: %s requires a vlan", domain.ErrMissingVlan, conn.Technology)
		}
		if _, err := resolveVlan(ctx, s.repo, conn.RootID, conn.VlanID); err != nil {
			return err
		}
	} else if conn.VlanID != "" {
		return fmt.Errorf("%w: %s does not carry a vlan", domain.ErrInvalidTechnology, conn.Technology)
	}

	if capability, required := conn.Technology.RequiredCapability(); required {
		if !fromDevice.Supports(capability) && !toDevice.Supports(capability) {
			return fmt.Errorf("%w: %s requires an endpoint receiver with %q",
				domain.ErrMissingReceiverCapability, conn.Technology, capability)
		}
	}
	return nil
}

// ListConnections returns a root's connections with endpoint device ids
// resolved, optionally narrowed to connections touching one device.
func (s *DeviceService) ListConnections(ctx context.Context, identity domain.Identity, rootID, deviceID string) ([]domain.GraphConnection, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if deviceID != "" {
		if _, err := resolveDevice(ctx, s.repo, rootID, deviceID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListConnections(ctx, rootID, deviceID)
}

// DeleteConnection removes a connection of the root.
func (s *DeviceService) DeleteConnection(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := s.resolveConnection(ctx, rootID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteConnection(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventConnectionDeleted,
		Payload: map[string]string{"root_id": rootID, "connection_id": id},
	})
	return nil
}

// Graph returns the full scoped snapshot of a root. Filtering is the
// caller's concern.
func (s *DeviceService) Graph(ctx context.Context, identity domain.Identity, rootID string) (*domain.Graph, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	return s.repo.Graph(ctx, rootID)
}

func (s *DeviceService) resolveConnection(ctx context.Context, rootID, id string) (*domain.Connection, error) {
	conn, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil || conn.RootID != rootID {
		return nil, fmt.Errorf("%w: connection %s", domain.ErrNotFound, id)
	}
	return conn, nil
}
