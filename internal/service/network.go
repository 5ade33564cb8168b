package service

import (
	"context"
	"fmt"
	"strings"

	"netatlas/internal/access"
	"netatlas/internal/domain"
	"netatlas/internal/repository"
	"netatlas/internal/vault"
)

// NetworkService manages VLANs and Wi-Fi networks. Wi-Fi passwords pass
// through the vault on the way in and out; the service never persists or
// returns plaintext outside the reveal path.
type NetworkService struct {
	repo     repository.Repository
	vault    *vault.Vault
	eventBus *EventBus
}

// NewNetworkService creates a new network service
func NewNetworkService(repo repository.Repository, v *vault.Vault, eventBus *EventBus) *NetworkService {
	return &NetworkService{
		repo:     repo,
		vault:    v,
		eventBus: eventBus,
	}
}

// VlanInput holds the caller-supplied fields of a VLAN.
type VlanInput struct {
	Number       int    `json:"vlan_id"`
	Name         string `json:"name"`
	SubnetMask   string `json:"subnet_mask"`
	IPRangeStart string `json:"ip_range_start"`
	IPRangeEnd   string `json:"ip_range_end"`
	Notes        string `json:"notes,omitempty"`
}

// VlanUpdate is a partial update; nil fields are left unchanged.
type VlanUpdate struct {
	Number       *int    `json:"vlan_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	SubnetMask   *string `json:"subnet_mask,omitempty"`
	IPRangeStart *string `json:"ip_range_start,omitempty"`
	IPRangeEnd   *string `json:"ip_range_end,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// WifiInput holds the caller-supplied fields of a Wi-Fi network, including
// the plaintext password to seal.
type WifiInput struct {
	SpaceID  string `json:"space_id"`
	SSID     string `json:"ssid"`
	Security string `json:"security"`
	Password string `json:"password"`
	VlanID   string `json:"vlan_id,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// WifiUpdate is a partial update; nil fields are left unchanged. A non-nil
// Password re-seals. A non-nil empty VlanID clears the VLAN link.
type WifiUpdate struct {
	SpaceID  *string `json:"space_id,omitempty"`
	SSID     *string `json:"ssid,omitempty"`
	Security *string `json:"security,omitempty"`
	Password *string `json:"password,omitempty"`
	VlanID   *string `json:"vlan_id,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// ============================================================================
// VLANs
// ============================================================================

// CreateVlan creates a VLAN in a root. The number must sit in [1, 4094] and
// be unique within the root; a concurrent duplicate surfaces as ErrConflict
// from the storage constraint.
func (s *NetworkService) CreateVlan(ctx context.Context, identity domain.Identity, rootID string, input VlanInput) (*domain.Vlan, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if !domain.ValidVlanNumber(input.Number) {
		return nil, fmt.Errorf("%w: vlan number %d outside [%d, %d]",
			domain.ErrInvalidRange, input.Number, domain.VlanNumberMin, domain.VlanNumberMax)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: vlan name is required", domain.ErrValidation)
	}

	vlan := &domain.Vlan{
		ID:           newID(),
		RootID:       rootID,
		Number:       input.Number,
		Name:         input.Name,
		SubnetMask:   input.SubnetMask,
		IPRangeStart: input.IPRangeStart,
		IPRangeEnd:   input.IPRangeEnd,
		Notes:        input.Notes,
		CreatedAt:    now(),
	}
	if err := s.repo.CreateVlan(ctx, vlan); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventVlanCreated,
		Payload: map[string]string{"root_id": rootID, "vlan_id": vlan.ID},
	})
	return vlan, nil
}

// GetVlan returns one VLAN of a root.
func (s *NetworkService) GetVlan(ctx context.Context, identity domain.Identity, rootID, id string) (*domain.Vlan, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	return resolveVlan(ctx, s.repo, rootID, id)
}

// UpdateVlan applies a partial update. Renumbering re-validates the range
// and the per-root uniqueness constraint.
func (s *NetworkService) UpdateVlan(ctx context.Context, identity domain.Identity, rootID, id string, update VlanUpdate) (*domain.Vlan, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	vlan, err := resolveVlan(ctx, s.repo, rootID, id)
	if err != nil {
		return nil, err
	}

	if update.Number != nil {
		if !domain.ValidVlanNumber(*update.Number) {
			return nil, fmt.Errorf("%w: vlan number %d outside [%d, %d]",
				domain.ErrInvalidRange, *update.Number, domain.VlanNumberMin, domain.VlanNumberMax)
		}
		vlan.Number = *update.Number
	}
	if update.Name != nil {
		vlan.Name = *update.Name
	}
	if update.SubnetMask != nil {
		vlan.SubnetMask = *update.SubnetMask
	}
	if update.IPRangeStart != nil {
		vlan.IPRangeStart = *update.IPRangeStart
	}
	if update.IPRangeEnd != nil {
		vlan.IPRangeEnd = *update.IPRangeEnd
	}
	if update.Notes != nil {
		vlan.Notes = *update.Notes
	}
	if strings.TrimSpace(vlan.Name) == "" {
		return nil, fmt.Errorf("%w: vlan name is required", domain.ErrValidation)
	}

	if err := s.repo.UpdateVlan(ctx, vlan); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventVlanUpdated,
		Payload: map[string]string{"root_id": rootID, "vlan_id": id},
	})
	return vlan, nil
}

// ListVlans returns a root's VLANs ordered by number.
func (s *NetworkService) ListVlans(ctx context.Context, identity domain.Identity, rootID string) ([]domain.Vlan, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	return s.repo.ListVlans(ctx, rootID)
}

// DeleteVlan removes a VLAN. Deletion is refused with ErrConflict while any
// Wi-Fi network or connection still references it; callers detach the
// references first.
func (s *NetworkService) DeleteVlan(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := resolveVlan(ctx, s.repo, rootID, id); err != nil {
		return err
	}

	wifiRefs, connRefs, err := s.repo.VlanReferenceCounts(ctx, id)
	if err != nil {
		return err
	}
	if wifiRefs > 0 || connRefs > 0 {
		return fmt.Errorf("%w: vlan referenced by %d wifi network(s) and %d connection(s)",
			domain.ErrConflict, wifiRefs, connRefs)
	}

	if err := s.repo.DeleteVlan(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventVlanDeleted,
		Payload: map[string]string{"root_id": rootID, "vlan_id": id},
	})
	return nil
}

// ============================================================================
// Wi-Fi networks
// ============================================================================

// CreateWifiNetwork creates a Wi-Fi network in a root. The anchoring space
// and the optional VLAN must belong to the same root; the password is sealed
// before anything is persisted.
func (s *NetworkService) CreateWifiNetwork(ctx context.Context, identity domain.Identity, rootID string, input WifiInput) (*domain.WifiNetwork, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.SSID) == "" {
		return nil, fmt.Errorf("%w: ssid is required", domain.ErrValidation)
	}
	if _, err := resolveSpace(ctx, s.repo, rootID, input.SpaceID); err != nil {
		return nil, err
	}
	if input.VlanID != "" {
		if _, err := resolveVlan(ctx, s.repo, rootID, input.VlanID); err != nil {
			return nil, err
		}
	}

	sealed, err := s.vault.Seal([]byte(input.Password))
	if err != nil {
		return nil, err
	}

	network := &domain.WifiNetwork{
		ID:             newID(),
		RootID:         rootID,
		SpaceID:        input.SpaceID,
		SSID:           input.SSID,
		Security:       input.Security,
		PasswordSealed: sealed,
		VlanID:         input.VlanID,
		Notes:          input.Notes,
		CreatedAt:      now(),
	}
	if err := s.repo.CreateWifiNetwork(ctx, network); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventWifiCreated,
		Payload: map[string]string{"root_id": rootID, "wifi_id": network.ID},
	})
	return network, nil
}

// GetWifiNetwork returns one Wi-Fi network of a root, sealed value excluded
// from serialization.
func (s *NetworkService) GetWifiNetwork(ctx context.Context, identity domain.Identity, rootID, id string) (*domain.WifiNetwork, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	return s.resolveWifi(ctx, rootID, id)
}

// UpdateWifiNetwork applies a partial update. A supplied password is sealed
// fresh; a supplied space or VLAN is re-validated against the root.
func (s *NetworkService) UpdateWifiNetwork(ctx context.Context, identity domain.Identity, rootID, id string, update WifiUpdate) (*domain.WifiNetwork, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	network, err := s.resolveWifi(ctx, rootID, id)
	if err != nil {
		return nil, err
	}

	if update.SpaceID != nil {
		if _, err := resolveSpace(ctx, s.repo, rootID, *update.SpaceID); err != nil {
			return nil, err
		}
		network.SpaceID = *update.SpaceID
	}
	if update.VlanID != nil {
		if *update.VlanID != "" {
			if _, err := resolveVlan(ctx, s.repo, rootID, *update.VlanID); err != nil {
				return nil, err
			}
		}
		network.VlanID = *update.VlanID
	}
	if update.SSID != nil {
		if strings.TrimSpace(*update.SSID) == "" {
			return nil, fmt.Errorf("%w: ssid is required", domain.ErrValidation)
		}
		network.SSID = *update.SSID
	}
	if update.Security != nil {
		network.Security = *update.Security
	}
	if update.Notes != nil {
		network.Notes = *update.Notes
	}
	if update.Password != nil {
		sealed, err := s.vault.Seal([]byte(*update.Password))
		if err != nil {
			return nil, err
		}
		network.PasswordSealed = sealed
	}

	if err := s.repo.UpdateWifiNetwork(ctx, network); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventWifiUpdated,
		Payload: map[string]string{"root_id": rootID, "wifi_id": id},
	})
	return network, nil
}

// ListWifiNetworks returns a root's Wi-Fi networks ordered by SSID.
func (s *NetworkService) ListWifiNetworks(ctx context.Context, identity domain.Identity, rootID string) ([]domain.WifiNetwork, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	return s.repo.ListWifiNetworks(ctx, rootID)
}

// DeleteWifiNetwork removes a Wi-Fi network.
func (s *NetworkService) DeleteWifiNetwork(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := s.resolveWifi(ctx, rootID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteWifiNetwork(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventWifiDeleted,
		Payload: map[string]string{"root_id": rootID, "wifi_id": id},
	})
	return nil
}

// RevealWifiPassword returns the plaintext password of a Wi-Fi network. The
// reveal tier allows ADMIN everywhere and USER within assigned roots.
func (s *NetworkService) RevealWifiPassword(ctx context.Context, identity domain.Identity, rootID, id string) (string, error) {
	if err := access.Require(identity, rootID, access.ActionReveal); err != nil {
		return "", err
	}
	network, err := s.resolveWifi(ctx, rootID, id)
	if err != nil {
		return "", err
	}
	plaintext, err := s.vault.Reveal(network.PasswordSealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *NetworkService) resolveWifi(ctx context.Context, rootID, id string) (*domain.WifiNetwork, error) {
	network, err := s.repo.GetWifiNetwork(ctx, id)
	if err != nil {
		return nil, err
	}
	if network == nil || network.RootID != rootID {
		return nil, fmt.Errorf("%w: wifi network %s", domain.ErrNotFound, id)
	}
	return network, nil
}
