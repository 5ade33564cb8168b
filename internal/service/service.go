package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"netatlas/internal/domain"
	"netatlas/internal/repository"
)

// maxAncestorDepth bounds parent-chain walks so a corrupted tree surfaces as
// ErrInvalidHierarchy instead of an infinite loop.
const maxAncestorDepth = 10000

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// resolveRoot loads the root space, returning ErrNotFound when the id does
// not name a root.
func resolveRoot(ctx context.Context, repo repository.Repository, rootID string) (*domain.Space, error) {
	root, err := repo.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: root %s", domain.ErrNotFound, rootID)
	}
	return root, nil
}

// resolveSpace loads a space and verifies it belongs to the given root.
// Spaces of other roots read as absent.
func resolveSpace(ctx context.Context, repo repository.Repository, rootID, spaceID string) (*domain.Space, error) {
	space, err := repo.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space == nil || space.RootID != rootID {
		return nil, fmt.Errorf("%w: space %s", domain.ErrNotFound, spaceID)
	}
	return space, nil
}

// resolveVlan loads a VLAN and verifies it belongs to the given root.
func resolveVlan(ctx context.Context, repo repository.Repository, rootID, vlanID string) (*domain.Vlan, error) {
	vlan, err := repo.GetVlan(ctx, vlanID)
	if err != nil {
		return nil, err
	}
	if vlan == nil || vlan.RootID != rootID {
		return nil, fmt.Errorf("%w: vlan %s", domain.ErrNotFound, vlanID)
	}
	return vlan, nil
}

// resolveDevice loads a device and verifies it belongs to the given root.
func resolveDevice(ctx context.Context, repo repository.Repository, rootID, deviceID string) (*domain.Device, error) {
	device, err := repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil || device.RootID != rootID {
		return nil, fmt.Errorf("%w: device %s", domain.ErrNotFound, deviceID)
	}
	return device, nil
}
