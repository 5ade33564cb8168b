package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"netatlas/internal/domain"
	"netatlas/internal/repository/sqlite"
	"netatlas/internal/vault"
)

var (
	admin    = domain.Identity{Subject: "ops@example.net", Role: domain.RoleAdmin, Active: true}
	inactive = domain.Identity{Subject: "gone@example.net", Role: domain.RoleAdmin, Active: false}
)

func userFor(roots ...string) domain.Identity {
	return domain.Identity{Subject: "viewer@example.net", Role: domain.RoleUser, RootIDs: roots, Active: true}
}

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	tree    *TreeService
	network *NetworkService
	devices *DeviceService
	secrets *SecretService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	v, err := vault.New("test-sealing-key")
	require.NoError(t, err)

	bus := NewEventBus()
	return &fixture{
		tree:    NewTreeService(repo, bus),
		network: NewNetworkService(repo, v, bus),
		devices: NewDeviceService(repo, bus),
		secrets: NewSecretService(repo, v, bus),
	}
}

func (f *fixture) mustRoot(t *testing.T, name string) *domain.Space {
	t.Helper()
	root, err := f.tree.CreateRoot(context.Background(), admin, RootInput{Name: name})
	require.NoError(t, err)
	return root
}

func (f *fixture) mustSpace(t *testing.T, rootID, parentID, name string) *domain.Space {
	t.Helper()
	space, err := f.tree.CreateSpace(context.Background(), admin, rootID, SpaceInput{ParentID: parentID, Name: name})
	require.NoError(t, err)
	return space
}

func (f *fixture) mustDevice(t *testing.T, rootID string, input DeviceInput) *domain.Device {
	t.Helper()
	device, err := f.devices.CreateDevice(context.Background(), admin, rootID, input)
	require.NoError(t, err)
	return device
}

func (f *fixture) mustInterface(t *testing.T, rootID, deviceID, name string) *domain.Interface {
	t.Helper()
	iface, err := f.devices.CreateInterface(context.Background(), admin, rootID, InterfaceInput{
		DeviceID: deviceID,
		Name:     name,
		Type:     "ethernet",
	})
	require.NoError(t, err)
	return iface
}

func TestAccessBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	other := f.mustRoot(t, "Warehouse")

	assigned := userFor(root.ID)

	t.Run("user reads assigned root", func(t *testing.T) {
		tree, err := f.tree.Tree(ctx, assigned, root.ID)
		require.NoError(t, err)
		require.Equal(t, root.ID, tree.ID)
	})

	t.Run("user read outside assignment reads as absent", func(t *testing.T) {
		_, err := f.tree.Tree(ctx, assigned, other.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.False(t, errors.Is(err, domain.ErrForbidden), "denial must not leak as forbidden")
	})

	t.Run("user write is forbidden even on assigned root", func(t *testing.T) {
		_, err := f.tree.CreateSpace(ctx, assigned, root.ID, SpaceInput{Name: "Closet"})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("inactive identity is denied everything", func(t *testing.T) {
		_, err := f.tree.Tree(ctx, inactive, root.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.tree.ListRoots(ctx, inactive)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("user list roots is scoped", func(t *testing.T) {
		roots, err := f.tree.ListRoots(ctx, assigned)
		require.NoError(t, err)
		require.Len(t, roots, 1)
		require.Equal(t, root.ID, roots[0].ID)

		all, err := f.tree.ListRoots(ctx, admin)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("denied write touches nothing", func(t *testing.T) {
		err := f.tree.DeleteRoot(ctx, assigned, root.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.tree.Tree(ctx, admin, root.ID)
		require.NoError(t, err)
	})
}
