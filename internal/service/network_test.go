package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"netatlas/internal/domain"
)

func validVlanInput(number int) VlanInput {
	return VlanInput{
		Number:       number,
		Name:         "segment",
		SubnetMask:   "255.255.255.0",
		IPRangeStart: "10.0.0.2",
		IPRangeEnd:   "10.0.0.254",
	}
}

func TestCreateVlanRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")

	for _, number := range []int{0, -1, 4095, 100000} {
		_, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(number))
		require.ErrorIs(t, err, domain.ErrInvalidRange, "number %d", number)
	}

	for _, number := range []int{1, 4094} {
		_, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(number))
		require.NoError(t, err, "number %d", number)
	}
}

func TestVlanUniquenessScopedToRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	other := f.mustRoot(t, "Warehouse")

	_, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(42))
	require.NoError(t, err)

	_, err = f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(42))
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.network.CreateVlan(ctx, admin, other.ID, validVlanInput(42))
	require.NoError(t, err)
}

func TestDeleteVlanRefusedWhileReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	vlan, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(10))
	require.NoError(t, err)

	wifi, err := f.network.CreateWifiNetwork(ctx, admin, root.ID, WifiInput{
		SpaceID:  root.ID,
		SSID:     "corp",
		Security: "wpa2",
		Password: "hunter2",
		VlanID:   vlan.ID,
	})
	require.NoError(t, err)

	err = f.network.DeleteVlan(ctx, admin, root.ID, vlan.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	// detaching the reference unblocks deletion
	_, err = f.network.UpdateWifiNetwork(ctx, admin, root.ID, wifi.ID, WifiUpdate{VlanID: ptr("")})
	require.NoError(t, err)
	require.NoError(t, f.network.DeleteVlan(ctx, admin, root.ID, vlan.ID))
}

func TestWifiPasswordSealing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")

	wifi, err := f.network.CreateWifiNetwork(ctx, admin, root.ID, WifiInput{
		SpaceID:  root.ID,
		SSID:     "corp",
		Security: "wpa3",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, wifi.PasswordSealed)
	require.NotContains(t, wifi.PasswordSealed, "correct horse battery")

	t.Run("list never exposes plaintext", func(t *testing.T) {
		networks, err := f.network.ListWifiNetworks(ctx, admin, root.ID)
		require.NoError(t, err)
		require.Len(t, networks, 1)
		require.NotContains(t, networks[0].PasswordSealed, "correct horse battery")
	})

	t.Run("reveal round-trips", func(t *testing.T) {
		plaintext, err := f.network.RevealWifiPassword(ctx, admin, root.ID, wifi.ID)
		require.NoError(t, err)
		require.Equal(t, "correct horse battery", plaintext)
	})

	t.Run("user reveals within assigned root", func(t *testing.T) {
		plaintext, err := f.network.RevealWifiPassword(ctx, userFor(root.ID), root.ID, wifi.ID)
		require.NoError(t, err)
		require.Equal(t, "correct horse battery", plaintext)
	})

	t.Run("user reveal outside assignment reads as absent", func(t *testing.T) {
		_, err := f.network.RevealWifiPassword(ctx, userFor("elsewhere"), root.ID, wifi.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("password update re-seals", func(t *testing.T) {
		updated, err := f.network.UpdateWifiNetwork(ctx, admin, root.ID, wifi.ID, WifiUpdate{Password: ptr("new-pass")})
		require.NoError(t, err)
		require.NotEqual(t, wifi.PasswordSealed, updated.PasswordSealed)

		plaintext, err := f.network.RevealWifiPassword(ctx, admin, root.ID, wifi.ID)
		require.NoError(t, err)
		require.Equal(t, "new-pass", plaintext)
	})
}

func TestWifiAnchorsMustResolveWithinRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	other := f.mustRoot(t, "Warehouse")
	foreignSpace := f.mustSpace(t, other.ID, "", "Dock")
	foreignVlan, err := f.network.CreateVlan(ctx, admin, other.ID, validVlanInput(10))
	require.NoError(t, err)

	_, err = f.network.CreateWifiNetwork(ctx, admin, root.ID, WifiInput{
		SpaceID: foreignSpace.ID, SSID: "x", Password: "p",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.network.CreateWifiNetwork(ctx, admin, root.ID, WifiInput{
		SpaceID: root.ID, SSID: "x", Password: "p", VlanID: foreignVlan.ID,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
