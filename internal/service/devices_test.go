package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"netatlas/internal/domain"
)

func TestCapabilitiesRequireReceiver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")

	_, err := f.devices.CreateDevice(ctx, admin, root.ID, DeviceInput{
		SpaceID:      root.ID,
		Name:         "sensor",
		Type:         "sensor",
		IsReceiver:   false,
		Capabilities: domain.CapabilitySet{domain.CapabilityZigbee: true},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.devices.CreateDevice(ctx, admin, root.ID, DeviceInput{
		SpaceID:      root.ID,
		Name:         "hub",
		Type:         "controller",
		IsReceiver:   true,
		Capabilities: domain.CapabilitySet{"teleport": true},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestClearingReceiverClearsCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	hub := f.mustDevice(t, root.ID, DeviceInput{
		SpaceID:      root.ID,
		Name:         "hub",
		Type:         "controller",
		IsReceiver:   true,
		Capabilities: domain.CapabilitySet{domain.CapabilityZigbee: true, domain.CapabilityBLE: true},
	})

	updated, err := f.devices.UpdateDevice(ctx, admin, root.ID, hub.ID, DeviceUpdate{IsReceiver: ptr(false)})
	require.NoError(t, err)
	require.False(t, updated.IsReceiver)
	require.True(t, updated.Capabilities.Empty())

	got, _, err := f.devices.GetDevice(ctx, admin, root.ID, hub.ID)
	require.NoError(t, err)
	require.True(t, got.Capabilities.Empty())
}

func TestConnectionLegality(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	vlan, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(10))
	require.NoError(t, err)

	sw := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "switch-1", Type: "switch"})
	router := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "router", Type: "router"})
	swPort := f.mustInterface(t, root.ID, sw.ID, "eth0")
	routerPort := f.mustInterface(t, root.ID, router.ID, "eth0")

	t.Run("unknown technology", func(t *testing.T) {
		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: "CARRIER_PIGEON",
		})
		require.ErrorIs(t, err, domain.ErrInvalidTechnology)
	})

	t.Run("endpoints must be distinct", func(t *testing.T) {
		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: swPort.ID, Technology: domain.TechnologyEthernet, VlanID: vlan.ID,
		})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ethernet requires a vlan", func(t *testing.T) {
		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: domain.TechnologyEthernet,
		})
		require.ErrorIs(t, err, domain.ErrMissingVlan)
	})

	t.Run("vlan rejected on non-ethernet", func(t *testing.T) {
		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: domain.TechnologyWifi, VlanID: vlan.ID,
		})
		require.ErrorIs(t, err, domain.ErrInvalidTechnology)
	})

	t.Run("ethernet with vlan passes", func(t *testing.T) {
		conn, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: domain.TechnologyEthernet, VlanID: vlan.ID,
		})
		require.NoError(t, err)
		require.Equal(t, vlan.ID, conn.VlanID)
	})

	t.Run("zigbee requires a receiver endpoint", func(t *testing.T) {
		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: domain.TechnologyZigbee,
		})
		require.ErrorIs(t, err, domain.ErrMissingReceiverCapability)
	})

	t.Run("receiver on either endpoint satisfies zigbee", func(t *testing.T) {
		hub := f.mustDevice(t, root.ID, DeviceInput{
			SpaceID:      root.ID,
			Name:         "hub",
			Type:         "controller",
			IsReceiver:   true,
			Capabilities: domain.CapabilitySet{domain.CapabilityZigbee: true},
		})
		hubRadio := f.mustInterface(t, root.ID, hub.ID, "radio0")
		sensor := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "sensor", Type: "sensor"})
		sensorRadio := f.mustInterface(t, root.ID, sensor.ID, "radio0")

		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: sensorRadio.ID, ToInterfaceID: hubRadio.ID, Technology: domain.TechnologyZigbee,
		})
		require.NoError(t, err)
	})

	t.Run("wrong capability does not satisfy", func(t *testing.T) {
		btHub := f.mustDevice(t, root.ID, DeviceInput{
			SpaceID:      root.ID,
			Name:         "bt-hub",
			Type:         "controller",
			IsReceiver:   true,
			Capabilities: domain.CapabilitySet{domain.CapabilityBluetooth: true},
		})
		btRadio := f.mustInterface(t, root.ID, btHub.ID, "radio0")

		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: btRadio.ID, Technology: domain.TechnologyMatterOverThread,
		})
		require.ErrorIs(t, err, domain.ErrMissingReceiverCapability)
	})

	t.Run("cross-root endpoint reads as absent", func(t *testing.T) {
		other := f.mustRoot(t, "Warehouse")
		foreign := f.mustDevice(t, other.ID, DeviceInput{SpaceID: other.ID, Name: "camera", Type: "camera"})
		foreignPort := f.mustInterface(t, other.ID, foreign.ID, "eth0")

		_, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
			FromInterfaceID: swPort.ID, ToInterfaceID: foreignPort.ID, Technology: domain.TechnologyFiber,
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConnectionGrandfathering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")

	hub := f.mustDevice(t, root.ID, DeviceInput{
		SpaceID:      root.ID,
		Name:         "hub",
		Type:         "controller",
		IsReceiver:   true,
		Capabilities: domain.CapabilitySet{domain.CapabilityZigbee: true},
	})
	sensor := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "sensor", Type: "sensor"})
	hubRadio := f.mustInterface(t, root.ID, hub.ID, "radio0")
	sensorRadio := f.mustInterface(t, root.ID, sensor.ID, "radio0")

	conn, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
		FromInterfaceID: sensorRadio.ID, ToInterfaceID: hubRadio.ID, Technology: domain.TechnologyZigbee,
	})
	require.NoError(t, err)

	// the hub loses its capability after the fact
	_, err = f.devices.UpdateDevice(ctx, admin, root.ID, hub.ID, DeviceUpdate{IsReceiver: ptr(false)})
	require.NoError(t, err)

	t.Run("notes-only edit does not re-validate", func(t *testing.T) {
		updated, err := f.devices.UpdateConnection(ctx, admin, root.ID, conn.ID, ConnectionUpdate{Notes: ptr("pairing rechecked")})
		require.NoError(t, err)
		require.Equal(t, "pairing rechecked", updated.Notes)
	})

	t.Run("technology edit re-validates and fails", func(t *testing.T) {
		_, err := f.devices.UpdateConnection(ctx, admin, root.ID, conn.ID, ConnectionUpdate{Technology: ptr(domain.TechnologyBLE)})
		require.ErrorIs(t, err, domain.ErrMissingReceiverCapability)
	})
}

func TestGraphSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")
	vlan, err := f.network.CreateVlan(ctx, admin, root.ID, validVlanInput(10))
	require.NoError(t, err)

	sw := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "switch-1", Type: "switch"})
	router := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "router", Type: "router"})
	swPort := f.mustInterface(t, root.ID, sw.ID, "eth0")
	routerPort := f.mustInterface(t, root.ID, router.ID, "eth0")

	_, err = f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
		FromInterfaceID: swPort.ID, ToInterfaceID: routerPort.ID, Technology: domain.TechnologyEthernet, VlanID: vlan.ID,
	})
	require.NoError(t, err)

	graph, err := f.devices.Graph(ctx, admin, root.ID)
	require.NoError(t, err)
	require.Len(t, graph.Devices, 2)
	require.Len(t, graph.Connections, 1)
	require.Equal(t, sw.ID, graph.Connections[0].FromDeviceID)
	require.Equal(t, router.ID, graph.Connections[0].ToDeviceID)

	t.Run("device filter on connection list", func(t *testing.T) {
		third := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "ap-1", Type: "access_point"})
		list, err := f.devices.ListConnections(ctx, admin, root.ID, third.ID)
		require.NoError(t, err)
		require.Empty(t, list)

		list, err = f.devices.ListConnections(ctx, admin, root.ID, sw.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func TestDeleteInterfaceCascadesConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustRoot(t, "HQ")

	a := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "a", Type: "switch"})
	b := f.mustDevice(t, root.ID, DeviceInput{SpaceID: root.ID, Name: "b", Type: "switch"})
	portA := f.mustInterface(t, root.ID, a.ID, "eth0")
	portB := f.mustInterface(t, root.ID, b.ID, "eth0")

	conn, err := f.devices.CreateConnection(ctx, admin, root.ID, ConnectionInput{
		FromInterfaceID: portA.ID, ToInterfaceID: portB.ID, Technology: domain.TechnologyFiber,
	})
	require.NoError(t, err)

	require.NoError(t, f.devices.DeleteInterface(ctx, admin, root.ID, portA.ID))

	_, err = f.devices.GetConnection(ctx, admin, root.ID, conn.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	ifaces, err := f.devices.ListInterfaces(ctx, admin, root.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, ifaces, 1)
}
