package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"netatlas/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func seedRoot(t *testing.T, repo *Repository) *domain.Space {
	t.Helper()
	id := uuid.NewString()
	root := &domain.Space{
		ID:        id,
		RootID:    id,
		Name:      "Test Site",
		CreatedAt: time.Now().UTC(),
	}
	assertNoError(t, repo.CreateRoot(context.Background(), root))
	return root
}

func seedSpace(t *testing.T, repo *Repository, rootID, parentID, name string) *domain.Space {
	t.Helper()
	space := &domain.Space{
		ID:        uuid.NewString(),
		RootID:    rootID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	assertNoError(t, repo.CreateSpace(context.Background(), space))
	return space
}

func seedDevice(t *testing.T, repo *Repository, rootID, spaceID, name string) *domain.Device {
	t.Helper()
	device := &domain.Device{
		ID:           uuid.NewString(),
		RootID:       rootID,
		SpaceID:      spaceID,
		Name:         name,
		Type:         "switch",
		Capabilities: domain.CapabilitySet{},
		CreatedAt:    time.Now().UTC(),
	}
	assertNoError(t, repo.CreateDevice(context.Background(), device))
	return device
}

func seedInterface(t *testing.T, repo *Repository, deviceID, name string) *domain.Interface {
	t.Helper()
	iface := &domain.Interface{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Name:      name,
		Type:      "ethernet",
		CreatedAt: time.Now().UTC(),
	}
	assertNoError(t, repo.CreateInterface(context.Background(), iface))
	return iface
}

func seedVlan(t *testing.T, repo *Repository, rootID string, number int) *domain.Vlan {
	t.Helper()
	vlan := &domain.Vlan{
		ID:           uuid.NewString(),
		RootID:       rootID,
		Number:       number,
		Name:         "Test VLAN",
		SubnetMask:   "255.255.255.0",
		IPRangeStart: "10.0.0.10",
		IPRangeEnd:   "10.0.0.200",
		CreatedAt:    time.Now().UTC(),
	}
	assertNoError(t, repo.CreateVlan(context.Background(), vlan))
	return vlan
}

func seedConnection(t *testing.T, repo *Repository, rootID, fromIface, toIface string, tech domain.Technology, vlanID string) *domain.Connection {
	t.Helper()
	conn := &domain.Connection{
		ID:              uuid.NewString(),
		RootID:          rootID,
		FromInterfaceID: fromIface,
		ToInterfaceID:   toIface,
		Technology:      tech,
		VlanID:          vlanID,
		CreatedAt:       time.Now().UTC(),
	}
	assertNoError(t, repo.CreateConnection(context.Background(), conn))
	return conn
}

// ============================================================================
// Roots and Spaces
// ============================================================================

func TestRootLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)

	t.Run("get returns root", func(t *testing.T) {
		got, err := repo.GetRoot(ctx, root.ID)
		assertNoError(t, err)
		if got == nil || got.ID != root.ID {
			t.Fatalf("expected root %s, got %+v", root.ID, got)
		}
		if !got.IsRoot() {
			t.Fatal("expected returned space to be a root")
		}
	})

	t.Run("get rejects non-root space id", func(t *testing.T) {
		child := seedSpace(t, repo, root.ID, root.ID, "Closet")
		got, err := repo.GetRoot(ctx, child.ID)
		assertNoError(t, err)
		if got != nil {
			t.Fatalf("expected nil for non-root id, got %+v", got)
		}
	})

	t.Run("list returns only roots", func(t *testing.T) {
		other := seedRoot(t, repo)
		roots, err := repo.ListRoots(ctx)
		assertNoError(t, err)
		if len(roots) != 2 {
			t.Fatalf("expected 2 roots, got %d", len(roots))
		}
		for _, r := range roots {
			if !r.IsRoot() {
				t.Fatalf("list returned non-root space %s", r.ID)
			}
		}
		assertNoError(t, repo.DeleteRootCascade(ctx, other.ID))
	})
}

func TestSpaceCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)

	space := seedSpace(t, repo, root.ID, root.ID, "Office")

	got, err := repo.GetSpace(ctx, space.ID)
	assertNoError(t, err)
	if got == nil || got.Name != "Office" || got.ParentID != root.ID {
		t.Fatalf("unexpected space: %+v", got)
	}

	got.Name = "Back Office"
	got.Notes = "renamed"
	assertNoError(t, repo.UpdateSpace(ctx, got))

	got, err = repo.GetSpace(ctx, space.ID)
	assertNoError(t, err)
	if got.Name != "Back Office" || got.Notes != "renamed" {
		t.Fatalf("update not persisted: %+v", got)
	}

	spaces, err := repo.ListSpaces(ctx, root.ID)
	assertNoError(t, err)
	if len(spaces) != 2 {
		t.Fatalf("expected root plus one child, got %d spaces", len(spaces))
	}

	missing, err := repo.GetSpace(ctx, uuid.NewString())
	assertNoError(t, err)
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestUpdateSpaceNotFound(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateSpace(context.Background(), &domain.Space{ID: uuid.NewString(), Name: "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeviceCountsBySpace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	office := seedSpace(t, repo, root.ID, root.ID, "Office")
	empty := seedSpace(t, repo, root.ID, root.ID, "Hallway")

	seedDevice(t, repo, root.ID, office.ID, "switch-1")
	seedDevice(t, repo, root.ID, office.ID, "ap-1")
	seedDevice(t, repo, root.ID, root.ID, "gateway")

	counts, err := repo.DeviceCountsBySpace(ctx, root.ID)
	assertNoError(t, err)
	if counts[office.ID] != 2 {
		t.Errorf("expected 2 devices in office, got %d", counts[office.ID])
	}
	if counts[root.ID] != 1 {
		t.Errorf("expected 1 device at root, got %d", counts[root.ID])
	}
	if _, ok := counts[empty.ID]; ok {
		t.Errorf("expected no entry for empty space, got %d", counts[empty.ID])
	}
}

func TestDeleteSpaceCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)

	// root -> floor -> office, with a sibling that must survive
	floor := seedSpace(t, repo, root.ID, root.ID, "Floor 1")
	office := seedSpace(t, repo, root.ID, floor.ID, "Office")
	garage := seedSpace(t, repo, root.ID, root.ID, "Garage")

	officeDevice := seedDevice(t, repo, root.ID, office.ID, "switch-1")
	garageDevice := seedDevice(t, repo, root.ID, garage.ID, "camera-1")
	inA := seedInterface(t, repo, officeDevice.ID, "eth0")
	inB := seedInterface(t, repo, garageDevice.ID, "eth0")
	conn := seedConnection(t, repo, root.ID, inA.ID, inB.ID, domain.TechnologyFiber, "")

	wifi := &domain.WifiNetwork{
		ID:             uuid.NewString(),
		RootID:         root.ID,
		SpaceID:        office.ID,
		SSID:           "office-net",
		Security:       "wpa2",
		PasswordSealed: "sealed",
		CreatedAt:      time.Now().UTC(),
	}
	assertNoError(t, repo.CreateWifiNetwork(ctx, wifi))

	secret := &domain.Secret{
		ID:          uuid.NewString(),
		RootID:      root.ID,
		Kind:        domain.SecretKindPassword,
		Name:        "switch admin",
		ValueSealed: "sealed",
		DeviceID:    officeDevice.ID,
		CreatedAt:   time.Now().UTC(),
	}
	assertNoError(t, repo.CreateSecret(ctx, secret))

	assertNoError(t, repo.DeleteSpaceCascade(ctx, floor.ID))

	for name, check := range map[string]func() (any, error){
		"floor":         func() (any, error) { s, err := repo.GetSpace(ctx, floor.ID); return anyOrNil(s), err },
		"office":        func() (any, error) { s, err := repo.GetSpace(ctx, office.ID); return anyOrNil(s), err },
		"office device": func() (any, error) { d, err := repo.GetDevice(ctx, officeDevice.ID); return anyOrNil(d), err },
		"interface":     func() (any, error) { i, err := repo.GetInterface(ctx, inA.ID); return anyOrNil(i), err },
		"connection":    func() (any, error) { c, err := repo.GetConnection(ctx, conn.ID); return anyOrNil(c), err },
		"wifi network":  func() (any, error) { w, err := repo.GetWifiNetwork(ctx, wifi.ID); return anyOrNil(w), err },
		"device secret": func() (any, error) { s, err := repo.GetSecret(ctx, secret.ID); return anyOrNil(s), err },
	} {
		got, err := check()
		assertNoError(t, err)
		if got != nil {
			t.Errorf("%s survived cascade: %+v", name, got)
		}
	}

	// siblings untouched
	if d, err := repo.GetDevice(ctx, garageDevice.ID); err != nil || d == nil {
		t.Fatalf("sibling device lost: %v %v", d, err)
	}
	if s, err := repo.GetSpace(ctx, garage.ID); err != nil || s == nil {
		t.Fatalf("sibling space lost: %v %v", s, err)
	}
}

// anyOrNil flattens a typed nil pointer into an untyped nil so cascade
// checks can compare uniformly.
func anyOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

func TestDeleteSpaceCascadeNotFound(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.DeleteSpaceCascade(context.Background(), uuid.NewString())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRootCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	other := seedRoot(t, repo)

	space := seedSpace(t, repo, root.ID, root.ID, "Office")
	vlan := seedVlan(t, repo, root.ID, 10)
	device := seedDevice(t, repo, root.ID, space.ID, "switch-1")
	iface := seedInterface(t, repo, device.ID, "eth0")
	peer := seedDevice(t, repo, root.ID, root.ID, "router")
	peerIface := seedInterface(t, repo, peer.ID, "eth0")
	seedConnection(t, repo, root.ID, iface.ID, peerIface.ID, domain.TechnologyEthernet, vlan.ID)

	rootSecret := &domain.Secret{
		ID:          uuid.NewString(),
		RootID:      root.ID,
		Kind:        domain.SecretKindToken,
		Name:        "controller token",
		ValueSealed: "sealed",
		CreatedAt:   time.Now().UTC(),
	}
	assertNoError(t, repo.CreateSecret(ctx, rootSecret))

	otherDevice := seedDevice(t, repo, other.ID, other.ID, "survivor")

	assertNoError(t, repo.DeleteRootCascade(ctx, root.ID))

	if s, err := repo.GetRoot(ctx, root.ID); err != nil || s != nil {
		t.Fatalf("root survived cascade: %v %v", s, err)
	}
	if v, err := repo.GetVlan(ctx, vlan.ID); err != nil || v != nil {
		t.Fatalf("vlan survived cascade: %v %v", v, err)
	}
	if s, err := repo.GetSecret(ctx, rootSecret.ID); err != nil || s != nil {
		t.Fatalf("secret survived cascade: %v %v", s, err)
	}
	if d, err := repo.GetDevice(ctx, otherDevice.ID); err != nil || d == nil {
		t.Fatalf("unrelated root's device lost: %v %v", d, err)
	}
}

// ============================================================================
// VLANs and Wi-Fi
// ============================================================================

func TestVlanUniquePerRoot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	other := seedRoot(t, repo)

	seedVlan(t, repo, root.ID, 20)

	dup := &domain.Vlan{
		ID:           uuid.NewString(),
		RootID:       root.ID,
		Number:       20,
		Name:         "dup",
		SubnetMask:   "255.255.255.0",
		IPRangeStart: "10.0.1.10",
		IPRangeEnd:   "10.0.1.200",
		CreatedAt:    time.Now().UTC(),
	}
	err := repo.CreateVlan(ctx, dup)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate number, got %v", err)
	}

	// same number in another root is fine
	seedVlan(t, repo, other.ID, 20)
}

func TestVlanUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	a := seedVlan(t, repo, root.ID, 10)
	seedVlan(t, repo, root.ID, 20)

	a.Name = "Management"
	a.Number = 30
	assertNoError(t, repo.UpdateVlan(ctx, a))

	got, err := repo.GetVlan(ctx, a.ID)
	assertNoError(t, err)
	if got.Number != 30 || got.Name != "Management" {
		t.Fatalf("update not persisted: %+v", got)
	}

	// renumbering onto an occupied number conflicts
	got.Number = 20
	if err := repo.UpdateVlan(ctx, got); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := repo.UpdateVlan(ctx, &domain.Vlan{ID: uuid.NewString(), Number: 40}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVlanReferenceCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	vlan := seedVlan(t, repo, root.ID, 10)

	wifiRefs, connRefs, err := repo.VlanReferenceCounts(ctx, vlan.ID)
	assertNoError(t, err)
	if wifiRefs != 0 || connRefs != 0 {
		t.Fatalf("expected zero refs, got %d wifi %d connections", wifiRefs, connRefs)
	}

	wifi := &domain.WifiNetwork{
		ID:             uuid.NewString(),
		RootID:         root.ID,
		SpaceID:        root.ID,
		SSID:           "main",
		Security:       "wpa3",
		PasswordSealed: "sealed",
		VlanID:         vlan.ID,
		CreatedAt:      time.Now().UTC(),
	}
	assertNoError(t, repo.CreateWifiNetwork(ctx, wifi))

	a := seedDevice(t, repo, root.ID, root.ID, "switch-1")
	b := seedDevice(t, repo, root.ID, root.ID, "switch-2")
	ifA := seedInterface(t, repo, a.ID, "eth0")
	ifB := seedInterface(t, repo, b.ID, "eth0")
	seedConnection(t, repo, root.ID, ifA.ID, ifB.ID, domain.TechnologyEthernet, vlan.ID)

	wifiRefs, connRefs, err = repo.VlanReferenceCounts(ctx, vlan.ID)
	assertNoError(t, err)
	if wifiRefs != 1 || connRefs != 1 {
		t.Fatalf("expected 1 wifi and 1 connection ref, got %d and %d", wifiRefs, connRefs)
	}
}

func TestWifiNetworkCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	space := seedSpace(t, repo, root.ID, root.ID, "Office")

	wifi := &domain.WifiNetwork{
		ID:             uuid.NewString(),
		RootID:         root.ID,
		SpaceID:        space.ID,
		SSID:           "guest",
		Security:       "wpa2",
		PasswordSealed: "sealed-token",
		CreatedAt:      time.Now().UTC(),
	}
	assertNoError(t, repo.CreateWifiNetwork(ctx, wifi))

	got, err := repo.GetWifiNetwork(ctx, wifi.ID)
	assertNoError(t, err)
	if got.SSID != "guest" || got.PasswordSealed != "sealed-token" || got.VlanID != "" {
		t.Fatalf("unexpected network: %+v", got)
	}

	got.SSID = "guest-5g"
	got.PasswordSealed = "resealed"
	assertNoError(t, repo.UpdateWifiNetwork(ctx, got))

	list, err := repo.ListWifiNetworks(ctx, root.ID)
	assertNoError(t, err)
	if len(list) != 1 || list[0].SSID != "guest-5g" || list[0].PasswordSealed != "resealed" {
		t.Fatalf("unexpected list: %+v", list)
	}

	assertNoError(t, repo.DeleteWifiNetwork(ctx, wifi.ID))
	if err := repo.DeleteWifiNetwork(ctx, wifi.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// ============================================================================
// Devices and Interfaces
// ============================================================================

func TestDeviceCapabilityRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)

	device := &domain.Device{
		ID:         uuid.NewString(),
		RootID:     root.ID,
		SpaceID:    root.ID,
		Name:       "hub",
		Type:       "controller",
		Vendor:     "Acme",
		IsReceiver: true,
		Capabilities: domain.CapabilitySet{
			domain.CapabilityZigbee: true,
			domain.CapabilityBLE:    true,
		},
		CreatedAt: time.Now().UTC(),
	}
	assertNoError(t, repo.CreateDevice(ctx, device))

	got, err := repo.GetDevice(ctx, device.ID)
	assertNoError(t, err)
	if !got.IsReceiver {
		t.Fatal("expected receiver flag to persist")
	}
	if !got.Supports(domain.CapabilityZigbee) || !got.Supports(domain.CapabilityBLE) {
		t.Fatalf("capabilities lost in round trip: %+v", got.Capabilities)
	}
	if got.Supports(domain.CapabilityWifi) {
		t.Fatal("unexpected wifi capability")
	}
	if got.Vendor != "Acme" || got.Model != "" {
		t.Fatalf("unexpected vendor/model: %q %q", got.Vendor, got.Model)
	}

	got.Capabilities = domain.CapabilitySet{domain.CapabilityMatterThread: true}
	assertNoError(t, repo.UpdateDevice(ctx, got))

	got, err = repo.GetDevice(ctx, device.ID)
	assertNoError(t, err)
	if got.Supports(domain.CapabilityZigbee) || !got.Supports(domain.CapabilityMatterThread) {
		t.Fatalf("capability update not persisted: %+v", got.Capabilities)
	}
}

func TestListDevicesSpaceFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	office := seedSpace(t, repo, root.ID, root.ID, "Office")

	seedDevice(t, repo, root.ID, root.ID, "gateway")
	seedDevice(t, repo, root.ID, office.ID, "switch-1")

	all, err := repo.ListDevices(ctx, root.ID, "")
	assertNoError(t, err)
	if len(all) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(all))
	}

	scoped, err := repo.ListDevices(ctx, root.ID, office.ID)
	assertNoError(t, err)
	if len(scoped) != 1 || scoped[0].Name != "switch-1" {
		t.Fatalf("unexpected filtered list: %+v", scoped)
	}
}

func TestDeleteDeviceCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)

	device := seedDevice(t, repo, root.ID, root.ID, "switch-1")
	peer := seedDevice(t, repo, root.ID, root.ID, "router")
	iface := seedInterface(t, repo, device.ID, "eth0")
	peerIface := seedInterface(t, repo, peer.ID, "eth0")
	conn := seedConnection(t, repo, root.ID, iface.ID, peerIface.ID, domain.TechnologyFiber, "")

	secret := &domain.Secret{
		ID:          uuid.NewString(),
		RootID:      root.ID,
		Kind:        domain.SecretKindAPIKey,
		Name:        "mgmt key",
		ValueSealed: "sealed",
		DeviceID:    device.ID,
		CreatedAt:   time.Now().UTC(),
	}
	assertNoError(t, repo.CreateSecret(ctx, secret))

	assertNoError(t, repo.DeleteDeviceCascade(ctx, device.ID))

	if d, err := repo.GetDevice(ctx, device.ID); err != nil || d != nil {
		t.Fatalf("device survived: %v %v", d, err)
	}
	if i, err := repo.GetInterface(ctx, iface.ID); err != nil || i != nil {
		t.Fatalf("interface survived: %v %v", i, err)
	}
	if c, err := repo.GetConnection(ctx, conn.ID); err != nil || c != nil {
		t.Fatalf("connection survived: %v %v", c, err)
	}
	if s, err := repo.GetSecret(ctx, secret.ID); err != nil || s != nil {
		t.Fatalf("linked secret survived: %v %v", s, err)
	}
	if p, err := repo.GetDevice(ctx, peer.ID); err != nil || p == nil {
		t.Fatalf("peer device lost: %v %v", p, err)
	}
	if pi, err := repo.GetInterface(ctx, peerIface.ID); err != nil || pi == nil {
		t.Fatalf("peer interface lost: %v %v", pi, err)
	}

	if err := repo.DeleteDeviceCascade(ctx, device.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetInterfaceWithDevice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	device := seedDevice(t, repo, root.ID, root.ID, "switch-1")
	iface := seedInterface(t, repo, device.ID, "eth0")

	gotIface, gotDevice, err := repo.GetInterfaceWithDevice(ctx, iface.ID)
	assertNoError(t, err)
	if gotIface == nil || gotDevice == nil {
		t.Fatal("expected interface and device")
	}
	if gotIface.ID != iface.ID || gotDevice.ID != device.ID {
		t.Fatalf("wrong pair: %+v %+v", gotIface, gotDevice)
	}

	gotIface, gotDevice, err = repo.GetInterfaceWithDevice(ctx, uuid.NewString())
	assertNoError(t, err)
	if gotIface != nil || gotDevice != nil {
		t.Fatalf("expected nil pair for unknown id, got %+v %+v", gotIface, gotDevice)
	}
}

func TestDeleteInterfaceCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	a := seedDevice(t, repo, root.ID, root.ID, "switch-1")
	b := seedDevice(t, repo, root.ID, root.ID, "switch-2")
	ifA := seedInterface(t, repo, a.ID, "eth0")
	ifB := seedInterface(t, repo, b.ID, "eth0")
	conn := seedConnection(t, repo, root.ID, ifA.ID, ifB.ID, domain.TechnologyFiber, "")

	assertNoError(t, repo.DeleteInterfaceCascade(ctx, ifA.ID))

	if i, err := repo.GetInterface(ctx, ifA.ID); err != nil || i != nil {
		t.Fatalf("interface survived: %v %v", i, err)
	}
	if c, err := repo.GetConnection(ctx, conn.ID); err != nil || c != nil {
		t.Fatalf("connection survived: %v %v", c, err)
	}
	if i, err := repo.GetInterface(ctx, ifB.ID); err != nil || i == nil {
		t.Fatalf("peer interface lost: %v %v", i, err)
	}
}

// ============================================================================
// Connections and Graph
// ============================================================================

func TestConnectionsAndGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	vlan := seedVlan(t, repo, root.ID, 10)

	sw := seedDevice(t, repo, root.ID, root.ID, "switch-1")
	router := seedDevice(t, repo, root.ID, root.ID, "router")
	hub := seedDevice(t, repo, root.ID, root.ID, "hub")
	swIf := seedInterface(t, repo, sw.ID, "eth0")
	routerIf := seedInterface(t, repo, router.ID, "eth0")
	hubIf := seedInterface(t, repo, hub.ID, "radio0")

	trunk := seedConnection(t, repo, root.ID, swIf.ID, routerIf.ID, domain.TechnologyEthernet, vlan.ID)
	mesh := seedConnection(t, repo, root.ID, routerIf.ID, hubIf.ID, domain.TechnologyZigbee, "")

	t.Run("list resolves endpoint devices", func(t *testing.T) {
		list, err := repo.ListConnections(ctx, root.ID, "")
		assertNoError(t, err)
		if len(list) != 2 {
			t.Fatalf("expected 2 connections, got %d", len(list))
		}
		byID := map[string]domain.GraphConnection{}
		for _, c := range list {
			byID[c.ID] = c
		}
		got := byID[trunk.ID]
		if got.FromDeviceID != sw.ID || got.ToDeviceID != router.ID {
			t.Fatalf("wrong endpoints: %+v", got)
		}
		if got.Technology != domain.TechnologyEthernet || got.VlanID != vlan.ID {
			t.Fatalf("wrong technology or vlan: %+v", got)
		}
	})

	t.Run("list filters by device", func(t *testing.T) {
		list, err := repo.ListConnections(ctx, root.ID, hub.ID)
		assertNoError(t, err)
		if len(list) != 1 || list[0].ID != mesh.ID {
			t.Fatalf("unexpected filtered list: %+v", list)
		}
	})

	t.Run("graph snapshot", func(t *testing.T) {
		graph, err := repo.Graph(ctx, root.ID)
		assertNoError(t, err)
		if len(graph.Devices) != 3 {
			t.Fatalf("expected 3 devices, got %d", len(graph.Devices))
		}
		if len(graph.Connections) != 2 {
			t.Fatalf("expected 2 connections, got %d", len(graph.Connections))
		}
		// devices sorted by name
		if graph.Devices[0].Name != "hub" || graph.Devices[2].Name != "switch-1" {
			t.Fatalf("unexpected device order: %+v", graph.Devices)
		}
	})

	t.Run("graph of empty root", func(t *testing.T) {
		other := seedRoot(t, repo)
		graph, err := repo.Graph(ctx, other.ID)
		assertNoError(t, err)
		if len(graph.Devices) != 0 || len(graph.Connections) != 0 {
			t.Fatalf("expected empty graph, got %+v", graph)
		}
		if graph.Devices == nil || graph.Connections == nil {
			t.Fatal("graph slices must be non-nil for JSON encoding")
		}
	})

	t.Run("update rewires endpoints", func(t *testing.T) {
		c, err := repo.GetConnection(ctx, mesh.ID)
		assertNoError(t, err)
		c.Technology = domain.TechnologyBLE
		c.Notes = "rewired"
		assertNoError(t, repo.UpdateConnection(ctx, c))

		got, err := repo.GetConnection(ctx, mesh.ID)
		assertNoError(t, err)
		if got.Technology != domain.TechnologyBLE || got.Notes != "rewired" {
			t.Fatalf("update not persisted: %+v", got)
		}
	})
}

// ============================================================================
// Secrets
// ============================================================================

func TestSecretCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	root := seedRoot(t, repo)
	device := seedDevice(t, repo, root.ID, root.ID, "nas")

	plain := &domain.Secret{
		ID:          uuid.NewString(),
		RootID:      root.ID,
		Kind:        domain.SecretKindToken,
		Name:        "controller token",
		ValueSealed: "sealed-a",
		CreatedAt:   time.Now().UTC(),
	}
	linked := &domain.Secret{
		ID:          uuid.NewString(),
		RootID:      root.ID,
		Kind:        domain.SecretKindPassword,
		Name:        "nas admin",
		ValueSealed: "sealed-b",
		DeviceID:    device.ID,
		CreatedAt:   time.Now().UTC().Add(time.Second),
	}
	assertNoError(t, repo.CreateSecret(ctx, plain))
	assertNoError(t, repo.CreateSecret(ctx, linked))

	got, err := repo.GetSecret(ctx, linked.ID)
	assertNoError(t, err)
	if got.DeviceID != device.ID || got.ValueSealed != "sealed-b" || got.Kind != domain.SecretKindPassword {
		t.Fatalf("unexpected secret: %+v", got)
	}

	all, err := repo.ListSecrets(ctx, root.ID, "")
	assertNoError(t, err)
	if len(all) != 2 {
		t.Fatalf("expected 2 secrets, got %d", len(all))
	}
	// newest first
	if all[0].ID != linked.ID {
		t.Fatalf("expected newest secret first, got %+v", all)
	}

	scoped, err := repo.ListSecrets(ctx, root.ID, device.ID)
	assertNoError(t, err)
	if len(scoped) != 1 || scoped[0].ID != linked.ID {
		t.Fatalf("unexpected device-scoped list: %+v", scoped)
	}

	assertNoError(t, repo.DeleteSecret(ctx, plain.ID))
	if err := repo.DeleteSecret(ctx, plain.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func TestNullStringRoundTrip(t *testing.T) {
	if got := stringToNull(""); got.Valid {
		t.Fatal("empty string must map to NULL")
	}
	if got := stringToNull("x"); !got.Valid || got.String != "x" {
		t.Fatalf("unexpected: %+v", got)
	}
	if got := nullToString(sql.NullString{}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := nullToString(sql.NullString{Valid: true, String: "y"}); got != "y" {
		t.Fatalf("expected y, got %q", got)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	got := parseTime(formatTime(now))
	if !got.Equal(now) {
		t.Fatalf("time round trip lost precision: %v vs %v", got, now)
	}
	if !parseTime("garbage").IsZero() {
		t.Fatal("expected zero time for unparseable input")
	}
}
