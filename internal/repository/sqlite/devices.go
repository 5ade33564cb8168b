package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netatlas/internal/domain"
)

const deviceColumns = `id, root_id, space_id, name, type, vendor, model, serial, notes,
	is_receiver, supports_wifi, supports_ethernet, supports_zigbee,
	supports_matter_thread, supports_bluetooth, supports_ble, created_at`

// ============================================================================
// Devices
// ============================================================================

// CreateDevice inserts a device with its capability flags.
func (r *Repository) CreateDevice(ctx context.Context, device *domain.Device) error {
	args := []any{
		device.ID, device.RootID, device.SpaceID, device.Name, device.Type,
		stringToNull(device.Vendor), stringToNull(device.Model), stringToNull(device.Serial),
		stringToNull(device.Notes), boolToInt(device.IsReceiver),
	}
	args = append(args, capabilityArgs(device.Capabilities)...)
	args = append(args, formatTime(device.CreatedAt))

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

// GetDevice retrieves a single device by id, nil when missing.
func (r *Repository) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	device, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return device, nil
}

// UpdateDevice persists every mutable device field.
func (r *Repository) UpdateDevice(ctx context.Context, device *domain.Device) error {
	args := []any{
		device.SpaceID, device.Name, device.Type,
		stringToNull(device.Vendor), stringToNull(device.Model), stringToNull(device.Serial),
		stringToNull(device.Notes), boolToInt(device.IsReceiver),
	}
	args = append(args, capabilityArgs(device.Capabilities)...)
	args = append(args, device.ID)

	res, err := r.db.ExecContext(ctx, `
		UPDATE devices SET space_id = ?, name = ?, type = ?, vendor = ?, model = ?, serial = ?, notes = ?,
			is_receiver = ?, supports_wifi = ?, supports_ethernet = ?, supports_zigbee = ?,
			supports_matter_thread = ?, supports_bluetooth = ?, supports_ble = ?
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDevices returns the devices of a root ordered by name, optionally
// narrowed to one space.
func (r *Repository) ListDevices(ctx context.Context, rootID, spaceID string) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE root_id = ?`
	args := []any{rootID}
	if spaceID != "" {
		query += ` AND space_id = ?`
		args = append(args, spaceID)
	}
	query += ` ORDER BY name ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *device)
	}
	return devices, rows.Err()
}

// DeleteDeviceCascade removes a device together with its interfaces, every
// connection referencing those interfaces, and its linked secrets, in one
// transaction.
func (r *Repository) DeleteDeviceCascade(ctx context.Context, id string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM connections
		WHERE from_interface_id IN (SELECT id FROM interfaces WHERE device_id = ?)
		   OR to_interface_id IN (SELECT id FROM interfaces WHERE device_id = ?)`, id, id); err != nil {
		return fmt.Errorf("failed to delete device connections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM secrets WHERE device_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete device secrets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM interfaces WHERE device_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete device interfaces: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit device cascade: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*domain.Device, error) {
	var (
		device                domain.Device
		vendor, model, serial sql.NullString
		notes                 sql.NullString
		isReceiver            int64
		flags                 = make([]int64, len(capabilityColumns))
		createdAt             string
	)
	err := s.Scan(&device.ID, &device.RootID, &device.SpaceID, &device.Name, &device.Type,
		&vendor, &model, &serial, &notes, &isReceiver,
		&flags[0], &flags[1], &flags[2], &flags[3], &flags[4], &flags[5], &createdAt)
	if err != nil {
		return nil, err
	}
	device.Vendor = nullToString(vendor)
	device.Model = nullToString(model)
	device.Serial = nullToString(serial)
	device.Notes = nullToString(notes)
	device.IsReceiver = isReceiver != 0
	device.Capabilities = capabilitySetFrom(flags)
	device.CreatedAt = parseTime(createdAt)
	return &device, nil
}

// ============================================================================
// Interfaces
// ============================================================================

// CreateInterface inserts an interface for an existing device.
func (r *Repository) CreateInterface(ctx context.Context, iface *domain.Interface) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interfaces (id, device_id, name, type, mac, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, iface.ID, iface.DeviceID, iface.Name, iface.Type,
		stringToNull(iface.MAC), stringToNull(iface.Notes), formatTime(iface.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert interface: %w", err)
	}
	return nil
}

// GetInterface retrieves a single interface by id, nil when missing.
func (r *Repository) GetInterface(ctx context.Context, id string) (*domain.Interface, error) {
	var (
		iface      domain.Interface
		mac, notes sql.NullString
		createdAt  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, device_id, name, type, mac, notes, created_at FROM interfaces WHERE id = ?
	`, id).Scan(&iface.ID, &iface.DeviceID, &iface.Name, &iface.Type, &mac, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query interface: %w", err)
	}
	iface.MAC = nullToString(mac)
	iface.Notes = nullToString(notes)
	iface.CreatedAt = parseTime(createdAt)
	return &iface, nil
}

// GetInterfaceWithDevice resolves an interface together with its owning
// device in one query, for connection-legality checks that must see both.
func (r *Repository) GetInterfaceWithDevice(ctx context.Context, id string) (*domain.Interface, *domain.Device, error) {
	var (
		iface      domain.Interface
		mac, notes sql.NullString
		ifaceAt    string
	)
	var (
		device                domain.Device
		vendor, model, serial sql.NullString
		deviceNotes           sql.NullString
		isReceiver            int64
		flags                 = make([]int64, len(capabilityColumns))
		deviceAt              string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT i.id, i.device_id, i.name, i.type, i.mac, i.notes, i.created_at,
			d.id, d.root_id, d.space_id, d.name, d.type, d.vendor, d.model, d.serial, d.notes,
			d.is_receiver, d.supports_wifi, d.supports_ethernet, d.supports_zigbee,
			d.supports_matter_thread, d.supports_bluetooth, d.supports_ble, d.created_at
		FROM interfaces i
		JOIN devices d ON i.device_id = d.id
		WHERE i.id = ?
	`, id).Scan(
		&iface.ID, &iface.DeviceID, &iface.Name, &iface.Type, &mac, &notes, &ifaceAt,
		&device.ID, &device.RootID, &device.SpaceID, &device.Name, &device.Type,
		&vendor, &model, &serial, &deviceNotes, &isReceiver,
		&flags[0], &flags[1], &flags[2], &flags[3], &flags[4], &flags[5], &deviceAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query interface with device: %w", err)
	}

	iface.MAC = nullToString(mac)
	iface.Notes = nullToString(notes)
	iface.CreatedAt = parseTime(ifaceAt)

	device.Vendor = nullToString(vendor)
	device.Model = nullToString(model)
	device.Serial = nullToString(serial)
	device.Notes = nullToString(deviceNotes)
	device.IsReceiver = isReceiver != 0
	device.Capabilities = capabilitySetFrom(flags)
	device.CreatedAt = parseTime(deviceAt)

	return &iface, &device, nil
}

// UpdateInterface persists name, type, MAC, and notes.
func (r *Repository) UpdateInterface(ctx context.Context, iface *domain.Interface) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE interfaces SET name = ?, type = ?, mac = ?, notes = ? WHERE id = ?
	`, iface.Name, iface.Type, stringToNull(iface.MAC), stringToNull(iface.Notes), iface.ID)
	if err != nil {
		return fmt.Errorf("failed to update interface: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListInterfaces returns a device's interfaces ordered by name.
func (r *Repository) ListInterfaces(ctx context.Context, deviceID string) ([]domain.Interface, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_id, name, type, mac, notes, created_at
		FROM interfaces WHERE device_id = ? ORDER BY name ASC
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interfaces: %w", err)
	}
	defer rows.Close()

	var ifaces []domain.Interface
	for rows.Next() {
		var (
			iface      domain.Interface
			mac, notes sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&iface.ID, &iface.DeviceID, &iface.Name, &iface.Type, &mac, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan interface: %w", err)
		}
		iface.MAC = nullToString(mac)
		iface.Notes = nullToString(notes)
		iface.CreatedAt = parseTime(createdAt)
		ifaces = append(ifaces, iface)
	}
	return ifaces, rows.Err()
}

// DeleteInterfaceCascade removes an interface and every connection that
// references it, in one transaction.
func (r *Repository) DeleteInterfaceCascade(ctx context.Context, id string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM connections
		WHERE from_interface_id = ? OR to_interface_id = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete interface connections: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM interfaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interface: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interface cascade: %w", err)
	}
	return nil
}
