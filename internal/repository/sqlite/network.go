package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netatlas/internal/domain"
)

// ============================================================================
// VLANs
// ============================================================================

// CreateVlan inserts a VLAN. The UNIQUE (root_id, number) constraint turns a
// duplicate number within the root into domain.ErrConflict, closing the race
// between two concurrent creations.
func (r *Repository) CreateVlan(ctx context.Context, vlan *domain.Vlan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vlans (id, root_id, number, name, subnet_mask, ip_range_start, ip_range_end, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, vlan.ID, vlan.RootID, vlan.Number, vlan.Name, vlan.SubnetMask,
		vlan.IPRangeStart, vlan.IPRangeEnd, stringToNull(vlan.Notes), formatTime(vlan.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: vlan %d already exists in root", domain.ErrConflict, vlan.Number)
	}
	if err != nil {
		return fmt.Errorf("failed to insert vlan: %w", err)
	}
	return nil
}

// GetVlan retrieves a single VLAN by id, nil when missing.
func (r *Repository) GetVlan(ctx context.Context, id string) (*domain.Vlan, error) {
	var (
		vlan      domain.Vlan
		notes     sql.NullString
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, root_id, number, name, subnet_mask, ip_range_start, ip_range_end, notes, created_at
		FROM vlans WHERE id = ?
	`, id).Scan(&vlan.ID, &vlan.RootID, &vlan.Number, &vlan.Name, &vlan.SubnetMask,
		&vlan.IPRangeStart, &vlan.IPRangeEnd, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vlan: %w", err)
	}
	vlan.Notes = nullToString(notes)
	vlan.CreatedAt = parseTime(createdAt)
	return &vlan, nil
}

// UpdateVlan persists number, name, addressing, and notes.
func (r *Repository) UpdateVlan(ctx context.Context, vlan *domain.Vlan) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vlans SET number = ?, name = ?, subnet_mask = ?, ip_range_start = ?, ip_range_end = ?, notes = ?
		WHERE id = ?
	`, vlan.Number, vlan.Name, vlan.SubnetMask, vlan.IPRangeStart, vlan.IPRangeEnd,
		stringToNull(vlan.Notes), vlan.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: vlan %d already exists in root", domain.ErrConflict, vlan.Number)
	}
	if err != nil {
		return fmt.Errorf("failed to update vlan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVlans returns the VLANs of a root ordered by number, then name.
func (r *Repository) ListVlans(ctx context.Context, rootID string) ([]domain.Vlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, root_id, number, name, subnet_mask, ip_range_start, ip_range_end, notes, created_at
		FROM vlans WHERE root_id = ? ORDER BY number ASC, name ASC
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vlans: %w", err)
	}
	defer rows.Close()

	var vlans []domain.Vlan
	for rows.Next() {
		var (
			vlan      domain.Vlan
			notes     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&vlan.ID, &vlan.RootID, &vlan.Number, &vlan.Name, &vlan.SubnetMask,
			&vlan.IPRangeStart, &vlan.IPRangeEnd, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan vlan: %w", err)
		}
		vlan.Notes = nullToString(notes)
		vlan.CreatedAt = parseTime(createdAt)
		vlans = append(vlans, vlan)
	}
	return vlans, rows.Err()
}

// DeleteVlan removes a VLAN row. Reference checks are the caller's job; the
// foreign keys on wifi_networks and connections are a second line of defense.
func (r *Repository) DeleteVlan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vlans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vlan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// VlanReferenceCounts reports how many Wi-Fi networks and connections still
// reference the VLAN.
func (r *Repository) VlanReferenceCounts(ctx context.Context, vlanID string) (int, int, error) {
	var wifiRefs, connectionRefs int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM wifi_networks WHERE vlan_id = ?`, vlanID).Scan(&wifiRefs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count wifi references: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM connections WHERE vlan_id = ?`, vlanID).Scan(&connectionRefs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count connection references: %w", err)
	}
	return wifiRefs, connectionRefs, nil
}

// ============================================================================
// Wi-Fi Networks
// ============================================================================

// CreateWifiNetwork inserts a Wi-Fi network. PasswordSealed must already be
// sealed; this layer never sees plaintext.
func (r *Repository) CreateWifiNetwork(ctx context.Context, network *domain.WifiNetwork) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wifi_networks (id, root_id, space_id, ssid, security, password_sealed, vlan_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, network.ID, network.RootID, network.SpaceID, network.SSID, network.Security,
		network.PasswordSealed, stringToNull(network.VlanID), stringToNull(network.Notes),
		formatTime(network.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert wifi network: %w", err)
	}
	return nil
}

// GetWifiNetwork retrieves a single Wi-Fi network by id, nil when missing.
func (r *Repository) GetWifiNetwork(ctx context.Context, id string) (*domain.WifiNetwork, error) {
	var (
		network       domain.WifiNetwork
		vlanID, notes sql.NullString
		createdAt     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, root_id, space_id, ssid, security, password_sealed, vlan_id, notes, created_at
		FROM wifi_networks WHERE id = ?
	`, id).Scan(&network.ID, &network.RootID, &network.SpaceID, &network.SSID,
		&network.Security, &network.PasswordSealed, &vlanID, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wifi network: %w", err)
	}
	network.VlanID = nullToString(vlanID)
	network.Notes = nullToString(notes)
	network.CreatedAt = parseTime(createdAt)
	return &network, nil
}

// UpdateWifiNetwork persists every mutable field, sealed password included.
func (r *Repository) UpdateWifiNetwork(ctx context.Context, network *domain.WifiNetwork) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE wifi_networks SET space_id = ?, ssid = ?, security = ?, password_sealed = ?, vlan_id = ?, notes = ?
		WHERE id = ?
	`, network.SpaceID, network.SSID, network.Security, network.PasswordSealed,
		stringToNull(network.VlanID), stringToNull(network.Notes), network.ID)
	if err != nil {
		return fmt.Errorf("failed to update wifi network: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListWifiNetworks returns the networks of a root ordered by SSID, then age.
func (r *Repository) ListWifiNetworks(ctx context.Context, rootID string) ([]domain.WifiNetwork, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, root_id, space_id, ssid, security, password_sealed, vlan_id, notes, created_at
		FROM wifi_networks WHERE root_id = ? ORDER BY ssid ASC, created_at ASC
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wifi networks: %w", err)
	}
	defer rows.Close()

	var networks []domain.WifiNetwork
	for rows.Next() {
		var (
			network       domain.WifiNetwork
			vlanID, notes sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&network.ID, &network.RootID, &network.SpaceID, &network.SSID,
			&network.Security, &network.PasswordSealed, &vlanID, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan wifi network: %w", err)
		}
		network.VlanID = nullToString(vlanID)
		network.Notes = nullToString(notes)
		network.CreatedAt = parseTime(createdAt)
		networks = append(networks, network)
	}
	return networks, rows.Err()
}

// DeleteWifiNetwork removes a Wi-Fi network.
func (r *Repository) DeleteWifiNetwork(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wifi_networks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wifi network: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
