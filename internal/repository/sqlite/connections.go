package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netatlas/internal/domain"
)

// CreateConnection inserts a connection. Legality is validated by the
// service layer before this is called.
func (r *Repository) CreateConnection(ctx context.Context, conn *domain.Connection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO connections (id, root_id, from_interface_id, to_interface_id, technology, vlan_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, conn.ID, conn.RootID, conn.FromInterfaceID, conn.ToInterfaceID,
		string(conn.Technology), stringToNull(conn.VlanID), stringToNull(conn.Notes),
		formatTime(conn.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

// GetConnection retrieves a single connection by id, nil when missing.
func (r *Repository) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	var (
		conn          domain.Connection
		technology    string
		vlanID, notes sql.NullString
		createdAt     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, root_id, from_interface_id, to_interface_id, technology, vlan_id, notes, created_at
		FROM connections WHERE id = ?
	`, id).Scan(&conn.ID, &conn.RootID, &conn.FromInterfaceID, &conn.ToInterfaceID,
		&technology, &vlanID, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}
	conn.Technology = domain.Technology(technology)
	conn.VlanID = nullToString(vlanID)
	conn.Notes = nullToString(notes)
	conn.CreatedAt = parseTime(createdAt)
	return &conn, nil
}

// UpdateConnection persists endpoints, technology, VLAN, and notes.
func (r *Repository) UpdateConnection(ctx context.Context, conn *domain.Connection) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connections SET from_interface_id = ?, to_interface_id = ?, technology = ?, vlan_id = ?, notes = ?
		WHERE id = ?
	`, conn.FromInterfaceID, conn.ToInterfaceID, string(conn.Technology),
		stringToNull(conn.VlanID), stringToNull(conn.Notes), conn.ID)
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const graphConnectionQuery = `
	SELECT c.id, fi.device_id, ti.device_id, c.from_interface_id, c.to_interface_id,
		c.technology, c.vlan_id, c.notes, c.created_at
	FROM connections c
	JOIN interfaces fi ON c.from_interface_id = fi.id
	JOIN interfaces ti ON c.to_interface_id = ti.id
	WHERE c.root_id = ?`

// ListConnections returns a root's connections with endpoint device ids
// resolved, newest first, optionally narrowed to connections touching one
// device.
func (r *Repository) ListConnections(ctx context.Context, rootID, deviceID string) ([]domain.GraphConnection, error) {
	query := graphConnectionQuery
	args := []any{rootID}
	if deviceID != "" {
		query += ` AND (fi.device_id = ? OR ti.device_id = ?)`
		args = append(args, deviceID, deviceID)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()
	return scanGraphConnections(rows)
}

// Graph loads the full scoped snapshot of one root: every device and every
// connection with endpoint device ids.
func (r *Repository) Graph(ctx context.Context, rootID string) (*domain.Graph, error) {
	graph := &domain.Graph{
		Devices:     []domain.GraphDevice{},
		Connections: []domain.GraphConnection{},
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, space_id, vendor, model, is_receiver, created_at
		FROM devices WHERE root_id = ? ORDER BY name ASC
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query graph devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			node          domain.GraphDevice
			vendor, model sql.NullString
			isReceiver    int64
			createdAt     string
		)
		if err := rows.Scan(&node.ID, &node.Name, &node.Type, &node.SpaceID,
			&vendor, &model, &isReceiver, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan graph device: %w", err)
		}
		node.Vendor = nullToString(vendor)
		node.Model = nullToString(model)
		node.IsReceiver = isReceiver != 0
		node.CreatedAt = parseTime(createdAt)
		graph.Devices = append(graph.Devices, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	connRows, err := r.db.QueryContext(ctx, graphConnectionQuery+` ORDER BY c.created_at ASC`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query graph connections: %w", err)
	}
	defer connRows.Close()

	connections, err := scanGraphConnections(connRows)
	if err != nil {
		return nil, err
	}
	graph.Connections = connections

	return graph, nil
}

// DeleteConnection removes a connection.
func (r *Repository) DeleteConnection(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanGraphConnections(rows *sql.Rows) ([]domain.GraphConnection, error) {
	connections := []domain.GraphConnection{}
	for rows.Next() {
		var (
			conn          domain.GraphConnection
			technology    string
			vlanID, notes sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&conn.ID, &conn.FromDeviceID, &conn.ToDeviceID,
			&conn.FromInterfaceID, &conn.ToInterfaceID, &technology, &vlanID, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conn.Technology = domain.Technology(technology)
		conn.VlanID = nullToString(vlanID)
		conn.Notes = nullToString(notes)
		conn.CreatedAt = parseTime(createdAt)
		connections = append(connections, conn)
	}
	return connections, rows.Err()
}
