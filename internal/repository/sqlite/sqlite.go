// Package sqlite implements repository.Repository on SQLite via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. WAL mode and a busy timeout keep
// concurrent request transactions from failing fast; foreign keys are
// enforced so a mis-ordered cascade fails loudly instead of orphaning rows.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spaces (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL,
		parent_id TEXT REFERENCES spaces(id),
		name TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vlans (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL REFERENCES spaces(id),
		number INTEGER NOT NULL,
		name TEXT NOT NULL,
		subnet_mask TEXT NOT NULL,
		ip_range_start TEXT NOT NULL,
		ip_range_end TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (root_id, number)
	);

	CREATE TABLE IF NOT EXISTS wifi_networks (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL REFERENCES spaces(id),
		space_id TEXT NOT NULL REFERENCES spaces(id),
		ssid TEXT NOT NULL,
		security TEXT NOT NULL,
		password_sealed TEXT NOT NULL,
		vlan_id TEXT REFERENCES vlans(id),
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL REFERENCES spaces(id),
		space_id TEXT NOT NULL REFERENCES spaces(id),
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		vendor TEXT,
		model TEXT,
		serial TEXT,
		notes TEXT,
		is_receiver INTEGER NOT NULL DEFAULT 0,
		supports_wifi INTEGER NOT NULL DEFAULT 0,
		supports_ethernet INTEGER NOT NULL DEFAULT 0,
		supports_zigbee INTEGER NOT NULL DEFAULT 0,
		supports_matter_thread INTEGER NOT NULL DEFAULT 0,
		supports_bluetooth INTEGER NOT NULL DEFAULT 0,
		supports_ble INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interfaces (
		id TEXT PRIMARY KEY,
		device_id TEXT NOT NULL REFERENCES devices(id),
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		mac TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS connections (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL REFERENCES spaces(id),
		from_interface_id TEXT NOT NULL REFERENCES interfaces(id),
		to_interface_id TEXT NOT NULL REFERENCES interfaces(id),
		technology TEXT NOT NULL,
		vlan_id TEXT REFERENCES vlans(id),
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS secrets (
		id TEXT PRIMARY KEY,
		root_id TEXT NOT NULL REFERENCES spaces(id),
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		value_sealed TEXT NOT NULL,
		device_id TEXT REFERENCES devices(id),
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_spaces_root ON spaces(root_id);
	CREATE INDEX IF NOT EXISTS idx_spaces_parent ON spaces(parent_id);
	CREATE INDEX IF NOT EXISTS idx_vlans_root ON vlans(root_id);
	CREATE INDEX IF NOT EXISTS idx_wifi_root ON wifi_networks(root_id);
	CREATE INDEX IF NOT EXISTS idx_wifi_space ON wifi_networks(space_id);
	CREATE INDEX IF NOT EXISTS idx_devices_root ON devices(root_id);
	CREATE INDEX IF NOT EXISTS idx_devices_space ON devices(space_id);
	CREATE INDEX IF NOT EXISTS idx_interfaces_device ON interfaces(device_id);
	CREATE INDEX IF NOT EXISTS idx_connections_root ON connections(root_id);
	CREATE INDEX IF NOT EXISTS idx_connections_from ON connections(from_interface_id);
	CREATE INDEX IF NOT EXISTS idx_connections_to ON connections(to_interface_id);
	CREATE INDEX IF NOT EXISTS idx_secrets_root ON secrets(root_id);
	CREATE INDEX IF NOT EXISTS idx_secrets_device ON secrets(device_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// beginTx starts a transaction with the store's default isolation
// (serialized writes under SQLite).
func (r *Repository) beginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
