package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netatlas/internal/domain"
)

// CreateSecret inserts a sealed secret. The value is already encrypted by
// the caller; the repository never sees plaintext.
func (r *Repository) CreateSecret(ctx context.Context, secret *domain.Secret) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO secrets (id, root_id, kind, name, value_sealed, device_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, secret.ID, secret.RootID, string(secret.Kind), secret.Name, secret.ValueSealed,
		stringToNull(secret.DeviceID), stringToNull(secret.Notes), formatTime(secret.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert secret: %w", err)
	}
	return nil
}

// GetSecret retrieves a secret by id, nil when missing.
func (r *Repository) GetSecret(ctx context.Context, id string) (*domain.Secret, error) {
	var (
		secret          domain.Secret
		kind            string
		deviceID, notes sql.NullString
		createdAt       string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, root_id, kind, name, value_sealed, device_id, notes, created_at
		FROM secrets WHERE id = ?
	`, id).Scan(&secret.ID, &secret.RootID, &kind, &secret.Name, &secret.ValueSealed,
		&deviceID, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query secret: %w", err)
	}
	secret.Kind = domain.SecretKind(kind)
	secret.DeviceID = nullToString(deviceID)
	secret.Notes = nullToString(notes)
	secret.CreatedAt = parseTime(createdAt)
	return &secret, nil
}

// ListSecrets returns a root's secrets newest first, optionally narrowed to
// one linked device.
func (r *Repository) ListSecrets(ctx context.Context, rootID, deviceID string) ([]domain.Secret, error) {
	query := `
		SELECT id, root_id, kind, name, value_sealed, device_id, notes, created_at
		FROM secrets WHERE root_id = ?`
	args := []any{rootID}
	if deviceID != "" {
		query += ` AND device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query secrets: %w", err)
	}
	defer rows.Close()

	secrets := []domain.Secret{}
	for rows.Next() {
		var (
			secret          domain.Secret
			kind            string
			devID, notes    sql.NullString
			createdAt       string
		)
		if err := rows.Scan(&secret.ID, &secret.RootID, &kind, &secret.Name,
			&secret.ValueSealed, &devID, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secret.Kind = domain.SecretKind(kind)
		secret.DeviceID = nullToString(devID)
		secret.Notes = nullToString(notes)
		secret.CreatedAt = parseTime(createdAt)
		secrets = append(secrets, secret)
	}
	return secrets, rows.Err()
}

// DeleteSecret removes a secret.
func (r *Repository) DeleteSecret(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
