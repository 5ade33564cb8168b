package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netatlas/internal/domain"
)

// maxTreeDepth bounds subtree and ancestor walks. The hierarchy has no
// designed depth cap; the ceiling exists so a cycle introduced by data
// corruption surfaces as an error instead of an infinite loop.
const maxTreeDepth = 10000

// CreateRoot inserts the origin space of a new tree (id == root_id, no parent).
func (r *Repository) CreateRoot(ctx context.Context, root *domain.Space) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO spaces (id, root_id, parent_id, name, notes, created_at)
		VALUES (?, ?, NULL, ?, ?, ?)
	`, root.ID, root.ID, root.Name, stringToNull(root.Notes), formatTime(root.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert root: %w", err)
	}
	return nil
}

// GetRoot retrieves a root node. Returns nil when the id does not resolve to
// the origin space of a tree.
func (r *Repository) GetRoot(ctx context.Context, rootID string) (*domain.Space, error) {
	space, err := r.GetSpace(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if space == nil || !space.IsRoot() {
		return nil, nil
	}
	return space, nil
}

// ListRoots returns every root node.
func (r *Repository) ListRoots(ctx context.Context) ([]domain.Space, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, root_id, parent_id, name, notes, created_at
		FROM spaces WHERE id = root_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roots: %w", err)
	}
	defer rows.Close()
	return scanSpaces(rows)
}

// CreateSpace inserts a space under an existing parent.
func (r *Repository) CreateSpace(ctx context.Context, space *domain.Space) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO spaces (id, root_id, parent_id, name, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, space.ID, space.RootID, stringToNull(space.ParentID), space.Name,
		stringToNull(space.Notes), formatTime(space.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert space: %w", err)
	}
	return nil
}

// GetSpace retrieves a single space by id, nil when missing.
func (r *Repository) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	var (
		space           domain.Space
		parent, notes   sql.NullString
		createdAt       string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, root_id, parent_id, name, notes, created_at
		FROM spaces WHERE id = ?
	`, id).Scan(&space.ID, &space.RootID, &parent, &space.Name, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query space: %w", err)
	}
	space.ParentID = nullToString(parent)
	space.Notes = nullToString(notes)
	space.CreatedAt = parseTime(createdAt)
	return &space, nil
}

// UpdateSpace persists name, notes, and parent of an existing space.
func (r *Repository) UpdateSpace(ctx context.Context, space *domain.Space) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE spaces SET name = ?, notes = ?, parent_id = ? WHERE id = ?
	`, space.Name, stringToNull(space.Notes), stringToNull(space.ParentID), space.ID)
	if err != nil {
		return fmt.Errorf("failed to update space: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSpaces returns every space of a root, the root node included.
func (r *Repository) ListSpaces(ctx context.Context, rootID string) ([]domain.Space, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, root_id, parent_id, name, notes, created_at
		FROM spaces WHERE root_id = ?
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spaces: %w", err)
	}
	defer rows.Close()
	return scanSpaces(rows)
}

// DeviceCountsBySpace returns the count of devices anchored directly at each
// space of the root. Computed at read time; never maintained incrementally.
func (r *Repository) DeviceCountsBySpace(ctx context.Context, rootID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT space_id, COUNT(id) FROM devices WHERE root_id = ? GROUP BY space_id
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var spaceID string
		var count int
		if err := rows.Scan(&spaceID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan device count: %w", err)
		}
		counts[spaceID] = count
	}
	return counts, rows.Err()
}

// DeleteSpaceCascade removes a space, its descendant spaces, and every
// device, interface, connection, Wi-Fi network, and device-linked secret
// anchored in the subtree. All-or-nothing within one transaction.
func (r *Repository) DeleteSpaceCascade(ctx context.Context, spaceID string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := spaceExistsTx(ctx, tx, spaceID); err != nil {
		return err
	}

	levels, err := collectSubtreeTx(ctx, tx, spaceID)
	if err != nil {
		return err
	}

	if err := deleteSubtreeTx(ctx, tx, levels); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit space cascade: %w", err)
	}
	return nil
}

// spaceExistsTx resolves a space id inside the cascade transaction so the
// not-found answer and the delete see the same snapshot.
func spaceExistsTx(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM spaces WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to resolve space: %w", err)
	}
	return nil
}

// DeleteRootCascade removes a root and everything scoped to it: the space
// tree with its dependents, VLANs, root-level secrets, and the root record
// itself, in a single transaction.
func (r *Repository) DeleteRootCascade(ctx context.Context, rootID string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := spaceExistsTx(ctx, tx, rootID); err != nil {
		return err
	}

	levels, err := collectSubtreeTx(ctx, tx, rootID)
	if err != nil {
		return err
	}

	// Root-scoped secrets go first so device-linked rows do not block the
	// device deletes below either way.
	if _, err := tx.ExecContext(ctx, `DELETE FROM secrets WHERE root_id = ?`, rootID); err != nil {
		return fmt.Errorf("failed to delete root secrets: %w", err)
	}

	if err := deleteSubtreeDependentsTx(ctx, tx, flatten(levels)); err != nil {
		return err
	}

	// VLANs after connections and Wi-Fi networks, before the spaces they
	// reference through root_id.
	if _, err := tx.ExecContext(ctx, `DELETE FROM vlans WHERE root_id = ?`, rootID); err != nil {
		return fmt.Errorf("failed to delete root vlans: %w", err)
	}

	if err := deleteSpaceRowsTx(ctx, tx, levels); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit root cascade: %w", err)
	}
	return nil
}

// collectSubtreeTx gathers the subtree rooted at spaceID as breadth-first
// levels (the space itself first). Uses an explicit worklist, no recursion.
func collectSubtreeTx(ctx context.Context, tx *sql.Tx, spaceID string) ([][]string, error) {
	levels := [][]string{{spaceID}}
	frontier := []string{spaceID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("%w: space tree exceeds depth ceiling", domain.ErrInvalidHierarchy)
		}

		query := `SELECT id FROM spaces WHERE parent_id IN (` + placeholders(len(frontier)) + `)`
		rows, err := tx.QueryContext(ctx, query, idArgs(frontier)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query children: %w", err)
		}

		var next []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan child id: %w", err)
			}
			next = append(next, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}

	return levels, nil
}

// deleteSubtreeTx removes dependents and then the space rows themselves.
func deleteSubtreeTx(ctx context.Context, tx *sql.Tx, levels [][]string) error {
	if err := deleteSubtreeDependentsTx(ctx, tx, flatten(levels)); err != nil {
		return err
	}
	return deleteSpaceRowsTx(ctx, tx, levels)
}

// deleteSubtreeDependentsTx batch-deletes everything anchored at the given
// spaces: connections touching their devices' interfaces, secrets linked to
// those devices, interfaces, devices, and Wi-Fi networks.
func deleteSubtreeDependentsTx(ctx context.Context, tx *sql.Tx, spaceIDs []string) error {
	if len(spaceIDs) == 0 {
		return nil
	}
	in := placeholders(len(spaceIDs))
	args := idArgs(spaceIDs)

	ifaceSelect := `SELECT i.id FROM interfaces i
		JOIN devices d ON i.device_id = d.id
		WHERE d.space_id IN (` + in + `)`

	connDelete := `DELETE FROM connections
		WHERE from_interface_id IN (` + ifaceSelect + `)
		   OR to_interface_id IN (` + ifaceSelect + `)`
	if _, err := tx.ExecContext(ctx, connDelete, append(append([]any{}, args...), args...)...); err != nil {
		return fmt.Errorf("failed to delete connections: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM secrets WHERE device_id IN (
		SELECT id FROM devices WHERE space_id IN (`+in+`))`, args...); err != nil {
		return fmt.Errorf("failed to delete device secrets: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM interfaces WHERE device_id IN (
		SELECT id FROM devices WHERE space_id IN (`+in+`))`, args...); err != nil {
		return fmt.Errorf("failed to delete interfaces: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE space_id IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete devices: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM wifi_networks WHERE space_id IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete wifi networks: %w", err)
	}

	return nil
}

// deleteSpaceRowsTx removes space rows deepest level first, so the
// parent_id foreign key never sees a dangling reference mid-cascade.
func deleteSpaceRowsTx(ctx context.Context, tx *sql.Tx, levels [][]string) error {
	for i := len(levels) - 1; i >= 0; i-- {
		ids := levels[i]
		query := `DELETE FROM spaces WHERE id IN (` + placeholders(len(ids)) + `)`
		if _, err := tx.ExecContext(ctx, query, idArgs(ids)...); err != nil {
			return fmt.Errorf("failed to delete spaces: %w", err)
		}
	}
	return nil
}

func flatten(levels [][]string) []string {
	var out []string
	for _, level := range levels {
		out = append(out, level...)
	}
	return out
}

func scanSpaces(rows *sql.Rows) ([]domain.Space, error) {
	var spaces []domain.Space
	for rows.Next() {
		var (
			space         domain.Space
			parent, notes sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&space.ID, &space.RootID, &parent, &space.Name, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		space.ParentID = nullToString(parent)
		space.Notes = nullToString(notes)
		space.CreatedAt = parseTime(createdAt)
		spaces = append(spaces, space)
	}
	return spaces, rows.Err()
}
