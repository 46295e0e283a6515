package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"venchmarks/internal/models"
	"venchmarks/pkg"
)

// Listings never read private_key; only the upload check needs it.
const (
	machineColumns     = `id, name, description, private_key, public_key, digest, hardware, owner, created_at`
	machineListColumns = `id, name, description, public_key, digest, hardware, owner, created_at`
)

// CreateMachine inserts m. A name that is already taken yields ErrDuplicate;
// the check is the table's UNIQUE constraint, so concurrent registrations
// cannot both succeed.
func (r *Repository) CreateMachine(ctx context.Context, m *models.Machine) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO machines (`+machineColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Name, m.Description, m.PrivateKey, m.PublicKey, m.Digest, m.Hardware, m.Owner, m.CreatedAt)
	if pkg.IsUniqueViolation(err) {
		return fmt.Errorf("machine %q: %w", m.Name, ErrDuplicate)
	}
	return err
}

// GetMachineByName returns ErrNotFound when no machine has that name.
func (r *Repository) GetMachineByName(ctx context.Context, name string) (*models.Machine, error) {
	var m models.Machine
	err := r.db.GetContext(ctx, &m, r.db.Rebind(`
		SELECT `+machineColumns+`
		FROM machines
		WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("machine %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListMachinesByOwner(ctx context.Context, owner string) ([]models.Machine, error) {
	var machines []models.Machine
	err := r.db.SelectContext(ctx, &machines, r.db.Rebind(`
		SELECT `+machineListColumns+`
		FROM machines
		WHERE owner = ?
		ORDER BY name`), owner)
	return machines, err
}

func (r *Repository) ListMachines(ctx context.Context) ([]models.Machine, error) {
	var machines []models.Machine
	err := r.db.SelectContext(ctx, &machines, `
		SELECT `+machineListColumns+`
		FROM machines
		ORDER BY name`)
	return machines, err
}
