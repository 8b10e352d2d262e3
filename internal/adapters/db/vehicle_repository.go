package db

import (
	"context"
	"database/sql"
	"fmt"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

// VehicleRepository implements the vehicle repository interface
type VehicleRepository struct {
	conn *Connection
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(conn *Connection) *VehicleRepository {
	return &VehicleRepository{conn: conn}
}

// Create creates a new vehicle
func (r *VehicleRepository) Create(ctx context.Context, v *shared.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, owner_id, vin, make, model, year, mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		v.ID,
		v.OwnerID,
		v.VIN,
		v.Make,
		v.Model,
		v.Year,
		v.Mileage,
		v.CreatedAt,
		v.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Vehicle, error) {
	query := `
		SELECT id, owner_id, vin, make, model, year, mileage, created_at, updated_at
		FROM vehicles WHERE id = $1
	`

	var v shared.Vehicle
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.OwnerID,
		&v.VIN,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.Mileage,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}
