package db

import (
	"context"
	"database/sql"
	"fmt"

	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

const lotColumns = `id, auction_id, vehicle_id, lot_number, condition, winner_status,
		start_price, current_price, reserve_price, min_pre_bid, is_active,
		last_bid_time, active_start_time, unsold_reason, version, created_at, updated_at`

// LotRepository implements the lot repository interface
type LotRepository struct {
	conn *Connection
}

// NewLotRepository creates a new lot repository
func NewLotRepository(conn *Connection) *LotRepository {
	return &LotRepository{conn: conn}
}

// Create creates a new lot
func (r *LotRepository) Create(ctx context.Context, l *lot.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		l.ID,
		l.AuctionID,
		l.VehicleID,
		l.LotNumber,
		l.Condition,
		l.WinnerStatus,
		l.StartPrice,
		l.CurrentPrice,
		l.ReservePrice,
		l.MinPreBid,
		l.IsActive,
		l.LastBidTime,
		l.ActiveStartTime,
		l.UnsoldReason,
		l.Version,
		l.CreatedAt,
		l.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}

	return nil
}

func scanLot(row interface{ Scan(...interface{}) error }) (*lot.Lot, error) {
	var l lot.Lot
	err := row.Scan(
		&l.ID,
		&l.AuctionID,
		&l.VehicleID,
		&l.LotNumber,
		&l.Condition,
		&l.WinnerStatus,
		&l.StartPrice,
		&l.CurrentPrice,
		&l.ReservePrice,
		&l.MinPreBid,
		&l.IsActive,
		&l.LastBidTime,
		&l.ActiveStartTime,
		&l.UnsoldReason,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID retrieves a lot by ID
func (r *LotRepository) GetByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`

	l, err := scanLot(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}

	return l, nil
}

// GetByNumber retrieves a lot by its number within an auction
func (r *LotRepository) GetByNumber(ctx context.Context, auctionID uuid.UUID, lotNumber int) (*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE auction_id = $1 AND lot_number = $2`

	l, err := scanLot(r.conn.GetDB().QueryRowContext(ctx, query, auctionID, lotNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to get lot by number: %w", err)
	}

	return l, nil
}

// ListByAuction retrieves an auction's lots ordered by lot number
func (r *LotRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE auction_id = $1 ORDER BY lot_number ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	defer rows.Close()

	var lots []*lot.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}

	return lots, nil
}

// GetActive retrieves the auction's active lot
func (r *LotRepository) GetActive(ctx context.Context, auctionID uuid.UUID) (*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE auction_id = $1 AND is_active = true`

	l, err := scanLot(r.conn.GetDB().QueryRowContext(ctx, query, auctionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to get active lot: %w", err)
	}

	return l, nil
}

// Update updates a lot, enforcing its version for optimistic concurrency.
// On success the in-memory version is advanced to match the row.
func (r *LotRepository) Update(ctx context.Context, l *lot.Lot) error {
	query := `
		UPDATE lots
		SET condition = $3, winner_status = $4, current_price = $5, is_active = $6,
		    last_bid_time = $7, active_start_time = $8, unsold_reason = $9,
		    version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		l.ID,
		l.Version,
		l.Condition,
		l.WinnerStatus,
		l.CurrentPrice,
		l.IsActive,
		l.LastBidTime,
		l.ActiveStartTime,
		l.UnsoldReason,
		l.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrVersionConflict
	}

	l.Version++
	return nil
}
