package db

import (
	"context"
	"database/sql"
	"fmt"

	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"

	"github.com/google/uuid"
)

const winnerColumns = `id, lot_id, bid_id, user_id, amount, payment_status,
		payment_due_date, confirmed_at, rejected_at, rejection_reason,
		second_chance_eligible, created_at, updated_at`

// WinnerRepository implements the winner repository interface
type WinnerRepository struct {
	conn *Connection
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(conn *Connection) *WinnerRepository {
	return &WinnerRepository{conn: conn}
}

// Create creates a new winner record
func (r *WinnerRepository) Create(ctx context.Context, w *winner.Winner) error {
	query := `
		INSERT INTO winners (` + winnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		w.ID,
		w.LotID,
		w.BidID,
		w.UserID,
		w.Amount,
		w.PaymentStatus,
		w.PaymentDueDate,
		w.ConfirmedAt,
		w.RejectedAt,
		w.RejectionReason,
		w.SecondChanceEligible,
		w.CreatedAt,
		w.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create winner: %w", err)
	}

	return nil
}

// GetByLotID retrieves the winner record for a lot
func (r *WinnerRepository) GetByLotID(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error) {
	query := `SELECT ` + winnerColumns + ` FROM winners WHERE lot_id = $1`

	var w winner.Winner
	err := r.conn.GetDB().QueryRowContext(ctx, query, lotID).Scan(
		&w.ID,
		&w.LotID,
		&w.BidID,
		&w.UserID,
		&w.Amount,
		&w.PaymentStatus,
		&w.PaymentDueDate,
		&w.ConfirmedAt,
		&w.RejectedAt,
		&w.RejectionReason,
		&w.SecondChanceEligible,
		&w.CreatedAt,
		&w.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrWinnerNotFound
		}
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}

	return &w, nil
}

// Update updates a winner record
func (r *WinnerRepository) Update(ctx context.Context, w *winner.Winner) error {
	query := `
		UPDATE winners
		SET payment_status = $2, payment_due_date = $3, confirmed_at = $4,
		    rejected_at = $5, rejection_reason = $6, second_chance_eligible = $7,
		    updated_at = $8
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		w.ID,
		w.PaymentStatus,
		w.PaymentDueDate,
		w.ConfirmedAt,
		w.RejectedAt,
		w.RejectionReason,
		w.SecondChanceEligible,
		w.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update winner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrWinnerNotFound
	}

	return nil
}

// DeleteByLotID removes a lot's winner record
func (r *WinnerRepository) DeleteByLotID(ctx context.Context, lotID uuid.UUID) error {
	query := `DELETE FROM winners WHERE lot_id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, lotID)
	if err != nil {
		return fmt.Errorf("failed to delete winner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrWinnerNotFound
	}

	return nil
}
