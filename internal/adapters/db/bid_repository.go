package db

import (
	"context"
	"database/sql"
	"fmt"

	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

const bidColumns = `id, lot_id, user_id, amount, placed_at, is_pre_bid, is_proxy,
		proxy_max, strategy, valid_until, is_auto_bid, parent_bid_id,
		sequence_number, status, created_at, updated_at`

const insertBidQuery = `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

// BidRepository implements the bid repository interface
type BidRepository struct {
	conn *Connection
}

// NewBidRepository creates a new bid repository
func NewBidRepository(conn *Connection) *BidRepository {
	return &BidRepository{conn: conn}
}

func bidArgs(b *bidding.Bid) []interface{} {
	return []interface{}{
		b.ID,
		b.LotID,
		b.UserID,
		b.Amount,
		b.PlacedAt,
		b.IsPreBid,
		b.IsProxy,
		b.ProxyMax,
		b.Strategy,
		b.ValidUntil,
		b.IsAutoBid,
		b.ParentBidID,
		b.SequenceNumber,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	}
}

// Create creates a new bid
func (r *BidRepository) Create(ctx context.Context, b *bidding.Bid) error {
	_, err := r.conn.GetDB().ExecContext(ctx, insertBidQuery, bidArgs(b)...)
	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func scanBid(row interface{ Scan(...interface{}) error }) (*bidding.Bid, error) {
	var b bidding.Bid
	err := row.Scan(
		&b.ID,
		&b.LotID,
		&b.UserID,
		&b.Amount,
		&b.PlacedAt,
		&b.IsPreBid,
		&b.IsProxy,
		&b.ProxyMax,
		&b.Strategy,
		&b.ValidUntil,
		&b.IsAutoBid,
		&b.ParentBidID,
		&b.SequenceNumber,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID retrieves a bid by ID
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	b, err := scanBid(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}

	return b, nil
}

// ListByLot retrieves every bid on a lot in sequence order
func (r *BidRepository) ListByLot(ctx context.Context, lotID uuid.UUID) ([]*bidding.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE lot_id = $1 ORDER BY sequence_number ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []*bidding.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

// Update updates a bid
func (r *BidRepository) Update(ctx context.Context, b *bidding.Bid) error {
	query := `
		UPDATE bids
		SET amount = $2, proxy_max = $3, strategy = $4, valid_until = $5,
		    status = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		b.ID,
		b.Amount,
		b.ProxyMax,
		b.Strategy,
		b.ValidUntil,
		b.Status,
		b.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update bid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrBidNotFound
	}

	return nil
}

// PersistPipeline writes the accepted bids and the lot's price update in a
// single transaction. The lot row is guarded by its version; a concurrent
// writer makes the whole pipeline roll back with ErrVersionConflict so the
// caller can rerun it against fresh state.
func (r *BidRepository) PersistPipeline(ctx context.Context, l *lot.Lot, bids []*bidding.Bid) error {
	err := r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		for _, b := range bids {
			if _, err := tx.ExecContext(ctx, insertBidQuery, bidArgs(b)...); err != nil {
				return fmt.Errorf("failed to insert bid: %w", err)
			}
		}

		lotQuery := `
			UPDATE lots
			SET current_price = $3, last_bid_time = $4, version = version + 1, updated_at = $5
			WHERE id = $1 AND version = $2
		`
		result, err := tx.ExecContext(ctx, lotQuery,
			l.ID,
			l.Version,
			l.CurrentPrice,
			l.LastBidTime,
			l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update lot price: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrVersionConflict
		}

		return nil
	})
	if err != nil {
		return err
	}

	l.Version++
	return nil
}
