package outbound

import (
	"context"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"

	"github.com/google/uuid"
)

// AuctionRepository defines the interface for auction data operations
type AuctionRepository interface {
	// Create creates a new auction
	Create(ctx context.Context, a *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// List retrieves a page of auctions with an optional status filter
	List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error)

	// ListRunning retrieves every auction currently in Running status
	ListRunning(ctx context.Context) ([]*auction.Auction, error)

	// Update updates an auction
	Update(ctx context.Context, a *auction.Auction) error
}

// LotRepository defines the interface for lot data operations
type LotRepository interface {
	// Create creates a new lot
	Create(ctx context.Context, l *lot.Lot) error

	// GetByID retrieves a lot by ID
	GetByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error)

	// GetByNumber retrieves a lot by its number within an auction
	GetByNumber(ctx context.Context, auctionID uuid.UUID, lotNumber int) (*lot.Lot, error)

	// ListByAuction retrieves an auction's lots ordered by lot number
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*lot.Lot, error)

	// GetActive retrieves the auction's active lot, or shared.ErrLotNotFound
	GetActive(ctx context.Context, auctionID uuid.UUID) (*lot.Lot, error)

	// Update updates a lot, enforcing its version for optimistic concurrency
	Update(ctx context.Context, l *lot.Lot) error
}

// BidRepository defines the interface for bid data operations
type BidRepository interface {
	// Create creates a new bid
	Create(ctx context.Context, b *bidding.Bid) error

	// GetByID retrieves a bid by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bidding.Bid, error)

	// ListByLot retrieves every bid on a lot in sequence order
	ListByLot(ctx context.Context, lotID uuid.UUID) ([]*bidding.Bid, error)

	// Update updates a bid
	Update(ctx context.Context, b *bidding.Bid) error

	// PersistPipeline writes the outcome of one bid pipeline atomically:
	// the accepted bids (incoming or synthesized auto-bid) and the lot's
	// price update, guarded by the lot's version. Either all persist or
	// none do.
	PersistPipeline(ctx context.Context, l *lot.Lot, bids []*bidding.Bid) error
}

// WinnerRepository defines the interface for winner data operations
type WinnerRepository interface {
	// Create creates a new winner record
	Create(ctx context.Context, w *winner.Winner) error

	// GetByLotID retrieves the winner record for a lot
	GetByLotID(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error)

	// Update updates a winner record
	Update(ctx context.Context, w *winner.Winner) error

	// DeleteByLotID removes a lot's winner record (second chance re-offer)
	DeleteByLotID(ctx context.Context, lotID uuid.UUID) error
}

// VehicleRepository defines the interface for vehicle data operations
type VehicleRepository interface {
	// Create creates a new vehicle
	Create(ctx context.Context, v *shared.Vehicle) error

	// GetByID retrieves a vehicle by ID; the engine uses this to resolve
	// the owner for the self-bid prohibition
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Vehicle, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *shared.User) error
}
