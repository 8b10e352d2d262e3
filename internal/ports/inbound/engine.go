package inbound

import (
	"context"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"

	"github.com/google/uuid"
)

// BidService defines the interface for bid operations
type BidService interface {
	// PlaceBid places a live or proxy bid on the active lot, running the
	// full validate -> proxy-war -> append pipeline
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*bidding.Bid, error)

	// PlacePreBid places a pre-bid before the auction runs
	PlacePreBid(ctx context.Context, req PlacePreBidRequest) (*bidding.Bid, error)

	// RetractBid retracts a bid; legal only while the lot is not active
	RetractBid(ctx context.Context, bidID, userID uuid.UUID) error

	// GetBidHistory retrieves a lot's bids in sequence order
	GetBidHistory(ctx context.Context, lotID uuid.UUID) ([]*bidding.Bid, error)

	// GetLotState retrieves the lot with its live pricing and timer view
	GetLotState(ctx context.Context, lotID uuid.UUID) (*LotState, error)
}

// AuctionService defines the interface for auction lifecycle operations
type AuctionService interface {
	// CreateAuction creates a new draft auction
	CreateAuction(ctx context.Context, req CreateAuctionRequest) (*auction.Auction, error)

	// AddLot consigns a vehicle as a lot in a draft or scheduled auction
	AddLot(ctx context.Context, req AddLotRequest) (*lot.Lot, error)

	// GetAuction retrieves an auction by ID
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// ListAuctions retrieves a list of auctions
	ListAuctions(ctx context.Context, req ListAuctionsRequest) ([]*auction.Auction, error)

	// ScheduleAuction moves a draft auction onto the calendar
	ScheduleAuction(ctx context.Context, req ScheduleAuctionRequest) error

	// MakeReady marks the auction ready and prepares every lot
	MakeReady(ctx context.Context, auctionID uuid.UUID) error

	// StartAuction starts the live session and activates the first lot
	StartAuction(ctx context.Context, auctionID uuid.UUID) error

	// AdvanceToNextLot closes the current lot and activates the next one,
	// ending the auction when no lots remain
	AdvanceToNextLot(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionAdvanceResult, error)

	// AdvanceIfExpired advances only if the active lot's countdown is
	// still expired once the lot lock is held, returning
	// shared.ErrLotNotExpired when a late bid reset it
	AdvanceIfExpired(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionAdvanceResult, error)

	// SetCurrentLot manually overrides which lot is on the block
	SetCurrentLot(ctx context.Context, auctionID uuid.UUID, lotNumber int) error

	// EndAuction explicitly ends a running auction, closing the current lot
	EndAuction(ctx context.Context, auctionID uuid.UUID) error

	// CancelAuction cancels the auction with a reason
	CancelAuction(ctx context.Context, auctionID uuid.UUID, reason string) error

	// ExtendAuction pushes the end time forward
	ExtendAuction(ctx context.Context, auctionID uuid.UUID, minutes int, reason string) error
}

// WinnerService defines the interface for post-sale winner operations
type WinnerService interface {
	// ApproveSale lets the seller accept the hammer price
	ApproveSale(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error)

	// RejectSale lets the seller refuse the hammer price
	RejectSale(ctx context.Context, lotID uuid.UUID, reason string) error

	// OfferSecondChance re-offers the lot to the next-highest bidder,
	// replacing the winner record
	OfferSecondChance(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error)

	// RecordPayment advances the winner's payment status
	RecordPayment(ctx context.Context, lotID uuid.UUID, status winner.PaymentStatus) error
}

// request to place a live or proxy bid
type PlaceBidRequest struct {
	LotID    uuid.UUID        `json:"lot_id"`
	UserID   uuid.UUID        `json:"user_id"`
	ClientID string           `json:"client_id"`
	Amount   float64          `json:"amount"`
	IsProxy  bool             `json:"is_proxy"`
	ProxyMax float64          `json:"proxy_max,omitempty"`
	Strategy bidding.Strategy `json:"strategy,omitempty"`
}

// request to place a pre-bid
type PlacePreBidRequest struct {
	LotID  uuid.UUID `json:"lot_id"`
	UserID uuid.UUID `json:"user_id"`
	Amount float64   `json:"amount"`
}

// request to create an auction
type CreateAuctionRequest struct {
	CreatorID       uuid.UUID `json:"creator_id"`
	Title           string    `json:"title"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	PreBidStart     string    `json:"pre_bid_start"`
	TimerSeconds    int       `json:"timer_seconds"`
	MinBidIncrement float64   `json:"min_bid_increment"`
}

// request to consign a lot
type AddLotRequest struct {
	AuctionID    uuid.UUID `json:"auction_id"`
	VehicleID    uuid.UUID `json:"vehicle_id"`
	LotNumber    int       `json:"lot_number"`
	StartPrice   float64   `json:"start_price"`
	MinPreBid    float64   `json:"min_pre_bid"`
	ReservePrice *float64  `json:"reserve_price,omitempty"`
}

// request to schedule an auction
type ScheduleAuctionRequest struct {
	AuctionID uuid.UUID `json:"auction_id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

// request to list auctions
type ListAuctionsRequest struct {
	Status   *auction.Status `json:"status,omitempty"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// LotState is the live view of a lot: its entity plus the derived pricing
// and timer values a bidder needs.
type LotState struct {
	Lot              *lot.Lot     `json:"lot"`
	HighestBid       *bidding.Bid `json:"highest_bid,omitempty"`
	NextMinimumBid   float64      `json:"next_minimum_bid"`
	RemainingSeconds int          `json:"remaining_seconds"`
}
