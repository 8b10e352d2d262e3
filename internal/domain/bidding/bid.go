package bidding

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a bid
type Status string

const (
	StatusPlaced      Status = "placed"
	StatusRetracted   Status = "retracted"
	StatusInvalidated Status = "invalidated"
)

// Strategy controls how hard a proxy bid counters during a proxy war.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyCompetitive  Strategy = "competitive"
	StrategyConservative Strategy = "conservative"
)

// StepMultiplier returns how many minimum increments the strategy adds
// per counter-bid.
func (s Strategy) StepMultiplier() float64 {
	switch s {
	case StrategyAggressive:
		return 3
	case StrategyCompetitive:
		return 2
	default:
		return 1
	}
}

// Bid represents one bid on a lot. Pre-bids arrive before the sale, live
// and proxy bids during it, and auto-bids are synthesized by the proxy war
// resolver on behalf of a standing proxy bid.
type Bid struct {
	ID             uuid.UUID  `json:"id"`
	LotID          uuid.UUID  `json:"lot_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Amount         float64    `json:"amount"`
	PlacedAt       time.Time  `json:"placed_at"`
	IsPreBid       bool       `json:"is_pre_bid"`
	IsProxy        bool       `json:"is_proxy"`
	ProxyMax       float64    `json:"proxy_max,omitempty"`
	Strategy       Strategy   `json:"strategy,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	IsAutoBid      bool       `json:"is_auto_bid"`
	ParentBidID    *uuid.UUID `json:"parent_bid_id,omitempty"`
	SequenceNumber int64      `json:"sequence_number"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsPlaced returns true if the bid still stands
func (b *Bid) IsPlaced() bool {
	return b.Status == StatusPlaced
}

// IsManual returns true for bids a human submitted (everything except
// resolver-synthesized auto-bids).
func (b *Bid) IsManual() bool {
	return !b.IsAutoBid
}

// IsActiveProxyAt reports whether the bid is a standing proxy bid whose
// ceiling can still respond at the given instant.
func (b *Bid) IsActiveProxyAt(now time.Time) bool {
	if !b.IsProxy || !b.IsPlaced() {
		return false
	}
	if b.ValidUntil != nil && !b.ValidUntil.After(now) {
		return false
	}
	return true
}

// Retract marks the bid as retracted
func (b *Bid) Retract(now time.Time) {
	b.Status = StatusRetracted
	b.UpdatedAt = now
}

// Invalidate marks the bid as invalidated
func (b *Bid) Invalidate(now time.Time) {
	b.Status = StatusInvalidated
	b.UpdatedAt = now
}
