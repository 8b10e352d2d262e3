package shared

import "github.com/google/uuid"

// LotCloseResult summarizes how a lot closed
type LotCloseResult struct {
	LotID      uuid.UUID
	Sold       bool
	Reason     string
	WinnerID   *uuid.UUID
	FinalPrice *float64
}

// AuctionAdvanceResult reports what happened when the auction moved on
// from its current lot.
type AuctionAdvanceResult struct {
	AuctionID    uuid.UUID
	ClosedLot    *LotCloseResult
	NextLotID    *uuid.UUID
	NextLotNum   *int
	AuctionEnded bool
}
