package lot

import (
	"fmt"
	"time"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

// Condition represents where a lot stands in the sale lifecycle
type Condition string

const (
	ConditionPreAuction Condition = "pre_auction"
	ConditionReady      Condition = "ready_for_auction"
	ConditionLive       Condition = "live_auction"
	ConditionSold       Condition = "sold"
	ConditionUnsold     Condition = "unsold"
)

// WinnerStatus tracks the winner/payment lifecycle of a lot, orthogonal to
// its sale condition.
type WinnerStatus string

const (
	WinnerPending          WinnerStatus = "pending"
	WinnerAwaitingApproval WinnerStatus = "awaiting_seller_approval"
	WinnerSellerApproved   WinnerStatus = "seller_approved"
	WinnerSellerRejected   WinnerStatus = "seller_rejected"
	WinnerWon              WinnerStatus = "won"
	WinnerUnsold           WinnerStatus = "unsold"
	WinnerDepositPaid      WinnerStatus = "deposit_paid"
	WinnerPaymentComplete  WinnerStatus = "payment_complete"
	WinnerPaymentOverdue   WinnerStatus = "payment_overdue"
	WinnerCompleted        WinnerStatus = "completed"
)

// winnerTransitions enumerates the legal winner-status moves. Anything not
// listed is rejected, which keeps combinations like a live lot with a
// completed payment unrepresentable.
var winnerTransitions = map[WinnerStatus][]WinnerStatus{
	WinnerPending:          {WinnerAwaitingApproval, WinnerUnsold},
	WinnerAwaitingApproval: {WinnerSellerApproved, WinnerSellerRejected},
	WinnerSellerApproved:   {WinnerWon},
	WinnerSellerRejected:   {WinnerAwaitingApproval, WinnerUnsold},
	WinnerWon:              {WinnerDepositPaid, WinnerPaymentOverdue},
	WinnerDepositPaid:      {WinnerPaymentComplete, WinnerPaymentOverdue},
	WinnerPaymentComplete:  {WinnerCompleted},
	WinnerPaymentOverdue:   {WinnerAwaitingApproval, WinnerUnsold},
}

// Lot is one vehicle crossing the block within an auction, identified by
// its lot number.
type Lot struct {
	ID              uuid.UUID    `json:"id"`
	AuctionID       uuid.UUID    `json:"auction_id"`
	VehicleID       uuid.UUID    `json:"vehicle_id"`
	LotNumber       int          `json:"lot_number"`
	Condition       Condition    `json:"condition"`
	WinnerStatus    WinnerStatus `json:"winner_status"`
	StartPrice      float64      `json:"start_price"`
	CurrentPrice    float64      `json:"current_price"`
	ReservePrice    *float64     `json:"reserve_price,omitempty"`
	MinPreBid       float64      `json:"min_pre_bid"`
	IsActive        bool         `json:"is_active"`
	LastBidTime     *time.Time   `json:"last_bid_time,omitempty"`
	ActiveStartTime *time.Time   `json:"active_start_time,omitempty"`
	UnsoldReason    string       `json:"unsold_reason,omitempty"`
	Version         int64        `json:"version"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// New creates a lot in its initial state
func New(auctionID, vehicleID uuid.UUID, lotNumber int, startPrice, minPreBid float64, reserve *float64, now time.Time) *Lot {
	return &Lot{
		ID:           uuid.New(),
		AuctionID:    auctionID,
		VehicleID:    vehicleID,
		LotNumber:    lotNumber,
		Condition:    ConditionPreAuction,
		WinnerStatus: WinnerPending,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		ReservePrice: reserve,
		MinPreBid:    minPreBid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsClosed returns true once the lot has been hammered down either way
func (l *Lot) IsClosed() bool {
	return l.Condition == ConditionSold || l.Condition == ConditionUnsold
}

// Prepare moves the lot to ReadyForAuction and seeds its current price.
// seedPrice is the highest pre-bid amount, or zero when there is none; the
// start price is the floor either way.
func (l *Lot) Prepare(seedPrice float64, now time.Time) error {
	if l.Condition != ConditionPreAuction && l.Condition != ConditionReady {
		return &shared.StateConflictError{
			Op:      "prepare lot",
			Current: string(l.Condition),
			Reason:  "only pre-auction lots can be prepared",
		}
	}
	l.Condition = ConditionReady
	l.CurrentPrice = l.StartPrice
	if seedPrice > l.CurrentPrice {
		l.CurrentPrice = seedPrice
	}
	l.UpdatedAt = now
	return nil
}

// Activate brings the lot onto the block. The caller must have verified
// the parent auction is running and deactivated any previously active lot.
func (l *Lot) Activate(now time.Time) error {
	if l.Condition != ConditionReady {
		return &shared.StateConflictError{
			Op:      "activate lot",
			Current: string(l.Condition),
			Reason:  "lot must be ready for auction",
		}
	}
	l.Condition = ConditionLive
	l.IsActive = true
	start := now
	l.ActiveStartTime = &start
	l.LastBidTime = nil
	l.UpdatedAt = now
	return nil
}

// Deactivate takes the lot off the block without closing it
func (l *Lot) Deactivate(now time.Time) {
	l.IsActive = false
	l.UpdatedAt = now
}

// ApplyBid records an accepted bid amount against the lot. The amount must
// strictly increase the current price; the bid pipeline validates this
// before calling, so a regression here is a locking bug, not user error.
func (l *Lot) ApplyBid(amount float64, now time.Time) error {
	if l.Condition != ConditionLive || !l.IsActive {
		return &shared.StateConflictError{
			Op:      "record bid",
			Current: string(l.Condition),
			Reason:  "lot is not live",
		}
	}
	if amount <= l.CurrentPrice {
		return &shared.InvariantError{
			Invariant: "monotonic price",
			Detail:    fmt.Sprintf("bid %.2f does not exceed current price %.2f on lot %d", amount, l.CurrentPrice, l.LotNumber),
		}
	}
	l.CurrentPrice = amount
	bidTime := now
	l.LastBidTime = &bidTime
	l.UpdatedAt = now
	return nil
}

// ReserveMet reports whether the given amount satisfies the reserve price.
// A lot without a reserve is always met.
func (l *Lot) ReserveMet(amount float64) bool {
	return l.ReservePrice == nil || amount >= *l.ReservePrice
}

// CloseSold hammers the lot down at the given amount
func (l *Lot) CloseSold(amount float64, now time.Time) error {
	if l.Condition != ConditionLive {
		return &shared.StateConflictError{
			Op:      "close lot",
			Current: string(l.Condition),
			Reason:  "only a live lot can be closed",
		}
	}
	l.Condition = ConditionSold
	l.CurrentPrice = amount
	l.IsActive = false
	l.UpdatedAt = now
	return l.TransitionWinner(WinnerAwaitingApproval, now)
}

// CloseUnsold closes the lot without a sale, recording why
func (l *Lot) CloseUnsold(reason string, now time.Time) error {
	if l.Condition != ConditionLive && l.Condition != ConditionReady {
		return &shared.StateConflictError{
			Op:      "close lot",
			Current: string(l.Condition),
			Reason:  "lot is not open",
		}
	}
	l.Condition = ConditionUnsold
	l.UnsoldReason = reason
	l.IsActive = false
	l.UpdatedAt = now
	return l.TransitionWinner(WinnerUnsold, now)
}

// Park takes a live, unclosed lot off the block and back to
// ReadyForAuction, for manual current-lot overrides.
func (l *Lot) Park(now time.Time) error {
	if l.Condition != ConditionLive {
		return &shared.StateConflictError{
			Op:      "park lot",
			Current: string(l.Condition),
			Reason:  "only a live lot can be parked",
		}
	}
	l.Condition = ConditionReady
	l.IsActive = false
	l.LastBidTime = nil
	l.ActiveStartTime = nil
	l.UpdatedAt = now
	return nil
}

// Reopen returns a closed lot to ReadyForAuction so it can cross the block
// again (manual re-run or second chance re-auction).
func (l *Lot) Reopen(now time.Time) error {
	if !l.IsClosed() {
		return &shared.StateConflictError{
			Op:      "reopen lot",
			Current: string(l.Condition),
			Reason:  "lot is not closed",
		}
	}
	l.Condition = ConditionReady
	l.WinnerStatus = WinnerPending
	l.UnsoldReason = ""
	l.IsActive = false
	l.LastBidTime = nil
	l.ActiveStartTime = nil
	l.UpdatedAt = now
	return nil
}

// TransitionWinner moves the winner-status machine, rejecting moves that
// are not in the transition table.
func (l *Lot) TransitionWinner(to WinnerStatus, now time.Time) error {
	for _, allowed := range winnerTransitions[l.WinnerStatus] {
		if allowed == to {
			l.WinnerStatus = to
			l.UpdatedAt = now
			return nil
		}
	}
	return &shared.StateConflictError{
		Op:      fmt.Sprintf("winner status -> %s", to),
		Current: string(l.WinnerStatus),
		Reason:  "transition not permitted",
	}
}
