package auction

import (
	"time"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

// Status represents the current status of an auction
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// Auction is one sale event: an ordered run of lots sold under a shared
// per-lot countdown.
type Auction struct {
	ID                  uuid.UUID  `json:"id"`
	CreatorID           uuid.UUID  `json:"creator_id"`
	Title               string     `json:"title"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             time.Time  `json:"end_time"`
	PreBidStart         time.Time  `json:"pre_bid_start"`
	TimerSeconds        int        `json:"timer_seconds"`
	MinBidIncrement     float64    `json:"min_bid_increment"`
	Status              Status     `json:"status"`
	CurrentLotNumber    *int       `json:"current_lot_number,omitempty"`
	CurrentLotStartTime *time.Time `json:"current_lot_start_time,omitempty"`
	CancelReason        string     `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsRunning returns true while lots are crossing the block
func (a *Auction) IsRunning() bool {
	return a.Status == StatusRunning
}

// IsFinished returns true once the auction has ended or been cancelled
func (a *Auction) IsFinished() bool {
	return a.Status == StatusEnded || a.Status == StatusCancelled
}

// AcceptsPreBids reports whether pre-bids may be placed right now.
// Pre-bids cannot exist once the auction is running.
func (a *Auction) AcceptsPreBids(now time.Time) bool {
	switch a.Status {
	case StatusDraft, StatusScheduled, StatusReady:
		return !now.Before(a.PreBidStart)
	default:
		return false
	}
}

// Schedule moves a draft auction onto the calendar
func (a *Auction) Schedule(start, end time.Time, now time.Time) error {
	if a.Status != StatusDraft {
		return &shared.StateConflictError{
			Op:      "schedule auction",
			Current: string(a.Status),
			Reason:  "only draft auctions can be scheduled",
		}
	}
	if !start.Before(end) {
		return shared.ErrInvalidEndTime
	}
	a.StartTime = start
	a.EndTime = end
	a.Status = StatusScheduled
	a.UpdatedAt = now
	return nil
}

// MakeReady marks the auction ready to start. The engine prepares every
// lot (seeding prices from pre-bids) as a side effect before calling this.
func (a *Auction) MakeReady(now time.Time) error {
	if a.Status != StatusScheduled {
		return &shared.StateConflictError{
			Op:      "ready auction",
			Current: string(a.Status),
			Reason:  "only scheduled auctions can be made ready",
		}
	}
	a.Status = StatusReady
	a.UpdatedAt = now
	return nil
}

// Start begins the live session
func (a *Auction) Start(now time.Time) error {
	if a.Status != StatusReady {
		return &shared.StateConflictError{
			Op:      "start auction",
			Current: string(a.Status),
			Reason:  "auction must be ready to start",
		}
	}
	a.Status = StatusRunning
	a.UpdatedAt = now
	return nil
}

// End closes the auction after its final lot is resolved
func (a *Auction) End(now time.Time) error {
	if a.Status != StatusRunning {
		return &shared.StateConflictError{
			Op:      "end auction",
			Current: string(a.Status),
			Reason:  "only a running auction can end",
		}
	}
	a.Status = StatusEnded
	a.CurrentLotNumber = nil
	a.CurrentLotStartTime = nil
	a.UpdatedAt = now
	return nil
}

// Cancel aborts the auction with a reason, legal any time before it ends
func (a *Auction) Cancel(reason string, now time.Time) error {
	if reason == "" {
		return shared.ErrEmptyReason
	}
	if a.IsFinished() {
		return &shared.StateConflictError{
			Op:      "cancel auction",
			Current: string(a.Status),
			Reason:  "auction is already finished",
		}
	}
	a.Status = StatusCancelled
	a.CancelReason = reason
	a.CurrentLotNumber = nil
	a.CurrentLotStartTime = nil
	a.UpdatedAt = now
	return nil
}

// Extend pushes the end time forward without touching the status
func (a *Auction) Extend(d time.Duration, now time.Time) error {
	if a.IsFinished() {
		return &shared.StateConflictError{
			Op:      "extend auction",
			Current: string(a.Status),
			Reason:  "auction is already finished",
		}
	}
	a.EndTime = a.EndTime.Add(d)
	a.UpdatedAt = now
	return nil
}

// SetCurrentLot points the auction at the lot now on the block
func (a *Auction) SetCurrentLot(lotNumber int, now time.Time) {
	a.CurrentLotNumber = &lotNumber
	start := now
	a.CurrentLotStartTime = &start
	a.UpdatedAt = now
}

// ClearCurrentLot drops the current-lot pointer
func (a *Auction) ClearCurrentLot(now time.Time) {
	a.CurrentLotNumber = nil
	a.CurrentLotStartTime = nil
	a.UpdatedAt = now
}
