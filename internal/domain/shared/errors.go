package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-specific errors
var (
	// Auction errors
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionEnded     = errors.New("auction already ended")
	ErrAuctionCancelled = errors.New("auction is cancelled")
	ErrAuctionNotLive   = errors.New("auction is not running")
	ErrInvalidStartTime = errors.New("start time cannot be in the past")
	ErrInvalidEndTime   = errors.New("end time must be after start time")
	ErrNoLots           = errors.New("auction has no lots")
	ErrNoEligibleLot    = errors.New("no eligible lot to activate")
	ErrEmptyReason      = errors.New("a non-empty reason is required")

	// Lot errors
	ErrLotNotFound     = errors.New("lot not found")
	ErrLotNotActive    = errors.New("lot is not active")
	ErrLotAlreadyOpen  = errors.New("another lot is already active")
	ErrLotClosed       = errors.New("lot is already closed")
	ErrLotNotExpired   = errors.New("lot countdown has not expired")
	ErrDuplicateLotNum = errors.New("lot number already used in this auction")

	// Bid errors
	ErrBidNotFound       = errors.New("bid not found")
	ErrNoBidsFound       = errors.New("no bids found")
	ErrBidNotRetractable = errors.New("bids cannot be retracted while the lot is active")

	// Winner errors
	ErrWinnerNotFound    = errors.New("winner not found")
	ErrNoSecondChance    = errors.New("no eligible bidder for a second chance offer")
	ErrWinnerNotRejected = errors.New("winner has not been rejected")

	// User / vehicle errors
	ErrUserNotFound    = errors.New("user not found")
	ErrVehicleNotFound = errors.New("vehicle not found")

	// Validation errors
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidRequest    = errors.New("invalid request")

	// Database errors
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrDatabaseTransaction = errors.New("database transaction failed")
	ErrVersionConflict     = errors.New("lot was modified concurrently")

	// Broadcasting errors
	ErrBroadcastFailed   = errors.New("broadcast failed")
	ErrUserNotSubscribed = errors.New("user not subscribed to lot")

	// Client message errors
	ErrMessageTypeRequired        = errors.New("message type is required")
	ErrUnknownMessageType         = errors.New("unknown message type")
	ErrLotIDRequired              = errors.New("lot_id is required")
	ErrAuctionIDRequired          = errors.New("auction_id is required")
	ErrBidIDRequired              = errors.New("bid_id is required")
	ErrInvalidAmount              = errors.New("a positive amount is required")
	ErrInvalidProxyMax            = errors.New("proxy_max must exceed the bid amount")
	ErrClientEventChannelNotFound = errors.New("client event channel not found")
)

// ViolationCode identifies a single bid validation failure
type ViolationCode string

const (
	ViolationAmountTooLow      ViolationCode = "amount_too_low"
	ViolationBelowMinPreBid    ViolationCode = "below_min_pre_bid"
	ViolationSelfBid           ViolationCode = "self_bid"
	ViolationSelfOutbid        ViolationCode = "self_outbid"
	ViolationRateLimited       ViolationCode = "rate_limited"
	ViolationPreBidClosed      ViolationCode = "pre_bid_closed"
	ViolationProxyMaxTooLow    ViolationCode = "proxy_max_too_low"
	ViolationProxyCeiling      ViolationCode = "proxy_ceiling_exceeded"
	ViolationDuplicateProxy    ViolationCode = "duplicate_proxy"
	ViolationLotNotBiddable    ViolationCode = "lot_not_biddable"
	ViolationAuctionNotLive    ViolationCode = "auction_not_live"
	ViolationAmountNotPositive ViolationCode = "amount_not_positive"
)

// Violation is one recoverable reason a bid was refused
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

// ViolationError carries every validation failure for a bid attempt along
// with the minimum amount that would currently be accepted, so the caller
// can retry.
type ViolationError struct {
	Violations []Violation `json:"violations"`
	MinimumBid float64     `json:"minimum_bid"`
}

func (e *ViolationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("bid rejected: %s (minimum bid %.2f)", strings.Join(msgs, "; "), e.MinimumBid)
}

// Has reports whether the error contains a violation with the given code.
func (e *ViolationError) Has(code ViolationCode) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// StateConflictError reports an operation attempted against an auction or
// lot whose current status does not permit it. The caller may choose a
// different operation; the state is never coerced.
type StateConflictError struct {
	Op      string
	Current string
	Reason  string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s not allowed in state %q: %s", e.Op, e.Current, e.Reason)
}

// InvariantError signals a broken engine invariant (two active lots, a price
// regression, a negative sequence number). It indicates a locking bug and
// must abort the operation rather than patch state.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated [%s]: %s", e.Invariant, e.Detail)
}
