package bidding

import (
	"fmt"
	"sort"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/pricing"
	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

// ValidationConfig carries the tunable limits the ledger enforces
type ValidationConfig struct {
	Policy           *pricing.Policy
	ProxyCeiling     float64
	RateLimitWindow  time.Duration
	RateLimitMaxBids int
}

// Ledger is the append-only, per-lot ordered record of bids. Sequence
// numbers are strictly increasing per lot; the bid pipeline holds the lot
// lock while appending, which is what makes them monotonic under
// concurrent arrivals.
type Ledger struct {
	lotID   uuid.UUID
	bids    []*Bid
	nextSeq int64
}

// NewLedger builds a ledger over a lot's recorded bids
func NewLedger(lotID uuid.UUID, bids []*Bid) *Ledger {
	ordered := make([]*Bid, len(bids))
	copy(ordered, bids)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	var maxSeq int64
	if n := len(ordered); n > 0 {
		maxSeq = ordered[n-1].SequenceNumber
	}

	return &Ledger{lotID: lotID, bids: ordered, nextSeq: maxSeq + 1}
}

// Bids returns the ledger entries in sequence order
func (l *Ledger) Bids() []*Bid {
	return l.bids
}

// Append assigns the next sequence number to the bid and records it as
// placed. Callers must hold the lot's lock.
func (l *Ledger) Append(b *Bid) (int64, error) {
	if l.nextSeq <= 0 {
		return 0, &shared.InvariantError{
			Invariant: "positive sequence numbers",
			Detail:    fmt.Sprintf("next sequence %d on lot %s", l.nextSeq, l.lotID),
		}
	}
	if b.IsAutoBid && (b.IsProxy || b.ParentBidID == nil) {
		return 0, &shared.InvariantError{
			Invariant: "auto-bid shape",
			Detail:    "auto-bids must reference a parent proxy bid and cannot themselves be proxies",
		}
	}

	b.LotID = l.lotID
	b.SequenceNumber = l.nextSeq
	b.Status = StatusPlaced
	l.nextSeq++
	l.bids = append(l.bids, b)
	return b.SequenceNumber, nil
}

// HighestBid returns the highest standing non-pre bid; ties go to the
// earliest sequence number.
func (l *Ledger) HighestBid() *Bid {
	var best *Bid
	for _, b := range l.bids {
		if !b.IsPlaced() || b.IsPreBid {
			continue
		}
		if best == nil || b.Amount > best.Amount {
			best = b
		}
	}
	return best
}

// HighestPreBid returns the highest standing pre-bid
func (l *Ledger) HighestPreBid() *Bid {
	var best *Bid
	for _, b := range l.bids {
		if !b.IsPlaced() || !b.IsPreBid {
			continue
		}
		if best == nil || b.Amount > best.Amount {
			best = b
		}
	}
	return best
}

// HasPreBids reports whether any standing pre-bid exists
func (l *Ledger) HasPreBids() bool {
	return l.HighestPreBid() != nil
}

// ActiveProxyBids returns standing, unexpired proxy bids from users other
// than the given bidder, ordered by proxy ceiling descending with earlier
// bids breaking ties. This ordering is the resolver's determinism contract.
func (l *Ledger) ActiveProxyBids(excludeUser uuid.UUID, now time.Time) []*Bid {
	var proxies []*Bid
	for _, b := range l.bids {
		if b.UserID == excludeUser {
			continue
		}
		if b.IsActiveProxyAt(now) {
			proxies = append(proxies, b)
		}
	}
	sort.SliceStable(proxies, func(i, j int) bool {
		if proxies[i].ProxyMax != proxies[j].ProxyMax {
			return proxies[i].ProxyMax > proxies[j].ProxyMax
		}
		if !proxies[i].PlacedAt.Equal(proxies[j].PlacedAt) {
			return proxies[i].PlacedAt.Before(proxies[j].PlacedAt)
		}
		return proxies[i].SequenceNumber < proxies[j].SequenceNumber
	})
	return proxies
}

// ActiveProxyByUser returns the user's standing proxy bid, if any
func (l *Ledger) ActiveProxyByUser(userID uuid.UUID, now time.Time) *Bid {
	for _, b := range l.bids {
		if b.UserID == userID && b.IsActiveProxyAt(now) {
			return b
		}
	}
	return nil
}

// ManualBidCountSince counts the user's manual (non-auto) bids placed at
// or after the given instant. Used by the rate limit.
func (l *Ledger) ManualBidCountSince(userID uuid.UUID, since time.Time) int {
	count := 0
	for _, b := range l.bids {
		if b.UserID == userID && b.IsManual() && !b.PlacedAt.Before(since) {
			count++
		}
	}
	return count
}

// NextBestBid returns the highest standing non-pre bid from any user other
// than the one given. Used for second chance offers.
func (l *Ledger) NextBestBid(excludeUser uuid.UUID) *Bid {
	var best *Bid
	for _, b := range l.bids {
		if !b.IsPlaced() || b.IsPreBid || b.UserID == excludeUser {
			continue
		}
		if best == nil || b.Amount > best.Amount {
			best = b
		}
	}
	return best
}

// NextMinimumBid computes the lowest acceptable amount for a new bid of
// the given kind right now.
func (l *Ledger) NextMinimumBid(a *auction.Auction, lt *lot.Lot, preBid bool, cfg ValidationConfig) float64 {
	if preBid {
		if high := l.HighestPreBid(); high != nil {
			return cfg.Policy.NextMinimumBid(high.Amount, lt.MinPreBid)
		}
		floor := lt.StartPrice
		if lt.MinPreBid > floor {
			floor = lt.MinPreBid
		}
		return floor
	}

	next := cfg.Policy.NextMinimumBid(lt.CurrentPrice, lt.MinPreBid)
	if floor := lt.CurrentPrice + a.MinBidIncrement; floor > next {
		next = floor
	}
	return next
}

// Validate checks a candidate manual bid against the lot, its auction and
// the ledger, in the order: status compatibility, self-bid, self-outbid,
// amount, rate limit, proxy parameters. It returns nil or a
// *shared.ViolationError carrying every failure plus the amount that would
// currently be accepted.
func (l *Ledger) Validate(a *auction.Auction, lt *lot.Lot, vehicleOwner uuid.UUID, candidate *Bid, now time.Time, cfg ValidationConfig) error {
	var violations []shared.Violation
	add := func(code shared.ViolationCode, format string, args ...interface{}) {
		violations = append(violations, shared.Violation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if candidate.IsPreBid {
		if !a.AcceptsPreBids(now) {
			add(shared.ViolationPreBidClosed, "pre-bidding is closed for auction %s", a.ID)
		}
	} else {
		if !a.IsRunning() {
			add(shared.ViolationAuctionNotLive, "auction %s is %s, not running", a.ID, a.Status)
		}
		if lt.Condition != lot.ConditionLive || !lt.IsActive {
			add(shared.ViolationLotNotBiddable, "lot %d is not on the block", lt.LotNumber)
		}
	}

	if candidate.UserID == vehicleOwner {
		add(shared.ViolationSelfBid, "the vehicle owner cannot bid on their own lot")
	}

	if candidate.IsPreBid {
		if high := l.HighestPreBid(); high != nil && high.UserID == candidate.UserID {
			add(shared.ViolationSelfOutbid, "you already hold the highest pre-bid")
		}
	} else {
		if high := l.HighestBid(); high != nil && high.UserID == candidate.UserID {
			add(shared.ViolationSelfOutbid, "you already hold the highest bid")
		}
	}

	minimum := l.NextMinimumBid(a, lt, candidate.IsPreBid, cfg)
	if candidate.Amount <= 0 {
		add(shared.ViolationAmountNotPositive, "bid amount must be greater than zero")
	} else if candidate.Amount < minimum {
		code := shared.ViolationAmountTooLow
		if candidate.IsPreBid {
			code = shared.ViolationBelowMinPreBid
		}
		add(code, "bid %.2f is below the minimum of %.2f", candidate.Amount, minimum)
	}

	if cfg.RateLimitMaxBids > 0 {
		since := now.Add(-cfg.RateLimitWindow)
		if l.ManualBidCountSince(candidate.UserID, since) >= cfg.RateLimitMaxBids {
			add(shared.ViolationRateLimited, "more than %d bids within %s", cfg.RateLimitMaxBids, cfg.RateLimitWindow)
		}
	}

	if candidate.IsProxy {
		if candidate.ProxyMax <= candidate.Amount {
			add(shared.ViolationProxyMaxTooLow, "proxy ceiling %.2f must exceed the bid amount %.2f", candidate.ProxyMax, candidate.Amount)
		}
		if cfg.ProxyCeiling > 0 && candidate.ProxyMax > cfg.ProxyCeiling {
			add(shared.ViolationProxyCeiling, "proxy ceiling %.2f exceeds the allowed maximum %.2f", candidate.ProxyMax, cfg.ProxyCeiling)
		}
		if existing := l.ActiveProxyByUser(candidate.UserID, now); existing != nil {
			add(shared.ViolationDuplicateProxy, "you already hold an active proxy bid on this lot")
		}
	}

	if len(violations) > 0 {
		return &shared.ViolationError{Violations: violations, MinimumBid: minimum}
	}
	return nil
}
