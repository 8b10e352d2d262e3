package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/ports/inbound"
	"gearlane-auction-engine/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

func TestCreateAuction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	creator := f.addUser()
	now := f.clock.Now()

	a, err := f.auctions.CreateAuction(ctx, inbound.CreateAuctionRequest{
		CreatorID:    creator,
		Title:        "Sunday classics",
		StartTime:    now.Add(time.Hour).Format(time.RFC3339),
		EndTime:      now.Add(5 * time.Hour).Format(time.RFC3339),
		TimerSeconds: 60,
	})

	check.Nil(t, err)
	check.Equal(t, auction.StatusDraft, a.Status)
	check.Equal(t, 60, a.TimerSeconds)

	// A zero timer falls back to the configured default.
	b, err := f.auctions.CreateAuction(ctx, inbound.CreateAuctionRequest{
		CreatorID: creator,
		Title:     "No timer given",
		StartTime: now.Add(time.Hour).Format(time.RFC3339),
		EndTime:   now.Add(5 * time.Hour).Format(time.RFC3339),
	})
	check.Nil(t, err)
	check.Equal(t, 90, b.TimerSeconds)

	// Start time in the past is refused.
	_, err = f.auctions.CreateAuction(ctx, inbound.CreateAuctionRequest{
		CreatorID: creator,
		Title:     "Too late",
		StartTime: now.Add(-time.Hour).Format(time.RFC3339),
		EndTime:   now.Add(time.Hour).Format(time.RFC3339),
	})
	check.True(t, errors.Is(err, shared.ErrInvalidStartTime))
}

func TestAddLot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addAuction(auction.StatusDraft)
	vehicle := f.addVehicle(f.addUser())

	l, err := f.auctions.AddLot(ctx, inbound.AddLotRequest{
		AuctionID:  a.ID,
		VehicleID:  vehicle,
		LotNumber:  1,
		StartPrice: 5000,
	})
	check.Nil(t, err)
	check.Equal(t, lot.ConditionPreAuction, l.Condition)

	// Lot numbers are unique per auction.
	_, err = f.auctions.AddLot(ctx, inbound.AddLotRequest{
		AuctionID:  a.ID,
		VehicleID:  f.addVehicle(f.addUser()),
		LotNumber:  1,
		StartPrice: 3000,
	})
	check.True(t, errors.Is(err, shared.ErrDuplicateLotNum))

	// No consignments once the auction is ready.
	a.Status = auction.StatusReady
	_, err = f.auctions.AddLot(ctx, inbound.AddLotRequest{
		AuctionID:  a.ID,
		VehicleID:  f.addVehicle(f.addUser()),
		LotNumber:  2,
		StartPrice: 3000,
	})
	var conflict *shared.StateConflictError
	check.True(t, errors.As(err, &conflict))
}

func TestMakeReady_SeedsPricesFromPreBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusScheduled)
	seeded := f.addLot(a, 1, 5000, nil)
	bare := f.addLot(a, 2, 3000, nil)
	f.recordPreBid(seeded, f.addUser(), 7500, 1)

	check.Nil(t, f.auctions.MakeReady(ctx, a.ID))

	check.Equal(t, auction.StatusReady, a.Status)
	check.Equal(t, lot.ConditionReady, seeded.Condition)
	check.Equal(t, 7500.0, seeded.CurrentPrice)
	check.Equal(t, 3000.0, bare.CurrentPrice)
}

func TestMakeReady_RequiresLots(t *testing.T) {
	f := newFixture()
	a := f.addAuction(auction.StatusScheduled)

	err := f.auctions.MakeReady(context.Background(), a.ID)

	check.True(t, errors.Is(err, shared.ErrNoLots))
}

func TestStartAuction_ActivatesFirstLot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusScheduled)
	first := f.addLot(a, 1, 5000, nil)
	second := f.addLot(a, 2, 3000, nil)

	check.Nil(t, f.auctions.StartAuction(ctx, a.ID))

	check.True(t, a.IsRunning())
	check.True(t, first.IsActive)
	check.Equal(t, lot.ConditionLive, first.Condition)
	check.False(t, second.IsActive)
	check.NotNil(t, a.CurrentLotNumber)
	check.Equal(t, 1, *a.CurrentLotNumber)

	check.Equal(t, 1, len(f.broadcaster.published(outbound.EventTypeAuctionStarted)))
	check.Equal(t, 1, len(f.broadcaster.published(outbound.EventTypeLotActivated)))
}

func TestStartAuction_PreBidLotCrossesFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusScheduled)
	plain := f.addLot(a, 1, 5000, nil)
	favored := f.addLot(a, 2, 5000, nil)
	f.recordPreBid(favored, f.addUser(), 8000, 1)

	check.Nil(t, f.auctions.StartAuction(ctx, a.ID))

	check.True(t, favored.IsActive)
	check.False(t, plain.IsActive)
	check.Equal(t, 2, *a.CurrentLotNumber)
}

func TestSelectNextLot_Ordering(t *testing.T) {
	mk := func(number int, startPrice, currentPrice float64) *lot.Lot {
		return &lot.Lot{
			ID:           uuid.New(),
			LotNumber:    number,
			Condition:    lot.ConditionReady,
			StartPrice:   startPrice,
			CurrentPrice: currentPrice,
		}
	}

	noPrice := mk(1, 0, 0)
	priced := mk(2, 3000, 3000)
	seeded := mk(3, 5000, 7500)

	next := selectNextLot([]*lot.Lot{noPrice, priced, seeded}, 0)
	check.Equal(t, seeded.ID, next.ID)

	// Past the seeded lot, explicit start prices come before free-start lots.
	next = selectNextLot([]*lot.Lot{noPrice, priced}, 0)
	check.Equal(t, priced.ID, next.ID)

	// Only lot numbers beyond the closed one are eligible.
	check.Nil(t, selectNextLot([]*lot.Lot{noPrice, priced, seeded}, 3))
}

func TestAdvanceToNextLot_SoldLotCreatesWinner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	first := f.addLot(a, 1, 5000, nil)
	second := f.addLot(a, 2, 3000, nil)
	_ = second.Prepare(0, f.clock.Now())
	f.activateLot(first)
	a.SetCurrentLot(1, f.clock.Now())

	winnerID := f.addUser()
	f.recordBid(first, f.addUser(), 6500, 1)
	winning := f.recordBid(first, winnerID, 7000, 2)

	result, err := f.auctions.AdvanceToNextLot(ctx, a.ID)

	check.Nil(t, err)
	check.NotNil(t, result.ClosedLot)
	check.True(t, result.ClosedLot.Sold)
	check.Equal(t, winnerID, *result.ClosedLot.WinnerID)
	check.Equal(t, 7000.0, *result.ClosedLot.FinalPrice)

	check.Equal(t, lot.ConditionSold, first.Condition)
	check.Equal(t, lot.WinnerAwaitingApproval, first.WinnerStatus)

	w, err := f.winnerRepo.GetByLotID(ctx, first.ID)
	check.Nil(t, err)
	check.Equal(t, winnerID, w.UserID)
	check.Equal(t, winning.ID, w.BidID)
	check.Equal(t, 7000.0, w.Amount)
	check.True(t, w.SecondChanceEligible)
	check.True(t, w.PaymentDueDate.Equal(f.clock.Now().Add(48*time.Hour)))

	check.False(t, result.AuctionEnded)
	check.Equal(t, 2, *result.NextLotNum)
	check.True(t, second.IsActive)
}

func TestAdvanceToNextLot_ReserveNotMet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	reserve := 6000.0
	a := f.addAuction(auction.StatusRunning)
	first := f.addLot(a, 1, 5000, &reserve)
	f.activateLot(first)
	a.SetCurrentLot(1, f.clock.Now())

	f.recordBid(first, f.addUser(), 5000, 1)

	result, err := f.auctions.AdvanceToNextLot(ctx, a.ID)

	check.Nil(t, err)
	check.False(t, result.ClosedLot.Sold)
	check.Equal(t, "Reserve not met: highest bid 5000.00, reserve 6000.00", result.ClosedLot.Reason)
	check.Equal(t, lot.ConditionUnsold, first.Condition)
	check.Equal(t, lot.WinnerUnsold, first.WinnerStatus)

	_, err = f.winnerRepo.GetByLotID(ctx, first.ID)
	check.True(t, errors.Is(err, shared.ErrWinnerNotFound))
}

func TestAdvanceToNextLot_LastLotEndsAuction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	only := f.addLot(a, 1, 5000, nil)
	f.activateLot(only)
	a.SetCurrentLot(1, f.clock.Now())

	result, err := f.auctions.AdvanceToNextLot(ctx, a.ID)

	check.Nil(t, err)
	check.True(t, result.AuctionEnded)
	check.Equal(t, "No valid bids received", result.ClosedLot.Reason)
	check.Equal(t, auction.StatusEnded, a.Status)
	check.Nil(t, a.CurrentLotNumber)
	check.Equal(t, 1, len(f.broadcaster.published(outbound.EventTypeAuctionEnded)))
}

func TestAdvanceToNextLot_SingleActiveLotInvariant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	first := f.addLot(a, 1, 5000, nil)
	second := f.addLot(a, 2, 3000, nil)
	f.activateLot(first)
	f.activateLot(second)

	_, err := f.auctions.AdvanceToNextLot(ctx, a.ID)

	var invariant *shared.InvariantError
	check.True(t, errors.As(err, &invariant))
}

func TestAdvanceToNextLot_RequiresRunningAuction(t *testing.T) {
	f := newFixture()
	a := f.addAuction(auction.StatusReady)

	_, err := f.auctions.AdvanceToNextLot(context.Background(), a.ID)

	var conflict *shared.StateConflictError
	check.True(t, errors.As(err, &conflict))
}

func TestAdvanceIfExpired_LateBidKeepsLotOpen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	l := f.addLot(a, 1, 100, nil)
	f.activateLot(l)
	a.SetCurrentLot(1, f.clock.Now())

	// The 90-second countdown has run out.
	f.clock.Increment(91 * time.Second)
	check.True(t, lot.IsExpired(l, a.TimerSeconds, f.clock.Now()))

	// A bid lands between the expiry observation and the advance.
	_, err := f.bids.PlaceBid(ctx, inbound.PlaceBidRequest{
		LotID:  l.ID,
		UserID: f.addUser(),
		Amount: 150,
	})
	check.Nil(t, err)

	// The advance re-checks the countdown under the lot lock and aborts
	// instead of hammering a lot that just got a fresh 90 seconds.
	result, err := f.auctions.AdvanceIfExpired(ctx, a.ID)

	check.True(t, errors.Is(err, shared.ErrLotNotExpired))
	check.Nil(t, result)
	check.Equal(t, lot.ConditionLive, l.Condition)
	check.True(t, l.IsActive)
	check.Equal(t, 150.0, l.CurrentPrice)
	check.Equal(t, 0, len(f.broadcaster.published(outbound.EventTypeLotClosed)))
}

func TestAdvanceIfExpired_ExpiredLotCloses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	l := f.addLot(a, 1, 100, nil)
	f.activateLot(l)
	a.SetCurrentLot(1, f.clock.Now())

	winnerID := f.addUser()
	_, err := f.bids.PlaceBid(ctx, inbound.PlaceBidRequest{
		LotID:  l.ID,
		UserID: winnerID,
		Amount: 150,
	})
	check.Nil(t, err)

	// Once the countdown genuinely runs out after the last bid, the
	// expiry-gated advance behaves exactly like a plain advance.
	f.clock.Increment(91 * time.Second)

	result, err := f.auctions.AdvanceIfExpired(ctx, a.ID)

	check.Nil(t, err)
	check.True(t, result.ClosedLot.Sold)
	check.Equal(t, winnerID, *result.ClosedLot.WinnerID)
	check.Equal(t, 150.0, *result.ClosedLot.FinalPrice)
	check.True(t, result.AuctionEnded)
}

func TestSetCurrentLot_ParksPreviousLot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	first := f.addLot(a, 1, 5000, nil)
	second := f.addLot(a, 2, 3000, nil)
	_ = second.Prepare(0, f.clock.Now())
	f.activateLot(first)
	a.SetCurrentLot(1, f.clock.Now())

	check.Nil(t, f.auctions.SetCurrentLot(ctx, a.ID, 2))

	check.False(t, first.IsActive)
	check.Equal(t, lot.ConditionReady, first.Condition)
	check.True(t, second.IsActive)
	check.Equal(t, 2, *a.CurrentLotNumber)
}

func TestEndAuction_ClosesCurrentLot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	l := f.addLot(a, 1, 5000, nil)
	f.activateLot(l)
	f.recordBid(l, f.addUser(), 6000, 1)

	check.Nil(t, f.auctions.EndAuction(ctx, a.ID))

	check.Equal(t, auction.StatusEnded, a.Status)
	check.Equal(t, lot.ConditionSold, l.Condition)

	// Ending twice is refused.
	check.True(t, errors.Is(f.auctions.EndAuction(ctx, a.ID), shared.ErrAuctionNotLive))
}

func TestCancelAuction_ParksActiveLot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	l := f.addLot(a, 1, 5000, nil)
	f.activateLot(l)

	check.Nil(t, f.auctions.CancelAuction(ctx, a.ID, "Venue flooded"))

	check.Equal(t, auction.StatusCancelled, a.Status)
	check.Equal(t, "Venue flooded", a.CancelReason)
	check.False(t, l.IsActive)
	check.Equal(t, lot.ConditionReady, l.Condition)
	check.Equal(t, 1, len(f.broadcaster.published(outbound.EventTypeAuctionCancelled)))
}

func TestExtendAuction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.addAuction(auction.StatusRunning)
	originalEnd := a.EndTime

	check.Nil(t, f.auctions.ExtendAuction(ctx, a.ID, 30, "Heavy bidding"))
	check.True(t, a.EndTime.Equal(originalEnd.Add(30*time.Minute)))

	check.True(t, errors.Is(f.auctions.ExtendAuction(ctx, a.ID, 30, ""), shared.ErrEmptyReason))
}
