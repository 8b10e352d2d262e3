package app

import (
	"context"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/pricing"
	"gearlane-auction-engine/internal/domain/shared"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var testBase = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// fixture wires the three services over in-memory repositories and a fake
// clock, the same shape main assembles for production.
type fixture struct {
	auctionRepo *memAuctionRepo
	lotRepo     *memLotRepo
	bidRepo     *memBidRepo
	winnerRepo  *memWinnerRepo
	vehicleRepo *memVehicleRepo
	userRepo    *memUserRepo
	broadcaster *fakeBroadcaster
	clock       *fakeclock.FakeClock

	auctions *AuctionService
	bids     *BidService
	winners  *WinnerService
}

func newFixture() *fixture {
	f := &fixture{
		auctionRepo: newMemAuctionRepo(),
		lotRepo:     newMemLotRepo(),
		bidRepo:     newMemBidRepo(),
		winnerRepo:  newMemWinnerRepo(),
		vehicleRepo: newMemVehicleRepo(),
		userRepo:    newMemUserRepo(),
		broadcaster: newFakeBroadcaster(),
		clock:       fakeclock.NewFakeClock(testBase),
	}

	logger := zerolog.Nop()
	locks := NewLockRegistry()
	policy := pricing.DefaultPolicy()

	f.auctions = NewAuctionService(AuctionServiceParams{
		AuctionRepo:  f.auctionRepo,
		LotRepo:      f.lotRepo,
		BidRepo:      f.bidRepo,
		WinnerRepo:   f.winnerRepo,
		UserRepo:     f.userRepo,
		VehicleRepo:  f.vehicleRepo,
		Broadcaster:  f.broadcaster,
		Locks:        locks,
		Clock:        f.clock,
		TimerDefault: 90,
		PaymentDue:   48 * time.Hour,
		Logger:       logger,
	})
	f.bids = NewBidService(BidServiceParams{
		BidRepo:     f.bidRepo,
		LotRepo:     f.lotRepo,
		AuctionRepo: f.auctionRepo,
		UserRepo:    f.userRepo,
		VehicleRepo: f.vehicleRepo,
		Broadcaster: f.broadcaster,
		Resolver:    bidding.NewResolver(policy, nil),
		Validation: bidding.ValidationConfig{
			Policy:           policy,
			ProxyCeiling:     1000000,
			RateLimitWindow:  time.Minute,
			RateLimitMaxBids: 10,
		},
		Locks:  locks,
		Clock:  f.clock,
		Logger: logger,
	})
	f.winners = NewWinnerService(WinnerServiceParams{
		WinnerRepo:  f.winnerRepo,
		LotRepo:     f.lotRepo,
		BidRepo:     f.bidRepo,
		Broadcaster: f.broadcaster,
		Locks:       locks,
		Clock:       f.clock,
		Logger:      logger,
	})
	return f
}

func (f *fixture) addUser() uuid.UUID {
	u := &shared.User{ID: uuid.New(), Name: "bidder"}
	_ = f.userRepo.Create(context.Background(), u)
	return u.ID
}

func (f *fixture) addVehicle(ownerID uuid.UUID) uuid.UUID {
	v := &shared.Vehicle{ID: uuid.New(), OwnerID: ownerID, VIN: "WVWZZZ", Make: "VW", Model: "Golf", Year: 2019}
	_ = f.vehicleRepo.Create(context.Background(), v)
	return v.ID
}

// addAuction seeds an auction directly in the repository in the given
// status, with pre-bidding already open and four hours on the clock.
func (f *fixture) addAuction(status auction.Status) *auction.Auction {
	now := f.clock.Now()
	a := &auction.Auction{
		ID:           uuid.New(),
		CreatorID:    f.addUser(),
		Title:        "Wednesday sale",
		StartTime:    now,
		EndTime:      now.Add(4 * time.Hour),
		PreBidStart:  now.Add(-time.Hour),
		TimerSeconds: 90,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_ = f.auctionRepo.Create(context.Background(), a)
	return a
}

func (f *fixture) addLot(a *auction.Auction, number int, startPrice float64, reserve *float64) *lot.Lot {
	owner := f.addUser()
	l := lot.New(a.ID, f.addVehicle(owner), number, startPrice, 0, reserve, f.clock.Now())
	_ = f.lotRepo.Create(context.Background(), l)
	return l
}

// activateLot walks the lot onto the block the way the engine would.
func (f *fixture) activateLot(l *lot.Lot) {
	now := f.clock.Now()
	if l.Condition == lot.ConditionPreAuction {
		if err := l.Prepare(0, now); err != nil {
			panic(err)
		}
	}
	if err := l.Activate(now); err != nil {
		panic(err)
	}
}

// recordBid seeds a standing bid directly in the repository.
func (f *fixture) recordBid(l *lot.Lot, userID uuid.UUID, amount float64, seq int64) *bidding.Bid {
	b := &bidding.Bid{
		ID:             uuid.New(),
		LotID:          l.ID,
		UserID:         userID,
		Amount:         amount,
		PlacedAt:       f.clock.Now(),
		SequenceNumber: seq,
		Status:         bidding.StatusPlaced,
	}
	_ = f.bidRepo.Create(context.Background(), b)
	return b
}

// recordPreBid seeds a standing pre-bid directly in the repository.
func (f *fixture) recordPreBid(l *lot.Lot, userID uuid.UUID, amount float64, seq int64) *bidding.Bid {
	b := f.recordBid(l, userID, amount, seq)
	b.IsPreBid = true
	return b
}
