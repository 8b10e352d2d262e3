package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"
	"gearlane-auction-engine/internal/ports/inbound"
	"gearlane-auction-engine/internal/ports/outbound"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuctionService implements the auction state machine: lifecycle
// transitions, lot advancement and winner determination.
type AuctionService struct {
	auctionRepo  outbound.AuctionRepository
	lotRepo      outbound.LotRepository
	bidRepo      outbound.BidRepository
	winnerRepo   outbound.WinnerRepository
	userRepo     outbound.UserRepository
	vehicleRepo  outbound.VehicleRepository
	broadcaster  outbound.Broadcaster
	locks        *LockRegistry
	clock        clock.Clock
	timerDefault int
	paymentDue   time.Duration
	logger       zerolog.Logger
}

type AuctionServiceParams struct {
	AuctionRepo  outbound.AuctionRepository
	LotRepo      outbound.LotRepository
	BidRepo      outbound.BidRepository
	WinnerRepo   outbound.WinnerRepository
	UserRepo     outbound.UserRepository
	VehicleRepo  outbound.VehicleRepository
	Broadcaster  outbound.Broadcaster
	Locks        *LockRegistry
	Clock        clock.Clock
	TimerDefault int
	PaymentDue   time.Duration
	Logger       zerolog.Logger
}

// NewAuctionService creates a new auction service
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	return &AuctionService{
		auctionRepo:  params.AuctionRepo,
		lotRepo:      params.LotRepo,
		bidRepo:      params.BidRepo,
		winnerRepo:   params.WinnerRepo,
		userRepo:     params.UserRepo,
		vehicleRepo:  params.VehicleRepo,
		broadcaster:  params.Broadcaster,
		locks:        params.Locks,
		clock:        params.Clock,
		timerDefault: params.TimerDefault,
		paymentDue:   params.PaymentDue,
		logger:       params.Logger.With().Str("component", "auction_service").Logger(),
	}
}

// CreateAuction creates a new draft auction
func (s *AuctionService) CreateAuction(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	s.logger.Info().
		Str("creator_id", req.CreatorID.String()).
		Str("title", req.Title).
		Msg("Attempting to create auction")

	if _, err := s.userRepo.GetByID(ctx, req.CreatorID); err != nil {
		return nil, shared.ErrUserNotFound
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, shared.ErrInvalidTimeFormat
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, shared.ErrInvalidTimeFormat
	}

	now := s.clock.Now()
	preBidStart := now
	if req.PreBidStart != "" {
		preBidStart, err = time.Parse(time.RFC3339, req.PreBidStart)
		if err != nil {
			return nil, shared.ErrInvalidTimeFormat
		}
	}

	if startTime.Before(now) {
		return nil, shared.ErrInvalidStartTime
	}
	if !startTime.Before(endTime) {
		return nil, shared.ErrInvalidEndTime
	}

	timerSeconds := req.TimerSeconds
	if timerSeconds <= 0 {
		timerSeconds = s.timerDefault
	}

	a := &auction.Auction{
		ID:              uuid.New(),
		CreatorID:       req.CreatorID,
		Title:           req.Title,
		StartTime:       startTime,
		EndTime:         endTime,
		PreBidStart:     preBidStart,
		TimerSeconds:    timerSeconds,
		MinBidIncrement: req.MinBidIncrement,
		Status:          auction.StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.auctionRepo.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to save auction")
		return nil, err
	}

	s.logger.Info().Str("auction_id", a.ID.String()).Msg("Auction created")
	return a, nil
}

// AddLot consigns a vehicle as a lot. Lot numbers are unique per auction.
func (s *AuctionService) AddLot(ctx context.Context, req inbound.AddLotRequest) (*lot.Lot, error) {
	a, err := s.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != auction.StatusDraft && a.Status != auction.StatusScheduled {
		return nil, &shared.StateConflictError{
			Op:      "add lot",
			Current: string(a.Status),
			Reason:  "lots can only be added before the auction is ready",
		}
	}
	if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
		return nil, shared.ErrVehicleNotFound
	}
	if _, err := s.lotRepo.GetByNumber(ctx, req.AuctionID, req.LotNumber); err == nil {
		return nil, shared.ErrDuplicateLotNum
	}

	l := lot.New(req.AuctionID, req.VehicleID, req.LotNumber, req.StartPrice, req.MinPreBid, req.ReservePrice, s.clock.Now())
	if err := s.lotRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("auction_id", req.AuctionID.String()).
		Str("lot_id", l.ID.String()).
		Int("lot_number", l.LotNumber).
		Msg("Lot added")
	return l, nil
}

// GetAuction retrieves an auction by ID
func (s *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return s.auctionRepo.GetByID(ctx, auctionID)
}

// ListAuctions retrieves a list of auctions
func (s *AuctionService) ListAuctions(ctx context.Context, req inbound.ListAuctionsRequest) ([]*auction.Auction, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	return s.auctionRepo.List(ctx, req.Status, req.Page, req.PageSize)
}

// ScheduleAuction moves a draft auction onto the calendar
func (s *AuctionService) ScheduleAuction(ctx context.Context, req inbound.ScheduleAuctionRequest) error {
	unlock := s.locks.Lock(req.AuctionID)
	defer unlock()

	a, err := s.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		return err
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return shared.ErrInvalidTimeFormat
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return shared.ErrInvalidTimeFormat
	}
	if err := a.Schedule(startTime, endTime, s.clock.Now()); err != nil {
		return err
	}
	return s.auctionRepo.Update(ctx, a)
}

// MakeReady marks the auction ready: every pre-auction lot is prepared,
// seeding its price from the highest pre-bid or its start price.
func (s *AuctionService) MakeReady(ctx context.Context, auctionID uuid.UUID) error {
	unlock := s.locks.Lock(auctionID)
	defer unlock()

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	return s.makeReadyLocked(ctx, a)
}

func (s *AuctionService) makeReadyLocked(ctx context.Context, a *auction.Auction) error {
	lots, err := s.lotRepo.ListByAuction(ctx, a.ID)
	if err != nil {
		return err
	}
	if len(lots) == 0 {
		return shared.ErrNoLots
	}

	now := s.clock.Now()
	for _, l := range lots {
		if l.Condition != lot.ConditionPreAuction {
			continue
		}
		seed, err := s.preBidSeed(ctx, l)
		if err != nil {
			return err
		}
		if err := l.Prepare(seed, now); err != nil {
			return err
		}
		if err := s.lotRepo.Update(ctx, l); err != nil {
			return err
		}
	}

	if err := a.MakeReady(now); err != nil {
		return err
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info().Str("auction_id", a.ID.String()).Int("lots", len(lots)).Msg("Auction ready")
	return nil
}

// preBidSeed returns the highest standing pre-bid amount on the lot, or
// zero when there is none.
func (s *AuctionService) preBidSeed(ctx context.Context, l *lot.Lot) (float64, error) {
	history, err := s.bidRepo.ListByLot(ctx, l.ID)
	if err != nil {
		return 0, err
	}
	if high := bidding.NewLedger(l.ID, history).HighestPreBid(); high != nil {
		return high.Amount, nil
	}
	return 0, nil
}

// StartAuction starts the live session and activates the first eligible
// lot. A scheduled auction is promoted to ready first.
func (s *AuctionService) StartAuction(ctx context.Context, auctionID uuid.UUID) error {
	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return err
	}

	if a.Status == auction.StatusScheduled {
		if err := s.makeReadyLocked(ctx, a); err != nil {
			unlock()
			return err
		}
	}

	now := s.clock.Now()
	if err := a.Start(now); err != nil {
		unlock()
		return err
	}

	first, err := s.activateNextLot(ctx, a, 0)
	if err != nil {
		unlock()
		return err
	}
	if first == nil {
		unlock()
		return shared.ErrNoEligibleLot
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return err
	}
	unlock()

	s.publishAll(ctx, []outbound.Event{
		s.event(outbound.EventTypeAuctionStarted, outbound.AuctionTopic(a.ID), map[string]interface{}{
			"auction_id": a.ID,
			"lot_number": first.LotNumber,
		}, now),
		s.lotActivatedEvent(first, a, now),
	})

	s.logger.Info().
		Str("auction_id", a.ID.String()).
		Int("first_lot", first.LotNumber).
		Msg("Auction started")
	return nil
}

// AdvanceToNextLot closes the current lot, determines its winner, and
// activates the next eligible lot; the auction ends when none remain.
func (s *AuctionService) AdvanceToNextLot(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionAdvanceResult, error) {
	return s.advance(ctx, auctionID, false)
}

// AdvanceIfExpired advances like AdvanceToNextLot, but only after
// re-checking the active lot's countdown under the lot lock. A bid that
// landed after the caller's expiry check resets the countdown; the advance
// then aborts with shared.ErrLotNotExpired instead of hammering the lot.
func (s *AuctionService) AdvanceIfExpired(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionAdvanceResult, error) {
	return s.advance(ctx, auctionID, true)
}

func (s *AuctionService) advance(ctx context.Context, auctionID uuid.UUID, requireExpired bool) (*shared.AuctionAdvanceResult, error) {
	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return nil, err
	}
	if !a.IsRunning() {
		unlock()
		return nil, &shared.StateConflictError{
			Op:      "advance lot",
			Current: string(a.Status),
			Reason:  "auction is not running",
		}
	}

	now := s.clock.Now()
	result := &shared.AuctionAdvanceResult{AuctionID: a.ID}
	var events []outbound.Event

	afterNumber := 0
	current, err := s.lotRepo.GetActive(ctx, auctionID)
	if err != nil && err != shared.ErrLotNotFound {
		unlock()
		return nil, err
	}
	if current == nil && requireExpired {
		// The expired lot was advanced by someone else in the meantime.
		unlock()
		return nil, shared.ErrLotNotExpired
	}
	if current != nil {
		closeRes, closeEvents, err := s.closeLot(ctx, a, current, now, requireExpired)
		if err != nil {
			unlock()
			return nil, err
		}
		result.ClosedLot = closeRes
		events = append(events, closeEvents...)
		afterNumber = current.LotNumber
	}

	next, err := s.activateNextLot(ctx, a, afterNumber)
	if err != nil {
		unlock()
		return nil, err
	}
	if next != nil {
		result.NextLotID = &next.ID
		num := next.LotNumber
		result.NextLotNum = &num
		events = append(events, s.lotActivatedEvent(next, a, now))
	} else {
		if err := a.End(now); err != nil {
			unlock()
			return nil, err
		}
		result.AuctionEnded = true
		events = append(events, s.event(outbound.EventTypeAuctionEnded, outbound.AuctionTopic(a.ID), map[string]interface{}{
			"auction_id": a.ID,
		}, now))
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	s.publishAll(ctx, events)

	s.logger.Info().
		Str("auction_id", a.ID.String()).
		Bool("auction_ended", result.AuctionEnded).
		Msg("Advanced to next lot")
	return result, nil
}

// closeLot hammers the current lot down under its own lock and creates
// the winner record when the reserve is met. The caller's read of the lot
// happened outside that lock, so the lot is re-read once the lock is held;
// with requireExpired set, a countdown reset by a bid that slipped in
// aborts the close with shared.ErrLotNotExpired.
func (s *AuctionService) closeLot(ctx context.Context, a *auction.Auction, l *lot.Lot, now time.Time, requireExpired bool) (*shared.LotCloseResult, []outbound.Event, error) {
	unlockLot := s.locks.Lock(l.ID)
	defer unlockLot()

	fresh, err := s.lotRepo.GetByID(ctx, l.ID)
	if err != nil {
		return nil, nil, err
	}
	l = fresh
	if requireExpired && !lot.IsExpired(l, a.TimerSeconds, now) {
		return nil, nil, shared.ErrLotNotExpired
	}

	history, err := s.bidRepo.ListByLot(ctx, l.ID)
	if err != nil {
		return nil, nil, err
	}
	ledger := bidding.NewLedger(l.ID, history)
	high := ledger.HighestBid()

	result := &shared.LotCloseResult{LotID: l.ID}
	var events []outbound.Event
	topic := outbound.LotTopic(l.ID)

	switch {
	case high == nil:
		result.Reason = "No valid bids received"
		if err := l.CloseUnsold(result.Reason, now); err != nil {
			return nil, nil, err
		}

	case !l.ReserveMet(high.Amount):
		result.Reason = fmt.Sprintf("Reserve not met: highest bid %.2f, reserve %.2f", high.Amount, *l.ReservePrice)
		if err := l.CloseUnsold(result.Reason, now); err != nil {
			return nil, nil, err
		}

	default:
		if err := l.CloseSold(high.Amount, now); err != nil {
			return nil, nil, err
		}
		secondChance := ledger.NextBestBid(high.UserID) != nil
		w := winner.New(l.ID, high.ID, high.UserID, high.Amount, now.Add(s.paymentDue), secondChance, now)
		if err := s.winnerRepo.Create(ctx, w); err != nil {
			return nil, nil, err
		}
		result.Sold = true
		result.WinnerID = &w.UserID
		amount := high.Amount
		result.FinalPrice = &amount
		events = append(events, s.event(outbound.EventTypeWinnerAssigned, topic, map[string]interface{}{
			"lot_id":    l.ID,
			"winner_id": w.UserID,
			"bid_id":    w.BidID,
			"amount":    w.Amount,
		}, now))
	}

	if err := s.lotRepo.Update(ctx, l); err != nil {
		return nil, nil, err
	}

	closedEvent := s.event(outbound.EventTypeLotClosed, topic, map[string]interface{}{
		"lot_id":     l.ID,
		"lot_number": l.LotNumber,
		"sold":       result.Sold,
		"reason":     result.Reason,
	}, now)
	events = append([]outbound.Event{closedEvent}, events...)

	return result, events, nil
}

// activateNextLot selects and activates the next eligible lot with a
// number greater than afterNumber, updating the auction's current-lot
// pointer. It returns nil when no lot remains.
func (s *AuctionService) activateNextLot(ctx context.Context, a *auction.Auction, afterNumber int) (*lot.Lot, error) {
	lots, err := s.lotRepo.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	for _, l := range lots {
		if l.IsActive {
			return nil, &shared.InvariantError{
				Invariant: "single active lot",
				Detail:    fmt.Sprintf("lot %d is still active on auction %s", l.LotNumber, a.ID),
			}
		}
	}

	next := selectNextLot(lots, afterNumber)
	if next == nil {
		return nil, nil
	}

	now := s.clock.Now()
	unlockLot := s.locks.Lock(next.ID)
	defer unlockLot()

	if err := next.Activate(now); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Update(ctx, next); err != nil {
		return nil, err
	}
	a.SetCurrentLot(next.LotNumber, now)
	return next, nil
}

// selectNextLot orders the remaining ready lots: lots carrying pre-bids
// first (their prepared price exceeds the start price), then lots with an
// explicit start price, then by lot number.
func selectNextLot(lots []*lot.Lot, afterNumber int) *lot.Lot {
	var candidates []*lot.Lot
	for _, l := range lots {
		if l.Condition != lot.ConditionReady || l.LotNumber <= afterNumber {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		return nil
	}

	rank := func(l *lot.Lot) int {
		switch {
		case l.CurrentPrice > l.StartPrice:
			return 0
		case l.StartPrice > 0:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := rank(candidates[i]), rank(candidates[j])
		if ri != rj {
			return ri < rj
		}
		return candidates[i].LotNumber < candidates[j].LotNumber
	})
	return candidates[0]
}

// SetCurrentLot manually overrides which lot is on the block, parking the
// previous one and re-seeding the target's price.
func (s *AuctionService) SetCurrentLot(ctx context.Context, auctionID uuid.UUID, lotNumber int) error {
	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return err
	}
	if !a.IsRunning() {
		unlock()
		return &shared.StateConflictError{
			Op:      "set current lot",
			Current: string(a.Status),
			Reason:  "auction is not running",
		}
	}

	target, err := s.lotRepo.GetByNumber(ctx, auctionID, lotNumber)
	if err != nil {
		unlock()
		return err
	}

	now := s.clock.Now()
	var events []outbound.Event

	current, err := s.lotRepo.GetActive(ctx, auctionID)
	if err != nil && err != shared.ErrLotNotFound {
		unlock()
		return err
	}
	if current != nil {
		if current.ID == target.ID {
			unlock()
			return nil
		}
		unlockCur := s.locks.Lock(current.ID)
		if err := current.Park(now); err != nil {
			unlockCur()
			unlock()
			return err
		}
		if err := s.lotRepo.Update(ctx, current); err != nil {
			unlockCur()
			unlock()
			return err
		}
		unlockCur()
	}

	unlockTarget := s.locks.Lock(target.ID)
	seed, err := s.preBidSeed(ctx, target)
	if err != nil {
		unlockTarget()
		unlock()
		return err
	}
	if err := target.Prepare(seed, now); err != nil {
		unlockTarget()
		unlock()
		return err
	}
	if err := target.Activate(now); err != nil {
		unlockTarget()
		unlock()
		return err
	}
	if err := s.lotRepo.Update(ctx, target); err != nil {
		unlockTarget()
		unlock()
		return err
	}
	unlockTarget()

	a.SetCurrentLot(target.LotNumber, now)
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return err
	}
	unlock()

	events = append(events, s.lotActivatedEvent(target, a, now))
	s.publishAll(ctx, events)

	s.logger.Info().
		Str("auction_id", auctionID.String()).
		Int("lot_number", lotNumber).
		Msg("Current lot overridden")
	return nil
}

// EndAuction explicitly ends a running auction, closing the current lot
func (s *AuctionService) EndAuction(ctx context.Context, auctionID uuid.UUID) error {
	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return err
	}
	if !a.IsRunning() {
		unlock()
		return shared.ErrAuctionNotLive
	}

	now := s.clock.Now()
	var events []outbound.Event

	current, err := s.lotRepo.GetActive(ctx, auctionID)
	if err != nil && err != shared.ErrLotNotFound {
		unlock()
		return err
	}
	if current != nil {
		_, closeEvents, err := s.closeLot(ctx, a, current, now, false)
		if err != nil {
			unlock()
			return err
		}
		events = append(events, closeEvents...)
	}

	if err := a.End(now); err != nil {
		unlock()
		return err
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return err
	}
	unlock()

	events = append(events, s.event(outbound.EventTypeAuctionEnded, outbound.AuctionTopic(a.ID), map[string]interface{}{
		"auction_id": a.ID,
	}, now))
	s.publishAll(ctx, events)

	s.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction ended")
	return nil
}

// CancelAuction cancels the auction with a reason, parking any live lot
func (s *AuctionService) CancelAuction(ctx context.Context, auctionID uuid.UUID, reason string) error {
	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return err
	}

	now := s.clock.Now()
	current, err := s.lotRepo.GetActive(ctx, auctionID)
	if err != nil && err != shared.ErrLotNotFound {
		unlock()
		return err
	}
	if current != nil {
		unlockCur := s.locks.Lock(current.ID)
		if err := current.Park(now); err != nil {
			unlockCur()
			unlock()
			return err
		}
		if err := s.lotRepo.Update(ctx, current); err != nil {
			unlockCur()
			unlock()
			return err
		}
		unlockCur()
	}

	if err := a.Cancel(reason, now); err != nil {
		unlock()
		return err
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return err
	}
	unlock()

	s.publishAll(ctx, []outbound.Event{
		s.event(outbound.EventTypeAuctionCancelled, outbound.AuctionTopic(a.ID), map[string]interface{}{
			"auction_id": a.ID,
			"reason":     reason,
		}, now),
	})

	s.logger.Info().Str("auction_id", auctionID.String()).Str("reason", reason).Msg("Auction cancelled")
	return nil
}

// ExtendAuction pushes the end time forward without changing status
func (s *AuctionService) ExtendAuction(ctx context.Context, auctionID uuid.UUID, minutes int, reason string) error {
	if reason == "" {
		return shared.ErrEmptyReason
	}

	unlock := s.locks.Lock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		unlock()
		return err
	}
	now := s.clock.Now()
	if err := a.Extend(time.Duration(minutes)*time.Minute, now); err != nil {
		unlock()
		return err
	}
	if err := s.auctionRepo.Update(ctx, a); err != nil {
		unlock()
		return err
	}
	unlock()

	s.publishAll(ctx, []outbound.Event{
		s.event(outbound.EventTypeAuctionExtended, outbound.AuctionTopic(a.ID), map[string]interface{}{
			"auction_id": a.ID,
			"end_time":   a.EndTime,
			"reason":     reason,
		}, now),
	})
	return nil
}

func (s *AuctionService) lotActivatedEvent(l *lot.Lot, a *auction.Auction, now time.Time) outbound.Event {
	return s.event(outbound.EventTypeLotActivated, outbound.AuctionTopic(a.ID), map[string]interface{}{
		"lot_id":        l.ID,
		"lot_number":    l.LotNumber,
		"current_price": l.CurrentPrice,
		"timer_seconds": a.TimerSeconds,
	}, now)
}

func (s *AuctionService) event(t outbound.EventType, topic string, data map[string]interface{}, now time.Time) outbound.Event {
	return outbound.Event{Type: t, Topic: topic, Data: data, Timestamp: now.Unix()}
}

func (s *AuctionService) publishAll(ctx context.Context, events []outbound.Event) {
	if s.broadcaster == nil {
		return
	}
	for _, e := range events {
		if err := s.broadcaster.Publish(ctx, e.Topic, e); err != nil {
			s.logger.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to broadcast event")
		}
	}
}
