package app

import (
	"context"
	"errors"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/ports/inbound"
	"gearlane-auction-engine/internal/ports/outbound"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BidService implements the bid use cases: the validate -> proxy-war ->
// append -> price-update pipeline, pre-bids, retraction, and lot views.
type BidService struct {
	bidRepo     outbound.BidRepository
	lotRepo     outbound.LotRepository
	auctionRepo outbound.AuctionRepository
	userRepo    outbound.UserRepository
	vehicleRepo outbound.VehicleRepository
	broadcaster outbound.Broadcaster
	resolver    *bidding.Resolver
	validation  bidding.ValidationConfig
	locks       *LockRegistry
	clock       clock.Clock
	logger      zerolog.Logger
}

type BidServiceParams struct {
	BidRepo     outbound.BidRepository
	LotRepo     outbound.LotRepository
	AuctionRepo outbound.AuctionRepository
	UserRepo    outbound.UserRepository
	VehicleRepo outbound.VehicleRepository
	Broadcaster outbound.Broadcaster
	Resolver    *bidding.Resolver
	Validation  bidding.ValidationConfig
	Locks       *LockRegistry
	Clock       clock.Clock
	Logger      zerolog.Logger
}

// NewBidService creates a new bid service
func NewBidService(params BidServiceParams) *BidService {
	return &BidService{
		bidRepo:     params.BidRepo,
		lotRepo:     params.LotRepo,
		auctionRepo: params.AuctionRepo,
		userRepo:    params.UserRepo,
		vehicleRepo: params.VehicleRepo,
		broadcaster: params.Broadcaster,
		resolver:    params.Resolver,
		validation:  params.Validation,
		locks:       params.Locks,
		clock:       params.Clock,
		logger:      params.Logger.With().Str("component", "bid_service").Logger(),
	}
}

// PlaceBid places a live or proxy bid on a lot. The whole pipeline runs
// under the lot's lock; events are broadcast only after it is released.
func (s *BidService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*bidding.Bid, error) {
	s.logger.Info().
		Str("lot_id", req.LotID.String()).
		Str("user_id", req.UserID.String()).
		Float64("amount", req.Amount).
		Bool("is_proxy", req.IsProxy).
		Msg("Attempting to place bid")

	if s.broadcaster != nil && req.ClientID != "" {
		if !s.broadcaster.IsSubscribed(ctx, outbound.LotTopic(req.LotID), req.ClientID) {
			s.logger.Warn().
				Str("client_id", req.ClientID).
				Str("lot_id", req.LotID.String()).
				Msg("Client not subscribed to lot")
			return nil, shared.ErrUserNotSubscribed
		}
	}

	placed, events, err := s.runBidPipeline(ctx, req)
	s.publishAll(ctx, events)
	if err != nil {
		var outbid *bidding.OutbidError
		if errors.As(err, &outbid) {
			s.logger.Info().
				Str("lot_id", req.LotID.String()).
				Str("user_id", req.UserID.String()).
				Float64("final_amount", outbid.FinalAmount).
				Int("battle_steps", len(outbid.Steps)).
				Msg("Bid outbid by proxy war")
		} else {
			s.logger.Warn().Err(err).Str("lot_id", req.LotID.String()).Msg("Bid rejected")
		}
		return nil, err
	}

	s.logger.Info().
		Str("bid_id", placed.ID.String()).
		Str("lot_id", placed.LotID.String()).
		Int64("sequence", placed.SequenceNumber).
		Float64("amount", placed.Amount).
		Msg("Bid placed successfully")
	return placed, nil
}

// runBidPipeline executes one bid's critical section and returns the
// events to broadcast after the lot lock is released.
func (s *BidService) runBidPipeline(ctx context.Context, req inbound.PlaceBidRequest) (*bidding.Bid, []outbound.Event, error) {
	unlock := s.locks.Lock(req.LotID)
	defer unlock()

	lt, err := s.lotRepo.GetByID(ctx, req.LotID)
	if err != nil {
		return nil, nil, err
	}
	auc, err := s.auctionRepo.GetByID(ctx, lt.AuctionID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, nil, shared.ErrUserNotFound
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, lt.VehicleID)
	if err != nil {
		return nil, nil, shared.ErrVehicleNotFound
	}
	history, err := s.bidRepo.ListByLot(ctx, req.LotID)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	ledger := bidding.NewLedger(lt.ID, history)

	candidate := &bidding.Bid{
		ID:        uuid.New(),
		LotID:     lt.ID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		PlacedAt:  now,
		IsProxy:   req.IsProxy,
		ProxyMax:  req.ProxyMax,
		Strategy:  req.Strategy,
		Status:    bidding.StatusPlaced,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ledger.Validate(auc, lt, vehicle.OwnerID, candidate, now, s.validation); err != nil {
		return nil, nil, err
	}

	priceBefore := lt.CurrentPrice
	outcome := s.resolver.Resolve(candidate, priceBefore, ledger.ActiveProxyBids(req.UserID, now))

	if outcome.IncomingOutbid {
		autoBid := &bidding.Bid{
			ID:          uuid.New(),
			LotID:       lt.ID,
			UserID:      outcome.LeadingProxy.UserID,
			Amount:      outcome.FinalPrice,
			PlacedAt:    now,
			IsAutoBid:   true,
			ParentBidID: &outcome.LeadingProxy.ID,
			Status:      bidding.StatusPlaced,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := ledger.Append(autoBid); err != nil {
			return nil, nil, err
		}
		if err := lt.ApplyBid(outcome.FinalPrice, now); err != nil {
			return nil, nil, err
		}
		if err := s.bidRepo.PersistPipeline(ctx, lt, []*bidding.Bid{autoBid}); err != nil {
			return nil, nil, err
		}

		topic := outbound.LotTopic(lt.ID)
		events := []outbound.Event{
			s.event(outbound.EventTypeAutoBid, topic, map[string]interface{}{
				"bid_id":        autoBid.ID,
				"user_id":       autoBid.UserID,
				"parent_bid_id": autoBid.ParentBidID,
				"amount":        autoBid.Amount,
			}, now),
			s.event(outbound.EventTypeBidOutbid, topic, map[string]interface{}{
				"user_id":      req.UserID,
				"bid_amount":   req.Amount,
				"final_amount": outcome.FinalPrice,
				"steps":        outcome.Steps,
			}, now),
			s.timerResetEvent(topic, lt, auc, now),
		}
		return nil, events, &bidding.OutbidError{
			FinalAmount: outcome.FinalPrice,
			OutbidBy:    outcome.LeadingProxy.UserID,
			Steps:       outcome.Steps,
		}
	}

	if _, err := ledger.Append(candidate); err != nil {
		return nil, nil, err
	}
	if err := lt.ApplyBid(candidate.Amount, now); err != nil {
		return nil, nil, err
	}
	if err := s.bidRepo.PersistPipeline(ctx, lt, []*bidding.Bid{candidate}); err != nil {
		return nil, nil, err
	}

	topic := outbound.LotTopic(lt.ID)
	events := []outbound.Event{
		s.event(outbound.EventTypeBidPlaced, topic, map[string]interface{}{
			"bid_id":   candidate.ID,
			"user_id":  candidate.UserID,
			"amount":   candidate.Amount,
			"is_proxy": candidate.IsProxy,
			"sequence": candidate.SequenceNumber,
		}, now),
		s.timerResetEvent(topic, lt, auc, now),
	}
	return candidate, events, nil
}

// PlacePreBid places a pre-bid before the live session. Pre-bids never
// move the current price; they seed it when the lot is prepared.
func (s *BidService) PlacePreBid(ctx context.Context, req inbound.PlacePreBidRequest) (*bidding.Bid, error) {
	unlock := s.locks.Lock(req.LotID)

	lt, err := s.lotRepo.GetByID(ctx, req.LotID)
	if err != nil {
		unlock()
		return nil, err
	}
	auc, err := s.auctionRepo.GetByID(ctx, lt.AuctionID)
	if err != nil {
		unlock()
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		unlock()
		return nil, shared.ErrUserNotFound
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, lt.VehicleID)
	if err != nil {
		unlock()
		return nil, shared.ErrVehicleNotFound
	}
	history, err := s.bidRepo.ListByLot(ctx, req.LotID)
	if err != nil {
		unlock()
		return nil, err
	}

	now := s.clock.Now()
	ledger := bidding.NewLedger(lt.ID, history)
	preBid := &bidding.Bid{
		ID:        uuid.New(),
		LotID:     lt.ID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		PlacedAt:  now,
		IsPreBid:  true,
		Status:    bidding.StatusPlaced,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ledger.Validate(auc, lt, vehicle.OwnerID, preBid, now, s.validation); err != nil {
		unlock()
		return nil, err
	}
	if _, err := ledger.Append(preBid); err != nil {
		unlock()
		return nil, err
	}
	if err := s.bidRepo.Create(ctx, preBid); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	s.publishAll(ctx, []outbound.Event{
		s.event(outbound.EventTypeBidPlaced, outbound.LotTopic(lt.ID), map[string]interface{}{
			"bid_id":     preBid.ID,
			"user_id":    preBid.UserID,
			"amount":     preBid.Amount,
			"is_pre_bid": true,
		}, now),
	})

	s.logger.Info().
		Str("bid_id", preBid.ID.String()).
		Str("lot_id", lt.ID.String()).
		Float64("amount", preBid.Amount).
		Msg("Pre-bid placed")
	return preBid, nil
}

// RetractBid retracts a bid. Retraction is only legal while the lot is
// not on the block.
func (s *BidService) RetractBid(ctx context.Context, bidID, userID uuid.UUID) error {
	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return shared.ErrInvalidRequest
	}

	unlock := s.locks.Lock(b.LotID)
	defer unlock()

	lt, err := s.lotRepo.GetByID(ctx, b.LotID)
	if err != nil {
		return err
	}
	if lt.IsActive {
		return shared.ErrBidNotRetractable
	}
	if !b.IsPlaced() {
		return &shared.StateConflictError{
			Op:      "retract bid",
			Current: string(b.Status),
			Reason:  "only a standing bid can be retracted",
		}
	}

	b.Retract(s.clock.Now())
	if err := s.bidRepo.Update(ctx, b); err != nil {
		return err
	}

	s.logger.Info().Str("bid_id", bidID.String()).Str("lot_id", b.LotID.String()).Msg("Bid retracted")
	return nil
}

// GetBidHistory retrieves a lot's bids in sequence order
func (s *BidService) GetBidHistory(ctx context.Context, lotID uuid.UUID) ([]*bidding.Bid, error) {
	return s.bidRepo.ListByLot(ctx, lotID)
}

// GetLotState returns the lot plus its derived pricing and timer view
func (s *BidService) GetLotState(ctx context.Context, lotID uuid.UUID) (*inbound.LotState, error) {
	lt, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	auc, err := s.auctionRepo.GetByID(ctx, lt.AuctionID)
	if err != nil {
		return nil, err
	}
	history, err := s.bidRepo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ledger := bidding.NewLedger(lt.ID, history)
	preBidPhase := auc.AcceptsPreBids(now) && !auc.IsRunning()

	return &inbound.LotState{
		Lot:              lt,
		HighestBid:       ledger.HighestBid(),
		NextMinimumBid:   ledger.NextMinimumBid(auc, lt, preBidPhase, s.validation),
		RemainingSeconds: lot.RemainingSeconds(lt, auc.TimerSeconds, now),
	}, nil
}

func (s *BidService) event(t outbound.EventType, topic string, data map[string]interface{}, now time.Time) outbound.Event {
	return outbound.Event{Type: t, Topic: topic, Data: data, Timestamp: now.Unix()}
}

func (s *BidService) timerResetEvent(topic string, lt *lot.Lot, auc *auction.Auction, now time.Time) outbound.Event {
	return s.event(outbound.EventTypeTimerReset, topic, map[string]interface{}{
		"lot_id":            lt.ID,
		"timer_seconds":     auc.TimerSeconds,
		"remaining_seconds": lot.RemainingSeconds(lt, auc.TimerSeconds, now),
	}, now)
}

func (s *BidService) publishAll(ctx context.Context, events []outbound.Event) {
	if s.broadcaster == nil {
		return
	}
	for _, e := range events {
		if err := s.broadcaster.Publish(ctx, e.Topic, e); err != nil {
			s.logger.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to broadcast event")
		}
	}
}
