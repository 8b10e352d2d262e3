package app

import (
	"context"

	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"
	"gearlane-auction-engine/internal/ports/outbound"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WinnerService implements the post-sale winner lifecycle: seller
// approval, payment tracking, and second chance re-offers.
type WinnerService struct {
	winnerRepo  outbound.WinnerRepository
	lotRepo     outbound.LotRepository
	bidRepo     outbound.BidRepository
	broadcaster outbound.Broadcaster
	locks       *LockRegistry
	clock       clock.Clock
	logger      zerolog.Logger
}

type WinnerServiceParams struct {
	WinnerRepo  outbound.WinnerRepository
	LotRepo     outbound.LotRepository
	BidRepo     outbound.BidRepository
	Broadcaster outbound.Broadcaster
	Locks       *LockRegistry
	Clock       clock.Clock
	Logger      zerolog.Logger
}

// NewWinnerService creates a new winner service
func NewWinnerService(params WinnerServiceParams) *WinnerService {
	return &WinnerService{
		winnerRepo:  params.WinnerRepo,
		lotRepo:     params.LotRepo,
		bidRepo:     params.BidRepo,
		broadcaster: params.Broadcaster,
		locks:       params.Locks,
		clock:       params.Clock,
		logger:      params.Logger.With().Str("component", "winner_service").Logger(),
	}
}

// ApproveSale lets the seller accept the hammer price
func (s *WinnerService) ApproveSale(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error) {
	unlock := s.locks.Lock(lotID)
	defer unlock()

	l, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	w, err := s.winnerRepo.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := l.TransitionWinner(lot.WinnerSellerApproved, now); err != nil {
		return nil, err
	}
	if err := l.TransitionWinner(lot.WinnerWon, now); err != nil {
		return nil, err
	}
	w.Confirm(now)

	if err := s.winnerRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", lotID.String()).
		Str("winner_id", w.UserID.String()).
		Float64("amount", w.Amount).
		Msg("Sale approved by seller")
	return w, nil
}

// RejectSale lets the seller refuse the hammer price
func (s *WinnerService) RejectSale(ctx context.Context, lotID uuid.UUID, reason string) error {
	unlock := s.locks.Lock(lotID)
	defer unlock()

	l, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	w, err := s.winnerRepo.GetByLotID(ctx, lotID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if err := w.Reject(reason, now); err != nil {
		return err
	}
	if err := l.TransitionWinner(lot.WinnerSellerRejected, now); err != nil {
		return err
	}

	if err := s.winnerRepo.Update(ctx, w); err != nil {
		return err
	}
	if err := s.lotRepo.Update(ctx, l); err != nil {
		return err
	}

	s.logger.Info().Str("lot_id", lotID.String()).Str("reason", reason).Msg("Sale rejected by seller")
	return nil
}

// OfferSecondChance re-offers the lot to the next-highest distinct
// bidder: the old winner record is destroyed and a new one created.
func (s *WinnerService) OfferSecondChance(ctx context.Context, lotID uuid.UUID) (*winner.Winner, error) {
	unlock := s.locks.Lock(lotID)
	defer unlock()

	l, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if l.WinnerStatus != lot.WinnerSellerRejected && l.WinnerStatus != lot.WinnerPaymentOverdue {
		return nil, &shared.StateConflictError{
			Op:      "second chance",
			Current: string(l.WinnerStatus),
			Reason:  "lot's winner must be rejected or overdue",
		}
	}

	old, err := s.winnerRepo.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !old.SecondChanceEligible {
		return nil, shared.ErrNoSecondChance
	}

	history, err := s.bidRepo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	ledger := bidding.NewLedger(lotID, history)
	next := ledger.NextBestBid(old.UserID)
	if next == nil {
		return nil, shared.ErrNoSecondChance
	}

	now := s.clock.Now()
	if err := s.winnerRepo.DeleteByLotID(ctx, lotID); err != nil {
		return nil, err
	}

	further := ledger.NextBestBid(next.UserID) != nil
	replacement := winner.New(lotID, next.ID, next.UserID, next.Amount, old.PaymentDueDate, further, now)
	if err := s.winnerRepo.Create(ctx, replacement); err != nil {
		return nil, err
	}
	if err := l.TransitionWinner(lot.WinnerAwaitingApproval, now); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.publish(ctx, outbound.Event{
		Type:  outbound.EventTypeWinnerAssigned,
		Topic: outbound.LotTopic(lotID),
		Data: map[string]interface{}{
			"lot_id":        lotID,
			"winner_id":     replacement.UserID,
			"amount":        replacement.Amount,
			"second_chance": true,
		},
		Timestamp: now.Unix(),
	})

	s.logger.Info().
		Str("lot_id", lotID.String()).
		Str("new_winner_id", replacement.UserID.String()).
		Float64("amount", replacement.Amount).
		Msg("Second chance offered")
	return replacement, nil
}

// RecordPayment advances the winner's payment status and the lot's
// winner-status machine with it.
func (s *WinnerService) RecordPayment(ctx context.Context, lotID uuid.UUID, status winner.PaymentStatus) error {
	unlock := s.locks.Lock(lotID)
	defer unlock()

	l, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	w, err := s.winnerRepo.GetByLotID(ctx, lotID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	switch status {
	case winner.PaymentPartiallyPaid:
		if err := l.TransitionWinner(lot.WinnerDepositPaid, now); err != nil {
			return err
		}
	case winner.PaymentPaid:
		if err := l.TransitionWinner(lot.WinnerPaymentComplete, now); err != nil {
			return err
		}
		if err := l.TransitionWinner(lot.WinnerCompleted, now); err != nil {
			return err
		}
	case winner.PaymentFailed:
		if err := l.TransitionWinner(lot.WinnerPaymentOverdue, now); err != nil {
			return err
		}
	default:
		return shared.ErrInvalidRequest
	}

	w.RecordPayment(status, now)
	if err := s.winnerRepo.Update(ctx, w); err != nil {
		return err
	}
	return s.lotRepo.Update(ctx, l)
}

func (s *WinnerService) publish(ctx context.Context, e outbound.Event) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Publish(ctx, e.Topic, e); err != nil {
		s.logger.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to broadcast event")
	}
}
