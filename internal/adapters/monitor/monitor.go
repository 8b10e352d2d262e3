package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/ports/inbound"
	"gearlane-auction-engine/internal/ports/outbound"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog"
)

// ExpirationMonitor drives the per-lot countdown. Every poll interval it
// scans the running auctions: a lot whose timer ran out is hammered and the
// auction advanced, and an auction past its end time is ended outright.
//
// Lot timers reset on every bid, so expiry is computed from the lot's own
// last-bid time on each tick rather than kept in an external schedule.
type ExpirationMonitor struct {
	auctionRepo    outbound.AuctionRepository
	lotRepo        outbound.LotRepository
	auctionService inbound.AuctionService
	clock          clock.Clock
	pollInterval   time.Duration
	logger         zerolog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

type ExpirationMonitorParams struct {
	AuctionRepo    outbound.AuctionRepository
	LotRepo        outbound.LotRepository
	AuctionService inbound.AuctionService
	Clock          clock.Clock
	PollInterval   time.Duration
	Logger         zerolog.Logger
}

func NewExpirationMonitor(params ExpirationMonitorParams) *ExpirationMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &ExpirationMonitor{
		auctionRepo:    params.AuctionRepo,
		lotRepo:        params.LotRepo,
		auctionService: params.AuctionService,
		clock:          params.Clock,
		pollInterval:   params.PollInterval,
		logger:         params.Logger.With().Str("component", "expiration_monitor").Logger(),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start begins the monitor loop
func (m *ExpirationMonitor) Start() {
	m.logger.Info().Dur("poll_interval", m.pollInterval).Msg("Starting expiration monitor")

	m.wg.Add(1)
	go m.monitorLoop()
}

// Stop gracefully stops the monitor
func (m *ExpirationMonitor) Stop() {
	m.logger.Info().Msg("Stopping expiration monitor")
	m.cancel()
	m.wg.Wait()
}

// monitorLoop runs the main polling loop
func (m *ExpirationMonitor) monitorLoop() {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			m.checkRunningAuctions()
		case <-m.ctx.Done():
			m.logger.Info().Msg("Monitor loop stopped")
			return
		}
	}
}

// checkRunningAuctions scans every running auction once
func (m *ExpirationMonitor) checkRunningAuctions() {
	auctions, err := m.auctionRepo.ListRunning(m.ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to list running auctions")
		return
	}

	now := m.clock.Now()
	for _, a := range auctions {
		if now.After(a.EndTime) {
			m.endAuction(a)
			continue
		}
		m.checkActiveLot(a, now)
	}
}

// checkActiveLot advances the auction when its active lot's countdown has
// run out. An auction between lots has no active lot, which is not an error.
func (m *ExpirationMonitor) checkActiveLot(a *auction.Auction, now time.Time) {
	active, err := m.lotRepo.GetActive(m.ctx, a.ID)
	if err != nil {
		if errors.Is(err, shared.ErrLotNotFound) {
			return
		}
		m.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to get active lot")
		return
	}

	if !lot.IsExpired(active, a.TimerSeconds, now) {
		return
	}

	m.logger.Info().
		Str("auction_id", a.ID.String()).
		Str("lot_id", active.ID.String()).
		Int("lot_number", active.LotNumber).
		Msg("Lot timer expired, advancing auction")

	// The expiry read above happened outside the lot lock. AdvanceIfExpired
	// re-checks the countdown under the lock, so a bid that landed in the
	// meantime keeps the lot open instead of being hammered away.
	result, err := m.auctionService.AdvanceIfExpired(m.ctx, a.ID)
	if err != nil {
		if errors.Is(err, shared.ErrLotNotExpired) || errors.Is(err, shared.ErrVersionConflict) {
			m.logger.Debug().Str("auction_id", a.ID.String()).Msg("Lot changed concurrently, retrying next tick")
			return
		}
		m.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to advance auction")
		return
	}

	event := m.logger.Info().Str("auction_id", a.ID.String())
	if result.ClosedLot != nil {
		event = event.
			Str("closed_lot_id", result.ClosedLot.LotID.String()).
			Bool("sold", result.ClosedLot.Sold)
	}
	if result.AuctionEnded {
		event.Msg("Final lot resolved, auction ended")
	} else if result.NextLotNum != nil {
		event.Int("next_lot_number", *result.NextLotNum).Msg("Advanced to next lot")
	} else {
		event.Msg("Advanced")
	}
}

// endAuction ends an auction whose overall end time has passed
func (m *ExpirationMonitor) endAuction(a *auction.Auction) {
	m.logger.Info().Str("auction_id", a.ID.String()).Msg("Auction end time reached")

	if err := m.auctionService.EndAuction(m.ctx, a.ID); err != nil {
		m.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to end auction")
	}
}
