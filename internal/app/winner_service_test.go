package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

// soldLot seeds a hammered-down lot with its winner record and one
// runner-up bid, mirroring what AdvanceToNextLot leaves behind.
func (f *fixture) soldLot(amount float64, runnerUp float64) (*lot.Lot, *winner.Winner, uuid.UUID) {
	ctx := context.Background()
	now := f.clock.Now()

	a := f.addAuction(auction.StatusEnded)
	l := f.addLot(a, 1, 1000, nil)
	_ = l.Prepare(0, now)
	_ = l.Activate(now)

	runnerUpID := f.addUser()
	f.recordBid(l, runnerUpID, runnerUp, 1)
	winnerID := f.addUser()
	winning := f.recordBid(l, winnerID, amount, 2)

	_ = l.CloseSold(amount, now)
	_ = f.lotRepo.Update(ctx, l)

	w := winner.New(l.ID, winning.ID, winnerID, amount, now.Add(48*time.Hour), true, now)
	_ = f.winnerRepo.Create(ctx, w)
	return l, w, runnerUpID
}

func TestApproveSale(t *testing.T) {
	f := newFixture()
	l, w, _ := f.soldLot(7000, 6500)

	approved, err := f.winners.ApproveSale(context.Background(), l.ID)

	check.Nil(t, err)
	check.Equal(t, w.ID, approved.ID)
	check.NotNil(t, approved.ConfirmedAt)
	check.Equal(t, lot.WinnerWon, l.WinnerStatus)

	// The sale cannot be approved twice.
	var conflict *shared.StateConflictError
	_, err = f.winners.ApproveSale(context.Background(), l.ID)
	check.True(t, errors.As(err, &conflict))
}

func TestRejectSale(t *testing.T) {
	f := newFixture()
	l, w, _ := f.soldLot(7000, 6500)

	check.Nil(t, f.winners.RejectSale(context.Background(), l.ID, "Price too low"))

	check.Equal(t, lot.WinnerSellerRejected, l.WinnerStatus)
	check.NotNil(t, w.RejectedAt)
	check.Equal(t, "Price too low", w.RejectionReason)
	check.Equal(t, winner.PaymentCancelled, w.PaymentStatus)
}

func TestRejectSale_RequiresReason(t *testing.T) {
	f := newFixture()
	l, _, _ := f.soldLot(7000, 6500)

	err := f.winners.RejectSale(context.Background(), l.ID, "")

	check.True(t, errors.Is(err, shared.ErrEmptyReason))
	check.Equal(t, lot.WinnerAwaitingApproval, l.WinnerStatus)
}

func TestOfferSecondChance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l, old, runnerUpID := f.soldLot(7000, 6500)

	check.Nil(t, f.winners.RejectSale(ctx, l.ID, "Price too low"))

	replacement, err := f.winners.OfferSecondChance(ctx, l.ID)

	check.Nil(t, err)
	check.Equal(t, runnerUpID, replacement.UserID)
	check.Equal(t, 6500.0, replacement.Amount)
	check.Equal(t, lot.WinnerAwaitingApproval, l.WinnerStatus)

	// The old record is gone; the replacement is the lot's winner now.
	current, err := f.winnerRepo.GetByLotID(ctx, l.ID)
	check.Nil(t, err)
	check.Equal(t, replacement.ID, current.ID)
	check.True(t, current.ID != old.ID)
}

func TestOfferSecondChance_RequiresRejectedOrOverdue(t *testing.T) {
	f := newFixture()
	l, _, _ := f.soldLot(7000, 6500)

	_, err := f.winners.OfferSecondChance(context.Background(), l.ID)

	var conflict *shared.StateConflictError
	check.True(t, errors.As(err, &conflict))
}

func TestOfferSecondChance_NoEligibleBidder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := f.clock.Now()

	// A sold lot whose only bid is the winner's leaves nobody to re-offer to.
	a := f.addAuction(auction.StatusEnded)
	l := f.addLot(a, 1, 1000, nil)
	_ = l.Prepare(0, now)
	_ = l.Activate(now)
	winnerID := f.addUser()
	winning := f.recordBid(l, winnerID, 5000, 1)
	_ = l.CloseSold(5000, now)
	_ = f.lotRepo.Update(ctx, l)
	_ = f.winnerRepo.Create(ctx, winner.New(l.ID, winning.ID, winnerID, 5000, now.Add(48*time.Hour), false, now))

	check.Nil(t, f.winners.RejectSale(ctx, l.ID, "Price too low"))

	_, err := f.winners.OfferSecondChance(ctx, l.ID)
	check.True(t, errors.Is(err, shared.ErrNoSecondChance))
}

func TestRecordPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	newWonLot := func() (*lot.Lot, *winner.Winner) {
		l, w, _ := f.soldLot(7000, 6500)
		_, err := f.winners.ApproveSale(ctx, l.ID)
		check.Nil(t, err)
		return l, w
	}

	t.Run("deposit", func(t *testing.T) {
		l, w := newWonLot()
		check.Nil(t, f.winners.RecordPayment(ctx, l.ID, winner.PaymentPartiallyPaid))
		check.Equal(t, lot.WinnerDepositPaid, l.WinnerStatus)
		check.Equal(t, winner.PaymentPartiallyPaid, w.PaymentStatus)
	})

	t.Run("full payment completes the lot", func(t *testing.T) {
		l, w := newWonLot()
		check.Nil(t, f.winners.RecordPayment(ctx, l.ID, winner.PaymentPartiallyPaid))
		check.Nil(t, f.winners.RecordPayment(ctx, l.ID, winner.PaymentPaid))
		check.Equal(t, lot.WinnerCompleted, l.WinnerStatus)
		check.Equal(t, winner.PaymentPaid, w.PaymentStatus)
	})

	t.Run("failed payment goes overdue", func(t *testing.T) {
		l, w := newWonLot()
		check.Nil(t, f.winners.RecordPayment(ctx, l.ID, winner.PaymentFailed))
		check.Equal(t, lot.WinnerPaymentOverdue, l.WinnerStatus)
		check.Equal(t, winner.PaymentFailed, w.PaymentStatus)
	})

	t.Run("unknown status is refused", func(t *testing.T) {
		l, _ := newWonLot()
		err := f.winners.RecordPayment(ctx, l.ID, winner.PaymentStatus("gold bars"))
		check.True(t, errors.Is(err, shared.ErrInvalidRequest))
	})
}

func TestOfferSecondChance_AfterOverduePayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l, _, runnerUpID := f.soldLot(7000, 6500)

	_, err := f.winners.ApproveSale(ctx, l.ID)
	check.Nil(t, err)
	check.Nil(t, f.winners.RecordPayment(ctx, l.ID, winner.PaymentFailed))

	replacement, err := f.winners.OfferSecondChance(ctx, l.ID)

	check.Nil(t, err)
	check.Equal(t, runnerUpID, replacement.UserID)
	check.Equal(t, lot.WinnerAwaitingApproval, l.WinnerStatus)
}

func TestWinnerIsOverdue(t *testing.T) {
	f := newFixture()
	_, w, _ := f.soldLot(7000, 6500)

	check.False(t, w.IsOverdue(f.clock.Now()))
	check.True(t, w.IsOverdue(f.clock.Now().Add(49*time.Hour)))

	w.RecordPayment(winner.PaymentPaid, f.clock.Now())
	check.False(t, w.IsOverdue(f.clock.Now().Add(49*time.Hour)))
}
