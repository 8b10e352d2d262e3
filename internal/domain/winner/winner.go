package winner

import (
	"time"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

// PaymentStatus tracks the payment lifecycle of a winning bid
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentCancelled     PaymentStatus = "cancelled"
)

// Winner records who a lot was hammered down to and for how much. It is
// created only when a lot closes with a bid meeting the reserve, and is
// destroyed and recreated when the lot is re-offered to the next bidder.
type Winner struct {
	ID                   uuid.UUID     `json:"id"`
	LotID                uuid.UUID     `json:"lot_id"`
	BidID                uuid.UUID     `json:"bid_id"`
	UserID               uuid.UUID     `json:"user_id"`
	Amount               float64       `json:"amount"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	PaymentDueDate       time.Time     `json:"payment_due_date"`
	ConfirmedAt          *time.Time    `json:"confirmed_at,omitempty"`
	RejectedAt           *time.Time    `json:"rejected_at,omitempty"`
	RejectionReason      string        `json:"rejection_reason,omitempty"`
	SecondChanceEligible bool          `json:"second_chance_eligible"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// New creates a winner record for a hammered lot
func New(lotID, bidID, userID uuid.UUID, amount float64, paymentDue time.Time, secondChance bool, now time.Time) *Winner {
	return &Winner{
		ID:                   uuid.New(),
		LotID:                lotID,
		BidID:                bidID,
		UserID:               userID,
		Amount:               amount,
		PaymentStatus:        PaymentPending,
		PaymentDueDate:       paymentDue,
		SecondChanceEligible: secondChance,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Confirm marks the sale as accepted by the seller
func (w *Winner) Confirm(now time.Time) {
	confirmed := now
	w.ConfirmedAt = &confirmed
	w.UpdatedAt = now
}

// Reject marks the sale as refused by the seller
func (w *Winner) Reject(reason string, now time.Time) error {
	if reason == "" {
		return shared.ErrEmptyReason
	}
	rejected := now
	w.RejectedAt = &rejected
	w.RejectionReason = reason
	w.PaymentStatus = PaymentCancelled
	w.UpdatedAt = now
	return nil
}

// RecordPayment advances the payment status
func (w *Winner) RecordPayment(status PaymentStatus, now time.Time) {
	w.PaymentStatus = status
	w.UpdatedAt = now
}

// IsOverdue reports whether payment is still outstanding past the due date
func (w *Winner) IsOverdue(now time.Time) bool {
	switch w.PaymentStatus {
	case PaymentPending, PaymentPartiallyPaid:
		return now.After(w.PaymentDueDate)
	default:
		return false
	}
}
