package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the payment state of a sale. Transitions are monotonic:
// pending -> partial -> paid, never backwards.
type SaleStatus string

const (
	SaleStatusPending SaleStatus = "pending"
	SaleStatusPartial SaleStatus = "partial"
	SaleStatusPaid    SaleStatus = "paid"
)

var saleStatusRank = map[SaleStatus]int{
	SaleStatusPending: 0,
	SaleStatusPartial: 1,
	SaleStatusPaid:    2,
}

// CanTransitionTo reports whether moving to next respects monotonicity.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	from, ok := saleStatusRank[s]
	if !ok {
		return false
	}

	to, ok := saleStatusRank[next]
	if !ok {
		return false
	}

	return to >= from
}

// Sale records goods sold to a client. Recorded income is always
// UnitPrice × Quantity; the freight and profit figures are derived splits
// of that gross, never entered independently. UnitCostBasis is the
// weighted-average unit cost frozen when the sale is recorded, so the
// profit carve-out does not drift as later purchase orders arrive.
type Sale struct {
	ID              string
	ClientID        string
	ProductID       string
	Quantity        int64
	UnitPrice       decimal.Decimal
	FreightPerUnit  decimal.Decimal
	UnitCostBasis   decimal.Decimal
	OriginAccountID string
	AmountPaid      decimal.Decimal
	Status          SaleStatus
	CreatedAt       time.Time
}

// Validate checks the sale preconditions before any posting is constructed.
func (s *Sale) Validate() error {
	if s.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	if s.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	if s.FreightPerUnit.IsNegative() {
		return ErrInvalidCost
	}

	return nil
}

// GrossTotal is the recorded income of the sale.
func (s *Sale) GrossTotal() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(s.Quantity))
}

// Outstanding is the client debt remaining on this sale.
func (s *Sale) Outstanding() decimal.Decimal {
	return s.GrossTotal().Sub(s.AmountPaid)
}

// StatusForPayments derives the status implied by a cumulative paid amount.
func (s *Sale) StatusForPayments(paid decimal.Decimal) SaleStatus {
	switch {
	case paid.GreaterThanOrEqual(s.GrossTotal()):
		return SaleStatusPaid
	case paid.IsPositive():
		return SaleStatusPartial
	default:
		return SaleStatusPending
	}
}

// ApplyPayment registers a client payment. It enforces monotonic status
// transitions and rejects overpayment. Returns true when this payment
// completed the sale, which is the moment the freight and profit
// carve-outs become due.
func (s *Sale) ApplyPayment(amount decimal.Decimal) (becamePaid bool, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, ErrInvalidAmount
	}

	if amount.GreaterThan(s.Outstanding()) {
		return false, ErrPaymentExceedsDebt
	}

	newPaid := s.AmountPaid.Add(amount)
	next := s.StatusForPayments(newPaid)
	if !s.Status.CanTransitionTo(next) {
		return false, ErrInvalidStatusTransition
	}

	wasPaid := s.Status == SaleStatusPaid
	s.AmountPaid = newPaid
	s.Status = next

	return !wasPaid && next == SaleStatusPaid, nil
}
