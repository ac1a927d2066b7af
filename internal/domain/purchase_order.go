package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	OrderStatusOpen    OrderStatus = "open"
	OrderStatusSettled OrderStatus = "settled"
)

// PurchaseOrder records inventory bought on credit from a distributor.
// The ID is the caller-supplied OC number, which makes order processing
// idempotent: the same OC can only enter the ledger once. Receiving an
// order raises stock and distributor debt; it moves no cash.
type PurchaseOrder struct {
	ID            string
	DistributorID string
	ProductID     string
	Quantity      int64
	UnitCost      decimal.Decimal
	AmountPaid    decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
}

// Validate checks the order preconditions before any ledger state is touched.
func (po *PurchaseOrder) Validate() error {
	if po.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	if po.UnitCost.IsNegative() {
		return ErrInvalidCost
	}

	return nil
}

// Total is the amount owed to the distributor for this order.
func (po *PurchaseOrder) Total() decimal.Decimal {
	return po.UnitCost.Mul(decimal.NewFromInt(po.Quantity))
}

// Outstanding is the unpaid remainder of the order.
func (po *PurchaseOrder) Outstanding() decimal.Decimal {
	return po.Total().Sub(po.AmountPaid)
}

// ApplyPayment registers an abono against the order and settles it when
// fully covered. The payment must not exceed the outstanding debt.
func (po *PurchaseOrder) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if po.Status == OrderStatusSettled {
		return ErrOrderSettled
	}

	if amount.GreaterThan(po.Outstanding()) {
		return ErrPaymentExceedsDebt
	}

	po.AmountPaid = po.AmountPaid.Add(amount)
	if po.Outstanding().IsZero() {
		po.Status = OrderStatusSettled
	}

	return nil
}
