package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Distributor is a supplier selling inventory to the business on credit.
// Debt rises when a purchase order is received and falls with abonos.
type Distributor struct {
	ID        string
	Name      string
	Debt      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddDebt raises the distributor's outstanding debt.
func (d *Distributor) AddDebt(amount decimal.Decimal) {
	d.Debt = d.Debt.Add(amount)
}

// ApplyPayment lowers the distributor's debt by an abono.
func (d *Distributor) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(d.Debt) {
		return ErrPaymentExceedsDebt
	}

	d.Debt = d.Debt.Sub(amount)

	return nil
}

// Client is a buyer. Debt rises with the unpaid remainder of each sale and
// falls as payments arrive.
type Client struct {
	ID        string
	Name      string
	Debt      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddDebt raises the client's outstanding debt.
func (c *Client) AddDebt(amount decimal.Decimal) {
	c.Debt = c.Debt.Add(amount)
}

// ApplyPayment lowers the client's debt.
func (c *Client) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(c.Debt) {
		return ErrPaymentExceedsDebt
	}

	c.Debt = c.Debt.Sub(amount)

	return nil
}
